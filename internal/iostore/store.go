package iostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gnames/gn"
	"github.com/tagezi/mlidb/pkg/store"
	"gorm.io/gorm"
)

type gormStore struct {
	db      *gorm.DB
	dialect string
	closer  func() error
	inTx    bool
}

func (s *gormStore) Exec(
	ctx context.Context,
	stmt string,
	args ...any,
) (int64, error) {
	args = values(args)
	res := s.db.WithContext(ctx).Exec(stmt, args...)
	if res.Error != nil {
		slog.Error("Statement failed",
			"stmt", stmt, "params", args, "error", res.Error)
		return 0, ExecError(stmt, args, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *gormStore) Query(
	ctx context.Context,
	dest any,
	stmt string,
	args ...any,
) error {
	args = values(args)
	err := s.db.WithContext(ctx).Raw(stmt, args...).Scan(dest).Error
	if err != nil {
		slog.Error("Query failed",
			"stmt", stmt, "params", args, "error", err)
		return QueryError(stmt, args, err)
	}
	return nil
}

func (s *gormStore) Insert(
	ctx context.Context,
	table string,
	vals ...store.Assign,
) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, InvalidIdentifierError("column list", table,
			fmt.Errorf("insert into %s without values", table))
	}

	cols := make([]string, len(vals))
	marks := make([]string, len(vals))
	args := make([]any, len(vals))
	for i, v := range vals {
		if !store.ValidIdent(v.Column) {
			return 0, InvalidIdentifierError("column", v.Column, nil)
		}
		cols[i] = v.Column
		marks[i] = "?"
		args[i] = v.Value
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		table, strings.Join(cols, ", "), strings.Join(marks, ", "))

	var id int64
	if err := s.Query(ctx, &id, stmt, args...); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *gormStore) Update(
	ctx context.Context,
	table string,
	set []store.Assign,
	where store.Where,
) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	if len(set) == 0 {
		return 0, nil
	}
	if where.IsEmpty() {
		return 0, InvalidIdentifierError("condition", table,
			fmt.Errorf("update of %s without condition", table))
	}

	parts := make([]string, len(set))
	args := make([]any, 0, len(set))
	for i, v := range set {
		if !store.ValidIdent(v.Column) {
			return 0, InvalidIdentifierError("column", v.Column, nil)
		}
		parts[i] = v.Column + " = ?"
		args = append(args, v.Value)
	}

	cond, condArgs, err := where.Build()
	if err != nil {
		return 0, InvalidIdentifierError("condition", table, err)
	}
	args = append(args, condArgs...)

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		table, strings.Join(parts, ", "), cond)
	return s.Exec(ctx, stmt, args...)
}

func (s *gormStore) Delete(
	ctx context.Context,
	table string,
	where store.Where,
) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	cond, args, err := where.Build()
	if err != nil {
		return 0, InvalidIdentifierError("condition", table, err)
	}
	stmt := "DELETE FROM " + table
	if cond != "" {
		stmt += " WHERE " + cond
	}
	return s.Exec(ctx, stmt, args...)
}

func (s *gormStore) Select(
	ctx context.Context,
	dest any,
	table string,
	where store.Where,
	orderBy ...string,
) error {
	stmt, args, err := selectStmt("*", table, where, orderBy)
	if err != nil {
		return err
	}
	return s.Query(ctx, dest, stmt, args...)
}

func (s *gormStore) SelectAll(
	ctx context.Context,
	dest any,
	table string,
	orderBy ...string,
) error {
	return s.Select(ctx, dest, table, store.Where{}, orderBy...)
}

func (s *gormStore) GetID(
	ctx context.Context,
	table string,
	where store.Where,
) (int64, bool, error) {
	stmt, args, err := selectStmt("id", table, where, []string{"id"})
	if err != nil {
		return 0, false, err
	}
	var ids []int64
	if err = s.Query(ctx, &ids, stmt+" LIMIT 1", args...); err != nil {
		return 0, false, err
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

func (s *gormStore) Count(
	ctx context.Context,
	table string,
	where store.Where,
) (int64, error) {
	stmt, args, err := selectStmt("COUNT(*)", table, where, nil)
	if err != nil {
		return 0, err
	}
	var res int64
	if err = s.Query(ctx, &res, stmt, args...); err != nil {
		return 0, err
	}
	return res, nil
}

func (s *gormStore) Clean(ctx context.Context, tables ...string) error {
	for _, v := range tables {
		if _, err := s.Delete(ctx, v, store.Where{}); err != nil {
			return err
		}
		slog.Info("Table cleaned", "table", v)
	}
	return nil
}

func (s *gormStore) Transaction(
	ctx context.Context,
	fn func(tx store.Store) error,
) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx, dialect: s.dialect, inTx: true})
	})
	if err == nil {
		return nil
	}

	var gnErr *gn.Error
	if errors.As(err, &gnErr) {
		return err
	}
	slog.Error("Transaction failed", "error", err)
	return TransactionError(err)
}

func (s *gormStore) Dialect() string {
	return s.dialect
}

func (s *gormStore) Close() error {
	if s.inTx || s.closer == nil {
		return nil
	}
	return s.closer()
}

func checkTable(table string) error {
	if !store.ValidIdent(table) {
		return InvalidIdentifierError("table", table, nil)
	}
	return nil
}

func selectStmt(
	what, table string,
	where store.Where,
	orderBy []string,
) (string, []any, error) {
	if err := checkTable(table); err != nil {
		return "", nil, err
	}
	cond, args, err := where.Build()
	if err != nil {
		return "", nil, InvalidIdentifierError("condition", table, err)
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s", what, table)
	if cond != "" {
		stmt += " WHERE " + cond
	}
	if len(orderBy) > 0 {
		for _, v := range orderBy {
			if !store.ValidOrder(v) {
				return "", nil, InvalidIdentifierError("order", v, nil)
			}
		}
		stmt += " ORDER BY " + strings.Join(orderBy, ", ")
	}
	return stmt, args, nil
}

// values replaces pointers with the values they point to.
func values(args []any) []any {
	res := make([]any, len(args))
	for i := range args {
		res[i] = store.Value(args[i])
	}
	return res
}

// DB returns the GORM connection behind a store created by this package.
func DB(st store.Store) (*gorm.DB, bool) {
	gs, ok := st.(*gormStore)
	if !ok {
		return nil, false
	}
	return gs.db, true
}
