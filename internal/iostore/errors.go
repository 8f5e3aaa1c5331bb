package iostore

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/tagezi/mlidb/pkg/errcode"
)

// OpenError is returned when the store cannot be opened.
func OpenError(driver, target string, err error) error {
	return &gn.Error{
		Code: errcode.StoreOpenError,
		Msg:  "Cannot open <em>%s</em> store at <em>%s</em>",
		Vars: []any{driver, target},
		Err:  fmt.Errorf("open %s store %s: %w", driver, target, err),
	}
}

// QueryError is returned when a statement that reads rows fails.
func QueryError(stmt string, args []any, err error) error {
	return &gn.Error{
		Code: errcode.StoreQueryError,
		Msg:  "Query failed: <em>%s</em>",
		Vars: []any{stmt},
		Err:  fmt.Errorf("query %q with %v: %w", stmt, args, err),
	}
}

// ExecError is returned when a statement that changes rows fails.
func ExecError(stmt string, args []any, err error) error {
	return &gn.Error{
		Code: errcode.StoreExecError,
		Msg:  "Statement failed: <em>%s</em>",
		Vars: []any{stmt},
		Err:  fmt.Errorf("exec %q with %v: %w", stmt, args, err),
	}
}

// InvalidIdentifierError is returned for table or column names that are
// not safe to put into a statement.
func InvalidIdentifierError(kind, name string, err error) error {
	if err == nil {
		err = fmt.Errorf("%s %q is not allowed", kind, name)
	}
	return &gn.Error{
		Code: errcode.StoreInvalidIdentifierError,
		Msg:  "Invalid %s <em>%s</em>",
		Vars: []any{kind, name},
		Err:  fmt.Errorf("invalid %s: %w", kind, err),
	}
}

// TransactionError is returned when a transaction cannot be committed.
func TransactionError(err error) error {
	return &gn.Error{
		Code: errcode.StoreTransactionError,
		Msg:  "Transaction failed, changes are rolled back",
		Err:  fmt.Errorf("transaction: %w", err),
	}
}
