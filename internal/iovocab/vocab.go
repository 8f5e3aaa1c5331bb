// Package iovocab implements vocab.Vocabulary over a store.Store.
package iovocab

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tagezi/mlidb/pkg/label"
	"github.com/tagezi/mlidb/pkg/schema"
	"github.com/tagezi/mlidb/pkg/store"
	"github.com/tagezi/mlidb/pkg/vocab"
)

type vocabulary struct {
	st store.Store
}

// New creates a Vocabulary that reads and writes through st.
func New(st store.Store) vocab.Vocabulary {
	return &vocabulary{st: st}
}

func (v *vocabulary) AddSubstrate(ctx context.Context, s vocab.Substrate) (int64, error) {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return 0, FieldError("substrate", "name is empty")
	}

	var id int64
	err := v.st.Transaction(ctx, func(tx store.Store) error {
		if err := unique(ctx, tx, schema.TableSubstrates, "name", s.Name, 0); err != nil {
			return err
		}
		var err error
		id, err = tx.Insert(ctx, schema.TableSubstrates,
			store.Set("name", s.Name),
			store.Set("local_name", optText(s.LocalName)),
		)
		return err
	})
	if err != nil {
		return 0, err
	}
	slog.Info("Substrate added", "id", id, "name", s.Name)
	return id, nil
}

func (v *vocabulary) RenameSubstrate(ctx context.Context, s vocab.Substrate) error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return FieldError("substrate", "name is empty")
	}

	return v.st.Transaction(ctx, func(tx store.Store) error {
		if err := unique(ctx, tx, schema.TableSubstrates, "name", s.Name, s.ID); err != nil {
			return err
		}
		n, err := tx.Update(ctx, schema.TableSubstrates,
			[]store.Assign{
				store.Set("name", s.Name),
				store.Set("local_name", optText(s.LocalName)),
			},
			store.And(store.Eq("id", s.ID)),
		)
		if err != nil {
			return err
		}
		if n == 0 {
			return NotFoundError("substrate", s.ID)
		}
		return nil
	})
}

func (v *vocabulary) Substrates(ctx context.Context) ([]vocab.Substrate, error) {
	var rows []schema.Substrate
	if err := v.st.SelectAll(ctx, &rows, schema.TableSubstrates, "name"); err != nil {
		return nil, err
	}
	res := make([]vocab.Substrate, len(rows))
	for i, r := range rows {
		res[i] = vocab.Substrate{ID: r.ID, Name: r.Name, LocalName: r.LocalName}
	}
	return res, nil
}

func (v *vocabulary) AddColor(ctx context.Context, c vocab.Color) (int64, error) {
	c, err := cleanColor(c)
	if err != nil {
		return 0, err
	}

	var id int64
	err = v.st.Transaction(ctx, func(tx store.Store) error {
		if err := uniqueColor(ctx, tx, c); err != nil {
			return err
		}
		var err error
		id, err = tx.Insert(ctx, schema.TableColors,
			store.Set("name", c.Name),
			store.Set("local_name", c.LocalName),
			store.Set("hex", c.HEX),
		)
		return err
	})
	if err != nil {
		return 0, err
	}
	slog.Info("Color added", "id", id, "name", c.Name)
	return id, nil
}

func (v *vocabulary) EditColor(ctx context.Context, c vocab.Color) error {
	c, err := cleanColor(c)
	if err != nil {
		return err
	}

	return v.st.Transaction(ctx, func(tx store.Store) error {
		if err := uniqueColor(ctx, tx, c); err != nil {
			return err
		}
		n, err := tx.Update(ctx, schema.TableColors,
			[]store.Assign{
				store.Set("name", c.Name),
				store.Set("local_name", c.LocalName),
				store.Set("hex", c.HEX),
			},
			store.And(store.Eq("id", c.ID)),
		)
		if err != nil {
			return err
		}
		if n == 0 {
			return NotFoundError("color", c.ID)
		}
		return nil
	})
}

func (v *vocabulary) Colors(ctx context.Context) ([]vocab.Color, error) {
	var rows []schema.Color
	if err := v.st.SelectAll(ctx, &rows, schema.TableColors, "name"); err != nil {
		return nil, err
	}
	res := make([]vocab.Color, len(rows))
	for i, r := range rows {
		res[i] = vocab.Color{
			ID:        r.ID,
			Name:      r.Name,
			LocalName: r.LocalName,
			HEX:       r.HEX,
		}
	}
	return res, nil
}

func cleanColor(c vocab.Color) (vocab.Color, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return c, FieldError("color", "name is empty")
	}
	c.LocalName = optText(c.LocalName)
	if c.HEX = optText(c.HEX); c.HEX != nil {
		hex, ok := vocab.NormalizeHEX(*c.HEX)
		if !ok {
			return c, FieldError("HEX code", *c.HEX+" is not #RRGGBB")
		}
		c.HEX = &hex
	}
	return c, nil
}

func uniqueColor(ctx context.Context, tx store.Store, c vocab.Color) error {
	if err := unique(ctx, tx, schema.TableColors, "name", c.Name, c.ID); err != nil {
		return err
	}
	if c.HEX == nil {
		return nil
	}
	return unique(ctx, tx, schema.TableColors, "hex", *c.HEX, c.ID)
}

// unique fails if another row of table has the same value in column.
func unique(
	ctx context.Context,
	tx store.Store,
	table, column, value string,
	selfID int64,
) error {
	id, ok, err := tx.GetID(ctx, table, store.And(
		store.Eq(column, value),
		store.Ne("id", selfID),
	))
	if err != nil {
		return err
	}
	if ok {
		return DuplicateError(table, column, value, id)
	}
	return nil
}

func optText(s *string) *string {
	if s == nil {
		return nil
	}
	return label.Opt(*s)
}
