package iovocab

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/tagezi/mlidb/pkg/errcode"
)

// DuplicateError is returned when a vocabulary value is already taken.
func DuplicateError(table, column, value string, existingID int64) error {
	return &gn.Error{
		Code: errcode.VocabDuplicateError,
		Msg:  "Value <em>%s</em> of <em>%s.%s</em> is already used by id %d",
		Vars: []any{value, table, column, existingID},
		Err: fmt.Errorf("duplicate %s.%s %q (id %d)",
			table, column, value, existingID),
	}
}

// FieldError is returned for empty or malformed vocabulary values.
func FieldError(field, reason string) error {
	return &gn.Error{
		Code: errcode.VocabFieldError,
		Msg:  "Invalid <em>%s</em>: %s",
		Vars: []any{field, reason},
		Err:  fmt.Errorf("invalid %s: %s", field, reason),
	}
}

// NotFoundError is returned when an edited record does not exist.
func NotFoundError(kind string, id int64) error {
	return &gn.Error{
		Code: errcode.StoreNotFoundError,
		Msg:  "Cannot find %s <em>%d</em>",
		Vars: []any{kind, id},
		Err:  fmt.Errorf("%s %d not found", kind, id),
	}
}
