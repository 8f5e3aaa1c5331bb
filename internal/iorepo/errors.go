package iorepo

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/tagezi/mlidb/pkg/errcode"
)

// NotFoundError is returned when a record requested by key does not
// exist.
func NotFoundError(entity string, key any) error {
	return &gn.Error{
		Code: errcode.StoreNotFoundError,
		Msg:  "Cannot find %s <em>%v</em>",
		Vars: []any{entity, key},
		Err:  fmt.Errorf("%s %v not found", entity, key),
	}
}
