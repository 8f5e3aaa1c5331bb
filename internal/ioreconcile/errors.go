package ioreconcile

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/tagezi/mlidb/pkg/errcode"
)

// UnknownRankError is returned when a requested rank is not in the rank
// vocabulary.
func UnknownRankError(id int) error {
	return &gn.Error{
		Code: errcode.ReconcileRankError,
		Msg:  "Rank <em>%d</em> is not known",
		Vars: []any{id},
		Err:  fmt.Errorf("unknown rank id %d", id),
	}
}
