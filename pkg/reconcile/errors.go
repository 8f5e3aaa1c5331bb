package reconcile

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/tagezi/mlidb/pkg/errcode"
)

// RejectedError is returned for remote records that cannot be imported.
func RejectedError(rec Record, reason string) error {
	return &gn.Error{
		Code: errcode.RemoteRecordRejectedError,
		Msg:  "Remote record <em>%d %s</em> rejected: %s",
		Vars: []any{rec.Key, rec.Name, reason},
		Err:  fmt.Errorf("record %d %q rejected: %s", rec.Key, rec.Name, reason),
	}
}
