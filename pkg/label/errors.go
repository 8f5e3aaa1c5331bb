package label

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/tagezi/mlidb/pkg/errcode"
)

// ParseError is returned for labels that cannot be split into a name and
// an author.
func ParseError(label, reason string) error {
	return &gn.Error{
		Code: errcode.LabelParseError,
		Msg:  "Cannot parse label <em>%s</em>: %s",
		Vars: []any{label, reason},
		Err:  fmt.Errorf("parse label %q: %s", label, reason),
	}
}
