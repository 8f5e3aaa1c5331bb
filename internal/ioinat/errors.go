package ioinat

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/tagezi/mlidb/pkg/errcode"
)

// OpenError is returned when an import file cannot be opened.
func OpenError(path string, err error) error {
	return &gn.Error{
		Code: errcode.ReadFileError,
		Msg:  "Cannot open import file <em>%s</em>",
		Vars: []any{path},
		Err:  fmt.Errorf("open %s: %w", path, err),
	}
}

// ParseError is returned for malformed CSV input.
func ParseError(line int, reason string) error {
	msg := `Cannot read the import file at line <em>%d</em>: %s

<em>How to fix:</em>
  1. The first line must name the Name and ID columns
  2. Check import.delimiter in the configuration file`

	return &gn.Error{
		Code: errcode.ImportParseError,
		Msg:  msg,
		Vars: []any{line, reason},
		Err:  fmt.Errorf("import line %d: %s", line, reason),
	}
}
