package iofs

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/tagezi/mlidb/pkg/errcode"
)

// caller returns the name of the function that created an error.
func caller() string {
	pc, _, _, _ := runtime.Caller(2)
	if fn := runtime.FuncForPC(pc); fn != nil {
		return fn.Name()
	}
	return "unknown"
}

func CreateDirError(dir string, err error) error {
	return &gn.Error{
		Code: errcode.CreateDirError,
		Msg:  "Cannot create directory <em>%s</em>",
		Vars: []any{dir},
		Err: fmt.Errorf("from %s: cannot create directory: %w",
			caller(), err),
	}
}

func CopyFileError(file string, err error) error {
	return &gn.Error{
		Code: errcode.CopyFileError,
		Msg:  "Cannot write default file <em>%s</em>",
		Vars: []any{file},
		Err: fmt.Errorf("from %s: cannot write file: %w",
			caller(), err),
	}
}

func ReadFileError(path string, err error) error {
	return &gn.Error{
		Code: errcode.ReadFileError,
		Msg:  "Cannot read <em>%s</em>",
		Vars: []any{path},
		Err: fmt.Errorf("from %s: cannot read %s: %w",
			caller(), path, err),
	}
}

func EmptyWhitelistError(path string) error {
	msg := `Lichen whitelist <em>%s</em> is empty

<em>How to fix:</em>
  1. Add classes, orders, families or genera to the file
  2. Remove the file to use the default whitelist`

	return &gn.Error{
		Code: errcode.ReadFileError,
		Msg:  msg,
		Vars: []any{path},
		Err: fmt.Errorf("from %s: whitelist %s is empty",
			caller(), path),
	}
}
