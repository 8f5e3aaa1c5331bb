package iocache

import (
	"errors"
	"fmt"

	"github.com/gnames/gn"
	"github.com/tagezi/mlidb/pkg/errcode"
)

// OpenError is returned when the cache directory or database cannot be
// opened.
func OpenError(dir string, err error) error {
	msg := `Cannot open response cache at <em>%s</em>

<em>How to fix:</em>
  1. Check permissions of the cache directory
  2. Run the command with --clean-cache`

	return &gn.Error{
		Code: errcode.CacheOpenError,
		Msg:  msg,
		Vars: []any{dir},
		Err:  fmt.Errorf("open cache %s: %w", dir, err),
	}
}

// NotOpenError is returned when the cache is used before Open.
func NotOpenError() error {
	return &gn.Error{
		Code: errcode.CacheNotOpenError,
		Msg:  "Response cache is not open",
		Err:  errors.New("cache is not open"),
	}
}

// ReadError is returned when a cached value cannot be read or decoded.
func ReadError(key string, err error) error {
	return &gn.Error{
		Code: errcode.CacheReadError,
		Msg:  "Cannot read cached value <em>%s</em>",
		Vars: []any{key},
		Err:  fmt.Errorf("read cache key %s: %w", key, err),
	}
}

// WriteError is returned when a value cannot be encoded or stored.
func WriteError(key string, err error) error {
	return &gn.Error{
		Code: errcode.CacheWriteError,
		Msg:  "Cannot write cached value <em>%s</em>",
		Vars: []any{key},
		Err:  fmt.Errorf("write cache key %s: %w", key, err),
	}
}
