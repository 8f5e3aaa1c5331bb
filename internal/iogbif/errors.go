package iogbif

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/tagezi/mlidb/pkg/errcode"
)

// RequestError is returned when a request cannot be sent or its body
// cannot be read.
func RequestError(url string, err error) error {
	msg := `Cannot reach the species service at <em>%s</em>

<em>How to fix:</em>
  1. Check your network connection
  2. Check reconcile.api_url in the configuration file
  3. Run the command again, finished taxa are skipped`

	return &gn.Error{
		Code: errcode.RemoteRequestError,
		Msg:  msg,
		Vars: []any{url},
		Err:  fmt.Errorf("request %s: %w", url, err),
	}
}

// StatusError is returned when the service answers with a status other
// than 200 OK.
func StatusError(url string, status int) error {
	return &gn.Error{
		Code: errcode.RemoteStatusError,
		Msg:  "Species service returned status <em>%d</em> for %s",
		Vars: []any{status, url},
		Err:  fmt.Errorf("request %s: status %d", url, status),
	}
}

// DecodeError is returned when a response is not the expected JSON.
func DecodeError(url string, err error) error {
	return &gn.Error{
		Code: errcode.RemoteDecodeError,
		Msg:  "Cannot decode the response of <em>%s</em>",
		Vars: []any{url},
		Err:  fmt.Errorf("decode %s: %w", url, err),
	}
}

// NameError is returned when a remote scientific name has no usable
// canonical form.
func NameError(key int64, name string) error {
	return &gn.Error{
		Code: errcode.RemoteDecodeError,
		Msg:  "Cannot parse remote name <em>%s</em>",
		Vars: []any{name},
		Err:  fmt.Errorf("usage %d: cannot parse name %q", key, name),
	}
}
