// Package vocab describes flat vocabularies used in lichen descriptions:
// substrates and colors.
package vocab

import (
	"context"
	"regexp"
	"strings"
)

// Substrate is a surface a lichen grows on.
type Substrate struct {
	ID        int64
	Name      string
	LocalName *string
}

// Color is a named color with an optional RGB code.
type Color struct {
	ID        int64
	Name      string
	LocalName *string

	// HEX is an RGB code in "#RRGGBB" form.
	HEX *string
}

// Vocabulary keeps substrates unique by name and colors unique by name
// and by HEX code.
type Vocabulary interface {
	// AddSubstrate adds a substrate and returns its id.
	AddSubstrate(ctx context.Context, s Substrate) (int64, error)

	// RenameSubstrate changes the names of a substrate.
	RenameSubstrate(ctx context.Context, s Substrate) error

	// Substrates returns all substrates ordered by name.
	Substrates(ctx context.Context) ([]Substrate, error)

	// AddColor adds a color and returns its id.
	AddColor(ctx context.Context, c Color) (int64, error)

	// EditColor changes names and HEX code of a color.
	EditColor(ctx context.Context, c Color) error

	// Colors returns all colors ordered by name.
	Colors(ctx context.Context) ([]Color, error)
}

var hexRe = regexp.MustCompile(`^#?([0-9a-fA-F]{6})$`)

// NormalizeHEX returns an RGB code as upper case "#RRGGBB". The leading
// '#' is optional in the input.
func NormalizeHEX(s string) (string, bool) {
	m := hexRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	return "#" + strings.ToUpper(m[1]), true
}
