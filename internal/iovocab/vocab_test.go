package iovocab_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagezi/mlidb/internal/iotesting"
	"github.com/tagezi/mlidb/internal/iovocab"
	"github.com/tagezi/mlidb/pkg/errcode"
	"github.com/tagezi/mlidb/pkg/vocab"
)

func ptr[T any](v T) *T { return &v }

func code(t *testing.T, err error) gn.ErrorCode {
	t.Helper()
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	return gnErr.Code
}

func TestSubstrates(t *testing.T) {
	ctx := context.Background()
	v := iovocab.New(iotesting.NewStore(t))

	bark, err := v.AddSubstrate(ctx, vocab.Substrate{Name: "bark", LocalName: ptr("кора")})
	require.NoError(t, err)
	rock, err := v.AddSubstrate(ctx, vocab.Substrate{Name: " rock "})
	require.NoError(t, err)

	_, err = v.AddSubstrate(ctx, vocab.Substrate{Name: "bark"})
	assert.Equal(t, errcode.VocabDuplicateError, code(t, err))

	_, err = v.AddSubstrate(ctx, vocab.Substrate{Name: " "})
	assert.Equal(t, errcode.VocabFieldError, code(t, err))

	err = v.RenameSubstrate(ctx, vocab.Substrate{ID: rock, Name: "bark"})
	assert.Equal(t, errcode.VocabDuplicateError, code(t, err))

	err = v.RenameSubstrate(ctx, vocab.Substrate{ID: bark, Name: "bark", LocalName: ptr("")})
	require.NoError(t, err)

	err = v.RenameSubstrate(ctx, vocab.Substrate{ID: 999, Name: "soil"})
	assert.Equal(t, errcode.StoreNotFoundError, code(t, err))

	res, err := v.Substrates(ctx)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "bark", res[0].Name)
	assert.Nil(t, res[0].LocalName)
	assert.Equal(t, "rock", res[1].Name)
}

func TestColors(t *testing.T) {
	ctx := context.Background()
	v := iovocab.New(iotesting.NewStore(t))

	yellow, err := v.AddColor(ctx, vocab.Color{Name: "yellow", HEX: ptr("ffff00")})
	require.NoError(t, err)
	_, err = v.AddColor(ctx, vocab.Color{Name: "grey"})
	require.NoError(t, err)
	_, err = v.AddColor(ctx, vocab.Color{Name: "white"})
	require.NoError(t, err)

	tests := []struct {
		msg  string
		c    vocab.Color
		code gn.ErrorCode
	}{
		{"same name", vocab.Color{Name: "yellow"}, errcode.VocabDuplicateError},
		{"same hex", vocab.Color{Name: "lemon", HEX: ptr("#FFFF00")},
			errcode.VocabDuplicateError},
		{"bad hex", vocab.Color{Name: "lemon", HEX: ptr("#FF0")},
			errcode.VocabFieldError},
		{"no name", vocab.Color{HEX: ptr("#000000")}, errcode.VocabFieldError},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			_, err := v.AddColor(ctx, tt.c)
			assert.Equal(t, tt.code, code(t, err))
		})
	}

	err = v.EditColor(ctx, vocab.Color{ID: yellow, Name: "yellow", HEX: ptr("#f0e68c")})
	require.NoError(t, err)

	res, err := v.Colors(ctx)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, "grey", res[0].Name)
	assert.Nil(t, res[0].HEX)
	assert.Equal(t, "yellow", res[2].Name)
	assert.Equal(t, "#F0E68C", *res[2].HEX)
}
