package vocab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tagezi/mlidb/pkg/vocab"
)

func TestNormalizeHEX(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"#a1b2c3", "#A1B2C3", true},
		{"A1B2C3", "#A1B2C3", true},
		{" #ffffff ", "#FFFFFF", true},
		{"#fff", "", false},
		{"#gggggg", "", false},
		{"", "", false},
		{"##ffffff", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := vocab.NormalizeHEX(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
