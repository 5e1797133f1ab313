package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidGroupName(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want bool
	}{
		{name: "letter_start", arg: "Open", want: true},
		{name: "unicode_letter", arg: "Élite", want: true},
		{name: "empty", arg: "", want: false},
		{name: "digit_start", arg: "1K", want: false},
		{name: "symbol_start", arg: "-open", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidGroupName(tt.arg))
		})
	}
}
