package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"燃えるごみ", "燃えるごみ"},
		{"=SUM(A1:A3)", "'=SUM(A1:A3)"},
		{"+1", "'+1"},
		{"-", "'-"},
		{"@import", "'@import"},
		{"", ""},
		{"a=b", "a=b"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Cell(tt.in), "input %q", tt.in)
	}
}
