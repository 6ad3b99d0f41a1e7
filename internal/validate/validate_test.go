package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"litshop/internal/validate"
)

func TestID(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"book-1", "book-1", true},
		{"  b_2 ", "b_2", true},
		{"", "", false},
		{"   ", "", false},
		{"../etc", "../etc", false},
		{"a b", "a b", false},
		{strings.Repeat("x", 65), strings.Repeat("x", 65), false},
	}
	for _, tt := range tests {
		got, ok := validate.ID(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestQuantity(t *testing.T) {
	assert.False(t, validate.Quantity(0))
	assert.False(t, validate.Quantity(-3))
	assert.True(t, validate.Quantity(1))
	assert.True(t, validate.Quantity(validate.MaxQuantity))
	assert.False(t, validate.Quantity(validate.MaxQuantity+1))
}

func TestLimit(t *testing.T) {
	assert.Equal(t, 50, validate.Limit("", 50, 200))
	assert.Equal(t, 50, validate.Limit("abc", 50, 200))
	assert.Equal(t, 50, validate.Limit("0", 50, 200))
	assert.Equal(t, 10, validate.Limit(" 10 ", 50, 200))
	assert.Equal(t, 200, validate.Limit("9999", 50, 200))
}

func TestQ(t *testing.T) {
	q, ok := validate.Q("  TCP/IP ")
	assert.True(t, ok)
	assert.Equal(t, "TCP/IP", q)

	q, ok = validate.Q(strings.Repeat("a", 80))
	assert.True(t, ok)
	assert.Len(t, q, 50)

	for _, bad := range []string{"", "   ", "<script>", "a;DROP TABLE books", "50%"} {
		_, ok := validate.Q(bad)
		assert.False(t, ok, "input %q", bad)
	}
}
