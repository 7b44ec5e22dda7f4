package id

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTxnRef(t *testing.T) {
	tests := []struct {
		id   int64
		want string
	}{
		{1, "#1"},
		{42, "#42"},
		{1000, "#1000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTxnRef(tt.id))
	}
}

func TestParseTxnRef(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"#42", 42},
		{"42", 42},
		{" #7 ", 7},
	}
	for _, tt := range tests {
		got, err := ParseTxnRef(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseTxnRef_Errors(t *testing.T) {
	badInputs := []string{
		"",
		"#",
		"#abc",
		"#0",
		"-3",
	}
	for _, input := range badInputs {
		_, err := ParseTxnRef(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}

func TestNewCorrelationID(t *testing.T) {
	a := NewCorrelationID()
	b := NewCorrelationID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestContentRef(t *testing.T) {
	a := ContentRef("chase", "01/15/2025", "GITHUB", "-4.00")
	b := ContentRef("chase", "01/15/2025", "GITHUB", "-4.00")
	c := ContentRef("chase", "01/15/2025", "GITHUB", "-5.00")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, len("chase:")+16)
}
