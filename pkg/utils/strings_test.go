package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUintBinary(t *testing.T) {
	assert.Equal(t, "0010", FormatUintBinary(2, 4))
	assert.Equal(t, "1", FormatUintBinary(1, 1))
	assert.Equal(t, "00000000", FormatUintBinary(0, 8))
}

func TestFormatUintHex(t *testing.T) {
	assert.Equal(t, "000", FormatUintHex(0, 3))
	assert.Equal(t, "1004", FormatUintHex(0x1004, 4))
	assert.Equal(t, "0ff", FormatUintHex(0xFF, 3))
}

func TestPadToColumn(t *testing.T) {
	assert.Equal(t, "abc   ", PadToColumn("abc", 6))
	// Strings at or past the column still get a separator space
	assert.Equal(t, "abcdef ", PadToColumn("abcdef", 6))
	assert.Equal(t, "abcdefg ", PadToColumn("abcdefg", 6))
}

func TestCenterInWidth(t *testing.T) {
	assert.Equal(t, "  ab", CenterInWidth("ab", 6))
	assert.Equal(t, "abcdef", CenterInWidth("abcdef", 6))
}
