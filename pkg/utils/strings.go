package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// Formats an uint value into a fixed width binary string of n bits
func FormatUintBinary(value uint64, bits int) string {
	leadingZerosFormat := "%0" + fmt.Sprint(bits) + "s"
	return fmt.Sprintf(leadingZerosFormat, strconv.FormatUint(value, 2))
}

// Formats an uint value into a fixed width hex string of n characters
func FormatUintHex(value uint64, digits int) string {
	leadingZerosFormat := "%0" + fmt.Sprint(digits) + "s"
	return fmt.Sprintf(leadingZerosFormat, strconv.FormatUint(value, 16))
}

// Pads a string with spaces on the right up to the given column. Strings
// already past the column get a single trailing space instead.
func PadToColumn(str string, column int) string {
	if len(str) >= column {
		return str + " "
	}
	return str + strings.Repeat(" ", column-len(str))
}

// Centers a string within the given width by left-padding it with spaces
func CenterInWidth(str string, width int) string {
	if len(str) >= width {
		return str
	}
	return strings.Repeat(" ", (width-len(str))/2) + str
}
