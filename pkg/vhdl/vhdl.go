// Package vhdl renders comment lines, constant declarations and package
// boundaries in VHDL syntax. It owns the output buffer; callers decide
// what to emit and in which order.
package vhdl

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hwforge/xactgen/pkg/utils"
)

// LineWidth is the column width of comment rules and centered comments
const LineWidth = 80

var ErrInvalidDeclaration = errors.New("invalid declaration")

// DeclKind selects the declaration statement being rendered
type DeclKind int

const (
	DeclConstant DeclKind = iota
	DeclSignal
)

// TypeTag is the semantic type of a declared value. StdLogic renders as
// std_logic or std_logic_vector depending on the bit width.
type TypeTag int

const (
	TypeNatural TypeTag = iota
	TypeStdLogic
)

// Declaration describes one named value to render as a VHDL declaration
// statement
type Declaration struct {
	Name     string
	Value    uint64
	Type     TypeTag
	BitWidth int
	Kind     DeclKind
	Align    int
}

// CommentOptions controls comment rendering. Small comments are a single
// "-- text" line. A caption turns the comment into a boxed block headed
// by the caption. Plain comments are centered within the rule width.
type CommentOptions struct {
	Small   bool
	Caption string
}

// Writer accumulates rendered VHDL lines in an in-memory buffer
type Writer struct {
	buf strings.Builder
}

func NewWriter() *Writer {
	return &Writer{}
}

// WriteDeclaration renders one declaration statement, padding it so the
// assignment lands at the declaration's alignment column
func (w *Writer) WriteDeclaration(d Declaration) error {
	if d.Name == "" {
		return utils.MakeError(ErrInvalidDeclaration, "declaration has no name")
	}
	if d.BitWidth <= 0 {
		return utils.MakeError(ErrInvalidDeclaration, "'%v' has bit width %v", d.Name, d.BitWidth)
	}

	head := fmt.Sprintf("  %v %v : %v", keyword(d.Kind), d.Name, typeName(d))
	w.line(utils.PadToColumn(head, d.Align) + ":= " + formatValue(d) + ";")
	return nil
}

// WriteComment renders a comment line or block at the given indentation
func (w *Writer) WriteComment(text string, indent int, opts CommentOptions) {
	pad := strings.Repeat(" ", indent)

	switch {
	case opts.Caption != "":
		w.rule(indent)
		w.line(pad + "-- " + opts.Caption)
		if text != "" {
			w.line(pad + "--")
			for _, row := range wrap(text, LineWidth-indent-3) {
				w.line(pad + "-- " + row)
			}
		}
		w.rule(indent)
	case opts.Small:
		w.line(pad + "-- " + text)
	default:
		w.line(utils.CenterInWidth(pad+"-- "+text, LineWidth))
	}
}

// WriteRule renders a full-width comment rule indented by gap columns
func (w *Writer) WriteRule(gap int) {
	w.rule(gap)
}

// WriteBlank renders an empty line
func (w *Writer) WriteBlank() {
	w.buf.WriteByte('\n')
}

// WriteIncludes renders the library/use directives for the given
// ieee library units
func (w *Writer) WriteIncludes(units []string) {
	if len(units) == 0 {
		return
	}
	w.line("Library ieee;")
	for _, unit := range units {
		w.line("use ieee." + unit + ";")
	}
}

// WritePackage renders the opening or closing boundary of a named package
func (w *Writer) WritePackage(name string, opening bool) {
	if opening {
		w.line("package " + name + " is")
	} else {
		w.line("end package " + name + ";")
	}
}

// String returns everything rendered so far
func (w *Writer) String() string {
	return w.buf.String()
}

// WriteTo copies the rendered output to the given writer
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	n, err := io.WriteString(out, w.buf.String())
	return int64(n), err
}

func (w *Writer) line(text string) {
	w.buf.WriteString(text)
	w.buf.WriteByte('\n')
}

func (w *Writer) rule(gap int) {
	w.line(strings.Repeat(" ", gap) + strings.Repeat("-", LineWidth-gap))
}

func keyword(kind DeclKind) string {
	if kind == DeclSignal {
		return "signal"
	}
	return "constant"
}

func typeName(d Declaration) string {
	switch d.Type {
	case TypeNatural:
		return "natural"
	default:
		if d.BitWidth == 1 {
			return "std_logic"
		}
		return fmt.Sprintf("std_logic_vector(%v downto 0)", d.BitWidth-1)
	}
}

// formatValue renders the literal for a declaration value. Naturals print
// as plain integers. std_logic values print as bit literals, vectors as
// hex strings when the width is a nibble multiple, binary strings
// otherwise. Values wider than the declared width are truncated to it.
func formatValue(d Declaration) string {
	if d.Type == TypeNatural {
		return fmt.Sprint(d.Value)
	}

	value := d.Value
	if d.BitWidth < utils.SizeofBits[uint64]() {
		value &= utils.AllOnes[uint64](d.BitWidth)
	}

	switch {
	case d.BitWidth == 1:
		return "'" + utils.FormatUintBinary(value, 1) + "'"
	case d.BitWidth%4 == 0:
		return `x"` + utils.FormatUintHex(value, d.BitWidth/4) + `"`
	default:
		return `"` + utils.FormatUintBinary(value, d.BitWidth) + `"`
	}
}

// wrap splits text into rows no longer than width, breaking on spaces
func wrap(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var rows []string
	row := ""
	for _, word := range strings.Fields(text) {
		switch {
		case row == "":
			row = word
		case len(row)+1+len(word) <= width:
			row += " " + word
		default:
			rows = append(rows, row)
			row = word
		}
	}
	if row != "" {
		rows = append(rows, row)
	}
	return rows
}
