// Package ipxact loads IP-XACT style register map documents into an
// in-memory object model: a component carrying memory maps, each a set of
// address blocks containing registers, bit fields, reset values and
// enumerated values.
package ipxact

import (
	"encoding/xml"
	"strconv"
)

// Uint is an unsigned integer attribute of the register map document.
// IP-XACT documents mix plain decimal, 0x hex and 'h style literals; the
// parser accepts decimal, hex (0x) and octal/binary Go literal syntax.
type Uint uint64

func (u *Uint) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := d.DecodeElement(&s, &start); err != nil {
		return err
	}
	v, err := strconv.ParseUint(s, 0, 64)
	*u = Uint(v)
	return err
}

// Component is the document root: a hardware component description. Only
// the subset needed for constant generation is modelled.
type Component struct {
	XMLName    xml.Name     `xml:"component"`
	Vendor     string       `xml:"vendor"`
	Library    string       `xml:"library"`
	Name       string       `xml:"name"`
	Version    string       `xml:"version"`
	MemoryMaps []*MemoryMap `xml:"memoryMaps>memoryMap"`
}

// MemoryMap is a named collection of address blocks
type MemoryMap struct {
	Name          string          `xml:"name"`
	Description   string          `xml:"description"`
	AddressBlocks []*AddressBlock `xml:"addressBlock"`
}

// AddressBlock is a contiguous region of address space with its own base
// address and size, containing registers
type AddressBlock struct {
	Name        string      `xml:"name"`
	BaseAddress Uint        `xml:"baseAddress"`
	Range       Uint        `xml:"range"`
	Width       Uint        `xml:"width"`
	Registers   []*Register `xml:"register"`
}

// Register is an addressable unit containing bit fields. AddressOffset is
// a byte offset relative to the owning block.
type Register struct {
	Name          string   `xml:"name"`
	Description   string   `xml:"description"`
	AddressOffset Uint     `xml:"addressOffset"`
	Size          Uint     `xml:"size"`
	Fields        []*Field `xml:"field"`
}

// Field is a named bit range within a register. BitOffset is LSB-relative
// to the register. Resets and EnumeratedValueSets are optional; their
// absence is valid and suppresses the corresponding constant emission.
type Field struct {
	Name                string                `xml:"name"`
	Description         string                `xml:"description"`
	BitOffset           Uint                  `xml:"bitOffset"`
	BitWidth            Uint                  `xml:"bitWidth"`
	Access              string                `xml:"access"`
	Resets              *Resets               `xml:"resets"`
	EnumeratedValueSets []*EnumeratedValueSet `xml:"enumeratedValues"`
}

// Resets groups the reset descriptions of a field. A Resets element with
// no reset value inside is valid.
type Resets struct {
	Reset *Reset `xml:"reset"`
}

// Reset carries a single literal reset value bound to a field
type Reset struct {
	Value *Uint `xml:"value"`
	Mask  *Uint `xml:"mask"`
}

// EnumeratedValueSet is a named group of discrete value/name pairs
// attached to a field
type EnumeratedValueSet struct {
	Name   string             `xml:"name"`
	Values []*EnumeratedValue `xml:"enumeratedValue"`
}

// EnumeratedValue is one named discrete value of a field
type EnumeratedValue struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Value       Uint   `xml:"value"`
}

// ResetValue returns the literal reset value bound to the field, if any.
// A missing resets element or a resets element with no bound literal both
// report false.
func (f *Field) ResetValue() (uint64, bool) {
	if f.Resets == nil || f.Resets.Reset == nil || f.Resets.Reset.Value == nil {
		return 0, false
	}
	return uint64(*f.Resets.Reset.Value), true
}
