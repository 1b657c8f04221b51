// Package generator derives VHDL constant declarations from a register
// map: absolute register addresses, field bit positions expressed
// relative to the bus word, enumerated values and reset values. The
// traversal is a pure pass over the immutable document tree producing
// emission instructions; see Render for turning them into text.
package generator

import (
	"errors"
	"sort"
	"strings"

	"github.com/hwforge/xactgen/pkg/ipxact"
	"github.com/hwforge/xactgen/pkg/utils"
	"github.com/hwforge/xactgen/pkg/vhdl"
)

const (
	// Alignment column of field, enum and reset value declarations
	fieldAlignColumn = 50
	// Alignment column of block and address declarations. Wider than the
	// field column since address values are larger.
	addrAlignColumn = 80
	// Bit width of register address constants
	addrConstWidth = 12
)

var (
	ErrInvalidConfig = errors.New("invalid generator configuration")
	ErrInvalidBlock  = errors.New("invalid address block")
)

// Config carries the generation inputs that are not part of the register
// map document. Both members are required; there are no fallbacks.
type Config struct {
	// Width in bits of the addressing bus. Field bit positions are
	// expressed relative to this word size.
	BusWidth int
	// Bit width of the block select constants. The document schema does
	// not carry this value, so the caller must.
	BlockSelectBits int
}

// Generator turns one or two memory maps into a VHDL constants package.
// The address map contributes block and register address constants, the
// field map contributes bit position, enum and reset constants. Either
// may be nil, which skips that traversal mode.
type Generator struct {
	addrMap  *ipxact.MemoryMap
	fieldMap *ipxact.MemoryMap
	cfg      Config
}

func New(addrMap, fieldMap *ipxact.MemoryMap, cfg Config) (*Generator, error) {
	if cfg.BusWidth <= 0 {
		return nil, utils.MakeError(ErrInvalidConfig, "bus width %v", cfg.BusWidth)
	}
	if cfg.BlockSelectBits <= 0 {
		return nil, utils.MakeError(ErrInvalidConfig, "block select bits %v", cfg.BlockSelectBits)
	}
	if addrMap != nil {
		for _, block := range addrMap.AddressBlocks {
			if block.Range == 0 {
				return nil, utils.MakeError(ErrInvalidBlock, "'%v' has zero range", block.Name)
			}
		}
	}

	return &Generator{
		addrMap:  addrMap,
		fieldMap: fieldMap,
		cfg:      cfg,
	}, nil
}

// PackageOps produces the whole output unit: header framing, includes,
// package boundaries and the body constants of whichever maps are
// present. Field and bit layout constants come first, address constants
// after. With neither map present only the framing is produced.
func (g *Generator) PackageOps(name string) []Op {
	ops := []Op{blankOp(), ruleOp(0)}

	if g.addrMap != nil {
		ops = append(ops, commentOp("Addresses map for: "+g.addrMap.Name, 0, true))
	}
	if g.fieldMap != nil {
		ops = append(ops, commentOp("Field map for: "+g.fieldMap.Name, 0, true))
	}
	ops = append(ops,
		commentOp("This file is autogenerated, DO NOT EDIT!", 0, true),
		ruleOp(0),
		blankOp(),
		Op{Kind: OpInclude, Units: []string{"std_logic_1164.all"}},
		blankOp(),
		Op{Kind: OpPackageOpen, Text: name},
		blankOp(),
	)

	if g.fieldMap != nil {
		ops = append(ops, g.FieldModeOps()...)
	}
	if g.addrMap != nil {
		ops = append(ops, g.AddressOps()...)
	}

	return append(ops, Op{Kind: OpPackageClose, Text: name})
}

// AddressOps produces the addresses mode body: per block, the block head
// and the register address constants, blocks in ascending base address
// order
func (g *Generator) AddressOps() []Op {
	var ops []Op
	for _, block := range sortedBlocks(g.addrMap) {
		ops = append(ops, g.blockOps(block)...)
	}
	return ops
}

// FieldModeOps produces the fields mode body: the full register emission
// (fields, enums and reset values) for every register of the field map
func (g *Generator) FieldModeOps() []Op {
	var ops []Op
	for _, block := range sortedBlocks(g.fieldMap) {
		for _, reg := range sortedRegisters(block) {
			ops = append(ops, RegisterOps(reg, g.cfg.BusWidth, true, true, true)...)
		}
	}
	return ops
}

// blockOps produces the address block head (rule, centered title, rule,
// block select constant) followed by one address constant per register in
// ascending address offset order
func (g *Generator) blockOps(block *ipxact.AddressBlock) []Op {
	ops := []Op{
		ruleOp(2),
		commentOp("Address block: "+block.Name, 2, false),
		ruleOp(2),
		declOp(vhdl.Declaration{
			Name:     block.Name + "_BLOCK",
			Value:    uint64(block.BaseAddress / block.Range),
			Type:     vhdl.TypeStdLogic,
			BitWidth: g.cfg.BlockSelectBits,
			Kind:     vhdl.DeclConstant,
			Align:    addrAlignColumn,
		}),
		blankOp(),
	}

	for _, reg := range sortedRegisters(block) {
		ops = append(ops, declOp(vhdl.Declaration{
			Name:     reg.Name + "_ADR",
			Value:    uint64(reg.AddressOffset + block.BaseAddress),
			Type:     vhdl.TypeStdLogic,
			BitWidth: addrConstWidth,
			Kind:     vhdl.DeclConstant,
			Align:    addrAlignColumn,
		}))
	}

	return append(ops, blankOp())
}

// RegisterOps produces the constants of one register. The three switches
// select which sections are produced; each enabled section is its own
// sequential pass over the field list, so field position, enum and reset
// constants never interleave.
func RegisterOps(reg *ipxact.Register, busWidth int, withFields, withEnums, withResets bool) []Op {
	caption := strings.ToUpper(reg.Name) + " register"
	ops := []Op{captionOp(reg.Description, caption, 2)}

	if withFields {
		for _, field := range sortedFields(reg) {
			ops = append(ops, FieldOps(field, reg, busWidth)...)
		}
	}

	if withEnums {
		for _, field := range reg.Fields {
			ops = append(ops, enumOps(field)...)
		}
		ops = append(ops, blankOp())
	}

	if withResets {
		ops = append(ops, commentOp(strings.ToUpper(reg.Name)+" register reset values", 2, true))
		for _, field := range reg.Fields {
			ops = append(ops, resetOps(field)...)
		}
	}

	return append(ops, blankOp())
}

// FieldOps produces the bit position constants of one field, expressed
// relative to the bus word: the field's register may occupy a sub-word
// slot inside a wider bus word, so both bounds are shifted by the
// register's bit offset within that word. A single bit field yields one
// _IND constant, wider fields yield an _L and an _H constant.
func FieldOps(field *ipxact.Field, reg *ipxact.Register, busWidth int) []Op {
	low := int(field.BitOffset)
	high := low + int(field.BitWidth) - 1

	shift := (int(reg.AddressOffset) * utils.BitsPerByte) % busWidth
	low += shift
	high += shift

	type bound struct {
		suffix string
		index  int
	}

	bounds := []bound{{"_L", low}, {"_H", high}}
	if high == low {
		// Single bit fields get one _IND constant, never _L/_H
		bounds = []bound{{"_IND", low}}
	}

	var ops []Op
	for _, b := range bounds {
		ops = append(ops, declOp(vhdl.Declaration{
			Name:     field.Name + b.suffix,
			Value:    uint64(b.index),
			Type:     vhdl.TypeNatural,
			BitWidth: int(field.BitWidth),
			Kind:     vhdl.DeclConstant,
			Align:    fieldAlignColumn,
		}))
	}
	return ops
}

// enumOps produces one constant per enumerated value of the field, each
// set sorted by ascending value. Fields without enumerated values
// contribute nothing.
func enumOps(field *ipxact.Field) []Op {
	if len(field.EnumeratedValueSets) == 0 {
		return nil
	}

	ops := []Op{
		blankOp(),
		commentOp(`"`+field.Name+`" field enumerated values`, 2, true),
	}

	for _, set := range field.EnumeratedValueSets {
		values := make([]*ipxact.EnumeratedValue, len(set.Values))
		copy(values, set.Values)
		sort.SliceStable(values, func(i, j int) bool {
			return values[i].Value < values[j].Value
		})

		for _, value := range values {
			ops = append(ops, declOp(vhdl.Declaration{
				Name:     value.Name,
				Value:    uint64(value.Value),
				Type:     vhdl.TypeStdLogic,
				BitWidth: int(field.BitWidth),
				Kind:     vhdl.DeclConstant,
				Align:    fieldAlignColumn,
			}))
		}
	}
	return ops
}

// resetOps produces the reset value constant of the field. Fields with no
// bound reset literal contribute nothing.
func resetOps(field *ipxact.Field) []Op {
	value, bound := field.ResetValue()
	if !bound {
		return nil
	}

	return []Op{declOp(vhdl.Declaration{
		Name:     field.Name + "_RSTVAL",
		Value:    value,
		Type:     vhdl.TypeStdLogic,
		BitWidth: int(field.BitWidth),
		Kind:     vhdl.DeclConstant,
		Align:    fieldAlignColumn,
	})}
}

func sortedBlocks(m *ipxact.MemoryMap) []*ipxact.AddressBlock {
	blocks := make([]*ipxact.AddressBlock, len(m.AddressBlocks))
	copy(blocks, m.AddressBlocks)
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].BaseAddress < blocks[j].BaseAddress
	})
	return blocks
}

func sortedRegisters(block *ipxact.AddressBlock) []*ipxact.Register {
	regs := make([]*ipxact.Register, len(block.Registers))
	copy(regs, block.Registers)
	sort.SliceStable(regs, func(i, j int) bool {
		return regs[i].AddressOffset < regs[j].AddressOffset
	})
	return regs
}

func sortedFields(reg *ipxact.Register) []*ipxact.Field {
	fields := make([]*ipxact.Field, len(reg.Fields))
	copy(fields, reg.Fields)
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].BitOffset < fields[j].BitOffset
	})
	return fields
}
