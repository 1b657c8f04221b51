package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwforge/xactgen/pkg/ipxact"
	"github.com/hwforge/xactgen/pkg/vhdl"
)

func field(name string, bitOffset, bitWidth uint64) *ipxact.Field {
	return &ipxact.Field{
		Name:      name,
		BitOffset: ipxact.Uint(bitOffset),
		BitWidth:  ipxact.Uint(bitWidth),
	}
}

func fieldWithReset(name string, bitOffset, bitWidth, reset uint64) *ipxact.Field {
	f := field(name, bitOffset, bitWidth)
	value := ipxact.Uint(reset)
	f.Resets = &ipxact.Resets{Reset: &ipxact.Reset{Value: &value}}
	return f
}

func decls(ops []Op) []vhdl.Declaration {
	var out []vhdl.Declaration
	for _, op := range ops {
		if op.Kind == OpDecl {
			out = append(out, op.Decl)
		}
	}
	return out
}

func declNames(ops []Op) []string {
	var names []string
	for _, d := range decls(ops) {
		names = append(names, d.Name)
	}
	return names
}

func TestFieldOps_MultiBitField(t *testing.T) {
	// Field at bits [3..7] of a register at byte offset 4 on a 32 bit bus:
	// the register starts a fresh bus word, so no adjustment applies
	reg := &ipxact.Register{Name: "MODE", AddressOffset: 4}
	ops := FieldOps(field("DATA", 3, 5), reg, 32)

	ds := decls(ops)
	require.Len(t, ds, 2)
	assert.Equal(t, "DATA_L", ds[0].Name)
	assert.Equal(t, uint64(3), ds[0].Value)
	assert.Equal(t, "DATA_H", ds[1].Name)
	assert.Equal(t, uint64(7), ds[1].Value)
}

func TestFieldOps_SingleBitField(t *testing.T) {
	reg := &ipxact.Register{Name: "MODE", AddressOffset: 0}
	ops := FieldOps(field("LOM", 1, 1), reg, 32)

	ds := decls(ops)
	require.Len(t, ds, 1)
	assert.Equal(t, "LOM_IND", ds[0].Name)
	assert.Equal(t, uint64(1), ds[0].Value)
}

func TestFieldOps_BusWordAdjustment(t *testing.T) {
	// A 16 bit register at byte offset 2 sits in the upper half of a
	// 32 bit bus word, shifting every field position by 16
	reg := &ipxact.Register{Name: "STATUS", AddressOffset: 2}
	ops := FieldOps(field("ERR_CNT", 0, 8), reg, 32)

	ds := decls(ops)
	require.Len(t, ds, 2)
	assert.Equal(t, uint64(16), ds[0].Value)
	assert.Equal(t, uint64(23), ds[1].Value)
	assert.LessOrEqual(t, ds[0].Value, ds[1].Value)
}

func TestFieldOps_SingleBitAfterAdjustment(t *testing.T) {
	// The _IND naming applies to the adjusted bounds too
	reg := &ipxact.Register{Name: "STATUS", AddressOffset: 1}
	ops := FieldOps(field("BUSY", 0, 1), reg, 32)

	ds := decls(ops)
	require.Len(t, ds, 1)
	assert.Equal(t, "BUSY_IND", ds[0].Name)
	assert.Equal(t, uint64(8), ds[0].Value)
}

func TestFieldOps_DeclarationShape(t *testing.T) {
	reg := &ipxact.Register{Name: "MODE", AddressOffset: 0}
	ops := FieldOps(field("DATA", 3, 5), reg, 32)

	for _, d := range decls(ops) {
		// Numeric type sized to the field's own unadjusted width
		assert.Equal(t, vhdl.TypeNatural, d.Type)
		assert.Equal(t, 5, d.BitWidth)
		assert.Equal(t, vhdl.DeclConstant, d.Kind)
		assert.Equal(t, 50, d.Align)
	}
}

func TestRegisterOps_FieldsSortedByBitOffset(t *testing.T) {
	reg := &ipxact.Register{
		Name:          "MODE",
		AddressOffset: 0,
		Fields: []*ipxact.Field{
			field("HIGH", 8, 4),
			field("LOW", 0, 4),
			field("MID", 4, 4),
		},
	}

	ops := RegisterOps(reg, 32, true, false, false)
	assert.Equal(t, []string{"LOW_L", "LOW_H", "MID_L", "MID_H", "HIGH_L", "HIGH_H"}, declNames(ops))
}

func TestRegisterOps_EnumsAfterAllFieldPositions(t *testing.T) {
	enumField := field("CMD", 0, 2)
	enumField.EnumeratedValueSets = []*ipxact.EnumeratedValueSet{{
		Name: "cmd_values",
		Values: []*ipxact.EnumeratedValue{
			{Name: "CMD_STOP", Value: 2},
			{Name: "CMD_START", Value: 1},
			{Name: "CMD_NONE", Value: 0},
		},
	}}

	reg := &ipxact.Register{
		Name:          "COMMAND",
		AddressOffset: 0,
		Fields:        []*ipxact.Field{enumField, field("AUX", 2, 3)},
	}

	ops := RegisterOps(reg, 32, true, true, false)
	names := declNames(ops)

	// Field position constants first, enum constants after, never mixed
	assert.Equal(t, []string{
		"CMD_L", "CMD_H", "AUX_L", "AUX_H",
		"CMD_NONE", "CMD_START", "CMD_STOP",
	}, names)
}

func TestRegisterOps_EnumsSortedByValue(t *testing.T) {
	f := field("STATE", 0, 3)
	f.EnumeratedValueSets = []*ipxact.EnumeratedValueSet{{
		Name: "states",
		Values: []*ipxact.EnumeratedValue{
			{Name: "STATE_C", Value: 5},
			{Name: "STATE_A", Value: 0},
			{Name: "STATE_B", Value: 3},
		},
	}}

	reg := &ipxact.Register{Name: "FSM", Fields: []*ipxact.Field{f}}
	ops := RegisterOps(reg, 32, false, true, false)

	ds := decls(ops)
	require.Len(t, ds, 3)
	assert.Equal(t, "STATE_A", ds[0].Name)
	assert.Equal(t, "STATE_B", ds[1].Name)
	assert.Equal(t, "STATE_C", ds[2].Name)
	// Enum constants carry the owning field's bit width
	assert.Equal(t, 3, ds[0].BitWidth)
	assert.Equal(t, vhdl.TypeStdLogic, ds[0].Type)
}

func TestRegisterOps_FieldWithoutEnumsContributesNothing(t *testing.T) {
	reg := &ipxact.Register{
		Name:   "PLAIN",
		Fields: []*ipxact.Field{field("A", 0, 4), field("B", 4, 4)},
	}

	ops := RegisterOps(reg, 32, false, true, false)
	assert.Empty(t, decls(ops))
}

func TestRegisterOps_ResetValues(t *testing.T) {
	emptyResets := field("NOVAL", 4, 2)
	emptyResets.Resets = &ipxact.Resets{}

	reg := &ipxact.Register{
		Name: "SETTINGS",
		Fields: []*ipxact.Field{
			fieldWithReset("ENA", 0, 1, 1),
			field("GAP", 1, 3),
			emptyResets,
		},
	}

	ops := RegisterOps(reg, 32, false, false, true)
	ds := decls(ops)

	// One constant per field with a bound reset literal, nothing else
	require.Len(t, ds, 1)
	assert.Equal(t, "ENA_RSTVAL", ds[0].Name)
	assert.Equal(t, uint64(1), ds[0].Value)
	assert.Equal(t, 1, ds[0].BitWidth)
	assert.Equal(t, vhdl.TypeStdLogic, ds[0].Type)
}

func TestRegisterOps_HeaderCaption(t *testing.T) {
	reg := &ipxact.Register{Name: "mode", Description: "Operation mode"}
	ops := RegisterOps(reg, 32, false, false, false)

	require.NotEmpty(t, ops)
	assert.Equal(t, OpComment, ops[0].Kind)
	assert.Equal(t, "MODE register", ops[0].Caption)
	assert.Equal(t, "Operation mode", ops[0].Text)
}

func testMaps() (*ipxact.MemoryMap, *ipxact.MemoryMap) {
	lom := fieldWithReset("LOM", 1, 1, 0)
	lom.EnumeratedValueSets = []*ipxact.EnumeratedValueSet{{
		Name: "lom_values",
		Values: []*ipxact.EnumeratedValue{
			{Name: "LOM_ENABLED", Value: 1},
			{Name: "LOM_DISABLED", Value: 0},
		},
	}}

	m := &ipxact.MemoryMap{
		Name: "CAN_Registers",
		AddressBlocks: []*ipxact.AddressBlock{{
			Name:        "Control_registers",
			BaseAddress: 0x1000,
			Range:       0x1000,
			Registers: []*ipxact.Register{
				{
					Name:          "STATUS",
					Description:   "Status register",
					AddressOffset: 0x8,
					Fields:        []*ipxact.Field{field("ERR", 0, 8)},
				},
				{
					Name:          "MODE",
					Description:   "Operation mode register",
					AddressOffset: 0x4,
					Fields:        []*ipxact.Field{lom, field("DATA", 3, 5)},
				},
			},
		}},
	}
	return m, m
}

func TestAddressOps_RegistersSortedByOffset(t *testing.T) {
	addrMap, _ := testMaps()
	g, err := New(addrMap, nil, Config{BusWidth: 32, BlockSelectBits: 4})
	require.NoError(t, err)

	ds := decls(g.AddressOps())
	require.Len(t, ds, 3)

	// Block select constant first: baseAddress / range
	assert.Equal(t, "Control_registers_BLOCK", ds[0].Name)
	assert.Equal(t, uint64(0x1000/0x1000), ds[0].Value)
	assert.Equal(t, 4, ds[0].BitWidth)

	// Register addresses strictly ascending regardless of document order
	assert.Equal(t, "MODE_ADR", ds[1].Name)
	assert.Equal(t, uint64(0x1004), ds[1].Value)
	assert.Equal(t, "STATUS_ADR", ds[2].Name)
	assert.Equal(t, uint64(0x1008), ds[2].Value)

	for _, d := range ds[1:] {
		assert.Equal(t, 12, d.BitWidth)
		assert.Equal(t, 80, d.Align)
		assert.Equal(t, vhdl.TypeStdLogic, d.Type)
	}
}

func TestAddressOps_BlocksSortedByBaseAddress(t *testing.T) {
	m := &ipxact.MemoryMap{
		Name: "regs",
		AddressBlocks: []*ipxact.AddressBlock{
			{Name: "High_block", BaseAddress: 0x2000, Range: 0x100},
			{Name: "Low_block", BaseAddress: 0x1000, Range: 0x100},
		},
	}

	g, err := New(m, nil, Config{BusWidth: 32, BlockSelectBits: 4})
	require.NoError(t, err)

	ds := decls(g.AddressOps())
	require.Len(t, ds, 2)
	assert.Equal(t, "Low_block_BLOCK", ds[0].Name)
	assert.Equal(t, "High_block_BLOCK", ds[1].Name)
}

func TestPackageOps_FieldsBeforeAddresses(t *testing.T) {
	addrMap, fieldMap := testMaps()
	g, err := New(addrMap, fieldMap, Config{BusWidth: 32, BlockSelectBits: 4})
	require.NoError(t, err)

	names := declNames(g.PackageOps("can_registers_pkg"))
	require.NotEmpty(t, names)

	// Bit layout constants come first, address constants at the end
	assert.Equal(t, "LOM_IND", names[0])
	assert.Equal(t, "STATUS_ADR", names[len(names)-1])

	var addrSeen bool
	for _, name := range names {
		if name == "Control_registers_BLOCK" {
			addrSeen = true
		}
		if !addrSeen {
			assert.NotContains(t, name, "_ADR")
		}
	}
}

func TestPackageOps_FramingOnlyWithoutMaps(t *testing.T) {
	g, err := New(nil, nil, Config{BusWidth: 32, BlockSelectBits: 4})
	require.NoError(t, err)

	ops := g.PackageOps("empty_pkg")
	assert.Empty(t, decls(ops))

	w := vhdl.NewWriter()
	require.NoError(t, Render(ops, w))

	out := w.String()
	assert.Contains(t, out, "This file is autogenerated, DO NOT EDIT!")
	assert.Contains(t, out, "use ieee.std_logic_1164.all;")
	assert.Contains(t, out, "package empty_pkg is")
	assert.Contains(t, out, "end package empty_pkg;")
	assert.NotContains(t, out, "constant")
}

func TestPackageOps_RenderedOutput(t *testing.T) {
	addrMap, fieldMap := testMaps()
	g, err := New(addrMap, fieldMap, Config{BusWidth: 32, BlockSelectBits: 4})
	require.NoError(t, err)

	w := vhdl.NewWriter()
	require.NoError(t, Render(g.PackageOps("can_registers_pkg"), w))
	out := w.String()

	assert.Contains(t, out, "Addresses map for: CAN_Registers")
	assert.Contains(t, out, "Field map for: CAN_Registers")
	assert.Contains(t, out, "-- MODE register")
	assert.Contains(t, out, "constant LOM_IND : natural")
	assert.Contains(t, out, "constant DATA_L : natural")
	assert.Contains(t, out, ":= 3;")
	assert.Contains(t, out, "constant LOM_RSTVAL : std_logic")
	assert.Contains(t, out, "LOM_DISABLED")
	assert.Contains(t, out, "Address block: Control_registers")
	assert.Contains(t, out, `constant MODE_ADR : std_logic_vector(11 downto 0)`)
	assert.Contains(t, out, `x"004"`)
}

func TestPackageOps_Idempotent(t *testing.T) {
	addrMap, fieldMap := testMaps()
	g, err := New(addrMap, fieldMap, Config{BusWidth: 32, BlockSelectBits: 4})
	require.NoError(t, err)

	first := vhdl.NewWriter()
	require.NoError(t, Render(g.PackageOps("pkg"), first))
	second := vhdl.NewWriter()
	require.NoError(t, Render(g.PackageOps("pkg"), second))

	assert.Equal(t, first.String(), second.String())
}

func TestRender_ErrorPropagates(t *testing.T) {
	// Renderer errors surface unchanged and stop the run
	ops := []Op{
		declOp(vhdl.Declaration{Name: "OK", Value: 1, Type: vhdl.TypeNatural, BitWidth: 1, Align: 50}),
		declOp(vhdl.Declaration{Name: "", Value: 1, Type: vhdl.TypeNatural, BitWidth: 1, Align: 50}),
		declOp(vhdl.Declaration{Name: "NEVER", Value: 1, Type: vhdl.TypeNatural, BitWidth: 1, Align: 50}),
	}

	w := vhdl.NewWriter()
	err := Render(ops, w)
	assert.ErrorIs(t, err, vhdl.ErrInvalidDeclaration)
	assert.NotContains(t, w.String(), "NEVER")
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, nil, Config{BusWidth: 0, BlockSelectBits: 4})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(nil, nil, Config{BusWidth: 32, BlockSelectBits: 0})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	zeroRange := &ipxact.MemoryMap{
		Name:          "m",
		AddressBlocks: []*ipxact.AddressBlock{{Name: "b", BaseAddress: 0x1000}},
	}
	_, err = New(zeroRange, nil, Config{BusWidth: 32, BlockSelectBits: 4})
	assert.ErrorIs(t, err, ErrInvalidBlock)
}
