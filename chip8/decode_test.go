package chip8

import (
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	reference "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		word uint16
		op   Op
		text string
	}{
		{0x00E0, OpCLS, "CLS"},
		{0x00EE, OpRET, "RET"},
		{0x0123, OpSYS, "SYS    #123"},
		{0x1ABC, OpJP, "JP     #ABC"},
		{0x2ABC, OpCALL, "CALL   #ABC"},
		{0x3A12, OpSEByte, "SE     VA, #12"},
		{0x4B34, OpSNEByte, "SNE    VB, #34"},
		{0x5120, OpSEReg, "SE     V1, V2"},
		{0x6A02, OpLDByte, "LD     VA, #02"},
		{0x7C01, OpADDByte, "ADD    VC, #01"},
		{0x8120, OpLDReg, "LD     V1, V2"},
		{0x8121, OpOR, "OR     V1, V2"},
		{0x8122, OpAND, "AND    V1, V2"},
		{0x8123, OpXOR, "XOR    V1, V2"},
		{0x8AB4, OpADDReg, "ADD    VA, VB"},
		{0x8125, OpSUB, "SUB    V1, V2"},
		{0x8126, OpSHR, "SHR    V1, V2"},
		{0x8127, OpSUBN, "SUBN   V1, V2"},
		{0x812E, OpSHL, "SHL    V1, V2"},
		{0x9120, OpSNEReg, "SNE    V1, V2"},
		{0xA234, OpLDI, "LD     I, #234"},
		{0xB234, OpJPV0, "JP     V0, #234"},
		{0xC3FF, OpRND, "RND    V3, #FF"},
		{0xD125, OpDRW, "DRW    V1, V2, 5"},
		{0xE39E, OpSKP, "SKP    V3"},
		{0xE3A1, OpSKNP, "SKNP   V3"},
		{0xF307, OpLDVxDT, "LD     V3, DT"},
		{0xF30A, OpLDVxK, "LD     V3, K"},
		{0xF315, OpLDDTVx, "LD     DT, V3"},
		{0xF318, OpLDSTVx, "LD     ST, V3"},
		{0xF31E, OpADDI, "ADD    I, V3"},
		{0xF329, OpLDF, "LD     F, V3"},
		{0xF333, OpLDB, "LD     B, V3"},
		{0xF355, OpLDIVx, "LD     [I], V3"},
		{0xF365, OpLDVxI, "LD     V3, [I]"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			inst := Decode(tt.word)
			assert.Equal(t, tt.op, inst.Op)
			assert.Equal(t, tt.word, inst.Word)
			assert.Equal(t, tt.text, inst.String())
		})
	}
}

func TestDecodeFields(t *testing.T) {
	inst := Decode(0xD7A3)

	assert.Equal(t, OpDRW, inst.Op)
	assert.Equal(t, uint8(0x7), inst.X)
	assert.Equal(t, uint8(0xA), inst.Y)
	assert.Equal(t, uint8(0x3), inst.N)
	assert.Equal(t, byte(0xA3), inst.NN)
	assert.Equal(t, uint16(0x7A3), inst.NNN)
}

func TestDecodeUnknown(t *testing.T) {
	words := []uint16{
		0x5121, 0x512F,
		0x8128, 0x8129, 0x812A, 0x812B, 0x812C, 0x812D, 0x812F,
		0x9121, 0x912E,
		0xE100, 0xE19F, 0xE1A2,
		0xF100, 0xF108, 0xF130, 0xF175, 0xF185, 0xF1FF,
	}

	for _, word := range words {
		inst := Decode(word)
		assert.Equal(t, OpUnknown, inst.Op, "word %04X", word)
		assert.Equal(t, word, inst.Word)
		assert.True(t, strings.HasPrefix(inst.String(), "??"))
	}
}

// Every word in every class decodes to something, and only the unknown
// patterns above decode to OpUnknown.
func TestDecodeTotal(t *testing.T) {
	unknown := 0

	for w := 0; w <= 0xFFFF; w++ {
		inst := Decode(uint16(w))
		assert.True(t, int(inst.Op) < len(mnemonics))

		if inst.Op == OpUnknown {
			unknown++
		}
	}

	// 5XYN and 9XYN with N != 0: 2 * 15 * 256
	// 8XYN with N in 8-D or F: 7 * 256
	// EXNN other than 9E and A1: 16 * 254
	// FXNN other than the nine defined: 16 * 247
	assert.Equal(t, 2*15*256+7*256+16*254+16*247, unknown)
}

// The decoder agrees with an independent CHIP-8 opcode table on the
// mnemonic of every documented instruction.
func TestDecodeMatchesReferenceTable(t *testing.T) {
	words := []uint16{
		0x1ABC, 0x2ABC, 0x3A12, 0x4B34, 0x5120, 0x6A02, 0x7C01,
		0x8120, 0x8121, 0x8122, 0x8123, 0x8AB4, 0x8125, 0x8126, 0x8127, 0x812E,
		0x9120, 0xA234, 0xB234, 0xC3FF, 0xD125, 0xE39E, 0xE3A1,
		0xF307, 0xF30A, 0xF315, 0xF318, 0xF31E, 0xF329, 0xF333, 0xF355, 0xF365,
	}

	for _, word := range words {
		var name string
		for _, op := range reference.Opcodes[int(word>>12)] {
			if op.Info.Mask&word == op.Info.Value && op.Instruction != nil {
				name = op.Instruction.Name
				break
			}
		}

		assert.NotEmpty(t, name, "no reference opcode for %04X", word)
		assert.True(t, strings.EqualFold(name, Decode(word).Op.Mnemonic()))
	}
}
