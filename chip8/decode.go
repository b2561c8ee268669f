/* Copyright (c) 2017 Jeffrey Massung
 *
 * This software is provided 'as-is', without any express or implied
 * warranty.  In no event will the authors be held liable for any damages
 * arising from the use of this software.
 *
 * Permission is granted to anyone to use this software for any purpose,
 * including commercial applications, and to alter it and redistribute it
 * freely, subject to the following restrictions:
 *
 * 1. The origin of this software must not be misrepresented; you must not
 *    claim that you wrote the original software. If you use this software
 *    in a product, an acknowledgment in the product documentation would be
 *    appreciated but is not required.
 *
 * 2. Altered source versions must be plainly marked as such, and must not be
 *    misrepresented as being the original software.
 *
 * 3. This notice may not be removed or altered from any source distribution.
 */

package chip8

import "fmt"

/// Op identifies the behavior of a decoded instruction.
///
type Op uint8

const (
	OpUnknown Op = iota
	OpCLS        // 00E0
	OpRET        // 00EE
	OpSYS        // 0NNN
	OpJP         // 1NNN
	OpCALL       // 2NNN
	OpSEByte     // 3XNN
	OpSNEByte    // 4XNN
	OpSEReg      // 5XY0
	OpLDByte     // 6XNN
	OpADDByte    // 7XNN
	OpLDReg      // 8XY0
	OpOR         // 8XY1
	OpAND        // 8XY2
	OpXOR        // 8XY3
	OpADDReg     // 8XY4
	OpSUB        // 8XY5
	OpSHR        // 8XY6
	OpSUBN       // 8XY7
	OpSHL        // 8XYE
	OpSNEReg     // 9XY0
	OpLDI        // ANNN
	OpJPV0       // BNNN
	OpRND        // CXNN
	OpDRW        // DXYN
	OpSKP        // EX9E
	OpSKNP       // EXA1
	OpLDVxDT     // FX07
	OpLDVxK      // FX0A
	OpLDDTVx     // FX15
	OpLDSTVx     // FX18
	OpADDI       // FX1E
	OpLDF        // FX29
	OpLDB        // FX33
	OpLDIVx      // FX55
	OpLDVxI      // FX65
)

var mnemonics = [...]string{
	OpUnknown: "??",
	OpCLS:     "CLS",
	OpRET:     "RET",
	OpSYS:     "SYS",
	OpJP:      "JP",
	OpCALL:    "CALL",
	OpSEByte:  "SE",
	OpSNEByte: "SNE",
	OpSEReg:   "SE",
	OpLDByte:  "LD",
	OpADDByte: "ADD",
	OpLDReg:   "LD",
	OpOR:      "OR",
	OpAND:     "AND",
	OpXOR:     "XOR",
	OpADDReg:  "ADD",
	OpSUB:     "SUB",
	OpSHR:     "SHR",
	OpSUBN:    "SUBN",
	OpSHL:     "SHL",
	OpSNEReg:  "SNE",
	OpLDI:     "LD",
	OpJPV0:    "JP",
	OpRND:     "RND",
	OpDRW:     "DRW",
	OpSKP:     "SKP",
	OpSKNP:    "SKNP",
	OpLDVxDT:  "LD",
	OpLDVxK:   "LD",
	OpLDDTVx:  "LD",
	OpLDSTVx:  "LD",
	OpADDI:    "ADD",
	OpLDF:     "LD",
	OpLDB:     "LD",
	OpLDIVx:   "LD",
	OpLDVxI:   "LD",
}

/// Mnemonic returns the assembler name of the op.
///
func (op Op) Mnemonic() string {
	if int(op) < len(mnemonics) {
		return mnemonics[op]
	}

	return mnemonics[OpUnknown]
}

/// Instruction is a decoded 16-bit instruction word. Only the operand
/// fields used by Op are meaningful, but all are extracted.
///
type Instruction struct {
	Op   Op
	Word uint16

	/// X and Y are register operands.
	///
	X, Y uint8

	/// N is the low nibble, NN the low byte, NNN the low 12 bits.
	///
	N   uint8
	NN  byte
	NNN uint16
}

/// Decode a 16-bit instruction word. Bit patterns that aren't part of
/// the CHIP-8 instruction set decode to OpUnknown.
///
func Decode(word uint16) Instruction {
	inst := Instruction{
		Op:   OpUnknown,
		Word: word,
		X:    uint8(word >> 8 & 0xF),
		Y:    uint8(word >> 4 & 0xF),
		N:    uint8(word & 0xF),
		NN:   byte(word & 0xFF),
		NNN:  word & 0xFFF,
	}

	switch word >> 12 {
	case 0x0:
		switch word {
		case 0x00E0:
			inst.Op = OpCLS
		case 0x00EE:
			inst.Op = OpRET
		default:
			inst.Op = OpSYS
		}
	case 0x1:
		inst.Op = OpJP
	case 0x2:
		inst.Op = OpCALL
	case 0x3:
		inst.Op = OpSEByte
	case 0x4:
		inst.Op = OpSNEByte
	case 0x5:
		if inst.N == 0 {
			inst.Op = OpSEReg
		}
	case 0x6:
		inst.Op = OpLDByte
	case 0x7:
		inst.Op = OpADDByte
	case 0x8:
		inst.Op = aluOps[inst.N]
	case 0x9:
		if inst.N == 0 {
			inst.Op = OpSNEReg
		}
	case 0xA:
		inst.Op = OpLDI
	case 0xB:
		inst.Op = OpJPV0
	case 0xC:
		inst.Op = OpRND
	case 0xD:
		inst.Op = OpDRW
	case 0xE:
		switch inst.NN {
		case 0x9E:
			inst.Op = OpSKP
		case 0xA1:
			inst.Op = OpSKNP
		}
	case 0xF:
		inst.Op = miscOps[inst.NN]
	}

	return inst
}

/// aluOps maps the low nibble of an 8XYN instruction to its op.
///
var aluOps = [16]Op{
	0x0: OpLDReg,
	0x1: OpOR,
	0x2: OpAND,
	0x3: OpXOR,
	0x4: OpADDReg,
	0x5: OpSUB,
	0x6: OpSHR,
	0x7: OpSUBN,
	0xE: OpSHL,
}

/// miscOps maps the low byte of an FXNN instruction to its op.
///
var miscOps = map[byte]Op{
	0x07: OpLDVxDT,
	0x0A: OpLDVxK,
	0x15: OpLDDTVx,
	0x18: OpLDSTVx,
	0x1E: OpADDI,
	0x29: OpLDF,
	0x33: OpLDB,
	0x55: OpLDIVx,
	0x65: OpLDVxI,
}

/// String renders the instruction in assembler syntax for log output.
///
func (inst Instruction) String() string {
	m := inst.Op.Mnemonic()

	switch inst.Op {
	case OpCLS, OpRET:
		return m
	case OpSYS, OpJP, OpCALL:
		return fmt.Sprintf("%-6s #%03X", m, inst.NNN)
	case OpSEByte, OpSNEByte, OpLDByte, OpADDByte, OpRND:
		return fmt.Sprintf("%-6s V%X, #%02X", m, inst.X, inst.NN)
	case OpSEReg, OpSNEReg, OpLDReg, OpOR, OpAND, OpXOR, OpADDReg, OpSUB, OpSUBN, OpSHR, OpSHL:
		return fmt.Sprintf("%-6s V%X, V%X", m, inst.X, inst.Y)
	case OpLDI:
		return fmt.Sprintf("%-6s I, #%03X", m, inst.NNN)
	case OpJPV0:
		return fmt.Sprintf("%-6s V0, #%03X", m, inst.NNN)
	case OpDRW:
		return fmt.Sprintf("%-6s V%X, V%X, %d", m, inst.X, inst.Y, inst.N)
	case OpSKP, OpSKNP:
		return fmt.Sprintf("%-6s V%X", m, inst.X)
	case OpLDVxDT:
		return fmt.Sprintf("%-6s V%X, DT", m, inst.X)
	case OpLDVxK:
		return fmt.Sprintf("%-6s V%X, K", m, inst.X)
	case OpLDDTVx:
		return fmt.Sprintf("%-6s DT, V%X", m, inst.X)
	case OpLDSTVx:
		return fmt.Sprintf("%-6s ST, V%X", m, inst.X)
	case OpADDI:
		return fmt.Sprintf("%-6s I, V%X", m, inst.X)
	case OpLDF:
		return fmt.Sprintf("%-6s F, V%X", m, inst.X)
	case OpLDB:
		return fmt.Sprintf("%-6s B, V%X", m, inst.X)
	case OpLDIVx:
		return fmt.Sprintf("%-6s [I], V%X", m, inst.X)
	case OpLDVxI:
		return fmt.Sprintf("%-6s V%X, [I]", m, inst.X)
	}

	return fmt.Sprintf("%-6s #%04X", m, inst.Word)
}
