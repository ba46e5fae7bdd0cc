/*
 * Package disasm renders one LC-3 instruction word as assembly text. It is
 * a diagnostic formatter, not a symbolic disassembler: it never resolves
 * PC-relative offsets to labels, since no symbol table exists at this
 * layer.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */
package disasm

import (
	"fmt"

	"github.com/go-lc3/lc3vm/internal/cpu"
	"github.com/go-lc3/lc3vm/internal/machine"
)

const (
	tyNone  = iota // no operands beyond the opcode's fixed fields (RTI)
	tyRRR          // ADD/AND register mode: DR, SR1, SR2
	tyRRImm        // ADD/AND immediate mode: DR, SR1, #imm5
	tyRR           // NOT: DR, SR
	tyRPC          // LD/ST/LDI/STI/LEA: R, PCoffset9
	tyRRO          // LDR/STR: R, BaseR, offset6
	tyR            // JMP/JSRR: BaseR
	tyOff11        // JSR: PCoffset11
	tyNZPOff       // BR: nzp, PCoffset9
	tyTrap         // TRAP: vector
)

type opcodeInfo struct {
	name string
	kind int
}

var opMap = map[uint8]opcodeInfo{
	0x0: {"BR", tyNZPOff},
	0x1: {"ADD", tyRRR}, // kind refined per instruction's immediate bit in Format
	0x2: {"LD", tyRPC},
	0x3: {"ST", tyRPC},
	0x4: {"JSR", tyOff11}, // refined per bit 11 in Format
	0x5: {"AND", tyRRR},
	0x6: {"LDR", tyRRO},
	0x7: {"STR", tyRRO},
	0x8: {"RTI", tyNone},
	0x9: {"NOT", tyRR},
	0xA: {"LDI", tyRPC},
	0xB: {"STI", tyRPC},
	0xC: {"JMP", tyR},
	0xD: {"RES", tyNone},
	0xE: {"LEA", tyRPC},
	0xF: {"TRAP", tyTrap},
}

// Format decodes instr into one line of assembly text, e.g. "ADD R0,R1,R2",
// "ADD R0,R1,#-1", "BRzp #-4", "TRAP x25".
func Format(instr machine.Word) string {
	opcode := uint8(instr >> 12)
	info, ok := opMap[opcode]
	if !ok {
		return fmt.Sprintf(".WORD x%04X", uint16(instr))
	}

	dr := (instr >> 9) & 0x7
	sr1 := (instr >> 6) & 0x7
	sr2 := instr & 0x7
	imm5 := cpu.SignExtend(instr&0x1F, 5)
	off6 := cpu.SignExtend(instr&0x3F, 6)
	off9 := cpu.SignExtend(instr&0x1FF, 9)
	off11 := cpu.SignExtend(instr&0x7FF, 11)

	switch opcode {
	case 0x1, 0x5: // ADD, AND: immediate bit decides the operand form
		if (instr>>5)&0x1 != 0 {
			return fmt.Sprintf("%s R%d,R%d,#%d", info.name, dr, sr1, imm5)
		}
		return fmt.Sprintf("%s R%d,R%d,R%d", info.name, dr, sr1, sr2)
	case 0x4: // JSR / JSRR: bit 11 decides the operand form
		if (instr>>11)&0x1 != 0 {
			return fmt.Sprintf("JSR #%d", off11)
		}
		return fmt.Sprintf("JSRR R%d", sr1)
	case 0x0: // BR: nzp mnemonic suffix
		return fmt.Sprintf("BR%s #%d", nzpSuffix(dr), off9)
	case 0x9: // NOT
		return fmt.Sprintf("NOT R%d,R%d", dr, sr1)
	case 0x2, 0x3, 0xA, 0xB, 0xE: // LD/ST/LDI/STI/LEA
		return fmt.Sprintf("%s R%d,#%d", info.name, dr, off9)
	case 0x6, 0x7: // LDR/STR
		return fmt.Sprintf("%s R%d,R%d,#%d", info.name, dr, sr1, off6)
	case 0xC: // JMP (RET is JMP R7, printed plainly)
		return fmt.Sprintf("JMP R%d", sr1)
	case 0xF: // TRAP
		return fmt.Sprintf("TRAP x%02X", uint8(instr&0xFF))
	default: // RTI, RES: illegal opcodes with no operands
		return info.name
	}
}

// nzpSuffix renders BR's 3-bit condition field as the familiar n/z/p
// letter combination, e.g. 0b010 -> "z", 0b111 -> "nzp".
func nzpSuffix(nzp machine.Word) string {
	s := ""
	if nzp&0x4 != 0 {
		s += "n"
	}
	if nzp&0x2 != 0 {
		s += "z"
	}
	if nzp&0x1 != 0 {
		s += "p"
	}
	return s
}
