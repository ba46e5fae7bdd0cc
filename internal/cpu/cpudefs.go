/*
 * CPU definitions for the LC-3 simulator: opcodes, decode helpers, and the
 * per-step outcome returned by the dispatch table.
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
package cpu

import "github.com/go-lc3/lc3vm/internal/machine"

// Opcodes, the top 4 bits of every instruction word.
const (
	opBR   uint8 = 0x0
	opADD  uint8 = 0x1
	opLD   uint8 = 0x2
	opST   uint8 = 0x3
	opJSR  uint8 = 0x4
	opAND  uint8 = 0x5
	opLDR  uint8 = 0x6
	opSTR  uint8 = 0x7
	opRTI  uint8 = 0x8
	opNOT  uint8 = 0x9
	opLDI  uint8 = 0xA
	opSTI  uint8 = 0xB
	opJMP  uint8 = 0xC
	opRES  uint8 = 0xD
	opLEA  uint8 = 0xE
	opTRAP uint8 = 0xF
)

// StepOutcome is the result of dispatching one instruction.
type StepOutcome int

const (
	// Continue means the fetch loop should execute the next instruction.
	Continue StepOutcome = iota
	// Halt means the guest executed TRAP HALT; the run loop should stop
	// cleanly and exit 0.
	Halt
	// Abort means an unrecoverable condition was hit (illegal opcode,
	// unknown trap vector, host I/O error); the accompanying error
	// identifies which.
	Abort
)

// decoded holds the fields any one instruction word may need, extracted
// once in Step before dispatch so handlers never repeat bit-masking.
type decoded struct {
	opcode uint8
	raw    machine.Word

	dr       uint8        // destination register (bits 11:9)
	sr1      uint8        // source register 1 (bits 8:6)
	sr2      uint8        // source register 2 (bits 2:0)
	baseR    uint8        // base register for LDR/STR/JSR/JMP (bits 8:6)
	imm5     int16        // sign-extended 5-bit immediate
	imm      bool         // bit 5: immediate mode for ADD/AND
	offset6  int16        // sign-extended 6-bit offset (LDR/STR)
	offset9  int16        // sign-extended 9-bit PC-relative offset (BR/LD/ST/LDI/STI/LEA)
	offset11 int16        // sign-extended 11-bit PC-relative offset (JSR)
	nzp      machine.Word // BR condition mask (bits 11:9)
	trapVec  uint8        // TRAP vector (bits 7:0)
	jsrFlag  bool         // bit 11: 1 = JSR (PC-relative), 0 = JSRR (register)
}

// decode extracts every field a handler might need from the raw word. Only
// the opcode determines which fields are meaningful; unused fields are
// simply ignored by the handler that doesn't need them.
func decode(instr machine.Word) decoded {
	d := decoded{
		opcode:   uint8(instr >> 12),
		raw:      instr,
		dr:       uint8((instr >> 9) & 0x7),
		sr1:      uint8((instr >> 6) & 0x7),
		sr2:      uint8(instr & 0x7),
		baseR:    uint8((instr >> 6) & 0x7),
		imm:      (instr>>5)&0x1 != 0,
		imm5:     SignExtend(instr&0x1F, 5),
		offset6:  SignExtend(instr&0x3F, 6),
		offset9:  SignExtend(instr&0x1FF, 9),
		offset11: SignExtend(instr&0x7FF, 11),
		nzp:      (instr >> 9) & 0x7,
		trapVec:  uint8(instr & 0xFF),
		jsrFlag:  (instr>>11)&0x1 != 0,
	}
	return d
}

// SignExtend sign-extends the low n bits of v to a full int16. Exported so
// internal/disasm can decode offset fields identically without duplicating
// the bit-masking logic.
func SignExtend(v machine.Word, n uint) int16 {
	if (v>>(n-1))&0x1 != 0 {
		v |= ^machine.Word(0) << n
	}
	return int16(v)
}

// updateFlags sets COND from the sign of the value just written to reg,
// per the architecture's v>>15 sign test (never v<<0xF).
func updateFlags(m *machine.Machine, reg uint8) {
	v := m.Reg[reg]
	switch {
	case v == 0:
		m.Cond = machine.FlagZro
	case v>>15 == 1:
		m.Cond = machine.FlagNeg
	default:
		m.Cond = machine.FlagPos
	}
}

