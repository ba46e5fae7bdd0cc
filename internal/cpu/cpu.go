/*
 * CPU: the LC-3 fetch-decode-execute engine.
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

import (
	"errors"
	"fmt"

	"github.com/go-lc3/lc3vm/internal/machine"
)

// ErrIllegalOpcode is returned when the fetched instruction decodes to
// RTI or RES, the two opcodes this user-mode core never implements.
// Callers distinguish it with errors.Is; the run loop logs the message and
// maps it to a non-zero exit code.
var ErrIllegalOpcode = errors.New("cpu: illegal opcode")

// Trapper is the collaborator TRAP dispatches into. internal/trap
// implements it; CPU depends only on this interface to keep the import
// graph one-directional (trap depends on machine and cpu's decode helpers
// stay private, cpu never imports trap).
type Trapper interface {
	Dispatch(m *machine.Machine, vector uint8) (halted bool, err error)
}

// CPU holds the opcode dispatch table. It carries no per-instance guest
// state of its own (that lives in *machine.Machine); the table is built
// once and reused across every Step call.
type CPU struct {
	table [16]func(*CPU, *machine.Machine, decoded) (StepOutcome, error)
	trap  Trapper
}

// New returns a CPU with its dispatch table wired and vectored to trap for
// TRAP instructions.
func New(trap Trapper) *CPU {
	c := &CPU{trap: trap}
	c.createTable()
	return c
}

// createTable builds the 16-entry opcode dispatch table, one method
// reference per opcode, following the dense switch-by-top-nibble shape the
// architecture calls for. opRES and opRTI are both illegal in this user-mode
// core and share a handler.
func (c *CPU) createTable() {
	c.table = [16]func(*CPU, *machine.Machine, decoded) (StepOutcome, error){
		opBR:   (*CPU).opBR,
		opADD:  (*CPU).opADD,
		opLD:   (*CPU).opLD,
		opST:   (*CPU).opST,
		opJSR:  (*CPU).opJSR,
		opAND:  (*CPU).opAND,
		opLDR:  (*CPU).opLDR,
		opSTR:  (*CPU).opSTR,
		opRTI:  (*CPU).opIllegal,
		opNOT:  (*CPU).opNOT,
		opLDI:  (*CPU).opLDI,
		opSTI:  (*CPU).opSTI,
		opJMP:  (*CPU).opJMP,
		opRES:  (*CPU).opIllegal,
		opLEA:  (*CPU).opLEA,
		opTRAP: (*CPU).opTRAP,
	}
}

// Step fetches, decodes, and executes exactly one instruction.
func (c *CPU) Step(m *machine.Machine) (StepOutcome, error) {
	instr := m.Fetch()
	d := decode(instr)
	handler := c.table[d.opcode]
	return handler(c, m, d)
}

func (c *CPU) opIllegal(_ *machine.Machine, d decoded) (StepOutcome, error) {
	return Abort, fmt.Errorf("%w: %#04x at opcode %#x", ErrIllegalOpcode, d.raw, d.opcode)
}

// opBR: conditional branch. PC += SEXT(offset9) iff nzp & COND != 0.
func (c *CPU) opBR(m *machine.Machine, d decoded) (StepOutcome, error) {
	if d.nzp&m.Cond != 0 {
		m.PC = m.PC + machine.Word(d.offset9)
	}
	return Continue, nil
}

// opADD: DR = SR1 + (imm5 or SR2), flags updated from DR.
func (c *CPU) opADD(m *machine.Machine, d decoded) (StepOutcome, error) {
	var rhs machine.Word
	if d.imm {
		rhs = machine.Word(d.imm5)
	} else {
		rhs = m.Reg[d.sr2]
	}
	m.Reg[d.dr] = m.Reg[d.sr1] + rhs
	updateFlags(m, d.dr)
	return Continue, nil
}

// opAND: DR = SR1 & (imm5 or SR2), flags updated from DR.
func (c *CPU) opAND(m *machine.Machine, d decoded) (StepOutcome, error) {
	var rhs machine.Word
	if d.imm {
		rhs = machine.Word(d.imm5)
	} else {
		rhs = m.Reg[d.sr2]
	}
	m.Reg[d.dr] = m.Reg[d.sr1] & rhs
	updateFlags(m, d.dr)
	return Continue, nil
}

// opNOT: DR = ^SR1, flags updated from DR.
func (c *CPU) opNOT(m *machine.Machine, d decoded) (StepOutcome, error) {
	m.Reg[d.dr] = ^m.Reg[d.sr1]
	updateFlags(m, d.dr)
	return Continue, nil
}

// opLD: DR = mem[PC + SEXT(offset9)], flags updated.
func (c *CPU) opLD(m *machine.Machine, d decoded) (StepOutcome, error) {
	addr := m.PC + machine.Word(d.offset9)
	m.Reg[d.dr] = m.Read(addr)
	updateFlags(m, d.dr)
	return Continue, nil
}

// opLDI: DR = mem[mem[PC + SEXT(offset9)]], flags updated.
func (c *CPU) opLDI(m *machine.Machine, d decoded) (StepOutcome, error) {
	ptr := m.PC + machine.Word(d.offset9)
	addr := m.Read(ptr)
	m.Reg[d.dr] = m.Read(addr)
	updateFlags(m, d.dr)
	return Continue, nil
}

// opLDR: DR = mem[baseR + SEXT(offset6)], flags updated.
func (c *CPU) opLDR(m *machine.Machine, d decoded) (StepOutcome, error) {
	addr := m.Reg[d.baseR] + machine.Word(d.offset6)
	m.Reg[d.dr] = m.Read(addr)
	updateFlags(m, d.dr)
	return Continue, nil
}

// opLEA: DR = PC + SEXT(offset9), flags updated (rev 1 behavior).
func (c *CPU) opLEA(m *machine.Machine, d decoded) (StepOutcome, error) {
	m.Reg[d.dr] = m.PC + machine.Word(d.offset9)
	updateFlags(m, d.dr)
	return Continue, nil
}

// opST: mem[PC + SEXT(offset9)] = SR (the "DR" field of an ST instruction
// actually names the source register).
func (c *CPU) opST(m *machine.Machine, d decoded) (StepOutcome, error) {
	addr := m.PC + machine.Word(d.offset9)
	m.Write(addr, m.Reg[d.dr])
	return Continue, nil
}

// opSTI: mem[mem[PC + SEXT(offset9)]] = SR.
func (c *CPU) opSTI(m *machine.Machine, d decoded) (StepOutcome, error) {
	ptr := m.PC + machine.Word(d.offset9)
	addr := m.Read(ptr)
	m.Write(addr, m.Reg[d.dr])
	return Continue, nil
}

// opSTR: mem[baseR + SEXT(offset6)] = SR.
func (c *CPU) opSTR(m *machine.Machine, d decoded) (StepOutcome, error) {
	addr := m.Reg[d.baseR] + machine.Word(d.offset6)
	m.Write(addr, m.Reg[d.dr])
	return Continue, nil
}

// opJMP: PC = baseR. RET is JMP R7, no special-casing needed.
func (c *CPU) opJMP(m *machine.Machine, d decoded) (StepOutcome, error) {
	m.PC = m.Reg[d.baseR]
	return Continue, nil
}

// opJSR: R7 = PC (return address already advanced by Fetch), then
// PC = PC + SEXT(offset11) for JSR or PC = baseR for JSRR.
func (c *CPU) opJSR(m *machine.Machine, d decoded) (StepOutcome, error) {
	m.Reg[7] = m.PC
	if d.jsrFlag {
		m.PC = m.PC + machine.Word(d.offset11)
	} else {
		m.PC = m.Reg[d.baseR]
	}
	return Continue, nil
}

// opTRAP: R7 = PC, then dispatch to the trap service keyed by the low 8
// bits of the instruction. A HALT trap or any I/O error on the trap path
// stops the run loop; an unrecognized vector aborts.
func (c *CPU) opTRAP(m *machine.Machine, d decoded) (StepOutcome, error) {
	m.Reg[7] = m.PC
	halted, err := c.trap.Dispatch(m, d.trapVec)
	if err != nil {
		return Abort, err
	}
	if halted {
		return Halt, nil
	}
	return Continue, nil
}
