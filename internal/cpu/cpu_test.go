/*
 * CPU test cases.
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
	"testing"

	"github.com/go-lc3/lc3vm/internal/machine"
)

type fakeConsole struct{}

func (fakeConsole) Poll() bool              { return false }
func (fakeConsole) ReadByte() (byte, error) { return 0, errors.New("no input") }
func (fakeConsole) WriteByte(b byte) error  { return nil }
func (fakeConsole) Flush() error            { return nil }

// fakeTrap is a minimal Trapper double; cpu_test only needs to confirm
// TRAP dispatches to it and translates its result into a StepOutcome.
type fakeTrap struct {
	vector uint8
	halted bool
	err    error
	calls  int
}

func (f *fakeTrap) Dispatch(m *machine.Machine, vector uint8) (bool, error) {
	f.calls++
	f.vector = vector
	return f.halted, f.err
}

func newTestMachine() *machine.Machine {
	return machine.New(fakeConsole{})
}

func TestADDRegisterMode(t *testing.T) {
	m := newTestMachine()
	c := New(&fakeTrap{})
	m.Reg[1] = 5
	m.Reg[2] = 3
	// ADD R0, R1, R2
	m.Write(m.PC, 0x1042)
	if _, err := c.Step(m); err != nil {
		t.Fatalf("Step error: %v", err)
	}
	if m.Reg[0] != 8 {
		t.Errorf("R0 = %d, want 8", m.Reg[0])
	}
	if m.Cond != machine.FlagPos {
		t.Errorf("Cond = %#x, want FlagPos", m.Cond)
	}
}

func TestADDImmediateModeNegativeResult(t *testing.T) {
	m := newTestMachine()
	c := New(&fakeTrap{})
	m.Reg[1] = 0
	// ADD R0, R1, #-1 (imm5 = 0x1F)
	m.Write(m.PC, 0x107F)
	if _, err := c.Step(m); err != nil {
		t.Fatalf("Step error: %v", err)
	}
	if m.Reg[0] != 0xFFFF {
		t.Errorf("R0 = %#x, want 0xFFFF", m.Reg[0])
	}
	if m.Cond != machine.FlagNeg {
		t.Errorf("Cond = %#x, want FlagNeg", m.Cond)
	}
}

func TestANDImmediateZeroesAndSetsZro(t *testing.T) {
	m := newTestMachine()
	c := New(&fakeTrap{})
	m.Reg[1] = 0x1234
	// AND R0, R1, #0
	m.Write(m.PC, 0x5060)
	if _, err := c.Step(m); err != nil {
		t.Fatalf("Step error: %v", err)
	}
	if m.Reg[0] != 0 {
		t.Errorf("R0 = %#x, want 0", m.Reg[0])
	}
	if m.Cond != machine.FlagZro {
		t.Errorf("Cond = %#x, want FlagZro", m.Cond)
	}
}

func TestNOT(t *testing.T) {
	m := newTestMachine()
	c := New(&fakeTrap{})
	m.Reg[1] = 0x00FF
	// NOT R0, R1
	m.Write(m.PC, 0x907F)
	if _, err := c.Step(m); err != nil {
		t.Fatalf("Step error: %v", err)
	}
	if m.Reg[0] != 0xFF00 {
		t.Errorf("R0 = %#x, want 0xFF00", m.Reg[0])
	}
}

func TestBRTakenWhenConditionMatches(t *testing.T) {
	m := newTestMachine()
	c := New(&fakeTrap{})
	m.Cond = machine.FlagZro
	start := m.PC
	// BRz #5
	m.Write(m.PC, 0x0405)
	if _, err := c.Step(m); err != nil {
		t.Fatalf("Step error: %v", err)
	}
	if want := start + 1 + 5; m.PC != want {
		t.Errorf("PC = %#x, want %#x", m.PC, want)
	}
}

func TestBRNotTakenWhenConditionDoesNotMatch(t *testing.T) {
	m := newTestMachine()
	c := New(&fakeTrap{})
	m.Cond = machine.FlagPos
	start := m.PC
	// BRz #5
	m.Write(m.PC, 0x0405)
	if _, err := c.Step(m); err != nil {
		t.Fatalf("Step error: %v", err)
	}
	if want := start + 1; m.PC != want {
		t.Errorf("PC = %#x, want %#x (fallthrough)", m.PC, want)
	}
}

func TestLDAndST(t *testing.T) {
	m := newTestMachine()
	c := New(&fakeTrap{})
	m.Write(m.PC+1+10, 0xBEEF)
	// LD R0, #10
	m.Write(m.PC, 0x200A)
	if _, err := c.Step(m); err != nil {
		t.Fatalf("Step LD error: %v", err)
	}
	if m.Reg[0] != 0xBEEF {
		t.Errorf("R0 = %#x, want 0xBEEF", m.Reg[0])
	}

	// ST R0, #10 (relative to the now-current PC)
	target := m.PC + 1 + 10
	m.Write(m.PC, 0x300A)
	if _, err := c.Step(m); err != nil {
		t.Fatalf("Step ST error: %v", err)
	}
	if got := m.Read(target); got != 0xBEEF {
		t.Errorf("mem[target] = %#x, want 0xBEEF", got)
	}
}

func TestLDIIndirect(t *testing.T) {
	m := newTestMachine()
	c := New(&fakeTrap{})
	ptrAddr := m.PC + 1 + 3
	finalAddr := machine.Word(0x5000)
	m.Write(ptrAddr, finalAddr)
	m.Write(finalAddr, 0x1234)
	// LDI R0, #3
	m.Write(m.PC, 0xA003)
	if _, err := c.Step(m); err != nil {
		t.Fatalf("Step error: %v", err)
	}
	if m.Reg[0] != 0x1234 {
		t.Errorf("R0 = %#x, want 0x1234", m.Reg[0])
	}
}

func TestLDRAndSTR(t *testing.T) {
	m := newTestMachine()
	c := New(&fakeTrap{})
	m.Reg[1] = 0x4000
	m.Write(0x4005, 0x7777)
	// LDR R0, R1, #5
	m.Write(m.PC, 0x6045)
	if _, err := c.Step(m); err != nil {
		t.Fatalf("Step LDR error: %v", err)
	}
	if m.Reg[0] != 0x7777 {
		t.Errorf("R0 = %#x, want 0x7777", m.Reg[0])
	}

	m.Reg[2] = 0x9999
	// STR R2, R1, #6
	m.Write(m.PC, 0x7446)
	if _, err := c.Step(m); err != nil {
		t.Fatalf("Step STR error: %v", err)
	}
	if got := m.Read(0x4006); got != 0x9999 {
		t.Errorf("mem[0x4006] = %#x, want 0x9999", got)
	}
}

func TestLEADoesNotDereference(t *testing.T) {
	m := newTestMachine()
	c := New(&fakeTrap{})
	start := m.PC
	// LEA R0, #4
	m.Write(m.PC, 0xE004)
	if _, err := c.Step(m); err != nil {
		t.Fatalf("Step error: %v", err)
	}
	if want := start + 1 + 4; m.Reg[0] != want {
		t.Errorf("R0 = %#x, want %#x", m.Reg[0], want)
	}
}

func TestJMPAndRET(t *testing.T) {
	m := newTestMachine()
	c := New(&fakeTrap{})
	m.Reg[3] = 0x5500
	// JMP R3
	m.Write(m.PC, 0xC0C0)
	if _, err := c.Step(m); err != nil {
		t.Fatalf("Step error: %v", err)
	}
	if m.PC != 0x5500 {
		t.Errorf("PC = %#x, want 0x5500", m.PC)
	}

	// RET == JMP R7
	m.Reg[7] = 0x3001
	m.Write(m.PC, 0xC1C0)
	if _, err := c.Step(m); err != nil {
		t.Fatalf("Step error: %v", err)
	}
	if m.PC != 0x3001 {
		t.Errorf("PC = %#x, want 0x3001", m.PC)
	}
}

func TestJSRSavesReturnAddressAndJumps(t *testing.T) {
	m := newTestMachine()
	c := New(&fakeTrap{})
	start := m.PC
	// JSR #100 (bit 11 set, offset11 = 100)
	m.Write(m.PC, 0x4864)
	if _, err := c.Step(m); err != nil {
		t.Fatalf("Step error: %v", err)
	}
	if m.Reg[7] != start+1 {
		t.Errorf("R7 = %#x, want %#x", m.Reg[7], start+1)
	}
	if want := start + 1 + 100; m.PC != want {
		t.Errorf("PC = %#x, want %#x", m.PC, want)
	}
}

func TestJSRRJumpsToBaseRegister(t *testing.T) {
	m := newTestMachine()
	c := New(&fakeTrap{})
	m.Reg[2] = 0x6000
	start := m.PC
	// JSRR R2 (bit 11 clear)
	m.Write(m.PC, 0x4080)
	if _, err := c.Step(m); err != nil {
		t.Fatalf("Step error: %v", err)
	}
	if m.Reg[7] != start+1 {
		t.Errorf("R7 = %#x, want %#x", m.Reg[7], start+1)
	}
	if m.PC != 0x6000 {
		t.Errorf("PC = %#x, want 0x6000", m.PC)
	}
}

func TestTRAPDelegatesToTrapper(t *testing.T) {
	m := newTestMachine()
	ft := &fakeTrap{halted: true}
	c := New(ft)
	start := m.PC
	// TRAP x25 (HALT)
	m.Write(m.PC, 0xF025)
	outcome, err := c.Step(m)
	if err != nil {
		t.Fatalf("Step error: %v", err)
	}
	if outcome != Halt {
		t.Errorf("outcome = %v, want Halt", outcome)
	}
	if ft.calls != 1 || ft.vector != 0x25 {
		t.Errorf("trap called with vector %#x (calls=%d), want 0x25 once", ft.vector, ft.calls)
	}
	if m.Reg[7] != start+1 {
		t.Errorf("R7 = %#x, want %#x", m.Reg[7], start+1)
	}
}

func TestTRAPErrorAborts(t *testing.T) {
	m := newTestMachine()
	wantErr := errors.New("boom")
	c := New(&fakeTrap{err: wantErr})
	m.Write(m.PC, 0xF020)
	outcome, err := c.Step(m)
	if outcome != Abort {
		t.Errorf("outcome = %v, want Abort", outcome)
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want wrapping %v", err, wantErr)
	}
}

func TestIllegalOpcodesAbort(t *testing.T) {
	for _, instr := range []machine.Word{0x8000, 0xD000} {
		m := newTestMachine()
		c := New(&fakeTrap{})
		m.Write(m.PC, instr)
		outcome, err := c.Step(m)
		if outcome != Abort {
			t.Errorf("instr %#04x: outcome = %v, want Abort", instr, outcome)
		}
		if !errors.Is(err, ErrIllegalOpcode) {
			t.Errorf("instr %#04x: err = %v, want ErrIllegalOpcode", instr, err)
		}
	}
}

func TestFetchAdvancesPCBeforeExecute(t *testing.T) {
	m := newTestMachine()
	c := New(&fakeTrap{})
	start := m.PC
	// AND R0, R0, R0 (leaves R0 unchanged; only COND is updated)
	m.Write(m.PC, 0x5000)
	if _, err := c.Step(m); err != nil {
		t.Fatalf("Step error: %v", err)
	}
	if m.PC != start+1 {
		t.Errorf("PC = %#x, want %#x", m.PC, start+1)
	}
}
