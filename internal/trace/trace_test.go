/*
 * Trace test cases.
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
package trace

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-lc3/lc3vm/internal/machine"
)

func TestParseOptions(t *testing.T) {
	mask, err := ParseOptions("inst,Reg")
	if err != nil {
		t.Fatalf("ParseOptions error: %v", err)
	}
	if mask != Inst|Reg {
		t.Errorf("mask = %#x, want %#x", mask, Inst|Reg)
	}
}

func TestParseOptionsRejectsUnknown(t *testing.T) {
	if _, err := ParseOptions("BOGUS"); err == nil {
		t.Fatalf("ParseOptions(\"BOGUS\") error = nil, want error")
	}
}

func TestParseOptionsEmptyIsZero(t *testing.T) {
	mask, err := ParseOptions("")
	if err != nil || mask != 0 {
		t.Errorf("ParseOptions(\"\") = (%d, %v), want (0, nil)", mask, err)
	}
}

func TestInstructionSilentWhenMaskDisabled(t *testing.T) {
	var buf bytes.Buffer
	tr := New(slog.New(slog.NewTextHandler(&buf, nil)), 0)
	tr.Instruction(0x3000, 0x1021)
	if buf.Len() != 0 {
		t.Errorf("output = %q, want empty with tracing disabled", buf.String())
	}
}

func TestInstructionLogsWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	tr := New(slog.New(slog.NewTextHandler(&buf, nil)), Inst)
	tr.Instruction(0x3000, 0x1021)
	if !strings.Contains(buf.String(), "ADD") {
		t.Errorf("output = %q, want it to mention the disassembled instruction", buf.String())
	}
}

func TestRegistersLogsWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	tr := New(slog.New(slog.NewTextHandler(&buf, nil)), Reg)
	m := machine.New(nil)
	m.Reg[0] = 42
	tr.Registers(m)
	if !strings.Contains(buf.String(), "r0=42") {
		t.Errorf("output = %q, want it to mention r0=42", buf.String())
	}
}
