/*
 * Package trace gates per-instruction logging behind a debug-option
 * bitmask parsed from a comma-separated CLI flag, e.g. "INST,REG".
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
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-lc3/lc3vm/internal/disasm"
	"github.com/go-lc3/lc3vm/internal/machine"
)

const (
	// Inst traces every fetched instruction, disassembled.
	Inst = 1 << iota
	// Reg traces register file contents after every instruction.
	Reg
)

var optionNames = map[string]int{
	"INST": Inst,
	"REG":  Reg,
}

// ParseOptions turns a comma-separated option list (as taken from a CLI
// flag, e.g. "INST,REG") into a bitmask. Unknown names are reported back
// as an error rather than silently ignored.
func ParseOptions(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	mask := 0
	for _, name := range strings.Split(s, ",") {
		name = strings.ToUpper(strings.TrimSpace(name))
		bit, ok := optionNames[name]
		if !ok {
			return 0, fmt.Errorf("trace: unknown debug option %q", name)
		}
		mask |= bit
	}
	return mask, nil
}

// Tracer logs instruction execution when its mask enables the relevant
// option. A zero-value Tracer (mask 0) is always silent, so callers that
// never enable tracing pay only the cost of a few no-op mask checks.
type Tracer struct {
	mask int
	log  *slog.Logger
}

// New returns a Tracer that logs through log, gated by mask.
func New(log *slog.Logger, mask int) *Tracer {
	return &Tracer{mask: mask, log: log}
}

// Instruction logs the instruction about to execute at the given PC, if
// Inst is enabled in the mask.
func (t *Tracer) Instruction(pc machine.Word, instr machine.Word) {
	if t == nil || t.mask&Inst == 0 {
		return
	}
	t.log.Info("exec", "pc", fmt.Sprintf("x%04X", uint16(pc)), "instr", disasm.Format(instr))
}

// Registers logs the register file and condition flags after an
// instruction, if Reg is enabled in the mask.
func (t *Tracer) Registers(m *machine.Machine) {
	if t == nil || t.mask&Reg == 0 {
		return
	}
	t.log.Info("regs",
		"r0", m.Reg[0], "r1", m.Reg[1], "r2", m.Reg[2], "r3", m.Reg[3],
		"r4", m.Reg[4], "r5", m.Reg[5], "r6", m.Reg[6], "r7", m.Reg[7],
		"cond", m.Cond,
	)
}
