/*
 * lc3vm - Machine: flat memory and register file for the LC-3 core.
 *
 * Encapsulates the state that the original architecture keeps in
 * process-wide arrays (registers[], memory[]) inside a single value so
 * that opcode handlers take an explicit *Machine instead of touching
 * hidden global state. This makes multiple VM instances possible and
 * keeps tests trivial to construct.
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
package machine

// Word is a 16-bit machine word. All arithmetic on it is modulo 2^16;
// callers are responsible for casting back to Word after every operation
// instead of relying on Go's integer promotion rules.
type Word uint16

const (
	// MemSize is the number of addressable 16-bit words.
	MemSize = 1 << 16

	// PCStart is the initial program counter on a fresh machine.
	PCStart Word = 0x3000

	// KBSR and KBDR are the two memory-mapped keyboard registers.
	KBSR Word = 0xFE00
	KBDR Word = 0xFE02
)

// Condition flags. Exactly one is set in Cond after any flag-updating
// instruction.
const (
	FlagPos Word = 1 << 0
	FlagZro Word = 1 << 1
	FlagNeg Word = 1 << 2
)

// Console is the host I/O collaborator behind the keyboard status/data
// registers and the trap vectors. Poll must never block; ReadByte may.
type Console interface {
	Poll() bool
	ReadByte() (byte, error)
	WriteByte(b byte) error
	Flush() error
}

// Machine holds the complete architectural state of one LC-3 core: eight
// general registers, PC, COND, and 65536 words of memory. Zero value is
// not directly usable; call New to get PC initialized and a console
// attached.
type Machine struct {
	Reg  [8]Word
	PC   Word
	Cond Word

	Mem [MemSize]Word

	Console Console
}

// New returns a Machine with PC at the architectural start address and
// all other state zeroed: memory and registers exist for a single run,
// and nothing but a loaded image and PC=0x3000 is non-zero at the start.
func New(console Console) *Machine {
	return &Machine{
		PC:      PCStart,
		Console: console,
	}
}

// Read implements the memory read hook: KBSR polls the console for
// readiness (non-blocking) and latches a byte into KBDR when one is
// available; every other address is returned directly. The
// instruction fetch path uses this same function, so fetching from KBSR
// performs the identical polling side effect; that is intentional.
func (m *Machine) Read(addr Word) Word {
	if addr == KBSR {
		if m.Console.Poll() {
			b, err := m.Console.ReadByte()
			if err == nil {
				m.Mem[KBSR] = 0x8000
				m.Mem[KBDR] = Word(b)
			} else {
				m.Mem[KBSR] = 0
			}
		} else {
			m.Mem[KBSR] = 0
		}
	}
	return m.Mem[addr]
}

// Write implements the memory write hook: a plain store, no side effects.
// Guest writes to KBSR/KBDR are permitted but harmless;
// the next KBSR read clobbers both cells again.
func (m *Machine) Write(addr, value Word) {
	m.Mem[addr] = value
}

// Fetch reads the word at PC and advances PC by one, wrapping modulo
// 2^16. It goes through Read, so fetching from KBSR (pathological but
// legal) polls the console exactly like an LD would.
func (m *Machine) Fetch() Word {
	instr := m.Read(m.PC)
	m.PC++
	return instr
}

// Peek returns the word at addr without the KBSR/KBDR polling side effect
// that Read has. It exists for diagnostics (instruction tracing, the
// disassembler CLI) that must not consume a pending console byte just by
// looking at memory.
func (m *Machine) Peek(addr Word) Word {
	return m.Mem[addr]
}
