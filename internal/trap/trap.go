/*
 * Trap: the six LC-3 service calls (GETC, OUT, PUTS, IN, PUTSP, HALT),
 * dispatched by vector off of TRAP's low 8 bits.
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
package trap

import (
	"errors"
	"fmt"

	"github.com/go-lc3/lc3vm/internal/machine"
)

// ErrUnknownTrap is returned for any vector outside the six defined here.
// The recommended disposition (see design notes) is to abort rather than
// silently continue.
var ErrUnknownTrap = errors.New("trap: unknown vector")

const (
	vecGETC  uint8 = 0x20
	vecOUT   uint8 = 0x21
	vecPUTS  uint8 = 0x22
	vecIN    uint8 = 0x23
	vecPUTSP uint8 = 0x24
	vecHALT  uint8 = 0x25
)

// Service dispatches the six trap vectors against a machine.Console. It
// satisfies internal/cpu's Trapper interface without cpu needing to import
// this package.
type Service struct {
	table map[uint8]func(*Service, *machine.Machine) (bool, error)
}

// New returns a Service with its vector table wired.
func New() *Service {
	s := &Service{}
	s.table = map[uint8]func(*Service, *machine.Machine) (bool, error){
		vecGETC:  (*Service).trapGETC,
		vecOUT:   (*Service).trapOUT,
		vecPUTS:  (*Service).trapPUTS,
		vecIN:    (*Service).trapIN,
		vecPUTSP: (*Service).trapPUTSP,
		vecHALT:  (*Service).trapHALT,
	}
	return s
}

// Dispatch runs the trap named by vector. halted reports whether the run
// loop should stop (true only for HALT); err is non-nil for an unknown
// vector or a host I/O failure on the console.
func (s *Service) Dispatch(m *machine.Machine, vector uint8) (halted bool, err error) {
	fn, ok := s.table[vector]
	if !ok {
		return false, fmt.Errorf("%w: %#02x", ErrUnknownTrap, vector)
	}
	return fn(s, m)
}

// trapGETC: read one character from the console into R0, unsigned, no
// echo. Blocks until a byte is available.
func (s *Service) trapGETC(m *machine.Machine) (bool, error) {
	b, err := m.Console.ReadByte()
	if err != nil {
		return false, fmt.Errorf("trap: GETC: %w", err)
	}
	m.Reg[0] = machine.Word(b)
	return false, nil
}

// trapOUT: write the character in R0's low 8 bits to the console.
func (s *Service) trapOUT(m *machine.Machine) (bool, error) {
	if err := m.Console.WriteByte(byte(m.Reg[0])); err != nil {
		return false, fmt.Errorf("trap: OUT: %w", err)
	}
	if err := m.Console.Flush(); err != nil {
		return false, fmt.Errorf("trap: OUT: %w", err)
	}
	return false, nil
}

// trapPUTS: write a NUL-terminated string of one-character-per-word cells
// starting at the address in R0.
func (s *Service) trapPUTS(m *machine.Machine) (bool, error) {
	addr := m.Reg[0]
	for {
		w := m.Read(addr)
		if w == 0 {
			break
		}
		if err := m.Console.WriteByte(byte(w)); err != nil {
			return false, fmt.Errorf("trap: PUTS: %w", err)
		}
		addr++
	}
	if err := m.Console.Flush(); err != nil {
		return false, fmt.Errorf("trap: PUTS: %w", err)
	}
	return false, nil
}

// trapIN: prompt, read one character, echo it, and store it in R0.
func (s *Service) trapIN(m *machine.Machine) (bool, error) {
	const prompt = "Enter a char: "
	for i := 0; i < len(prompt); i++ {
		if err := m.Console.WriteByte(prompt[i]); err != nil {
			return false, fmt.Errorf("trap: IN: %w", err)
		}
	}
	if err := m.Console.Flush(); err != nil {
		return false, fmt.Errorf("trap: IN: %w", err)
	}
	b, err := m.Console.ReadByte()
	if err != nil {
		return false, fmt.Errorf("trap: IN: %w", err)
	}
	if err := m.Console.WriteByte(b); err != nil {
		return false, fmt.Errorf("trap: IN: %w", err)
	}
	if err := m.Console.Flush(); err != nil {
		return false, fmt.Errorf("trap: IN: %w", err)
	}
	m.Reg[0] = machine.Word(b)
	return false, nil
}

// trapPUTSP: write a string packed two characters per word (low byte
// first, then high byte if non-zero), NUL-terminated.
func (s *Service) trapPUTSP(m *machine.Machine) (bool, error) {
	addr := m.Reg[0]
	for {
		w := m.Read(addr)
		lo := byte(w & 0xFF)
		if lo == 0 {
			break
		}
		if err := m.Console.WriteByte(lo); err != nil {
			return false, fmt.Errorf("trap: PUTSP: %w", err)
		}
		hi := byte(w >> 8)
		if hi == 0 {
			break
		}
		if err := m.Console.WriteByte(hi); err != nil {
			return false, fmt.Errorf("trap: PUTSP: %w", err)
		}
		addr++
	}
	if err := m.Console.Flush(); err != nil {
		return false, fmt.Errorf("trap: PUTSP: %w", err)
	}
	return false, nil
}

// trapHALT: print "HALT\n", flush the console, and signal the run loop to
// stop.
func (s *Service) trapHALT(m *machine.Machine) (bool, error) {
	const msg = "HALT\n"
	for i := 0; i < len(msg); i++ {
		if err := m.Console.WriteByte(msg[i]); err != nil {
			return false, fmt.Errorf("trap: HALT: %w", err)
		}
	}
	if err := m.Console.Flush(); err != nil {
		return false, fmt.Errorf("trap: HALT: %w", err)
	}
	return true, nil
}
