/*
 * Package console provides the host I/O backends behind machine.Console:
 * a real terminal in raw mode for interactive runs, and an in-memory
 * scripted console for tests.
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
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// TermConsole wraps the process's own stdin/stdout, putting the terminal
// into raw mode so GETC/IN can read one byte at a time without waiting on
// a line discipline that buffers until Enter.
type TermConsole struct {
	in     *os.File
	out    *bufio.Writer
	state  *term.State
	isTerm bool

	pending  chan byte
	buffered []byte
}

// NewTermConsole puts stdin into raw mode if it is a terminal and returns a
// Console backed by it. Restore must be called before the process exits on
// every path (including host interrupt) to leave the user's shell usable.
func NewTermConsole() (*TermConsole, error) {
	c := &TermConsole{
		in:  os.Stdin,
		out: bufio.NewWriter(os.Stdout),
	}
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("console: enter raw mode: %w", err)
		}
		c.state = state
		c.isTerm = true
	}
	return c, nil
}

// Restore returns the terminal to its original mode. Safe to call more
// than once; a no-op when stdin was never a terminal.
func (c *TermConsole) Restore() error {
	if !c.isTerm || c.state == nil {
		return nil
	}
	err := term.Restore(int(c.in.Fd()), c.state)
	c.state = nil
	return err
}

// Poll reports whether a byte is available without blocking. A background
// goroutine reads stdin one byte at a time and hands each byte over an
// unbuffered channel; Poll does a non-blocking receive on that channel and
// keeps any byte it gets for the next ReadByte. The first call pays the
// cost of starting that goroutine.
func (c *TermConsole) Poll() bool {
	if len(c.buffered) > 0 {
		return true
	}
	c.ensureReader()
	select {
	case b, ok := <-c.pending:
		if ok {
			c.buffered = append(c.buffered, b)
		}
		return ok
	default:
		return false
	}
}

// ReadByte blocks until one byte is available from stdin.
func (c *TermConsole) ReadByte() (byte, error) {
	if len(c.buffered) > 0 {
		b := c.buffered[0]
		c.buffered = c.buffered[1:]
		return b, nil
	}
	c.ensureReader()
	b, ok := <-c.pending
	if !ok {
		return 0, io.EOF
	}
	return b, nil
}

// WriteByte writes one byte to stdout. Buffered; call Flush to make it
// visible, matching the console device's batching in the original
// architecture's PUTS/PUTSP traps.
func (c *TermConsole) WriteByte(b byte) error {
	return c.out.WriteByte(b)
}

// Flush drains the output buffer to the terminal.
func (c *TermConsole) Flush() error {
	return c.out.Flush()
}

// ensureReader lazily starts the background byte-reader goroutine that
// backs Poll/ReadByte. Reading stdin is otherwise a blocking syscall with
// no portable non-blocking variant, so Poll needs a goroutine plus a
// channel rather than a raw fd check.
func (c *TermConsole) ensureReader() {
	if c.pending != nil {
		return
	}
	c.pending = make(chan byte)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := c.in.Read(buf)
			if n > 0 {
				c.pending <- buf[0]
			}
			if err != nil {
				close(c.pending)
				return
			}
		}
	}()
	// Give the reader goroutine a brief window to pick up any byte
	// that's already sitting in the terminal's input buffer.
	time.Sleep(time.Millisecond)
}
