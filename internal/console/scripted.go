/*
 * Scripted console: an in-memory Console for tests.
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
	"bytes"
	"errors"
)

// ErrNoInput is returned by ScriptedConsole.ReadByte when its input queue
// is exhausted; callers see it as an ordinary host I/O error.
var ErrNoInput = errors.New("console: scripted input exhausted")

// ScriptedConsole is an in-memory Console for tests: input is a fixed byte
// queue fed in at construction, output accumulates in a buffer the test
// can inspect afterward. Nothing here blocks.
type ScriptedConsole struct {
	in  []byte
	Out bytes.Buffer
}

// NewScriptedConsole returns a console whose GETC/IN traps will read input
// in order, then report ErrNoInput once exhausted.
func NewScriptedConsole(input []byte) *ScriptedConsole {
	buf := make([]byte, len(input))
	copy(buf, input)
	return &ScriptedConsole{in: buf}
}

func (c *ScriptedConsole) Poll() bool {
	return len(c.in) > 0
}

func (c *ScriptedConsole) ReadByte() (byte, error) {
	if len(c.in) == 0 {
		return 0, ErrNoInput
	}
	b := c.in[0]
	c.in = c.in[1:]
	return b, nil
}

func (c *ScriptedConsole) WriteByte(b byte) error {
	return c.Out.WriteByte(b)
}

func (c *ScriptedConsole) Flush() error {
	return nil
}
