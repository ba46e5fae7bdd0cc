/*
 * Package image loads LC-3 object files: a big-endian origin word followed
 * by big-endian program words, loaded starting at that origin.
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
package image

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-lc3/lc3vm/internal/machine"
)

// ErrImageTooLarge is returned when an image's word count would run past
// the top of addressable memory.
var ErrImageTooLarge = errors.New("image: exceeds address space")

// Load reads path and writes its contents into m starting at the origin
// word, per the LC-3 object file format: the first big-endian 16-bit word
// names the load address, every word after that is program content.
func Load(m *machine.Machine, path string) (origin machine.Word, count int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("image: open %s: %w", path, err)
	}
	defer f.Close()
	return LoadReader(m, f, path)
}

// LoadReader is Load's testable core: it reads from an arbitrary
// io.Reader instead of opening a file, so tests can load from a
// bytes.Reader without touching the filesystem.
func LoadReader(m *machine.Machine, r io.Reader, name string) (origin machine.Word, count int, err error) {
	var originBuf [2]byte
	if _, err := io.ReadFull(r, originBuf[:]); err != nil {
		return 0, 0, fmt.Errorf("image: %s: read origin: %w", name, err)
	}
	origin = machine.Word(binary.BigEndian.Uint16(originBuf[:]))

	addr := origin
	for {
		var wordBuf [2]byte
		n, err := io.ReadFull(r, wordBuf[:])
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			return origin, count, fmt.Errorf("image: %s: truncated word at offset %d", name, n)
		}
		if err != nil {
			return origin, count, fmt.Errorf("image: %s: %w", name, err)
		}
		if count > 0 && addr == 0 {
			return origin, count, fmt.Errorf("%w: %s", ErrImageTooLarge, name)
		}
		m.Write(addr, machine.Word(binary.BigEndian.Uint16(wordBuf[:])))
		addr++
		count++
	}
	return origin, count, nil
}
