/*
 * Command lc3util provides read-only inspection of LC-3 object files:
 * disassembly and origin/size summaries. It has no execution semantics of
 * its own.
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
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-lc3/lc3vm/internal/disasm"
	"github.com/go-lc3/lc3vm/internal/image"
	"github.com/go-lc3/lc3vm/internal/machine"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lc3util",
		Short: "Inspect LC-3 object files",
	}

	rootCmd.AddCommand(disasmCmd())
	rootCmd.AddCommand(infoCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type nullConsole struct{}

func (nullConsole) Poll() bool              { return false }
func (nullConsole) ReadByte() (byte, error) { return 0, fmt.Errorf("lc3util: no console") }
func (nullConsole) WriteByte(b byte) error  { return nil }
func (nullConsole) Flush() error            { return nil }

func loadForInspection(path string) (*machine.Machine, machine.Word, int, error) {
	m := machine.New(nullConsole{})
	origin, count, err := image.Load(m, path)
	return m, origin, count, err
}

func disasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <image>",
		Short: "Print a disassembly listing of an object file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, origin, count, err := loadForInspection(args[0])
			if err != nil {
				return err
			}
			var out bytes.Buffer
			for i := 0; i < count; i++ {
				addr := origin + machine.Word(i)
				instr := m.Peek(addr)
				fmt.Fprintf(&out, "x%04X  x%04X  %s\n", uint16(addr), uint16(instr), disasm.Format(instr))
			}
			_, err = cmd.OutOrStdout().Write(out.Bytes())
			return err
		},
	}
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <image>",
		Short: "Print the origin address and word count of an object file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, origin, count, err := loadForInspection(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "origin: x%04X\nwords:  %d\n", uint16(origin), count)
			return nil
		},
	}
}
