/*
 * Command lc3vm loads one or more LC-3 object files and runs them against
 * the terminal.
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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/go-lc3/lc3vm/internal/console"
	"github.com/go-lc3/lc3vm/internal/cpu"
	"github.com/go-lc3/lc3vm/internal/image"
	"github.com/go-lc3/lc3vm/internal/machine"
	"github.com/go-lc3/lc3vm/internal/trace"
	"github.com/go-lc3/lc3vm/internal/trap"
	"github.com/go-lc3/lc3vm/util/logger"
)

var log *slog.Logger

func main() {
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.StringLong("debug", 'd', "", "Trace options (INST,REG)")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "lc3vm:", err)
			os.Exit(1)
		}
	}
	debugOn := false
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	log = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel}, &debugOn))
	slog.SetDefault(log)

	mask, err := trace.ParseOptions(*optDebug)
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}

	paths := getopt.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: lc3vm [options] image...")
		os.Exit(1)
	}

	term, err := console.NewTermConsole()
	if err != nil {
		log.Error("console init failed", "err", err)
		os.Exit(1)
	}
	defer term.Restore()

	m := machine.New(term)
	for _, path := range paths {
		origin, count, err := image.Load(m, path)
		if err != nil {
			log.Error("image load failed", "path", path, "err", err)
			term.Restore()
			os.Exit(1)
		}
		log.Info("image loaded", "path", path, "origin", fmt.Sprintf("x%04X", uint16(origin)), "words", count)
	}

	tracer := trace.New(log, mask)
	core := cpu.New(trap.New())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	interrupted := make(chan struct{})
	go func() {
		<-sigCh
		close(interrupted)
	}()

	code := run(m, core, tracer, interrupted)
	term.Restore()
	os.Exit(code)
}

// run drives the fetch-decode-execute loop until HALT, an unrecoverable
// error, or a host interrupt, returning the process exit code.
func run(m *machine.Machine, core *cpu.CPU, tracer *trace.Tracer, interrupted <-chan struct{}) int {
	for {
		select {
		case <-interrupted:
			log.Info("interrupted")
			return 1
		default:
		}

		pc := m.PC
		instr := m.Peek(pc)
		tracer.Instruction(pc, instr)

		outcome, err := core.Step(m)
		tracer.Registers(m)

		switch outcome {
		case cpu.Continue:
			continue
		case cpu.Halt:
			log.Info("halted")
			return 0
		case cpu.Abort:
			log.Error("aborted", "err", err)
			if errors.Is(err, cpu.ErrIllegalOpcode) {
				return 2
			}
			return 3
		}
	}
}
