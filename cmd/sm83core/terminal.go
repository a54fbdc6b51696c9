package main

import (
	"fmt"
	"io"
	"os"

	"github.com/thelolagemann/sm83core/internal/cpu"
	"github.com/thelolagemann/sm83core/internal/emulator"
	"github.com/thelolagemann/sm83core/pkg/utils"
	"golang.org/x/term"
)

// terminal is an emulator.Frontend reading single key presses from a raw
// mode terminal.
type terminal struct {
	in  *os.File
	out io.Writer

	fd       int
	oldState *term.State
	keys     chan byte

	lastCycles uint64
	lastPC     uint16
	rendered   bool
}

func newTerminal(in *os.File, out io.Writer) (*terminal, error) {
	t := &terminal{
		in:   in,
		out:  out,
		fd:   int(in.Fd()),
		keys: make(chan byte, 16),
	}
	if !term.IsTerminal(t.fd) {
		return nil, fmt.Errorf("stepping needs an interactive terminal")
	}

	// raw mode, so keys arrive without waiting for enter
	oldState, err := term.MakeRaw(t.fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	t.oldState = oldState

	go t.read()

	t.printf("space = step, r = run, p = pause, x = reset, q = quit\n")
	return t, nil
}

func (t *terminal) read() {
	buf := make([]byte, 1)
	for {
		n, err := t.in.Read(buf)
		if err != nil {
			close(t.keys)
			return
		}
		if n > 0 {
			t.keys <- buf[0]
		}
	}
}

// printf writes to the terminal, translating newlines for raw mode.
func (t *terminal) printf(format string, args ...interface{}) {
	s := fmt.Sprintf(format, args...)
	out := make([]byte, 0, len(s)+4)
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, '\r')
		}
		out = append(out, s[i])
	}
	t.out.Write(out)
}

func (t *terminal) ProcessInput() emulator.Command {
	select {
	case key, ok := <-t.keys:
		if !ok {
			return emulator.CommandQuit
		}
		switch key {
		case ' ', 's':
			return emulator.CommandStep
		case 'r':
			return emulator.CommandRun
		case 'p':
			return emulator.CommandPause
		case 'x':
			return emulator.CommandReset
		case 'q', 0x03: // ctrl-c doesn't raise a signal in raw mode
			return emulator.CommandQuit
		}
	default:
	}
	return emulator.CommandNone
}

// Render prints the last instruction and the registers whenever they
// changed.
func (t *terminal) Render(e *emulator.Emulator) {
	cycles, pc := e.CPU.TotalCycles(), e.CPU.PC
	if t.rendered && cycles == t.lastCycles && pc == t.lastPC {
		return
	}
	t.rendered, t.lastCycles, t.lastPC = true, cycles, pc

	next, _, _ := e.CPU.DisassembleAt(pc)
	state := "running"
	if e.Paused() {
		state = "paused"
	}
	c := e.CPU
	t.printf("%s\n  %s\n  Z:%s N:%s H:%s C:%s  next: %04X %s [%s]\n", c.Trace(), e.StateLine(),
		utils.BoolToString(c.Flag(cpu.FlagZero)),
		utils.BoolToString(c.Flag(cpu.FlagSubtract)),
		utils.BoolToString(c.Flag(cpu.FlagHalfCarry)),
		utils.BoolToString(c.Flag(cpu.FlagCarry)),
		pc, next, state)
}

func (t *terminal) Close() {
	if t.oldState != nil {
		_ = term.Restore(t.fd, t.oldState)
		t.oldState = nil
	}
}
