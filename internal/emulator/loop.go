package emulator

import (
	"context"
	"time"
)

// Command is an instruction from a Frontend to the run loop.
type Command uint8

const (
	CommandNone Command = iota
	CommandStep
	CommandRun
	CommandPause
	CommandReset
	CommandQuit
)

var commandNames = [...]string{"none", "step", "run", "pause", "reset", "quit"}

func (c Command) String() string {
	if int(c) < len(commandNames) {
		return commandNames[c]
	}
	return "unknown"
}

// Frontend supplies input to and displays the state of an Emulator.
type Frontend interface {
	// ProcessInput returns the next pending command, or CommandNone.
	ProcessInput() Command
	// Render displays the current state of e.
	Render(e *Emulator)
}

// Loop runs e until the frontend quits or ctx is done. Each iteration
// processes input, steps if running or a step was requested, renders,
// and sleeps while paused.
func (e *Emulator) Loop(ctx context.Context, f Frontend) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	e.Infof("starting emulation loop (%s)", e.Info())
	defer func() {
		e.Infof("emulation loop finished, total CPU cycles elapsed: %d", e.CPU.TotalCycles())
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch cmd := f.ProcessInput(); cmd {
		case CommandQuit:
			return nil
		case CommandStep:
			e.stepRequested = true
		case CommandRun:
			e.paused = false
		case CommandPause:
			e.paused = true
		case CommandReset:
			e.Reset()
		}

		if !e.paused || e.stepRequested {
			if _, err := e.Step(); err != nil {
				return err
			}
			e.stepRequested = false
		}

		f.Render(e)

		if e.paused && e.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(e.delay):
			}
		}
	}
}
