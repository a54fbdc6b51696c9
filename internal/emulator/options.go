package emulator

import (
	"time"

	"github.com/thelolagemann/sm83core/internal/cpu"
	"github.com/thelolagemann/sm83core/pkg/log"
)

// Opt is a function that modifies an Emulator
// instance.
type Opt func(e *Emulator)

func WithLogger(log log.Logger) Opt {
	return func(e *Emulator) {
		if log != nil {
			e.Logger = log
		}
	}
}

// WithTraceListener registers fn to receive the trace of every executed
// instruction. fn is called synchronously from Step.
func WithTraceListener(fn func(cpu.Trace)) Opt {
	return func(e *Emulator) {
		e.listeners = append(e.listeners, fn)
	}
}

// WithDelay sets how long Loop sleeps per iteration while paused.
func WithDelay(d time.Duration) Opt {
	return func(e *Emulator) {
		e.delay = d
	}
}

// WithMaxSteps limits RunUntilHalt to n steps, 0 means no limit.
func WithMaxSteps(n int) Opt {
	return func(e *Emulator) {
		e.maxSteps = n
	}
}

// WithInitialPC sets the address LoadROM starts execution at.
func WithInitialPC(pc uint16) Opt {
	return func(e *Emulator) {
		e.entryPoint = pc
	}
}
