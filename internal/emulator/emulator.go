// Package emulator ties a cartridge, the bus and the CPU together, and
// drives them from a frontend.
package emulator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/thelolagemann/sm83core/internal/cartridge"
	"github.com/thelolagemann/sm83core/internal/cpu"
	"github.com/thelolagemann/sm83core/internal/mmu"
	"github.com/thelolagemann/sm83core/pkg/log"
)

const (
	// haltOpcode pauses the emulator once executed.
	haltOpcode = 0x76

	// romEntryPoint is where execution of a cartridge begins.
	romEntryPoint = 0x0100

	// defaultDelay is how long the loop sleeps per iteration while paused.
	defaultDelay = 16 * time.Millisecond

	noProgram = "No ROM Loaded"
)

var (
	// ErrNotInitialized is returned when stepping before anything was loaded.
	ErrNotInitialized = errors.New("emulator: no ROM or program loaded")
	// ErrStepLimit is returned by RunUntilHalt when the step limit is reached
	// before a HALT.
	ErrStepLimit = errors.New("emulator: step limit reached")
)

// StepResult describes a single executed instruction.
type StepResult struct {
	PC     uint16
	Opcode uint8
	Cycles uint8
}

// Halted returns true if the executed instruction was HALT.
func (r StepResult) Halted() bool {
	return r.Opcode == haltOpcode
}

// Emulator represents a single emulated SM83 system.
type Emulator struct {
	CPU  *cpu.CPU
	MMU  *mmu.MMU
	Cart *cartridge.Cartridge

	log.Logger

	info        string
	entryPoint  uint16
	initialPC   uint16
	initialized bool

	paused        bool
	stepRequested bool

	delay     time.Duration
	maxSteps  int
	listeners []func(cpu.Trace)
}

// New returns an Emulator with nothing loaded.
func New(opts ...Opt) *Emulator {
	e := &Emulator{
		Logger:     log.NewNullLogger(),
		info:       noProgram,
		entryPoint: romEntryPoint,
		initialPC:  romEntryPoint,
		paused:     true,
		delay:      defaultDelay,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.MMU = mmu.NewMMU(nil, e.Logger)
	e.CPU = cpu.NewCPU(e.MMU, e.Logger)

	return e
}

// LoadROM loads the ROM at path and starts execution at the entry point,
// 0x0100 unless changed with WithInitialPC. If the ROM can't be loaded
// the emulator is left as it was.
func (e *Emulator) LoadROM(path string) error {
	cart := cartridge.NewCartridge(e.Logger)
	if err := cart.LoadFromPath(path); err != nil {
		return err
	}

	info := "ROM: " + filepath.Base(path)
	if h, ok := cart.Header(); ok {
		e.Infof("cartridge header: %s", h.String())
		if !h.Valid() {
			e.Warnf("cartridge header checksum mismatch")
		}
		if h.Title != "" {
			info += " (" + h.Title + ")"
		}
	}

	e.initialize(cart, e.entryPoint, info)
	return nil
}

// LoadProgram loads a named program, such as one of the test catalog,
// and starts execution at pc. The bus is reset first.
func (e *Emulator) LoadProgram(name string, data []byte, pc uint16) error {
	if len(data) == 0 {
		return fmt.Errorf("loading program %q: no data", name)
	}
	e.MMU.Reset()

	cart := cartridge.NewCartridge(e.Logger)
	cart.LoadFromBytes(data)

	e.initialize(cart, pc, "Test: "+name)
	return nil
}

func (e *Emulator) initialize(cart *cartridge.Cartridge, pc uint16, info string) {
	e.Cart = cart
	e.info = info
	e.initialPC = pc

	e.MMU.ConnectCartridge(cart)
	e.CPU.ConnectBus(e.MMU)
	e.CPU.ResetTo(pc)

	e.initialized = true
	e.paused = true
	e.stepRequested = false

	e.Infof("initialized with %s, PC set to 0x%04X", info, pc)
	e.Debugf("%s", e.StateLine())
}

// Reset resets the CPU and the bus, keeping the loaded cartridge, and
// returns to the initial PC of the loaded program.
func (e *Emulator) Reset() {
	if !e.initialized {
		return
	}
	e.CPU.ResetTo(e.initialPC)
	e.MMU.Reset()

	e.paused = true
	e.stepRequested = false
	e.Infof("reset")
	e.Debugf("%s", e.StateLine())
}

// Step executes a single instruction. After a HALT the emulator is paused.
func (e *Emulator) Step() (StepResult, error) {
	if !e.initialized {
		return StepResult{}, ErrNotInitialized
	}

	cycles := e.CPU.Step()
	trace := e.CPU.Trace()
	for _, l := range e.listeners {
		l(trace)
	}

	result := StepResult{PC: trace.PC, Opcode: trace.Opcode, Cycles: cycles}
	e.Debugf("(Prev PC: 0x%04X Op: 0x%02X) -> New PC: 0x%04X, AF: 0x%04X (Cyc: %d)",
		result.PC, result.Opcode, e.CPU.PC, e.CPU.AF.Uint16(), cycles)

	if result.Halted() {
		e.Infof("HALT instruction encountered @ 0x%04X, emulation paused", result.PC)
		e.paused = true
	}
	return result, nil
}

// RunUntilHalt steps until a HALT is executed, the step limit is reached
// or ctx is done. It returns the number of steps taken.
func (e *Emulator) RunUntilHalt(ctx context.Context) (int, error) {
	if !e.initialized {
		return 0, ErrNotInitialized
	}
	e.paused = false

	steps := 0
	for {
		if err := ctx.Err(); err != nil {
			return steps, err
		}
		if e.maxSteps > 0 && steps >= e.maxSteps {
			e.paused = true
			return steps, fmt.Errorf("%w after %d steps at 0x%04X", ErrStepLimit, steps, e.CPU.PC)
		}

		result, err := e.Step()
		if err != nil {
			return steps, err
		}
		steps++

		if result.Halted() {
			return steps, nil
		}
	}
}

// Pause stops Loop from stepping on its own.
func (e *Emulator) Pause() { e.paused = true }

// Resume lets Loop step on its own again.
func (e *Emulator) Resume() { e.paused = false }

// Paused returns true if the emulator only steps on request.
func (e *Emulator) Paused() bool { return e.paused }

// Initialized returns true once a ROM or program was loaded.
func (e *Emulator) Initialized() bool { return e.initialized }

// Info describes what is loaded, e.g. "ROM: tetris.gb".
func (e *Emulator) Info() string { return e.info }

// StateLine returns the registers on a single line.
func (e *Emulator) StateLine() string {
	c := e.CPU
	return fmt.Sprintf("PC: 0x%04X AF: 0x%04X(0x%02X 0x%02X) BC: 0x%04X(0x%02X 0x%02X) DE: 0x%04X(0x%02X 0x%02X) HL: 0x%04X(0x%02X 0x%02X) SP: 0x%04X",
		c.PC,
		c.AF.Uint16(), c.A, c.F,
		c.BC.Uint16(), c.B, c.C,
		c.DE.Uint16(), c.D, c.E,
		c.HL.Uint16(), c.H, c.L,
		c.SP)
}
