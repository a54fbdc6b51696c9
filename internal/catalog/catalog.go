// Package catalog holds the built-in test programs. Each program exercises
// a group of instructions, ends with a HALT and carries the state the CPU
// is expected to be in afterwards.
package catalog

import (
	"context"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/thelolagemann/sm83core/internal/cpu"
	"github.com/thelolagemann/sm83core/internal/emulator"
	"gopkg.in/yaml.v3"
)

// ErrUnknownProgram is returned by ByName for a name not in the catalog.
var ErrUnknownProgram = errors.New("catalog: unknown program")

//go:embed catalog.yaml
var catalogYAML []byte

// Bytes is a program image, written in YAML as space separated hex.
type Bytes []byte

func (b *Bytes) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	data, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
	if err != nil {
		return fmt.Errorf("line %d: decoding program: %w", value.Line, err)
	}
	*b = data
	return nil
}

func (b Bytes) String() string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, " ")
}

// Flags holds the expected flag values, nil means don't care.
type Flags struct {
	Z *bool `yaml:"Z"`
	N *bool `yaml:"N"`
	H *bool `yaml:"H"`
	C *bool `yaml:"C"`
}

// Expect is the state a program must leave behind.
type Expect struct {
	Registers map[string]uint8  `yaml:"registers"`
	Pairs     map[string]uint16 `yaml:"pairs"`
	Flags     Flags             `yaml:"flags"`
	Memory    map[uint16]uint8  `yaml:"memory"`
}

// Program is a single test program.
type Program struct {
	Name      string `yaml:"name"`
	Data      Bytes  `yaml:"program"`
	InitialPC uint16 `yaml:"pc"`
	Expect    Expect `yaml:"expect"`
}

type document struct {
	Programs []Program `yaml:"programs"`
}

var programs []Program

func init() {
	var err error
	if programs, err = parse(catalogYAML); err != nil {
		panic(err)
	}
}

func parse(data []byte) ([]Program, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	seen := make(map[string]bool, len(doc.Programs))
	for _, p := range doc.Programs {
		if p.Name == "" {
			return nil, errors.New("parsing catalog: program without a name")
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("parsing catalog: duplicate program %q", p.Name)
		}
		if len(p.Data) == 0 {
			return nil, fmt.Errorf("parsing catalog: program %q is empty", p.Name)
		}
		seen[p.Name] = true
	}
	return doc.Programs, nil
}

// All returns every program in catalog order.
func All() []Program {
	return append([]Program(nil), programs...)
}

// ByName returns the program called name.
func ByName(name string) (Program, error) {
	for _, p := range programs {
		if p.Name == name {
			return p, nil
		}
	}
	return Program{}, fmt.Errorf("%w: %q", ErrUnknownProgram, name)
}

// Load loads the program into e.
func (p Program) Load(e *emulator.Emulator) error {
	return e.LoadProgram(p.Name, p.Data, p.InitialPC)
}

// Run loads the program into e, runs it until HALT and verifies the result.
func (p Program) Run(ctx context.Context, e *emulator.Emulator) error {
	if err := p.Load(e); err != nil {
		return err
	}
	if _, err := e.RunUntilHalt(ctx); err != nil {
		return fmt.Errorf("running %q: %w", p.Name, err)
	}
	return p.Verify(e)
}

// Verify compares the state of e with the expectations of the program,
// returning every mismatch.
func (p Program) Verify(e *emulator.Emulator) error {
	var result *multierror.Error
	c := e.CPU

	for _, name := range sortedKeys(p.Expect.Registers) {
		want := p.Expect.Registers[name]
		got, ok := register(c, name)
		if !ok {
			result = multierror.Append(result, fmt.Errorf("unknown register %q", name))
			continue
		}
		if got != want {
			result = multierror.Append(result, fmt.Errorf("register %s: expected 0x%02X, got 0x%02X", name, want, got))
		}
	}

	for _, name := range sortedKeys(p.Expect.Pairs) {
		want := p.Expect.Pairs[name]
		got, ok := pair(c, name)
		if !ok {
			result = multierror.Append(result, fmt.Errorf("unknown register pair %q", name))
			continue
		}
		if got != want {
			result = multierror.Append(result, fmt.Errorf("register %s: expected 0x%04X, got 0x%04X", name, want, got))
		}
	}

	flags := []struct {
		name string
		want *bool
		flag cpu.Flag
	}{
		{"Z", p.Expect.Flags.Z, cpu.FlagZero},
		{"N", p.Expect.Flags.N, cpu.FlagSubtract},
		{"H", p.Expect.Flags.H, cpu.FlagHalfCarry},
		{"C", p.Expect.Flags.C, cpu.FlagCarry},
	}
	for _, f := range flags {
		if f.want != nil && c.Flag(f.flag) != *f.want {
			result = multierror.Append(result, fmt.Errorf("flag %s: expected %t, got %t", f.name, *f.want, c.Flag(f.flag)))
		}
	}

	addresses := make([]int, 0, len(p.Expect.Memory))
	for addr := range p.Expect.Memory {
		addresses = append(addresses, int(addr))
	}
	sort.Ints(addresses)
	for _, addr := range addresses {
		want := p.Expect.Memory[uint16(addr)]
		if got := e.MMU.Read(uint16(addr)); got != want {
			result = multierror.Append(result, fmt.Errorf("memory 0x%04X: expected 0x%02X, got 0x%02X", addr, want, got))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%q: %w", p.Name, err)
	}
	return nil
}

func register(c *cpu.CPU, name string) (uint8, bool) {
	switch name {
	case "A":
		return c.A, true
	case "F":
		return c.F, true
	case "B":
		return c.B, true
	case "C":
		return c.C, true
	case "D":
		return c.D, true
	case "E":
		return c.E, true
	case "H":
		return c.H, true
	case "L":
		return c.L, true
	}
	return 0, false
}

func pair(c *cpu.CPU, name string) (uint16, bool) {
	switch name {
	case "AF":
		return c.AF.Uint16(), true
	case "BC":
		return c.BC.Uint16(), true
	case "DE":
		return c.DE.Uint16(), true
	case "HL":
		return c.HL.Uint16(), true
	case "SP":
		return c.SP, true
	case "PC":
		return c.PC, true
	}
	return 0, false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
