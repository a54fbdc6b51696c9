package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/thelolagemann/sm83core/internal/emulator"
	"github.com/thelolagemann/sm83core/internal/tracehub"
	"github.com/thelolagemann/sm83core/pkg/log"
)

// pacer is an emulator.Frontend that requests a step every tick until the
// program halts, then idles until ctx is done.
type pacer struct {
	ctx    context.Context
	ticker *time.Ticker
	halted bool
}

func (p *pacer) ProcessInput() emulator.Command {
	select {
	case <-p.ctx.Done():
		return emulator.CommandQuit
	case <-p.ticker.C:
	}
	if p.halted {
		return emulator.CommandNone
	}
	return emulator.CommandStep
}

func (p *pacer) Render(e *emulator.Emulator) {
	if tr := e.CPU.Trace(); !p.halted && !tr.IsReset() && tr.Opcode == 0x76 {
		p.halted = true
		fmt.Println(e.StateLine())
		fmt.Println("halted, still serving (ctrl-c to stop)")
	}
}

func serve(logger log.Logger, flags *loadFlags, args []string, addr string, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid --interval %s", interval)
	}

	hub := tracehub.New(logger)
	defer hub.Close()

	e, err := flags.load(logger, args, emulator.WithTraceListener(hub.Publish), emulator.WithDelay(0))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errs := make(chan error, 1)
	go func() { errs <- hub.Serve(addr) }()
	fmt.Printf("%s, streaming traces on ws://%s/\n", e.Info(), addr)

	p := &pacer{ctx: ctx, ticker: time.NewTicker(interval)}
	defer p.ticker.Stop()

	go func() {
		select {
		case err := <-errs:
			logger.Errorf("%v", err)
			stop()
		case <-ctx.Done():
		}
	}()

	if err := e.Loop(ctx, p); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
