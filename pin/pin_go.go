//go:build !tinygo

package pin

import (
	"fmt"

	"github.com/merliot/gate"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Pin is a host GPIO pin reached through periph.io
type Pin struct {
	p gpio.PinIO
}

// New looks the pin up by name ("GPIO17", or a board name like "P1_11")
func New(name string) (*Pin, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	if n, ok := gpioNumber(name); ok {
		name = fmt.Sprintf("GPIO%d", n)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("unknown pin %q", name)
	}
	return &Pin{p: p}, nil
}

func (p *Pin) Configure(cfg gate.PinConfig) error {
	if cfg.Mode != gate.PinInput {
		return fmt.Errorf("%s: only input mode is supported", p)
	}
	pull := gpio.Float
	if cfg.PullUp {
		pull = gpio.PullUp
	}
	edge := gpio.NoEdge
	if cfg.Interrupts {
		edge = gpio.BothEdges
	}
	return p.p.In(pull, edge)
}

func (p *Pin) Get() gate.Level {
	return gate.Level(p.p.Read())
}

func (p *Pin) String() string {
	return p.p.Name()
}
