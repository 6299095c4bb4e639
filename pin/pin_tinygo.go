//go:build tinygo

package pin

import (
	"errors"
	"fmt"
	"machine"

	"github.com/merliot/gate"
)

// Pin is an MCU GPIO pin
type Pin struct {
	p    machine.Pin
	name string
}

// New returns the pin named "GPIO<n>"
func New(name string) (*Pin, error) {
	n, ok := gpioNumber(name)
	if !ok {
		return nil, fmt.Errorf("unknown pin %q", name)
	}
	return &Pin{p: machine.Pin(n), name: name}, nil
}

// Configure the pin.  Interrupts are left off; machine pins only get an
// interrupt when SetInterrupt is called.
func (p *Pin) Configure(cfg gate.PinConfig) error {
	if cfg.Mode != gate.PinInput {
		return errors.New(p.name + ": only input mode is supported")
	}
	mode := machine.PinInput
	if cfg.PullUp {
		mode = machine.PinInputPullup
	}
	p.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (p *Pin) Get() gate.Level {
	return gate.Level(p.p.Get())
}

func (p *Pin) String() string {
	return p.name
}
