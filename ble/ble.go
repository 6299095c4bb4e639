// Package ble is the wireless peripheral: a Nordic UART Service (NUS) GATT
// server.  Centrals write payloads to the RX characteristic; the payloads go
// onto the packet bus.  Packets sent to the peripheral go back out as TX
// notifications.
package ble

import (
	"fmt"

	"github.com/merliot/gate"
	"tinygo.org/x/bluetooth"
)

// notifyChunk is the largest TX notification payload with the default MTU
const notifyChunk = 20

var (
	serviceUUID = bluetooth.ServiceUUIDNordicUART
	rxUUID      = bluetooth.CharacteristicUUIDUARTRX
	txUUID      = bluetooth.CharacteristicUUIDUARTTX
)

// Peripheral implements gate.Subsystem and gate.Socketer
type Peripheral struct {
	gate.Socket
	bus       *gate.Bus
	adapter   *bluetooth.Adapter
	localName string
	rxChar    bluetooth.Characteristic
	txChar    bluetooth.Characteristic
}

// New returns a peripheral on the default adapter, advertising as localName
func New(bus *gate.Bus, localName string) *Peripheral {
	return &Peripheral{
		Socket:    gate.NewSocket("ble:"+localName, gate.SocketFlagBcast),
		bus:       bus,
		adapter:   bluetooth.DefaultAdapter,
		localName: localName,
	}
}

func (p *Peripheral) Name() string {
	return "BLE"
}

// Init enables the BLE stack, adds the NUS service, starts advertising and
// plugs the peripheral into the bus
func (p *Peripheral) Init() error {
	if err := p.adapter.Enable(); err != nil {
		return fmt.Errorf("enable BLE stack: %w", err)
	}

	err := p.adapter.AddService(&bluetooth.Service{
		UUID: serviceUUID,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				Handle:     &p.rxChar,
				UUID:       rxUUID,
				Flags:      bluetooth.CharacteristicWritePermission | bluetooth.CharacteristicWriteWithoutResponsePermission,
				WriteEvent: p.written,
			},
			{
				Handle: &p.txChar,
				UUID:   txUUID,
				Flags:  bluetooth.CharacteristicNotifyPermission | bluetooth.CharacteristicReadPermission,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("add service: %w", err)
	}

	adv := p.adapter.DefaultAdvertisement()
	err = adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    p.localName,
		ServiceUUIDs: []bluetooth.UUID{serviceUUID},
	})
	if err != nil {
		return fmt.Errorf("config adv: %w", err)
	}
	if err := adv.Start(); err != nil {
		return fmt.Errorf("start adv: %w", err)
	}

	p.bus.Plugin(p)
	return nil
}

func (p *Peripheral) written(client bluetooth.Connection, offset int, value []byte) {
	// the stack reuses value after the callback returns
	msg := append([]byte(nil), value...)
	if err := p.bus.Receive(p, msg); err != nil {
		fmt.Printf("Dropping write on %s: %s\r\n", p, err)
	}
}

// Send the packet to the connected central as TX notifications
func (p *Peripheral) Send(pkt *gate.Packet) error {
	for _, part := range chunks(pkt.Bytes(), notifyChunk) {
		if _, err := p.txChar.Write(part); err != nil {
			return fmt.Errorf("send notification: %w", err)
		}
	}
	return nil
}

// Close unplugs the peripheral from the bus; advertising continues
func (p *Peripheral) Close() {
	p.bus.Unplug(p)
}

// chunks breaks b up in pieces of at most n bytes
func chunks(b []byte, n int) [][]byte {
	var parts [][]byte
	for len(b) != 0 {
		partlen := n
		if len(b) < n {
			partlen = len(b)
		}
		parts = append(parts, b[:partlen])
		b = b[partlen:]
	}
	return parts
}

// Verify that Peripheral satisfies gate.Subsystem and gate.Socketer
var _ gate.Subsystem = &Peripheral{}
var _ gate.Socketer = &Peripheral{}
