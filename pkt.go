package gate

import (
	"fmt"
)

// Packet is sent and received on a bus via a socket
type Packet struct {
	bus     *Bus
	src     Socketer
	message []byte // payload
}

// Bytes returns the packet message
func (p *Packet) Bytes() []byte {
	return p.message
}

func (p *Packet) String() string {
	return string(p.message)
}

// SetBytes replaces the packet message
func (p *Packet) SetBytes(message []byte) *Packet {
	p.message = message
	return p
}

// Src returns the socket the packet arrived on
func (p *Packet) Src() Socketer {
	return p.src
}

// Reply sends the packet back to sender
func (p *Packet) Reply() *Packet {
	if p.src == nil {
		fmt.Printf("Can't reply to sender: source is nil\r\n")
		return p
	}
	if err := p.src.Send(p); err != nil {
		fmt.Printf("Reply: src %s: %s\r\n", p.src, err)
	}
	return p
}

// Broadcast the packet to all other matching-tagged sockets on the bus.  The
// source socket is excluded.
func (p *Packet) Broadcast() *Packet {
	if p.bus == nil {
		fmt.Printf("Can't broadcast packet: bus is nil\r\n")
		return p
	}
	p.bus.broadcast(p)
	return p
}
