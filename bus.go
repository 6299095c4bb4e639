package gate

import (
	"fmt"
)

var defaultMaxSockets = 8

// MaxPacketSize is the largest payload the bus accepts
const MaxPacketSize = 256

// Bus is a logical packet broadcast bus.  Packets arrive on sockets connected
// to the bus: the BLE peripheral and the uplink.  A received packet is handed
// to the handler for the source socket's tag, which can broadcast it to the
// other sockets or reply back to sender.  Packets are broadcast only to other
// sockets with the same tag.  The empty tag "" is the default tag on the bus.
type Bus struct {
	name       string
	socketsMu  rwMutex
	sockets    map[Socketer]bool
	socketQ    chan bool
	handlersMu rwMutex
	handlers   map[string]func(*Packet)
	connect    func(Socketer)
	disconnect func(Socketer)
}

// NewBus returns a new bus with connect and disconnect callbacks
func NewBus(name string, connect, disconnect func(Socketer)) *Bus {
	if connect == nil {
		connect = func(Socketer) { /* don't notify */ }
	}
	if disconnect == nil {
		disconnect = func(Socketer) { /* don't notify */ }
	}
	return &Bus{
		name:       name,
		sockets:    make(map[Socketer]bool),
		socketQ:    make(chan bool, defaultMaxSockets),
		handlers:   make(map[string]func(*Packet)),
		connect:    connect,
		disconnect: disconnect,
	}
}

// Handle sets the packet handler for a socket tag.  It returns false if the
// tag already has a handler.
func (b *Bus) Handle(tag string, handler func(*Packet)) bool {
	if handler == nil {
		panic("handler is nil")
	}
	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()
	if _, ok := b.handlers[tag]; !ok {
		b.handlers[tag] = handler
		return true
	}
	return false
}

// Name returns the bus name
func (b *Bus) Name() string {
	return b.name
}

// MaxSockets sets the maximum number of socket connections that can be made to
// the bus.  Any socket connection attempts past the maximum will block until
// other sockets drop.  Call before any socket is plugged in.
func (b *Bus) MaxSockets(maxSockets int) {
	b.socketQ = make(chan bool, maxSockets)
}

// Plugin the socket to the bus
func (b *Bus) Plugin(s Socketer) {
	// block here when socketQ is full
	b.socketQ <- true

	b.socketsMu.Lock()
	b.sockets[s] = true
	b.socketsMu.Unlock()

	// call connect callback
	b.connect(s)
}

// Unplug the socket from the bus.  Unplugging a socket that is not plugged in
// does nothing.
func (b *Bus) Unplug(s Socketer) {
	b.socketsMu.Lock()
	_, ok := b.sockets[s]
	delete(b.sockets, s)
	b.socketsMu.Unlock()

	if !ok {
		return
	}

	// call disconnect callback
	b.disconnect(s)

	// release one from the socketQ
	<-b.socketQ
}

// broadcast packet to all sockets with matching tag, skipping the source
// socket src
func (b *Bus) broadcast(pkt *Packet) {
	b.socketsMu.RLock()
	defer b.socketsMu.RUnlock()
	for sock := range b.sockets {
		if pkt.src != sock &&
			pkt.src.Tag() == sock.Tag() &&
			sock.TestFlag(SocketFlagBcast) {
			if err := sock.Send(pkt); err != nil {
				fmt.Printf("Bcast  src %s dst %s: %s\r\n", pkt.src, sock, err)
			}
		}
	}
}

// Receive a payload from socket src and call the packet handler for the src
// socket's tag.  The payload is not copied.
func (b *Bus) Receive(src Socketer, message []byte) error {
	if len(message) > MaxPacketSize {
		return fmt.Errorf("%s: %d bytes: %w", src, len(message), ErrPacketTooLarge)
	}
	b.receive(&Packet{bus: b, src: src, message: message})
	return nil
}

func (b *Bus) receive(pkt *Packet) {
	b.handlersMu.RLock()
	handler, ok := b.handlers[pkt.src.Tag()]
	b.handlersMu.RUnlock()
	if ok {
		handler(pkt)
	}
}
