package uplink

import (
	"context"
	"errors"
	"net"
	"net/url"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/merliot/gate"
)

type sinkSocket struct {
	gate.Socket
	got chan string
}

func newSink(bus *gate.Bus) *sinkSocket {
	s := &sinkSocket{
		Socket: gate.NewSocket("sink", gate.SocketFlagBcast),
		got:    make(chan string, 8),
	}
	bus.Plugin(s)
	return s
}

func (s *sinkSocket) Send(pkt *gate.Packet) error {
	s.got <- pkt.String()
	return nil
}

func relayBus() *gate.Bus {
	bus := gate.NewBus("test bus", nil, nil)
	bus.Handle("", func(pkt *gate.Packet) { pkt.Broadcast() })
	return bus
}

func recv(c *qt.C, ch chan string) string {
	c.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(5 * time.Second):
		c.Fatal("nothing received")
	}
	return ""
}

func readFrom(c *qt.C, pc net.PacketConn) (string, net.Addr) {
	c.Helper()
	buf := make([]byte, maxDatagram)
	pc.SetReadDeadline(time.Now().Add(5 * time.Second))
	n, addr, err := pc.ReadFrom(buf)
	c.Assert(err, qt.IsNil)
	return string(buf[:n]), addr
}

func TestNew(t *testing.T) {
	bus := relayBus()
	cases := []struct {
		url  string
		name string
		err  string
	}{
		{"udp://127.0.0.1:3333", "UDP", ""},
		{"ws://hub.local:8080/ws/", "WS", ""},
		{"mqtt://broker:1883/gate", "MQTT", ""},
		{"udp://127.0.0.1:3333?ping-period=5", "UDP", ""},
		{"ftp://hub.local/", "", `unsupported uplink scheme "ftp"`},
		{"udp:///nohost", "", `missing host in uplink "udp:///nohost"`},
		{"udp://127.0.0.1:3333?ping-period=soon", "", `invalid ping-period "soon"`},
		{"udp://127.0.0.1:3333?ping-period=-1", "", `invalid ping-period "-1"`},
	}

	for _, tt := range cases {
		t.Run(tt.url, func(t *testing.T) {
			c := qt.New(t)
			client, err := New(bus, tt.url, nil, "", "")
			if tt.err != "" {
				c.Assert(err, qt.ErrorMatches, tt.err)
				return
			}
			c.Assert(err, qt.IsNil)
			c.Assert(client.Name(), qt.Equals, tt.name)
		})
	}
}

func TestPingPeriod(t *testing.T) {
	c := qt.New(t)
	client, err := New(relayBus(), "udp://127.0.0.1:3333?ping-period=5", nil, "", "")
	c.Assert(err, qt.IsNil)
	c.Assert(client.pingPeriod, qt.Equals, 5*time.Second)
}

func TestInitMissingPort(t *testing.T) {
	c := qt.New(t)
	client, err := New(relayBus(), "udp://127.0.0.1", nil, "", "")
	c.Assert(err, qt.IsNil)
	c.Assert(client.Init(), qt.ErrorMatches, "udp: missing port in 127.0.0.1")
}

func TestSendNotConnected(t *testing.T) {
	c := qt.New(t)
	bus := relayBus()
	client, err := New(bus, "udp://127.0.0.1:3333", nil, "", "")
	c.Assert(err, qt.IsNil)

	var pkt *gate.Packet
	local := gate.NewBus("local", nil, nil)
	local.Handle("", func(p *gate.Packet) { pkt = p })
	i := gate.NewInjector("injector", local)
	c.Assert(i.Inject([]byte("up")), qt.IsNil)

	err = client.Send(pkt)
	c.Assert(errors.Is(err, ErrNotConnected), qt.IsTrue)
}

func TestUDPRelay(t *testing.T) {
	c := qt.New(t)

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	c.Assert(err, qt.IsNil)
	defer pc.Close()

	bus := relayBus()
	sink := newSink(bus)

	client, err := New(bus, "udp://"+pc.LocalAddr().String(), []byte("hello"), "", "")
	c.Assert(err, qt.IsNil)
	client.recvTimeout = 50 * time.Millisecond

	c.Assert(client.Init(), qt.IsNil)
	announce, addr := readFrom(c, pc)
	c.Assert(announce, qt.Equals, "hello")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	// far end to bus
	_, err = pc.WriteTo([]byte("down"), addr)
	c.Assert(err, qt.IsNil)
	c.Assert(recv(c, sink.got), qt.Equals, "down")

	// bus to far end
	i := gate.NewInjector("injector", bus)
	c.Assert(i.Inject([]byte("up")), qt.IsNil)
	up, _ := readFrom(c, pc)
	c.Assert(up, qt.Equals, "up")
	c.Assert(recv(c, sink.got), qt.Equals, "up")

	// the far end's ping gets a pong
	_, err = pc.WriteTo(pingMsg, addr)
	c.Assert(err, qt.IsNil)
	pong, _ := readFrom(c, pc)
	c.Assert(pong, qt.Equals, "pong")

	cancel()
	select {
	case err := <-done:
		c.Assert(err, qt.IsNil)
	case <-time.After(5 * time.Second):
		c.Fatal("Run did not return")
	}
	c.Assert(client.transport(), qt.IsNil)
}

func TestUDPPing(t *testing.T) {
	c := qt.New(t)

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	c.Assert(err, qt.IsNil)
	defer pc.Close()

	client, err := New(relayBus(), "udp://"+pc.LocalAddr().String()+"?ping-period=1", nil, "", "")
	c.Assert(err, qt.IsNil)
	client.recvTimeout = 50 * time.Millisecond
	c.Assert(client.Init(), qt.IsNil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)

	ping, addr := readFrom(c, pc)
	c.Assert(ping, qt.Equals, "ping")
	_, err = pc.WriteTo(pongMsg, addr)
	c.Assert(err, qt.IsNil)

	// answered, so the next ping comes on the same connection
	ping, addr2 := readFrom(c, pc)
	c.Assert(ping, qt.Equals, "ping")
	c.Assert(addr2.String(), qt.Equals, addr.String())
}

func TestUDPRedialAfterNoPong(t *testing.T) {
	c := qt.New(t)

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	c.Assert(err, qt.IsNil)
	defer pc.Close()

	client, err := New(relayBus(), "udp://"+pc.LocalAddr().String()+"?ping-period=1",
		[]byte("hello"), "", "")
	c.Assert(err, qt.IsNil)
	client.recvTimeout = 50 * time.Millisecond
	client.retry = 50 * time.Millisecond
	c.Assert(client.Init(), qt.IsNil)

	hello, addr := readFrom(c, pc)
	c.Assert(hello, qt.Equals, "hello")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	// never answered
	ping, pingAddr := readFrom(c, pc)
	c.Assert(ping, qt.Equals, "ping")
	c.Assert(pingAddr.String(), qt.Equals, addr.String())

	// a new connection announces again
	hello, addr2 := readFrom(c, pc)
	c.Assert(hello, qt.Equals, "hello")
	c.Assert(addr2.String(), qt.Not(qt.Equals), addr.String())

	cancel()
	select {
	case err := <-done:
		c.Assert(err, qt.IsNil)
	case <-time.After(5 * time.Second):
		c.Fatal("Run did not return")
	}
}

type fakeTransport struct {
	mu      sync.Mutex
	sent    []string
	closed  bool
	recvErr error
}

func (f *fakeTransport) Send(msg []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, string(msg))
	return nil
}

func (f *fakeTransport) Recv(deadline time.Time) ([]byte, error) {
	if f.recvErr != nil {
		return nil, f.recvErr
	}
	time.Sleep(time.Until(deadline))
	return nil, timeoutError{}
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) state() ([]string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...), f.closed
}

func TestRedialAfterTransportError(t *testing.T) {
	c := qt.New(t)

	client, err := New(relayBus(), "udp://127.0.0.1:3333", []byte("hello"), "", "")
	c.Assert(err, qt.IsNil)
	client.recvTimeout = 10 * time.Millisecond
	client.retry = 10 * time.Millisecond

	dialed := make(chan *fakeTransport, 8)
	n := 0
	client.dial = func(*url.URL) (Transport, error) {
		n++
		tr := &fakeTransport{}
		if n == 1 {
			tr.recvErr = errors.New("connection reset")
		}
		dialed <- tr
		return tr, nil
	}

	c.Assert(client.Init(), qt.IsNil)
	first := <-dialed

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	var second *fakeTransport
	select {
	case second = <-dialed:
	case <-time.After(5 * time.Second):
		c.Fatal("no redial")
	}

	cancel()
	select {
	case err := <-done:
		c.Assert(err, qt.IsNil)
	case <-time.After(5 * time.Second):
		c.Fatal("Run did not return")
	}

	sent, closed := first.state()
	c.Assert(sent, qt.DeepEquals, []string{"hello"})
	c.Assert(closed, qt.IsTrue)

	sent, closed = second.state()
	c.Assert(sent, qt.DeepEquals, []string{"hello"})
	c.Assert(closed, qt.IsTrue)
}

func TestRunCanceledDoesNotDial(t *testing.T) {
	c := qt.New(t)

	client, err := New(relayBus(), "udp://127.0.0.1:3333", nil, "", "")
	c.Assert(err, qt.IsNil)
	dials := 0
	client.dial = func(*url.URL) (Transport, error) {
		dials++
		return &fakeTransport{}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Assert(client.Run(ctx), qt.IsNil)
	c.Assert(dials, qt.Equals, 0)
}

func TestIsTimeout(t *testing.T) {
	c := qt.New(t)
	c.Assert(isTimeout(timeoutError{}), qt.IsTrue)
	c.Assert(isTimeout(errors.New("boom")), qt.IsFalse)
	c.Assert(isTimeout(nil), qt.IsFalse)
}
