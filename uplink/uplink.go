// Package uplink is the network client.  It dials the far end named by a
// URL, announces the device, and relays payloads between the far end and the
// packet bus for as long as its duty cycle runs.
//
// Supported URLs:
//
//	udp://host:port
//	ws://[user:passwd@]host[:port]/path      (wss too)
//	mqtt://[user:passwd@]host:port/topic     publishes topic/up, subscribes topic/down
//
// The query parameter ping-period=N turns on ping/pong liveness checks every
// N seconds.
package uplink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/merliot/gate"
	"github.com/merliot/gate/tinynet"
)

// ErrNotConnected is returned by Send between connections
var ErrNotConnected = errors.New("not connected")

var pingMsg = []byte("ping")
var pongMsg = []byte("pong")

// Client implements gate.Worker and gate.Socketer
type Client struct {
	gate.Socket
	bus        *gate.Bus
	url        *url.URL
	dial       dialFunc
	announce   []byte
	ssid, pass string
	pingPeriod time.Duration

	// retry is the pause between dial attempts
	retry time.Duration
	// recvTimeout bounds each receive so the duty cycle can check for
	// cancellation and pings
	recvTimeout time.Duration

	mu sync.Mutex
	tr Transport
}

// New returns a client for rawURL.  announce is sent first on every
// connection.  ssid and pass are for the Wi-Fi link on boards that need one.
func New(bus *gate.Bus, rawURL string, announce []byte, ssid, pass string) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	dial, ok := dialers[u.Scheme]
	if !ok {
		return nil, fmt.Errorf("unsupported uplink scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host in uplink %q", u.Redacted())
	}

	var period int
	if p := u.Query().Get("ping-period"); p != "" {
		period, err = strconv.Atoi(p)
		if err != nil || period < 0 {
			return nil, fmt.Errorf("invalid ping-period %q", p)
		}
	}

	return &Client{
		Socket:      gate.NewSocket(u.Scheme+":"+u.Host+u.Path, gate.SocketFlagBcast),
		bus:         bus,
		url:         u,
		dial:        dial,
		announce:    announce,
		ssid:        ssid,
		pass:        pass,
		pingPeriod:  time.Duration(period) * time.Second,
		retry:       time.Second,
		recvTimeout: time.Second,
	}, nil
}

// Name is the upper-cased URL scheme: UDP, WS, WSS or MQTT
func (c *Client) Name() string {
	return strings.ToUpper(c.url.Scheme)
}

// Init brings the network link up and makes the first connection
func (c *Client) Init() error {
	if err := tinynet.NetConnect(c.ssid, c.pass); err != nil {
		return fmt.Errorf("network link: %w", err)
	}
	return c.connect()
}

// Run is the duty cycle.  It serves the current connection, and redials
// every retry period after a disconnect, until ctx is done.
func (c *Client) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if c.transport() == nil {
			if err := c.connect(); err != nil {
				fmt.Printf("Dial error %s: %s\r\n", c, err)
			}
		}

		if tr := c.transport(); tr != nil {
			c.serve(ctx, tr)
			c.disconnect()
		}

		// try again in a second
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.retry):
		}
	}
}

func (c *Client) transport() Transport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tr
}

func (c *Client) connect() error {
	tr, err := c.dial(c.url)
	if err != nil {
		return err
	}

	if len(c.announce) > 0 {
		if err := tr.Send(c.announce); err != nil {
			tr.Close()
			return fmt.Errorf("sending announcement: %w", err)
		}
	}

	c.mu.Lock()
	c.tr = tr
	c.mu.Unlock()

	c.bus.Plugin(c)
	return nil
}

func (c *Client) disconnect() {
	c.bus.Unplug(c)

	c.mu.Lock()
	tr := c.tr
	c.tr = nil
	c.mu.Unlock()

	if tr != nil {
		tr.Close()
	}
}

func (c *Client) write(tr Transport, msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return tr.Send(msg)
}

// serve relays payloads from tr onto the bus until ctx is done or the
// connection fails
func (c *Client) serve(ctx context.Context, tr Transport) {
	var pingSent time.Time
	var pongReceived bool

	ping := func() error {
		pongReceived = false
		pingSent = time.Now()
		return c.write(tr, pingMsg)
	}

	if c.pingPeriod > 0 {
		if err := ping(); err != nil {
			fmt.Printf("Disconnecting %s: %s\r\n", c, err)
			return
		}
	}

	for ctx.Err() == nil {
		msg, err := tr.Recv(time.Now().Add(c.recvTimeout))
		switch {
		case err == nil && bytes.Equal(msg, pongMsg):
			pongReceived = true
		case err == nil && bytes.Equal(msg, pingMsg):
			if err := c.write(tr, pongMsg); err != nil {
				fmt.Printf("Error sending pong, disconnecting %s: %s\r\n", c, err)
				return
			}
		case err == nil:
			if err := c.bus.Receive(c, msg); err != nil {
				fmt.Printf("Dropping packet: %s\r\n", err)
			}
		case isTimeout(err):
			// allow timeout errors
		default:
			fmt.Printf("Disconnecting %s: %s\r\n", c, err)
			return
		}

		if c.pingPeriod > 0 && time.Since(pingSent) >= c.pingPeriod {
			if !pongReceived {
				fmt.Printf("No pong; disconnecting %s\r\n", c)
				return
			}
			if err := ping(); err != nil {
				fmt.Printf("Disconnecting %s: %s\r\n", c, err)
				return
			}
		}
	}
}

// Send the packet to the far end
func (c *Client) Send(pkt *gate.Packet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tr == nil {
		return fmt.Errorf("%s: %w", c, ErrNotConnected)
	}
	return c.tr.Send(pkt.Bytes())
}

// Close drops the current connection.  A running duty cycle redials.
func (c *Client) Close() {
	c.disconnect()
}

// Verify that Client satisfies gate.Worker and gate.Socketer
var _ gate.Worker = &Client{}
var _ gate.Socketer = &Client{}
