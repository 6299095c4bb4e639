package uplink

import (
	"errors"
	"net"
	"net/url"
	"time"
)

// Transport moves payloads to and from the far end.  Send may be called
// concurrently with Recv.
type Transport interface {
	Send([]byte) error
	// Recv returns the next payload, or a net.Error with Timeout() true if
	// nothing arrived before deadline
	Recv(deadline time.Time) ([]byte, error)
	Close() error
}

type dialFunc func(u *url.URL) (Transport, error)

// dialers by URL scheme; build-specific files add to it
var dialers = map[string]dialFunc{
	"udp": dialUDP,
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

var _ net.Error = timeoutError{}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
