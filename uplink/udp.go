package uplink

import (
	"errors"
	"net"
	"net/url"
	"time"
)

// maxDatagram is big enough that oversized payloads reach the bus whole and
// get rejected there instead of arriving truncated
const maxDatagram = 1500

type udpTransport struct {
	conn net.Conn
	buf  []byte
}

func dialUDP(u *url.URL) (Transport, error) {
	if u.Port() == "" {
		return nil, errors.New("udp: missing port in " + u.Host)
	}
	conn, err := net.Dial("udp", u.Host)
	if err != nil {
		return nil, err
	}
	return &udpTransport{conn: conn, buf: make([]byte, maxDatagram)}, nil
}

func (t *udpTransport) Send(msg []byte) error {
	_, err := t.conn.Write(msg)
	return err
}

func (t *udpTransport) Recv(deadline time.Time) ([]byte, error) {
	if err := t.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	n, err := t.conn.Read(t.buf)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), t.buf[:n]...), nil
}

func (t *udpTransport) Close() error {
	return t.conn.Close()
}
