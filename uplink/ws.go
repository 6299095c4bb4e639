//go:build !tinygo

package uplink

import (
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/websocket"
)

func init() {
	dialers["ws"] = dialWS
	dialers["wss"] = dialWS
}

// wsDialTimeout bounds the TCP connect and the websocket handshake dial
const wsDialTimeout = 10 * time.Second

type wsTransport struct {
	conn *websocket.Conn
}

func dialWS(u *url.URL) (Transport, error) {
	config, err := wsConfig(u)
	if err != nil {
		return nil, err
	}
	conn, err := websocket.DialConfig(config)
	if err != nil {
		return nil, err
	}
	return &wsTransport{conn: conn}, nil
}

func wsConfig(u *url.URL) (*websocket.Config, error) {
	origin := "http://localhost/"

	// credentials go in the basic auth header, not the location
	loc := *u
	loc.User = nil

	// Configure the websocket
	config, err := websocket.NewConfig(loc.String(), origin)
	if err != nil {
		return nil, err
	}

	if u.User != nil {
		// Set the basic auth header for the request
		req, err := http.NewRequest("GET", loc.String(), nil)
		if err != nil {
			return nil, err
		}
		passwd, _ := u.User.Password()
		req.SetBasicAuth(u.User.Username(), passwd)
		config.Header = req.Header
	}

	config.Dialer = &net.Dialer{Timeout: wsDialTimeout}
	return config, nil
}

func (t *wsTransport) Send(msg []byte) error {
	return websocket.Message.Send(t.conn, msg)
}

func (t *wsTransport) Recv(deadline time.Time) ([]byte, error) {
	if err := t.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	var msg []byte
	if err := websocket.Message.Receive(t.conn, &msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}
