//go:build !tinygo

package uplink

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

func init() {
	dialers["mqtt"] = dialMQTT
}

const (
	mqttConnectTimeout = 10 * time.Second
	mqttPublishTimeout = 5 * time.Second
	// mqttQueue is how many received payloads wait for Recv before drops
	mqttQueue = 16
)

type mqttTransport struct {
	client mqtt.Client
	up     string
	recv   chan []byte
}

// mqttTopics returns the publish and subscribe topics for mqtt://host/<topic>
func mqttTopics(u *url.URL) (up, down string, err error) {
	topic := strings.Trim(u.Path, "/")
	if topic == "" {
		return "", "", errors.New("mqtt: missing topic in " + u.Redacted())
	}
	return topic + "/up", topic + "/down", nil
}

func dialMQTT(u *url.URL) (Transport, error) {
	up, down, err := mqttTopics(u)
	if err != nil {
		return nil, err
	}

	clientID := u.Query().Get("client-id")
	if clientID == "" {
		clientID = "gate-" + strings.ReplaceAll(strings.Trim(u.Path, "/"), "/", "-")
	}

	opts := mqtt.NewClientOptions().
		AddBroker("tcp://" + u.Host).
		SetClientID(clientID).
		SetAutoReconnect(false).
		SetConnectTimeout(mqttConnectTimeout)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if passwd, ok := u.User.Password(); ok {
			opts.SetPassword(passwd)
		}
	}

	t := &mqttTransport{up: up, recv: make(chan []byte, mqttQueue)}
	t.client = mqtt.NewClient(opts)

	if err := wait(t.client.Connect(), mqttConnectTimeout); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	err = wait(t.client.Subscribe(down, 0, func(_ mqtt.Client, m mqtt.Message) {
		select {
		case t.recv <- m.Payload():
		default:
			fmt.Printf("Dropping mqtt message on %s: queue full\r\n", m.Topic())
		}
	}), mqttConnectTimeout)
	if err != nil {
		t.client.Disconnect(0)
		return nil, fmt.Errorf("mqtt subscribe %s: %w", down, err)
	}

	return t, nil
}

func wait(tok mqtt.Token, timeout time.Duration) error {
	if !tok.WaitTimeout(timeout) {
		return timeoutError{}
	}
	return tok.Error()
}

func (t *mqttTransport) Send(msg []byte) error {
	return wait(t.client.Publish(t.up, 0, false, msg), mqttPublishTimeout)
}

func (t *mqttTransport) Recv(deadline time.Time) ([]byte, error) {
	if !t.client.IsConnectionOpen() {
		return nil, errors.New("mqtt: connection lost")
	}
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case msg := <-t.recv:
		return msg, nil
	case <-timer.C:
		return nil, timeoutError{}
	}
}

func (t *mqttTransport) Close() error {
	t.client.Disconnect(250)
	return nil
}
