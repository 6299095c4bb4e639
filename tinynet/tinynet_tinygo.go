//go:build tinygo

package tinynet

import (
	"errors"
	"time"

	"tinygo.org/x/drivers/netlink"
	"tinygo.org/x/drivers/netlink/probe"
)

var link netlink.Netlinker

// NetConnect probes the board's network device and joins the AP.  Calling
// it again after a successful connect does nothing.
func NetConnect(ssid, pass string) error {
	if link != nil {
		return nil
	}
	if ssid == "" {
		return errors.New("no Wi-Fi SSID; build with -ldflags \"-X main.ssid=...\"")
	}

	// wait a bit for serial
	time.Sleep(2 * time.Second)

	l, _ := probe.Probe()

	err := l.NetConnect(&netlink.ConnectParams{
		Ssid:       ssid,
		Passphrase: pass,
	})
	if err != nil {
		return err
	}

	link = l
	return nil
}
