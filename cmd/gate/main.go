package main

import (
	"fmt"
	"os"

	"github.com/merliot/gate"
	"github.com/merliot/gate/ble"
	"github.com/merliot/gate/pin"
	"github.com/merliot/gate/uplink"
)

// Set with -ldflags "-X main.ssid=... -X main.pass=..." on boards without an
// environment
var (
	ssid string
	pass string
)

// maxSockets on the relay bus: the BLE peripheral, the uplink and the status
// injector
const maxSockets = 3

func main() {
	cfg, err := gate.LoadConfig()
	if err != nil {
		fmt.Printf("Config error: %s\r\n", err)
		os.Exit(1)
	}
	if cfg.WifiSSID == "" {
		cfg.WifiSSID, cfg.WifiPass = ssid, pass
	}

	log := gate.NewLogger(os.Stdout, cfg.LogLevel)

	button, err := pin.New(cfg.Button)
	if err != nil {
		log.Error(cfg.Tag, "Button: "+err.Error())
		os.Exit(1)
	}

	var bus *gate.Bus
	connect := func(s gate.Socketer) {
		log.Info(cfg.Tag, fmt.Sprintf("%s: %s plugged in", bus.Name(), s))
	}
	disconnect := func(s gate.Socketer) {
		log.Info(cfg.Tag, fmt.Sprintf("%s: %s unplugged", bus.Name(), s))
	}
	bus = gate.NewBus("relay", connect, disconnect)
	bus.MaxSockets(maxSockets)

	dev := cfg.Device()
	bus.Handle("", dev.Handle)
	status := gate.NewInjector("status", bus)
	defer status.Close()

	peripheral := ble.New(bus, cfg.BLEName)

	client, err := uplink.New(bus, cfg.Uplink, dev.Announce(),
		cfg.WifiSSID, cfg.WifiPass)
	if err != nil {
		log.Error(cfg.Tag, "Uplink: "+err.Error())
		os.Exit(1)
	}

	runner := gate.NewRunner(cfg.Tag, button, peripheral, client, log)
	runner.PollInterval = cfg.PollInterval
	runner.Status = func(state gate.State) {
		if err := status.Inject(dev.Status(state)); err != nil {
			log.Error(cfg.Tag, "Status: "+err.Error())
		}
	}

	ctx, stop := notifyContext()
	defer stop()

	if err := runner.Run(ctx); err != nil {
		log.Error(cfg.Tag, "Worker: "+err.Error())
	}
}
