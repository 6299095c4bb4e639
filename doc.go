// Package gate brings a small BLE-to-network bridge device up.
//
// The device waits for its boot button, then initializes the wireless
// peripheral and the network uplink, in that order, and hands the uplink's
// duty cycle to a background task:
//
//	seq := gate.NewSequencer("main", button, peripheral, uplink, group, log)
//	state := seq.Run(ctx)
//
// Every collaborator (pin, subsystems, logger, task scheduler) is an interface
// so the sequence can run against real hardware or fakes.
package gate
