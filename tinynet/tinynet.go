// Package tinynet brings the network link up before the uplink dials.
//
// On TinyGo boards this joins the Wi-Fi AP through the board's netlink
// driver.  Hosts already have a network; NetConnect is a no-op there.
package tinynet
