//go:build !tinygo

package tinynet

// NetConnect does nothing on hosts
func NetConnect(ssid, pass string) error {
	return nil
}
