package gate

import (
	"fmt"
	"os"
	"time"
)

// GetEnv returns the value of the environment variable name, or defaultValue
// if it is not set.
func GetEnv(name string, defaultValue string) string {
	value, ok := os.LookupEnv(name)
	if !ok {
		return defaultValue
	}
	return value
}

// Config holds the device settings.  Every field has a default; the
// environment can override it.
type Config struct {
	Tag          string        // GATE_TAG
	Button       string        // GATE_BUTTON
	PollInterval time.Duration // GATE_POLL
	BLEName      string        // GATE_BLE_NAME
	Uplink       string        // GATE_UPLINK
	Id           string        // GATE_ID
	Model        string        // GATE_MODEL
	Name         string        // GATE_NAME
	WifiSSID     string        // GATE_WIFI_SSID
	WifiPass     string        // GATE_WIFI_PASS
	LogLevel     string        // GATE_LOG_LEVEL
}

// LoadConfig reads the config from the environment
func LoadConfig() (Config, error) {
	cfg := Config{
		Tag:      GetEnv("GATE_TAG", "main"),
		Button:   GetEnv("GATE_BUTTON", "GPIO0"),
		BLEName:  GetEnv("GATE_BLE_NAME", "gate"),
		Uplink:   GetEnv("GATE_UPLINK", "udp://192.168.4.1:3333"),
		Id:       GetEnv("GATE_ID", "gate01"),
		Model:    GetEnv("GATE_MODEL", "gate"),
		Name:     GetEnv("GATE_NAME", "gate"),
		WifiSSID: GetEnv("GATE_WIFI_SSID", ""),
		WifiPass: GetEnv("GATE_WIFI_PASS", ""),
		LogLevel: GetEnv("GATE_LOG_LEVEL", "info"),
	}

	poll, err := time.ParseDuration(GetEnv("GATE_POLL", DefaultPollInterval.String()))
	if err != nil {
		return cfg, fmt.Errorf("GATE_POLL: %w", err)
	}
	if poll <= 0 {
		return cfg, fmt.Errorf("GATE_POLL: must be positive, got %s", poll)
	}
	cfg.PollInterval = poll

	for _, id := range []struct{ env, val string }{
		{"GATE_ID", cfg.Id}, {"GATE_MODEL", cfg.Model}, {"GATE_NAME", cfg.Name},
	} {
		if !ValidId(id.val) {
			return cfg, fmt.Errorf("%s: invalid id %q", id.env, id.val)
		}
	}

	return cfg, nil
}

// Device returns the device identity from the config.  Call after a
// successful LoadConfig.
func (c Config) Device() Device {
	return NewDevice(c.Id, c.Model, c.Name)
}
