// Package pin opens the start signal input pin by name.
package pin

import (
	"strconv"
	"strings"
)

// gpioNumber parses a "GPIO<n>" pin name
func gpioNumber(name string) (int, bool) {
	digits, ok := strings.CutPrefix(strings.ToUpper(name), "GPIO")
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
