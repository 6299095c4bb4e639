//go:build tinygo

package main

import "context"

// firmware runs until power off
func notifyContext() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}
