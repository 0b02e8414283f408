//go:build !linux && !windows
// +build !linux,!windows

package waitset

import "os"

// Without a parent death signal the parent supervisor is only checked when
// the latch wakes a waiter.
var parentDeathSignal os.Signal

func watchParentDeath() error {
	return nil
}
