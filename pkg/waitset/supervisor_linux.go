//go:build linux
// +build linux

package waitset

import "golang.org/x/sys/unix"

const parentDeathSignal = unix.SIGUSR2

func watchParentDeath() error {
	return unix.Prctl(unix.PR_SET_PDEATHSIG, uintptr(parentDeathSignal), 0, 0, 0)
}
