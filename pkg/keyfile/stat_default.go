//go:build !windows
// +build !windows

package keyfile

import (
	"golang.org/x/sys/unix"
)

func statFile(path string) (Info, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return Info{}, err
	}

	return Info{
		Regular: uint32(st.Mode)&unix.S_IFMT == unix.S_IFREG,
		UID:     st.Uid,
		Mode:    uint32(st.Mode) & 0o777,
	}, nil
}

func effectiveUID() uint32 {
	return uint32(unix.Geteuid())
}
