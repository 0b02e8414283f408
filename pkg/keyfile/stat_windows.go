//go:build windows
// +build windows

package keyfile

import "os"

func statFile(path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}

	return Info{
		Regular: fi.Mode().IsRegular(),
		Mode:    uint32(fi.Mode().Perm()),
	}, nil
}

func effectiveUID() uint32 {
	return 0
}
