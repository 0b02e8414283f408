// Package format renders addresses and file modes for logs and messages.
package format

import (
	"fmt"
	"net"
	"strconv"
)

// Addr joins host and port into a dialable address, bracketing IPv6 hosts.
func Addr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Perm renders permission bits the way ls does, with the octal value
// appended, e.g. "rw-r----- (0640)".
func Perm(mode uint32) string {
	const rwx = "rwxrwxrwx"
	b := []byte("---------")
	for i := 0; i < 9; i++ {
		if mode&(1<<uint(8-i)) != 0 {
			b[i] = rwx[i]
		}
	}
	return fmt.Sprintf("%s (%04o)", b, mode&0o777)
}
