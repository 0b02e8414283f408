package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		host string
		port int
		want string
	}{
		{name: "IPv4 address", host: "192.168.1.1", port: 8080, want: "192.168.1.1:8080"},
		{name: "hostname", host: "example.com", port: 5433, want: "example.com:5433"},
		{name: "IPv6 address", host: "::1", port: 8080, want: "[::1]:8080"},
		{name: "IPv6 compressed", host: "2001:db8::1", port: 80, want: "[2001:db8::1]:80"},
		{name: "empty host", host: "", port: 5433, want: ":5433"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Addr(tc.host, tc.port))
		})
	}
}

func TestPerm(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "rw------- (0600)", Perm(0o600))
	assert.Equal(t, "rw-r----- (0640)", Perm(0o640))
	assert.Equal(t, "rwxrwxrwx (0777)", Perm(0o777))
	assert.Equal(t, "--------- (0000)", Perm(0))
	assert.Equal(t, "rw-r--r-- (0644)", Perm(0o100644))
}
