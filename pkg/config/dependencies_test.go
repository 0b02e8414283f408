package config

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTCPListenerFunc(t *testing.T) {
	t.Parallel()

	def := GetTCPListenerFunc(nil)
	l, err := def("tcp", &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	l.Close()

	errCustom := errors.New("custom")
	custom := GetTCPListenerFunc(&Dependencies{
		TCPListener: func(string, *net.TCPAddr) (net.Listener, error) { return nil, errCustom },
	})
	_, err = custom("tcp", nil)
	assert.ErrorIs(t, err, errCustom)
}

func TestGetExitFunc(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, GetExitFunc(nil))
	assert.NotNil(t, GetExitFunc(&Dependencies{}))

	var code int
	exit := GetExitFunc(&Dependencies{Exit: func(c int) { code = c }})
	exit(3)
	assert.Equal(t, 3, code)
}
