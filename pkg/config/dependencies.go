package config

import (
	"net"
	"os"
)

// Dependencies contains injectable dependencies for testing and customization.
// All fields are optional and will use default implementations if nil.
type Dependencies struct {
	TCPListener TCPListenerFunc
	Exit        ExitFunc
}

// TCPListenerFunc is a function that creates a TCP listener.
// It returns a net.Listener to allow for mock implementations.
type TCPListenerFunc func(network string, laddr *net.TCPAddr) (net.Listener, error)

// ExitFunc terminates the process with the given status code. Tests replace
// it to observe fatal conditions without exiting.
type ExitFunc func(code int)

// GetTCPListenerFunc returns the TCP listener function from dependencies, or a default implementation.
// If deps is nil or deps.TCPListener is nil, returns a function that uses net.ListenTCP.
func GetTCPListenerFunc(deps *Dependencies) TCPListenerFunc {
	if deps != nil && deps.TCPListener != nil {
		return deps.TCPListener
	}
	return func(network string, laddr *net.TCPAddr) (net.Listener, error) {
		return net.ListenTCP(network, laddr)
	}
}

// GetExitFunc returns the exit function from dependencies, or os.Exit.
func GetExitFunc(deps *Dependencies) ExitFunc {
	if deps != nil && deps.Exit != nil {
		return deps.Exit
	}
	return os.Exit
}
