package secure

import "errors"

// Process exit codes used for fatal conditions.
const (
	// ExitAdminShutdown is used when the connection has to go away
	// because its supervisor disappeared.
	ExitAdminShutdown = 1
	// ExitConfig is used when the server cannot start with its
	// configuration.
	ExitConfig = 2
)

var (
	// ErrSupervisorLost is returned by a wait that observed supervisor
	// death when the exit func did not terminate the process.
	ErrSupervisorLost = errors.New("terminating connection due to unexpected supervisor exit")

	// ErrSSLNotSupported is returned by Open on a plaintext-only
	// connection.
	ErrSSLNotSupported = errors.New("SSL is not supported on this connection")

	// ErrInitialization wraps a provider initialization failure.
	ErrInitialization = errors.New("could not initialize SSL")

	errNoWaiter = errors.New("blocking I/O requested without a waiter")
)
