package secure

import (
	"fmt"
	"sync"

	"dominicbreuker/securesock/pkg/log"
	"dominicbreuker/securesock/pkg/transport"
)

// Lifecycle manages the process-wide state of the secure transport
// provider: initial load at server start, reloads, and teardown.
type Lifecycle struct {
	provider transport.Provider
	logger   *log.Logger
	exit     func(code int)

	mu     sync.Mutex
	loaded bool
}

// NewLifecycle returns the lifecycle for provider, which may be nil for a
// plaintext-only server. exit is called with ExitConfig when the initial
// load fails.
func NewLifecycle(provider transport.Provider, logger *log.Logger, exit func(code int)) *Lifecycle {
	return &Lifecycle{
		provider: provider,
		logger:   logger,
		exit:     exit,
	}
}

// Provider returns the managed provider.
func (l *Lifecycle) Provider() transport.Provider {
	return l.provider
}

// Initialize (re)loads the provider configuration. A failure at server
// start is fatal. A failure on reload is logged and returned, and the
// previous configuration stays in effect.
func (l *Lifecycle) Initialize(isServerStart bool) error {
	if l.provider == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.provider.Init(isServerStart); err != nil {
		err = fmt.Errorf("%w: %w", ErrInitialization, err)
		if isServerStart {
			l.logger.ErrorMsg("%s", err)
			if l.exit != nil {
				l.exit(ExitConfig)
			}
			return err
		}
		if l.loaded {
			l.logger.ErrorMsg("%s, keeping previous SSL configuration", err)
		} else {
			l.logger.ErrorMsg("%s", err)
		}
		return err
	}

	l.loaded = true
	if isServerStart {
		l.logger.VerboseMsg("SSL initialized, client certificate verification: %t", l.provider.LoadedVerifyLocations())
	} else {
		l.logger.InfoMsg("SSL configuration reloaded")
	}
	return nil
}

// Destroy releases the provider configuration. Further calls are no-ops
// until the next successful Initialize.
func (l *Lifecycle) Destroy() {
	if l.provider == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.loaded {
		return
	}
	l.provider.Destroy()
	l.loaded = false
}

// LoadedVerifyLocations reports whether the provider loaded a root
// certificate store for client verification.
func (l *Lifecycle) LoadedVerifyLocations() bool {
	if l.provider == nil {
		return false
	}
	return l.provider.LoadedVerifyLocations()
}
