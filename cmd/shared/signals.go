package shared

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"dominicbreuker/securesock/pkg/waitset"
)

// SetupSignalHandling cancels the command on the first termination signal
// and exits on the second. SIGHUP runs reload and the parent death signal
// runs wake; either may be nil.
func SetupSignalHandling(cancel context.CancelFunc, reload func(), wake func()) {
	sigCh := make(chan os.Signal, 2)
	hupCh := make(chan os.Signal, 1)
	deathCh := make(chan os.Signal, 1)

	sigs := []os.Signal{os.Interrupt}
	if runtime.GOOS != "windows" {
		sigs = append(sigs, syscall.SIGTERM, syscall.SIGQUIT)
		signal.Ignore(syscall.SIGPIPE)
		if reload != nil {
			signal.Notify(hupCh, syscall.SIGHUP)
		}
	}
	if wake != nil && waitset.ParentDeathSignal != nil {
		signal.Notify(deathCh, waitset.ParentDeathSignal)
	}
	signal.Notify(sigCh, sigs...)

	go func() {
		var s os.Signal
	loop:
		for {
			select {
			case <-hupCh:
				reload()
			case <-deathCh:
				wake()
			case s = <-sigCh:
				break loop
			}
		}

		// first signal: request graceful shutdown
		cancel()

		select {
		case <-sigCh:
			if ss, ok := s.(syscall.Signal); ok {
				os.Exit(128 + int(ss))
			}
			os.Exit(1)
		case <-time.After(5 * time.Second):
			os.Exit(0)
		}
	}()
}
