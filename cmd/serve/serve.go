// Package serve implements the serve command: an echo server speaking
// plaintext or TLS on top of the secure transport.
package serve

import (
	"context"
	"fmt"

	"dominicbreuker/securesock/cmd/shared"
	"dominicbreuker/securesock/pkg/config"
	"dominicbreuker/securesock/pkg/interrupt"
	"dominicbreuker/securesock/pkg/keyfile"
	"dominicbreuker/securesock/pkg/secure"
	"dominicbreuker/securesock/pkg/server"
	"dominicbreuker/securesock/pkg/transport"
	"dominicbreuker/securesock/pkg/transport/ssl"
	"dominicbreuker/securesock/pkg/waitset"

	"github.com/urfave/cli/v3"
)

// GetCommand ...
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:        "serve",
		Usage:       "Serve echo sessions to clients",
		Description: shared.GetBaseDescription(),
		ArgsUsage:   shared.GetArgsUsage(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := shared.ServerConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			app, err := build(cfg)
			if err != nil {
				return err
			}

			shared.SetupSignalHandling(cancel, app.reload, app.hub.Wake)

			return app.run(ctx)
		},
		Flags: getFlags(),
	}
}

type app struct {
	cfg        *config.Shared
	lifecycle  *secure.Lifecycle
	hub        *interrupt.Hub
	supervisor waitset.Supervisor
}

func build(cfg *config.Shared) (*app, error) {
	sup, err := supervisor(cfg.Supervisor)
	if err != nil {
		return nil, fmt.Errorf("supervisor: %w", err)
	}

	exit := config.GetExitFunc(cfg.Deps)

	var provider transport.Provider
	if cfg.SSL {
		guard := keyfile.NewGuard(cfg.Logger, exit, secure.ExitConfig)
		provider = ssl.New(cfg.TLS, guard, cfg.Logger)
	}

	return &app{
		cfg:        cfg,
		lifecycle:  secure.NewLifecycle(provider, cfg.Logger, exit),
		hub:        interrupt.NewHub(),
		supervisor: sup,
	}, nil
}

func (a *app) run(ctx context.Context) error {
	return server.Run(ctx, a.cfg, a.lifecycle, a.hub, a.supervisor, server.Echo(a.cfg.LogFile, a.cfg.Logger))
}

func (a *app) reload() {
	if !a.cfg.SSL {
		a.cfg.Logger.VerboseMsg("Received SIGHUP, SSL is disabled, nothing to reload")
		return
	}

	a.cfg.Logger.InfoMsg("Received SIGHUP, reloading SSL configuration")
	a.lifecycle.Initialize(false)
}

func supervisor(mode config.SupervisorMode) (waitset.Supervisor, error) {
	switch mode {
	case config.SupervisorParent:
		return waitset.NewParentSupervisor()
	case config.SupervisorPipe:
		return waitset.PipeSupervisorFromEnv()
	default:
		return nil, nil
	}
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetCommonFlags()...)
	flags = append(flags, shared.GetServeFlags()...)

	return flags
}
