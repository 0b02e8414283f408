package shared

import (
	"fmt"

	"dominicbreuker/securesock/pkg/config"
	"dominicbreuker/securesock/pkg/log"

	"github.com/urfave/cli/v3"
)

// ServerConfig assembles the server configuration. Values come from the
// optional configuration file first, then from the transport argument and
// explicitly set flags. Defaults fill the rest.
func ServerConfig(cmd *cli.Command) (*config.Shared, error) {
	cfg := &config.Shared{}

	if path := cmd.String(ConfigFlag); path != "" {
		if err := config.LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if cmd.Args().Len() > 0 {
		host, port, err := ParseTransport(cmd.Args().First())
		if err != nil {
			return nil, err
		}
		cfg.Host, cfg.Port = host, port
	}

	setBool(cmd, VerboseFlag, &cfg.Verbose)
	setBool(cmd, SSLFlag, &cfg.SSL)
	setBool(cmd, NoBlockFlag, &cfg.NoBlock)
	setString(cmd, LogFileFlag, &cfg.LogFile)
	setString(cmd, CertFlag, &cfg.TLS.CertFile)
	setString(cmd, KeyFlag, &cfg.TLS.KeyFile)
	setString(cmd, CAFlag, &cfg.TLS.CAFile)
	setString(cmd, CRLFlag, &cfg.TLS.CRLFile)
	setString(cmd, CiphersFlag, &cfg.TLS.Ciphers)
	setString(cmd, CurveFlag, &cfg.TLS.ECDHCurve)
	setString(cmd, MinProtocolFlag, &cfg.TLS.MinProtocolVersion)
	if cmd.IsSet(MaxConnectionsFlag) {
		cfg.MaxConnections = int(cmd.Int(MaxConnectionsFlag))
	}
	if cmd.IsSet(SupervisorFlag) {
		cfg.Supervisor = config.SupervisorMode(cmd.String(SupervisorFlag))
	}

	cfg.ApplyDefaults()
	cfg.Logger = log.NewLogger(cfg.Verbose)

	if errors := config.Validate(cfg); len(errors) > 0 {
		cfg.Logger.ErrorMsg("Argument validation errors:")
		for _, err := range errors {
			cfg.Logger.ErrorMsg(" - %s", err)
		}
		return nil, fmt.Errorf("exiting")
	}

	return cfg, nil
}

func setBool(cmd *cli.Command, name string, dst *bool) {
	if cmd.IsSet(name) {
		*dst = cmd.Bool(name)
	}
}

func setString(cmd *cli.Command, name string, dst *string) {
	if cmd.IsSet(name) {
		*dst = cmd.String(name)
	}
}
