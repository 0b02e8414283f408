// Package checkkey implements the checkkey command, which applies the
// server's private key file policy to a file.
package checkkey

import (
	"context"
	"fmt"
	"os"

	"dominicbreuker/securesock/cmd/shared"
	"dominicbreuker/securesock/pkg/keyfile"
	"dominicbreuker/securesock/pkg/log"
	"dominicbreuker/securesock/pkg/secure"

	"github.com/urfave/cli/v3"
)

const strictFlag = "strict"

// GetCommand ...
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "checkkey",
		Usage:     "Check ownership and permissions of a private key file",
		ArgsUsage: "keyfile",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("must specify exactly one key file, got %d arguments", cmd.Args().Len())
			}

			logger := log.NewLogger(cmd.Bool(shared.VerboseFlag))
			guard := keyfile.NewGuard(logger, os.Exit, secure.ExitConfig)
			return check(guard, cmd.Args().First(), cmd.Bool(strictFlag))
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  strictFlag,
				Usage: "Treat a violation as fatal, as at server start",
			},
			&cli.BoolFlag{
				Name:    shared.VerboseFlag,
				Aliases: []string{"v"},
				Usage:   "Verbose logging",
			},
		},
	}
}

func check(guard *keyfile.Guard, path string, strict bool) error {
	if !guard.Check(path, strict) {
		return fmt.Errorf("private key file %q rejected", path)
	}

	guard.Logger.InfoMsg("Private key file %q is acceptable", path)
	return nil
}
