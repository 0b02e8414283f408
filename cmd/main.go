package main

import (
	"context"
	"os"

	"dominicbreuker/securesock/cmd/checkkey"
	"dominicbreuker/securesock/cmd/connect"
	"dominicbreuker/securesock/cmd/gencert"
	"dominicbreuker/securesock/cmd/serve"
	"dominicbreuker/securesock/cmd/version"
	"dominicbreuker/securesock/pkg/log"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

func main() {
	color.NoColor = !term.IsTerminal(int(os.Stderr.Fd()))

	app := &cli.Command{
		Name:  "securesock",
		Usage: "echo server and client with a non-blocking TLS transport",
		Commands: []*cli.Command{
			serve.GetCommand(),
			connect.GetCommand(),
			checkkey.GetCommand(),
			gencert.GetCommand(),
			version.GetCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.ErrorMsg("%s", err)
		os.Exit(1)
	}
}
