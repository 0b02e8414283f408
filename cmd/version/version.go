// Package version implements the version command.
package version

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/urfave/cli/v3"
)

// Version is set at build time.
var Version = "unknown"

// GetCommand ...
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Program version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			printVersion(os.Stdout)
			return nil
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "securesock %s (%s, %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
