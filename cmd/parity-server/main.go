// Package main provides the parity-server CLI entrypoint.
//
// Usage:
//
//	parity-server <command> [options]
//
// Exit codes:
//   - 0: success
//   - 1: request or serve failure
//   - 2: usage or configuration error
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/parity/cli/cmd"
	"github.com/justapithecus/parity/cli/config"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:           "parity-server",
		Usage:          "Serve a directory of files over plain TCP",
		Version:        fmt.Sprintf("%s (commit: %s)", cmd.Version, commit),
		ExitErrHandler: cmd.ExitErrHandler,
		Commands: []*cli.Command{
			cmd.ServeCommand(),
			cmd.MenuCommand(config.RoleServer),
			cmd.ProfilesCommand(config.RoleServer),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already handled cli.ExitCoder errors.
		os.Exit(1)
	}
}
