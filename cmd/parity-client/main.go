// Package main provides the parity-client CLI entrypoint.
//
// Usage:
//
//	parity-client <command> [options]
//
// Exit codes:
//   - 0: success
//   - 1: request failure (including server rejections)
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
		Name:           "parity-client",
		Usage:          "Download files from a parity server",
		Version:        fmt.Sprintf("%s (commit: %s)", cmd.Version, commit),
		ExitErrHandler: cmd.ExitErrHandler,
		Commands: []*cli.Command{
			cmd.CountCommand(),
			cmd.FetchCommand(),
			cmd.FetchAllCommand(),
			cmd.DisconnectCommand(),
			cmd.MenuCommand(config.RoleClient),
			cmd.ProfilesCommand(config.RoleClient),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already handled cli.ExitCoder errors.
		os.Exit(1)
	}
}
