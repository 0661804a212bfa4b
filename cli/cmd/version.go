package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/justapithecus/parity/cli/render"
)

// Version is the canonical project version, shared by both binaries.
const Version = "0.1.0"

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// VersionCommand returns the version command. The commit is injected at
// build time by the linker.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Flags: []cli.Flag{FormatFlag},
		Action: func(c *cli.Context) error {
			r, err := render.NewRenderer(c)
			if err != nil {
				return cli.Exit(err.Error(), exitUsageError)
			}
			return r.Render(VersionResponse{Version: Version, Commit: commit})
		},
	}
}
