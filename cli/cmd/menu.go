package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/parity/cli/config"
	"github.com/justapithecus/parity/cli/render"
	"github.com/justapithecus/parity/cli/tui"
	"github.com/justapithecus/parity/wire"
)

// MenuCommand returns the interactive menu command. The menu picks and
// edits profiles; choosing start runs the role's blocking operation with
// the selected profile (serve for servers, download-all for clients).
func MenuCommand(role config.Role) *cli.Command {
	return &cli.Command{
		Name:  "menu",
		Usage: "Interactive profile menu",
		Flags: []cli.Flag{ConfigFlag},
		Action: func(c *cli.Context) error {
			store, err := openStore(c, role)
			if err != nil {
				return err
			}

			outcome, err := tui.Run(store)
			if err != nil {
				return cli.Exit(fmt.Sprintf("menu: %v", err), exitUsageError)
			}
			if outcome.Action != tui.ActionStart {
				return nil
			}

			if role == config.RoleServer {
				return serveProfile(outcome.Profile)
			}

			report, err := issueOnProfile(outcome.Profile, wire.DownloadAllFiles())
			if err != nil {
				return cli.Exit(fmt.Sprintf("request failed: %v", err), exitRequestError)
			}
			r, err := render.NewRenderer(c)
			if err != nil {
				return cli.Exit(err.Error(), exitUsageError)
			}
			return r.Render(report)
		},
	}
}
