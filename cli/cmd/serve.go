package cmd

import (
	"fmt"
	"net"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/parity/cli/config"
	"github.com/justapithecus/parity/iox"
	"github.com/justapithecus/parity/log"
	"github.com/justapithecus/parity/server"
)

// ServeCommand returns the serve command. Serve binds the profile's
// listen address and dispatches requests until interrupted.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve files from the parity root over TCP",
		Flags: []cli.Flag{ConfigFlag, ProfileFlag, ParityRootFlag, PortFlag},
		Action: func(c *cli.Context) error {
			store, err := openStore(c, config.RoleServer)
			if err != nil {
				return err
			}
			profile, err := loadProfile(c, store)
			if err != nil {
				return err
			}
			return serveProfile(profile)
		},
	}
}

// serveProfile runs the accept loop for a validated profile. Shared with
// the menu's start action.
func serveProfile(profile config.Profile) error {
	logger := log.NewLogger("parity-server", profile.Name)
	defer iox.DiscardClose(logger)

	ln, err := net.Listen("tcp", profile.ListenAddr())
	if err != nil {
		return cli.Exit(fmt.Sprintf("bind %s: %v", profile.ListenAddr(), err), exitUsageError)
	}

	logger.Info("listening", map[string]any{
		"addr":        ln.Addr().String(),
		"parity_root": profile.ParityRoot,
	})

	if err := server.Serve(ln, profile.ParityRoot, logger); err != nil {
		return cli.Exit(fmt.Sprintf("serve: %v", err), exitRequestError)
	}
	return nil
}
