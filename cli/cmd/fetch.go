package cmd

import (
	"errors"
	"fmt"
	"net"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/parity/cli/config"
	"github.com/justapithecus/parity/cli/render"
	"github.com/justapithecus/parity/client"
	"github.com/justapithecus/parity/iox"
	"github.com/justapithecus/parity/log"
	"github.com/justapithecus/parity/wire"
)

// CountCommand returns the count command, which asks the server how many
// files its parity root currently holds.
func CountCommand() *cli.Command {
	return &cli.Command{
		Name:  "count",
		Usage: "Report the number of files the server offers",
		Flags: []cli.Flag{ConfigFlag, ProfileFlag, FormatFlag, DownloadDirFlag, HostFlag, PortFlag},
		Action: func(c *cli.Context) error {
			return fetchAction(c, wire.GetFileCount())
		},
	}
}

// FetchCommand returns the fetch command. Exactly one of --index or
// --name selects the file.
func FetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Download one file by index or by name",
		Flags: []cli.Flag{
			ConfigFlag, ProfileFlag, FormatFlag, DownloadDirFlag, HostFlag, PortFlag,
			&cli.Uint64Flag{
				Name:  "index",
				Usage: "Position of the file in the server's listing",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "File name relative to the server's parity root",
			},
		},
		Action: func(c *cli.Context) error {
			byIndex := c.IsSet("index")
			byName := c.IsSet("name")
			if byIndex == byName {
				return cli.Exit("fetch requires exactly one of --index or --name", exitUsageError)
			}

			if byIndex {
				return fetchAction(c, wire.DownloadFileByIndex(c.Uint64("index")))
			}
			return fetchAction(c, wire.DownloadFileByName(c.String("name")))
		},
	}
}

// FetchAllCommand returns the fetch-all command, which downloads every
// file the server offers.
func FetchAllCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch-all",
		Usage: "Download every file the server offers",
		Flags: []cli.Flag{ConfigFlag, ProfileFlag, FormatFlag, DownloadDirFlag, HostFlag, PortFlag},
		Action: func(c *cli.Context) error {
			return fetchAction(c, wire.DownloadAllFiles())
		},
	}
}

// DisconnectCommand returns the disconnect command. It exists mainly to
// exercise the protocol's explicit goodbye; the server drops the
// connection either way.
func DisconnectCommand() *cli.Command {
	return &cli.Command{
		Name:  "disconnect",
		Usage: "Open a connection and immediately tell the server goodbye",
		Flags: []cli.Flag{ConfigFlag, ProfileFlag, FormatFlag, DownloadDirFlag, HostFlag, PortFlag},
		Action: func(c *cli.Context) error {
			return fetchAction(c, wire.Disconnect())
		},
	}
}

// fetchAction dials the profile's server, issues one request, and renders
// the outcome.
func fetchAction(c *cli.Context, req wire.Request) error {
	store, err := openStore(c, config.RoleClient)
	if err != nil {
		return err
	}
	profile, err := loadProfile(c, store)
	if err != nil {
		return err
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitUsageError)
	}

	report, err := issueOnProfile(profile, req)
	if err != nil {
		var rejection *wire.RejectionError
		if errors.As(err, &rejection) {
			return cli.Exit(fmt.Sprintf("server rejected request: %v", rejection), exitRequestError)
		}
		return cli.Exit(fmt.Sprintf("request failed: %v", err), exitRequestError)
	}
	return r.Render(report)
}

// issueOnProfile performs one connect-request-disconnect cycle. Shared
// with the menu's start action.
func issueOnProfile(profile config.Profile, req wire.Request) (*client.Report, error) {
	logger := log.NewLogger("parity-client", profile.Name)
	defer iox.DiscardClose(logger)

	conn, err := net.Dial("tcp", profile.DialAddr())
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", profile.DialAddr(), err)
	}
	defer iox.DiscardClose(conn)

	return client.IssueRequest(conn, req, profile.ParityRoot, logger)
}
