// Package cmd provides the CLI commands shared by the parity-server and
// parity-client binaries. Both binaries compose the same building blocks:
// a profile store scoped to their role, the interactive menu, and the
// wire-level request driver or dispatcher.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/parity/cli/config"
)

// Exit codes. Usage and configuration mistakes are distinguished from
// request-time failures so scripts can retry the latter.
const (
	exitSuccess      = 0
	exitRequestError = 1
	exitUsageError   = 2
)

// Shared flags.
var (
	// ConfigFlag overrides the profile file location.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the profile file (defaults to the user config dir)",
	}

	// ProfileFlag selects a named profile.
	ProfileFlag = &cli.StringFlag{
		Name:    "profile",
		Aliases: []string{"P"},
		Usage:   "Profile name",
		Value:   "default",
	}

	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// PortFlag overrides the profile's port.
	PortFlag = &cli.UintFlag{
		Name:  "port",
		Usage: "Override the profile's port",
	}

	// ParityRootFlag overrides the server profile's parity root.
	ParityRootFlag = &cli.StringFlag{
		Name:  "parity-root",
		Usage: "Override the profile's parity root directory",
	}

	// DownloadDirFlag overrides the client profile's download directory.
	DownloadDirFlag = &cli.StringFlag{
		Name:  "download-dir",
		Usage: "Override the profile's download directory",
	}

	// HostFlag overrides the client profile's target host.
	HostFlag = &cli.StringFlag{
		Name:  "host",
		Usage: "Override the profile's server host",
	}
)

// openStore resolves the profile store for a role, creating the profile
// file with a default profile on first use.
func openStore(c *cli.Context, role config.Role) (*config.Store, error) {
	path := c.String("config")
	if path == "" {
		var err error
		path, err = config.DefaultPath(role)
		if err != nil {
			return nil, cli.Exit(fmt.Sprintf("resolve config path: %v", err), exitUsageError)
		}
	}

	store := config.NewStore(path, role)
	if _, err := store.Init(); err != nil {
		return nil, cli.Exit(fmt.Sprintf("initialize profiles: %v", err), exitUsageError)
	}
	return store, nil
}

// loadProfile fetches the selected profile, applies any flag overrides,
// and validates the result for the store's role.
func loadProfile(c *cli.Context, store *config.Store) (config.Profile, error) {
	profile, err := store.Get(c.String("profile"))
	if err != nil {
		return config.Profile{}, cli.Exit(fmt.Sprintf("load profile: %v", err), exitUsageError)
	}

	for _, name := range []string{"parity-root", "download-dir"} {
		if !c.IsSet(name) {
			continue
		}
		expanded, err := config.ExpandPlaceholders(c.String(name))
		if err != nil {
			return config.Profile{}, cli.Exit(fmt.Sprintf("expand --%s: %v", name, err), exitUsageError)
		}
		profile.ParityRoot = expanded
	}
	if c.IsSet("port") {
		port := c.Uint("port")
		if port > 65535 {
			return config.Profile{}, cli.Exit(fmt.Sprintf("--port %d out of range", port), exitUsageError)
		}
		profile.Port = uint16(port)
	}
	if c.IsSet("host") {
		profile.Host = c.String("host")
	}

	if errs := config.Validate(profile, store.Role()); len(errs) != 0 {
		msg := fmt.Sprintf("profile %q is not usable:", profile.Name)
		for _, e := range errs {
			msg += "\n  " + e.Error()
		}
		return config.Profile{}, cli.Exit(msg, exitUsageError)
	}
	return profile, nil
}

// ExitErrHandler maps command errors to process exit codes, respecting
// cli.ExitCoder for errors raised via cli.Exit.
func ExitErrHandler(c *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitRequestError)
}
