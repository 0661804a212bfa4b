package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/parity/cli/config"
	"github.com/justapithecus/parity/cli/render"
)

// profileRow is the rendered shape of one profile listing entry.
type profileRow struct {
	Name       string `json:"name"`
	ParityRoot string `json:"parity_root"`
	Port       uint16 `json:"port"`
	Addr       string `json:"addr"`
	Usable     bool   `json:"usable"`
}

// ProfilesCommand returns the profiles command group for a role.
// Subcommands cover the whole profile lifecycle so the interactive menu
// is never required.
func ProfilesCommand(role config.Role) *cli.Command {
	return &cli.Command{
		Name:  "profiles",
		Usage: "Manage named connection profiles",
		Subcommands: []*cli.Command{
			profilesListCommand(role),
			profilesCreateCommand(role),
			profilesRenameCommand(role),
			profilesEraseCommand(role),
		},
	}
}

func profilesListCommand(role config.Role) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List profiles",
		Flags: []cli.Flag{ConfigFlag, FormatFlag},
		Action: func(c *cli.Context) error {
			store, err := openStore(c, role)
			if err != nil {
				return err
			}

			names, err := store.Names()
			if err != nil {
				return cli.Exit(fmt.Sprintf("list profiles: %v", err), exitUsageError)
			}

			rows := make([]profileRow, 0, len(names))
			for _, name := range names {
				profile, err := store.Get(name)
				if err != nil {
					return cli.Exit(fmt.Sprintf("load profile %q: %v", name, err), exitUsageError)
				}
				addr := profile.Mask
				if role == config.RoleClient {
					addr = profile.Host
				}
				rows = append(rows, profileRow{
					Name:       profile.Name,
					ParityRoot: profile.ParityRoot,
					Port:       profile.Port,
					Addr:       addr,
					Usable:     len(config.Validate(profile, role)) == 0,
				})
			}

			r, err := render.NewRenderer(c)
			if err != nil {
				return cli.Exit(err.Error(), exitUsageError)
			}
			return r.Render(rows)
		},
	}
}

func profilesCreateCommand(role config.Role) *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a profile with default values",
		ArgsUsage: "<name>",
		Flags:     []cli.Flag{ConfigFlag},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("create requires exactly one profile name", exitUsageError)
			}
			store, err := openStore(c, role)
			if err != nil {
				return err
			}
			profile, err := store.Create(c.Args().First())
			if err != nil {
				return cli.Exit(fmt.Sprintf("create profile: %v", err), exitUsageError)
			}
			fmt.Fprintf(c.App.Writer, "created profile %q in %s\n", profile.Name, store.Path())
			return nil
		},
	}
}

func profilesRenameCommand(role config.Role) *cli.Command {
	return &cli.Command{
		Name:      "rename",
		Usage:     "Rename a profile",
		ArgsUsage: "<old> <new>",
		Flags:     []cli.Flag{ConfigFlag},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("rename requires an old and a new name", exitUsageError)
			}
			store, err := openStore(c, role)
			if err != nil {
				return err
			}
			oldName, newName := c.Args().Get(0), c.Args().Get(1)
			if err := store.Rename(oldName, newName); err != nil {
				return cli.Exit(fmt.Sprintf("rename profile: %v", err), exitUsageError)
			}
			fmt.Fprintf(c.App.Writer, "renamed %q to %q\n", oldName, newName)
			return nil
		},
	}
}

func profilesEraseCommand(role config.Role) *cli.Command {
	return &cli.Command{
		Name:      "erase",
		Usage:     "Erase a profile",
		ArgsUsage: "<name>",
		Flags:     []cli.Flag{ConfigFlag},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("erase requires exactly one profile name", exitUsageError)
			}
			store, err := openStore(c, role)
			if err != nil {
				return err
			}
			name := c.Args().First()
			if err := store.Erase(name); err != nil {
				return cli.Exit(fmt.Sprintf("erase profile: %v", err), exitUsageError)
			}
			fmt.Fprintf(c.App.Writer, "erased profile %q\n", name)
			return nil
		},
	}
}
