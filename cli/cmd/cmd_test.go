package cmd

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/parity/cli/config"
)

func commandNames(cmds []*cli.Command) map[string]bool {
	names := make(map[string]bool, len(cmds))
	for _, c := range cmds {
		names[c.Name] = true
	}
	return names
}

func TestFetchCommand_HasSelectorFlags(t *testing.T) {
	cmd := FetchCommand()

	found := map[string]bool{}
	for _, f := range cmd.Flags {
		found[f.Names()[0]] = true
	}
	if !found["index"] || !found["name"] {
		t.Errorf("fetch flags = %v, want index and name", found)
	}
}

func TestProfilesCommand_Subcommands(t *testing.T) {
	names := commandNames(ProfilesCommand(config.RoleServer).Subcommands)
	for _, want := range []string{"list", "create", "rename", "erase"} {
		if !names[want] {
			t.Errorf("profiles is missing subcommand %q", want)
		}
	}
}

func newTestApp(out *bytes.Buffer, role config.Role) *cli.App {
	return &cli.App{
		Name:   "parity-test",
		Writer: out,
		// Surface cli.Exit errors to the caller instead of exiting the
		// test binary.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			ProfilesCommand(role),
		},
	}
}

func TestProfilesCreate_EndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	var out bytes.Buffer
	app := newTestApp(&out, config.RoleServer)

	err := app.Run([]string{"parity-test", "profiles", "create", "--config", path, "lab"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	store := config.NewStore(path, config.RoleServer)
	profile, err := store.Get("lab")
	if err != nil {
		t.Fatalf("created profile missing: %v", err)
	}
	if profile.Port == 0 {
		t.Error("created profile has no default port")
	}
}

func TestProfilesRenameAndErase_EndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	var out bytes.Buffer
	app := newTestApp(&out, config.RoleClient)

	if err := app.Run([]string{"parity-test", "profiles", "rename", "--config", path, "default", "travel"}); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if err := app.Run([]string{"parity-test", "profiles", "erase", "--config", path, "travel"}); err != nil {
		t.Fatalf("erase failed: %v", err)
	}

	store := config.NewStore(path, config.RoleClient)
	names, err := store.Names()
	if err != nil {
		t.Fatalf("Names failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("profiles after erase = %v, want none", names)
	}
}

func TestFetch_RejectsAmbiguousSelector(t *testing.T) {
	app := &cli.App{
		Name:           "parity-test",
		Writer:         new(bytes.Buffer),
		ExitErrHandler: func(*cli.Context, error) {},
		Commands:       []*cli.Command{FetchCommand()},
	}

	err := app.Run([]string{"parity-test", "fetch"})
	if err == nil {
		t.Fatal("fetch without selector succeeded, want usage error")
	}
	var exitCoder cli.ExitCoder
	if !errors.As(err, &exitCoder) || exitCoder.ExitCode() != exitUsageError {
		t.Errorf("error = %v, want usage exit code %d", err, exitUsageError)
	}
}

func TestVersionCommand_Exists(t *testing.T) {
	cmd := VersionCommand("abc123")
	if cmd.Name != "version" {
		t.Errorf("Name = %q, want version", cmd.Name)
	}
	if Version == "" {
		t.Error("Version constant is empty")
	}
}
