package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPath returns the role's profile file location under the user
// config directory, e.g. ~/.config/parity/server.yaml on Linux.
func DefaultPath(role Role) (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config directory: %w", err)
	}
	return filepath.Join(base, "parity", string(role)+".yaml"), nil
}

// ExpandPlaceholders replaces a leading path placeholder with the matching
// well-known directory. Supported prefixes:
//
//	~           user home
//	{home}      user home
//	{config}    user config directory
//	{download}  user download directory (home/Downloads)
//
// Only the first matching prefix is replaced; placeholders elsewhere in
// the path are left alone.
func ExpandPlaceholders(path string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config directory: %w", err)
	}

	for _, repl := range []struct {
		prefix string
		with   string
	}{
		{"~", home},
		{"{home}", home},
		{"{config}", cfg},
		{"{download}", filepath.Join(home, "Downloads")},
	} {
		if strings.HasPrefix(path, repl.prefix) {
			return repl.with + strings.TrimPrefix(path, repl.prefix), nil
		}
	}
	return path, nil
}
