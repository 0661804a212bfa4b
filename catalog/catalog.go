// Package catalog enumerates the servable files under a parity root.
//
// A catalog is a snapshot: every request re-scans the directory, so index
// lookups are only meaningful against the scan performed for that same
// request. There is no caching and no stable identity across requests. A
// directory that changes between two requests is an accepted race.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrIndexOutOfBounds indicates an index lookup past the end of the scan.
	ErrIndexOutOfBounds = errors.New("catalog: index out of bounds")
	// ErrOutsideRoot indicates a name lookup that escapes the parity root.
	ErrOutsideRoot = errors.New("catalog: path escapes parity root")
	// ErrNotAFile indicates a lookup that resolved to something other than a
	// regular file.
	ErrNotAFile = errors.New("catalog: not a regular file")
)

// Entry is one servable file as seen by a single scan.
//
// Length is a 32-bit byte count to match the wire format; a file larger
// than 4 GiB overflows it. That is an accepted limitation of the protocol,
// not a handled case.
type Entry struct {
	Name   string
	Path   string
	Length uint32
}

// Scan lists the immediate non-directory children of root in filesystem
// enumeration order. The order is whatever the OS returns. It is not
// sorted, and nothing downstream may assume it is stable.
func Scan(root string) ([]Entry, error) {
	dirents, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scan parity root: %w", err)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", de.Name(), err)
		}
		entries = append(entries, Entry{
			Name:   de.Name(),
			Path:   filepath.Join(root, de.Name()),
			Length: uint32(info.Size()),
		})
	}
	return entries, nil
}

// ResolveByIndex re-scans root and returns the entry at index.
// Returns ErrIndexOutOfBounds when index is past the end of the scan.
func ResolveByIndex(root string, index uint64) (Entry, error) {
	entries, err := Scan(root)
	if err != nil {
		return Entry{}, err
	}
	if index >= uint64(len(entries)) {
		return Entry{}, ErrIndexOutOfBounds
	}
	return entries[index], nil
}

// ResolveByName joins name onto root and returns the matching entry. The
// resolved path must remain under the canonicalized root: this is the only
// traversal guard in the system, and it applies only to name-addressed
// lookups; scans and index lookups are confined to root by construction.
//
// The check runs twice: lexically on the joined path (so "../secret" is
// rejected without touching the filesystem), then again after symlink
// resolution (so a link pointing outside the root is rejected too).
func ResolveByName(root, name string) (Entry, error) {
	canonRoot, err := canonicalize(root)
	if err != nil {
		return Entry{}, fmt.Errorf("canonicalize parity root: %w", err)
	}

	joined := filepath.Join(canonRoot, name)
	if !withinRoot(canonRoot, joined) {
		return Entry{}, ErrOutsideRoot
	}

	resolved, err := canonicalize(joined)
	if err != nil {
		return Entry{}, fmt.Errorf("canonicalize %s: %w", name, err)
	}
	if !withinRoot(canonRoot, resolved) {
		return Entry{}, ErrOutsideRoot
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return Entry{}, fmt.Errorf("stat %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotAFile, name)
	}

	return Entry{
		Name:   filepath.Base(resolved),
		Path:   resolved,
		Length: uint32(info.Size()),
	}, nil
}

// canonicalize resolves symlinks and produces an absolute clean path.
func canonicalize(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}

// withinRoot reports whether path is root itself or a descendant of it.
func withinRoot(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
