// Package config handles profile persistence for the parity binaries.
//
// Profiles live in a per-role YAML file under the user config directory
// (server.yaml / client.yaml). A profile resolves everything the transfer
// core needs: the parity root, the port, and the bind or target address.
// CLI flags always override profile values.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Role selects which profile file a store operates on and which address
// field a profile uses.
type Role string

const (
	// RoleServer profiles bind a listener; the address field is Mask.
	RoleServer Role = "server"
	// RoleClient profiles dial a server; the address field is Host and the
	// parity root is the local download directory.
	RoleClient Role = "client"
)

// Profile is one named configuration. Exactly one of Mask/Host is
// meaningful, selected by the owning store's role.
type Profile struct {
	Name       string `yaml:"-" json:"name"`
	ParityRoot string `yaml:"parity_root" json:"parity_root"`
	Port       uint16 `yaml:"port" json:"port"`
	Mask       string `yaml:"mask,omitempty" json:"mask,omitempty"`
	Host       string `yaml:"host,omitempty" json:"host,omitempty"`
}

// ListenAddr is the server bind address.
func (p Profile) ListenAddr() string {
	return net.JoinHostPort(p.Mask, strconv.Itoa(int(p.Port)))
}

// DialAddr is the client target address.
func (p Profile) DialAddr() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(int(p.Port)))
}

// defaultProfile returns the profile written on first run.
func defaultProfile(role Role) Profile {
	switch role {
	case RoleClient:
		return Profile{
			Name:       "default",
			ParityRoot: "{download}",
			Port:       49160,
			Host:       "localhost",
		}
	default:
		return Profile{
			Name:       "default",
			ParityRoot: "{home}/parity/source",
			Port:       49160,
			Mask:       "0.0.0.0",
		}
	}
}

// fileData is the on-disk document shape.
type fileData struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// Store reads and writes one role's profile file.
type Store struct {
	path string
	role Role
}

// NewStore creates a store over the given file path.
func NewStore(path string, role Role) *Store {
	return &Store{path: path, role: role}
}

// Role returns the store's role.
func (s *Store) Role() Role { return s.role }

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Init creates the profile file with a default profile if it does not
// exist yet. Returns true if an initialization occurred.
func (s *Store) Init() (bool, error) {
	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat profile file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	def := defaultProfile(s.role)
	data := fileData{Profiles: map[string]Profile{def.Name: def}}
	if err := s.write(data); err != nil {
		return false, err
	}
	return true, nil
}

// Names returns all profile names, sorted for deterministic listing.
func (s *Store) Names() ([]string, error) {
	data, err := s.read()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(data.Profiles))
	for name := range data.Profiles {
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Get returns the named profile with path placeholders expanded.
func (s *Store) Get(name string) (Profile, error) {
	data, err := s.read()
	if err != nil {
		return Profile{}, err
	}
	p, ok := data.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q not found", name)
	}
	p.Name = name

	expanded, err := ExpandPlaceholders(p.ParityRoot)
	if err != nil {
		return Profile{}, fmt.Errorf("expand parity root of %q: %w", name, err)
	}
	p.ParityRoot = expanded
	return p, nil
}

// Save writes the profile under its name, creating or overwriting.
func (s *Store) Save(p Profile) error {
	if p.Name == "" {
		return fmt.Errorf("profile name must not be empty")
	}
	data, err := s.read()
	if err != nil {
		return err
	}
	data.Profiles[p.Name] = p
	return s.write(data)
}

// Create saves a fresh profile with role defaults under the given name.
func (s *Store) Create(name string) (Profile, error) {
	p := defaultProfile(s.role)
	p.Name = name
	if err := s.Save(p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Rename moves a profile to a new name. Renaming onto an existing profile
// is an error, not an overwrite.
func (s *Store) Rename(oldName, newName string) error {
	data, err := s.read()
	if err != nil {
		return err
	}
	if _, exists := data.Profiles[newName]; exists {
		return fmt.Errorf("profile %q already exists", newName)
	}
	p, ok := data.Profiles[oldName]
	if !ok {
		return fmt.Errorf("profile %q not found", oldName)
	}
	data.Profiles[newName] = p
	delete(data.Profiles, oldName)
	return s.write(data)
}

// Erase removes a profile permanently. Erasing a missing profile is a
// no-op, matching file-removal semantics.
func (s *Store) Erase(name string) error {
	data, err := s.read()
	if err != nil {
		return err
	}
	delete(data.Profiles, name)
	return s.write(data)
}

func (s *Store) read() (fileData, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileData{}, fmt.Errorf("profile file not found: %s", s.path)
		}
		return fileData{}, fmt.Errorf("read profile file %q: %w", s.path, err)
	}

	var data fileData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return fileData{}, fmt.Errorf("invalid YAML in %s: %w", s.path, err)
	}
	if data.Profiles == nil {
		data.Profiles = make(map[string]Profile)
	}
	return data, nil
}

func (s *Store) write(data fileData) error {
	raw, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode profile file: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write profile file %q: %w", s.path, err)
	}
	return nil
}
