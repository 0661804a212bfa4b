package config

import (
	"fmt"
	"net"
	"os"
)

// ValidateParityRoot checks that the path is an existing directory.
func ValidateParityRoot(path string) error {
	if path == "" {
		return fmt.Errorf("parity root is empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("parity root does not exist: %s", path)
		}
		return fmt.Errorf("parity root is unreadable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("parity root is not a directory: %s", path)
	}
	return nil
}

// ValidatePort rejects the zero port; everything else in uint16 range is
// allowed.
func ValidatePort(port uint16) error {
	if port == 0 {
		return fmt.Errorf("port must be 1..65535")
	}
	return nil
}

// ValidateMask checks a server bind address: it must parse as an IPv4
// address ("0.0.0.0" binds all interfaces).
func ValidateMask(mask string) error {
	ip := net.ParseIP(mask)
	if ip == nil || ip.To4() == nil {
		return fmt.Errorf("mask is not an IPv4 address: %q", mask)
	}
	return nil
}

// ValidateHost checks a client target: an IPv4 address or a non-empty
// hostname.
func ValidateHost(host string) error {
	if host == "" {
		return fmt.Errorf("host is empty")
	}
	if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
		return fmt.Errorf("host is not an IPv4 address: %q", host)
	}
	return nil
}

// Validate gathers every problem with a profile for its role. An empty
// result means the profile can be started.
func Validate(p Profile, role Role) []error {
	var errs []error
	if err := ValidateParityRoot(p.ParityRoot); err != nil {
		errs = append(errs, err)
	}
	if err := ValidatePort(p.Port); err != nil {
		errs = append(errs, err)
	}
	switch role {
	case RoleClient:
		if err := ValidateHost(p.Host); err != nil {
			errs = append(errs, err)
		}
	default:
		if err := ValidateMask(p.Mask); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
