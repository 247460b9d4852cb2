// Package auth stores the session cookie obtained from the browser login flow.
//
// Login itself happens on the server (/login redirects through the identity
// provider and sets the cookie in the browser). The terminal client cannot
// follow that flow, so the user pastes the cookie value once and it is kept
// in a 0600 TOML file.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/pianopractice/practice-tracker/internal/config"
)

// Credentials hold the session cookie value.
type Credentials struct {
	Cookie string `toml:"cookie"`
}

// LoggedIn reports whether a cookie is stored.
func (c Credentials) LoggedIn() bool {
	return strings.TrimSpace(c.Cookie) != ""
}

// Load reads credentials from path. A missing file yields empty credentials.
func Load(path string) (Credentials, error) {
	resolved, err := config.ExpandPath(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("resolve path: %w", err)
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}
	var creds Credentials
	if err := toml.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("parse credentials: %w", err)
	}
	creds.Cookie = strings.TrimSpace(creds.Cookie)
	return creds, nil
}

// Save writes credentials readable only by the current user.
func Save(path string, creds Credentials) error {
	if !creds.LoggedIn() {
		return fmt.Errorf("cookie is empty")
	}
	resolved, err := config.ExpandPath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	creds.Cookie = strings.TrimSpace(creds.Cookie)
	data, err := toml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.WriteFile(resolved, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Clear removes stored credentials. Removing a missing file is not an error.
func Clear(path string) error {
	resolved, err := config.ExpandPath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.Remove(resolved); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
