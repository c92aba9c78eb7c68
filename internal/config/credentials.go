package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Credentials holds named secrets referenced from a manifest's Location.Auth
// field ("PAT <name>"). Tokens are never logged or embedded in error
// messages; callers must look them up by name and use the value directly.
type Credentials struct {
	GitHub struct {
		PersonalTokens map[string]string `yaml:"personal_tokens"`
	} `yaml:"github"`
}

// LoadCredentials reads a credentials file. A missing file yields an empty,
// valid Credentials rather than an error, since credentials are optional
// for manifests with no authenticated locations.
func LoadCredentials(path string) (*Credentials, error) {
	creds := &Credentials{}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return creds, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	if err := warnIfWorldReadable(path); err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials %s: %w", path, err)
	}

	return creds, nil
}

// warnIfWorldReadable enforces owner-only permissions on platforms that
// support a POSIX mode bit (not Windows), per the design note that the
// credentials file should be read with restrictive permissions.
func warnIfWorldReadable(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat credentials: %w", err)
	}
	if info.Mode().Perm()&0077 != 0 {
		return fmt.Errorf("credentials file %s is readable by group/other; chmod 600 it", path)
	}
	return nil
}

// PersonalToken resolves a "PAT <name>" auth reference to its token value.
// The name must be found; an empty or missing token is a configuration
// error, not a silently-unauthenticated request.
func (c *Credentials) PersonalToken(name string) (string, error) {
	token, ok := c.GitHub.PersonalTokens[name]
	if !ok || token == "" {
		return "", fmt.Errorf("no github personal token named %q", name)
	}
	return token, nil
}
