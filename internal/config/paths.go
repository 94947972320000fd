package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultConfigPath returns the expanded ~/.config/tracer/config.toml.
func DefaultConfigPath() (string, error) {
	return ExpandPath(defaultConfigPath)
}

// ExpandPath replaces a leading ~ with the home directory and makes the
// result absolute. Blank stays blank.
func ExpandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		p = filepath.Join(home, p[1:])
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", p, err)
	}
	return abs, nil
}

// locate resolves which config file Load reads. An explicit path is used as
// given. Otherwise the user config is preferred over ./tracer.toml, and the
// user config path is reported when neither exists.
func locate(explicit string) (string, bool, error) {
	if explicit != "" {
		p, err := ExpandPath(explicit)
		if err != nil {
			return "", false, err
		}
		ok, err := isFile(p)
		return p, ok, err
	}
	user, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	project, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{user, project} {
		if ok, _ := isFile(candidate); ok {
			return candidate, true, nil
		}
	}
	return user, false, nil
}

func isFile(p string) (bool, error) {
	info, err := os.Stat(p)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat config: %w", err)
	}
	return !info.IsDir(), nil
}
