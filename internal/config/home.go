package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv overrides the data directory.
const HomeEnv = "PIGGYBANK_HOME"

// ResolveHome picks the data directory: flag, PIGGYBANK_HOME,
// $XDG_DATA_HOME/piggybank, then ~/.local/share/piggybank.
func ResolveHome(flag string) (string, error) {
	dir := flag
	if dir == "" {
		dir = os.Getenv(HomeEnv)
	}
	if dir == "" {
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			dir = filepath.Join(xdg, "piggybank")
		}
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("finding home directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "share", "piggybank")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}
