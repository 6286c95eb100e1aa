package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolvePath returns explicit when set, otherwise the first existing file
// among $XDG_CONFIG_HOME/tgbridge/tgbridge.yaml (or
// ~/.config/tgbridge/tgbridge.yaml) and ./tgbridge.yaml.
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	var candidates []string
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "tgbridge", "tgbridge.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "tgbridge", "tgbridge.yaml"))
	}
	candidates = append(candidates, "tgbridge.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("config: no configuration file found (searched: %v)", candidates)
}

// DefaultJournalPath returns $XDG_DATA_HOME/tgbridge/journal.db, falling back
// to ~/.local/share/tgbridge/journal.db.
func DefaultJournalPath() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "tgbridge", "journal.db")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "tgbridge", "journal.db")
}
