package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

const header = `# regrade configuration.
# Questions are calibrated with [questions.<id>] legit = [lo, hi].
`

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg *Config) error {
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	return toml.NewEncoder(w).Encode(cfg)
}

// Write creates path with cfg. An existing file is never overwritten.
func Write(path string, cfg *Config) error {
	// #nosec G304 -- path is provided by the caller
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Encode(f, cfg); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
