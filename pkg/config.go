package stacklang

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the driver's persisted configuration, loaded from a
// .stacklang.toml: a small struct decoded straight out of the file, no
// layering or environment-variable overrides.
type Config struct {
	Format          string `toml:"format"`
	EchoLineMarkers bool   `toml:"echo_line_markers"`
}

// DefaultConfig is what the driver uses when no config file is found.
func DefaultConfig() Config {
	return Config{Format: "text"}
}

// LoadConfig reads path as TOML. A missing file is not an error; it
// yields DefaultConfig() so running the CLI with no setup at all still
// works.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
