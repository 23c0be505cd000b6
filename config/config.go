// Package config reads the optional ".ugit/config" TOML file described
// in SPEC_FULL.md's Ambient Stack section. A missing file is not an
// error; Load returns Default() instead.
//
// Grounded on the shape of the teacher's go/config package (a small,
// typed settings struct read once at startup), narrowed from its
// multi-database alias model down to the two knobs this engine needs.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/attic-labs/ugit/ugiterr"
)

// DefaultBranch is used when no config file sets [core] default-branch.
const DefaultBranch = "main"

// Config is the parsed contents of ".ugit/config".
type Config struct {
	Core   CoreConfig   `toml:"core"`
	Ignore IgnoreConfig `toml:"ignore"`
}

// CoreConfig holds engine-wide settings.
type CoreConfig struct {
	// DefaultBranch names the branch HEAD points to symbolically right
	// after init. Resolves spec.md §9's open question in favor of a
	// symbolic HEAD by default.
	DefaultBranch string `toml:"default-branch"`
}

// IgnoreConfig extends the tree codec's built-in ".ugit" ignore rule.
type IgnoreConfig struct {
	// Patterns are shell globs matched against a file's base name, in
	// addition to the always-on ".ugit" directory-name rule from
	// spec.md §4.3.
	Patterns []string `toml:"patterns"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{Core: CoreConfig{DefaultBranch: DefaultBranch}}
}

// Load reads and parses path. A missing file yields Default() with no
// error; any other read or parse failure is surfaced.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, ugiterr.Wrap(ugiterr.IoError, err, "reading config %s", path)
	}

	if _, err := toml.Decode(string(raw), &cfg); err != nil {
		return Config{}, ugiterr.Wrap(ugiterr.Corrupt, err, "parsing config %s", path)
	}
	if cfg.Core.DefaultBranch == "" {
		cfg.Core.DefaultBranch = DefaultBranch
	}
	return cfg, nil
}
