// Package config loads the optional .bcovrc defaults layered under
// cmd/bcov's CLI flags: default dump path, whether to enable the live
// dashboard, and the logger's level (which decides, among other things,
// whether the debug-level notes on non-TRAP signal forwarding appear).
// A single-shot TUI
// debugger like the teacher has no persistent config of its own; this
// follows the TOML-backed config pattern the gvisor forks' tooling uses.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/tsirakis/bcov/internal/xerrors"
)

// Config holds every value cmd/bcov can source from .bcovrc. The
// all-defaults config is Default(), not the zero value (whose DumpPath
// is empty); Load starts from Default(), so it returns one even when no
// file is found.
type Config struct {
	// DumpPath is the default output path for the -o flag.
	DumpPath string `toml:"dump_path"`
	// EnableUI opts into the live covui dashboard by default.
	EnableUI bool `toml:"enable_ui"`
	// LogLevel names the logrus level cmd/bcov sets on its logger
	// (e.g. "debug", "warn"); empty means the package default.
	LogLevel string `toml:"log_level"`
}

// DefaultDumpPath is used when neither a config file nor a -o flag
// names an output path, matching the Collector CLI's own default.
const DefaultDumpPath = ".bcovdump"

// Default returns the all-defaults Config.
func Default() Config {
	return Config{DumpPath: DefaultDumpPath}
}

// Load reads path (typically ".bcovrc") and decodes it over the
// defaults. A missing file is not an error: it yields Default()
// unchanged, since the config layer is entirely optional (spec.md's
// distilled core has no config file at all).
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = ".bcovrc"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, xerrors.Errorf("config unreadable: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, xerrors.Errorf("config malformed: %w", err)
	}
	return cfg, nil
}
