package util

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

const DefaultConfigFile = "aqua.toml"

type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	RootPath string `toml:"root_path"`
	AquaHome string `toml:"-"`
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
	DebugAST string `toml:"debug_ast"`
	Prompt   string `toml:"prompt"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		RootPath: ".",
		LogLevel: "none",
		Prompt:   ">> ",
	}
}

// LoadConfiguration reads a TOML file over the defaults. Keys the file does
// not mention keep their default values.
func LoadConfiguration(path string) (Configuration, error) {
	config := DefaultConfiguration()

	meta, err := toml.DecodeFile(path, &config)
	if err != nil {
		return config, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}

	switch config.DebugAST {
	case "", "json", "yaml":
	default:
		return config, fmt.Errorf("invalid debug_ast %q in %s: want json or yaml", config.DebugAST, path)
	}
	return config, nil
}
