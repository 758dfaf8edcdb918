package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/go-homedir"
)

var defaultConfigFile = func() string {
	if runtime.GOOS == "windows" {
		return "~/chacha-xcheck.toml"
	}
	return "~/.chacha-xcheck.toml"
}()

// tomlConfig is the on-disk configuration. Every field is optional;
// command-line flags win over the file, the file wins over defaults.
type tomlConfig struct {
	Engines   []string // engines checked when --engines is "all"
	Table     string   // default table file when --table is empty
	LogLevel  string
	LogFormat string
	Tracing   string
}

// loadConfig reads the TOML configuration file. A missing file at the
// default path is not an error; a missing file the user named is.
func loadConfig(path string) (tomlConfig, error) {
	var conf tomlConfig

	expanded, err := homedir.Expand(path)
	if err != nil {
		return conf, fmt.Errorf("expand %q: %w", path, err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) && path == defaultConfigFile {
			return conf, nil
		}
		return conf, err
	}

	if _, err := toml.Decode(string(data), &conf); err != nil {
		return conf, fmt.Errorf("parse %q: %w", expanded, err)
	}
	return conf, nil
}
