package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// configFileName is looked up in the lint target directory.
const configFileName = ".splint.toml"

// config holds the project-level settings from .splint.toml. Flags set
// on the command line take precedence over file values.
type config struct {
	Exclude []string `toml:"exclude"`
	Rules   string   `toml:"rules"`
	Cache   string   `toml:"cache"`
	Serial  bool     `toml:"serial"`
}

// loadConfig reads .splint.toml from dir. A missing file is not an
// error; a malformed one is.
func loadConfig(dir string) (config, error) {
	var cfg config
	path := filepath.Join(dir, configFileName)
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config{}, nil
		}
		return config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return cfg, nil
}

// merge overlays command-line flags onto the file config and resolves
// relative paths against the target directory.
func (c *config) merge(cmd *cobra.Command, targetDir string) {
	c.Exclude = append(c.Exclude, flagExcludes...)
	if cmd.Flags().Changed("rules") {
		c.Rules = flagRules
	}
	if cmd.Flags().Changed("cache") {
		c.Cache = flagCache
	}
	if cmd.Flags().Changed("serial") {
		c.Serial = flagSerial
	}
	if c.Rules != "" && !filepath.IsAbs(c.Rules) {
		c.Rules = filepath.Join(targetDir, c.Rules)
	}
	if c.Cache != "" && !filepath.IsAbs(c.Cache) {
		c.Cache = filepath.Join(targetDir, c.Cache)
	}
}
