// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package toolconfig loads the metasync tool's own settings: the diff-key
// separator, source/target branch tag names, log verbosity, color mode and
// the package defaults (API version, exclude globs). This is orthogonal to modules/mdtree/mdconfig,
// which resolves per-scope metadata behavior (sort/filter/delete rules),
// not tool-level defaults.
package toolconfig

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// EnvSystemConfig overrides the system-wide config file location.
	EnvSystemConfig = "METASYNC_CONFIG_SYSTEM"
	userConfigName  = ".metasync.toml"
	repoConfigName  = "metasync.toml"
)

// Core holds general tool behavior.
type Core struct {
	DiffKeySeparator string `toml:"diffKeySeparator,omitempty"`
	SourceBranch     string `toml:"sourceBranch,omitempty"`
	TargetBranches   []string `toml:"targetBranches,omitempty"`
	LogVerbosity     string `toml:"logVerbosity,omitempty"`
	Color            string `toml:"color,omitempty"` // "auto", "always", "never"
}

func (c *Core) Overwrite(o *Core) {
	c.DiffKeySeparator = overwrite(c.DiffKeySeparator, o.DiffKeySeparator)
	c.SourceBranch = overwrite(c.SourceBranch, o.SourceBranch)
	c.LogVerbosity = overwrite(c.LogVerbosity, o.LogVerbosity)
	c.Color = overwrite(c.Color, o.Color)
	if len(o.TargetBranches) != 0 {
		c.TargetBranches = o.TargetBranches
	}
}

// Package holds deployment-package emission defaults.
type Package struct {
	APIVersion  string   `toml:"apiVersion,omitempty"`
	ExcludeGlob []string `toml:"excludeGlob,omitempty"`
}

func (p *Package) Overwrite(o *Package) {
	p.APIVersion = overwrite(p.APIVersion, o.APIVersion)
	if len(o.ExcludeGlob) != 0 {
		p.ExcludeGlob = o.ExcludeGlob
	}
}

// Config is the full decoded tool configuration.
type Config struct {
	Core    Core    `toml:"core,omitempty"`
	Package Package `toml:"package,omitempty"`
}

// Overwrite applies any non-zero field in o on top of c, in place.
func (c *Config) Overwrite(o *Config) {
	c.Core.Overwrite(&o.Core)
	c.Package.Overwrite(&o.Package)
}

func overwrite(a, b string) string {
	if len(b) != 0 {
		return b
	}
	return a
}

// Default returns the built-in defaults used when no config file is found.
func Default() *Config {
	return &Config{
		Core: Core{
			DiffKeySeparator: "\x1e",
			LogVerbosity:     "info",
			Color:            "auto",
		},
		Package: Package{
			APIVersion: "59.0",
		},
	}
}

func systemConfigPath() string {
	if p, ok := os.LookupEnv(EnvSystemConfig); ok {
		return p
	}
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	prefix := filepath.Dir(exe)
	if filepath.Base(prefix) == "bin" {
		prefix = filepath.Dir(prefix)
	}
	return filepath.Join(prefix, "etc", "metasync.toml")
}

func loadInto(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	_, err := toml.DecodeFile(path, cfg)
	return err
}

// LoadSystem reads the system-wide config file, if any.
func LoadSystem() (*Config, error) {
	path := systemConfigPath()
	if len(path) == 0 {
		return nil, os.ErrNotExist
	}
	var cfg Config
	if err := loadInto(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadGlobal reads $HOME/.metasync.toml, if any.
func LoadGlobal() (*Config, error) {
	var cfg Config
	home, err := os.UserHomeDir()
	if err != nil {
		return &cfg, nil
	}
	path := filepath.Join(home, userConfigName)
	if err := loadInto(path, &cfg); err != nil && os.IsNotExist(err) {
		return &cfg, nil
	} else if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadBaseline merges Default, then system, then global config layers.
func LoadBaseline() (*Config, error) {
	cfg := Default()
	sysCfg, err := LoadSystem()
	if err == nil {
		cfg.Overwrite(sysCfg)
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	globalCfg, err := LoadGlobal()
	if err != nil {
		return nil, err
	}
	cfg.Overwrite(globalCfg)
	return cfg, nil
}

// Load merges the baseline layers with repoDir/metasync.toml, if present.
func Load(repoDir string) (*Config, error) {
	cfg, err := LoadBaseline()
	if err != nil {
		return nil, err
	}
	if len(repoDir) == 0 {
		return cfg, nil
	}
	var rc Config
	path := filepath.Join(repoDir, repoConfigName)
	if err := loadInto(path, &rc); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	cfg.Overwrite(&rc)
	return cfg, nil
}
