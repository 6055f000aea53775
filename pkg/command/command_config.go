// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/antgroup/metasync/pkg/toolconfig"
)

// Config is the `metasync config` subcommand: it shows the resolved tool
// configuration (defaults layered with system/global/repo config files),
// mirroring the effective settings `diff`/`merge`/`package` would use.
type Config struct {
	RepoDir string `arg:"" optional:"" name:"repo-dir" help:"Repository directory to resolve metasync.toml from"`
}

func (c *Config) Run(g *Globals) error {
	cfg, err := toolconfig.Load(c.RepoDir)
	if err != nil {
		return err
	}
	enc := toml.NewEncoder(os.Stdout)
	enc.Indent = ""
	return enc.Encode(cfg)
}
