// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/antgroup/metasync/modules/deploypkg"
	"github.com/antgroup/metasync/modules/difflog"
	"github.com/antgroup/metasync/modules/trace"
	"github.com/antgroup/metasync/pkg/toolconfig"
	"github.com/natefinch/atomic"
)

// Package is the `metasync package` subcommand: it reads a difflog CSV and
// assembles a deployment package (package.xml, optional
// destructiveChanges.xml, and a zip of changed files) from a source tree.
type Package struct {
	Log        string `arg:"" name:"log" help:"Diff log CSV describing the changes to package"`
	Src        string `arg:"" name:"src" help:"Source metadata tree the changed files are read from"`
	Out        string `name:"out" short:"o" help:"Output directory for package.xml/destructiveChanges.xml/package.zip"`
	ToolConfig string `name:"tool-config" help:"Directory containing a metasync.toml (overrides apiVersion/excludeGlob defaults)"`
}

func (c *Package) Run(g *Globals) error {
	cfg, err := toolconfig.Load(c.ToolConfig)
	if err != nil {
		return trace.Errorf("package: loading tool config: %w", err)
	}

	f, err := os.Open(c.Log)
	if err != nil {
		return trace.Errorf("package: opening %s: %w", c.Log, err)
	}
	rows, err := difflog.Read(f)
	_ = f.Close()
	if err != nil {
		return trace.Errorf("package: %w", err)
	}

	manifest := deploypkg.NewManifest(cfg.Package.APIVersion)
	files := make(map[string]string)
	seen := make(map[string]bool)
	for _, row := range rows {
		manifest.AddRow(row)
		if seen[row.Path] || row.MergeAction == difflog.ActionDeleteFile || row.MergeAction == difflog.ActionDeleteItem {
			continue
		}
		content, existed, err := readFile(filepath.Join(c.Src, row.Path))
		if err != nil {
			return trace.Errorf("package: reading %s: %w", row.Path, err)
		}
		if existed {
			files[row.Path] = content
			seen[row.Path] = true
		}
	}

	out := c.Out
	if out == "" {
		out = "."
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return trace.Errorf("package: creating %s: %w", out, err)
	}

	pkgXML, err := manifest.PackageXML()
	if err != nil {
		return trace.Errorf("package: rendering package.xml: %w", err)
	}
	if err := atomic.WriteFile(filepath.Join(out, "package.xml"), strings.NewReader(pkgXML)); err != nil {
		return trace.Errorf("package: writing package.xml: %w", err)
	}

	destructiveXML, err := manifest.DestructiveChangesXML()
	if err != nil {
		return trace.Errorf("package: rendering destructiveChanges.xml: %w", err)
	}
	if destructiveXML != "" {
		if err := atomic.WriteFile(filepath.Join(out, "destructiveChanges.xml"), strings.NewReader(destructiveXML)); err != nil {
			return trace.Errorf("package: writing destructiveChanges.xml: %w", err)
		}
	}

	archive, err := deploypkg.Archive(files, cfg.Package.ExcludeGlob)
	if err != nil {
		return trace.Errorf("package: building archive: %w", err)
	}
	if err := os.WriteFile(filepath.Join(out, "package.zip"), archive, 0o644); err != nil {
		return trace.Errorf("package: writing package.zip: %w", err)
	}
	g.DbgPrint("package: %d files archived, %s", len(files), out)
	return nil
}
