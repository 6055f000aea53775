// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/antgroup/metasync/modules/difflog"
	"github.com/antgroup/metasync/modules/mdtree"
	"github.com/antgroup/metasync/modules/mdtree/mdconfig"
	"github.com/antgroup/metasync/modules/prettydiff"
	"github.com/antgroup/metasync/modules/trace"
	"github.com/antgroup/metasync/pkg/progress"
)

// Diff is the `metasync diff` subcommand: it walks a source tree and one or
// more target trees, runs the mdtree engine file by file, and emits either
// a difflog CSV or a console-friendly unified diff.
type Diff struct {
	Src              string   `arg:"" name:"src" help:"Source metadata tree (the branch being promoted)"`
	Trg              []string `arg:"" name:"trg" help:"One or more target metadata trees, TRG1 first"`
	Config           string   `name:"mdconfig" help:"Path to the mdtree scope config file" placeholder:"<file>"`
	WorkTeam         string   `name:"work-team" help:"Work Team column value"`
	DeveloperName    string   `name:"developer" help:"Developer Name column value"`
	UserStory        string   `name:"user-story" help:"User Story column value"`
	RequestTimeStamp string   `name:"timestamp" help:"Request Time Stamp column value"`
	Output           string   `name:"output" short:"o" help:"Write the CSV diff log to this path instead of stdout"`
	Unified          bool     `name:"unified" help:"Print a console unified diff instead of a CSV diff log"`
	Color            bool     `name:"color" help:"Force color in --unified output"`
	Quiet            bool     `name:"quiet" short:"q" help:"Suppress the progress bar"`
}

func (c *Diff) Run(g *Globals) error {
	resolver, global, err := loadResolver(c.Config)
	if err != nil {
		return trace.Errorf("diff: loading mdconfig: %w", err)
	}

	rows, err := diffTrees(resolver, global, diffRunOptions{
		Src:              c.Src,
		Trg:              c.Trg,
		WorkTeam:         c.WorkTeam,
		DeveloperName:    c.DeveloperName,
		UserStory:        c.UserStory,
		RequestTimeStamp: c.RequestTimeStamp,
		Quiet:            c.Quiet,
	})
	if err != nil {
		return err
	}
	g.DbgPrint("diff: %d rows across %s vs %s", len(rows), c.Src, strings.Join(c.Trg, ", "))

	if c.Unified {
		return prettydiff.Render(os.Stdout, rows, prettydiff.Options{UseColor: c.Color, Branch: "TRG1"})
	}

	w := os.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return trace.Errorf("diff: creating %s: %w", c.Output, err)
		}
		defer f.Close()
		return difflog.Write(f, rows, len(c.Trg)-1)
	}
	return difflog.Write(w, rows, len(c.Trg)-1)
}

type diffRunOptions struct {
	Src              string
	Trg              []string
	WorkTeam         string
	DeveloperName    string
	UserStory        string
	RequestTimeStamp string
	Quiet            bool
}

// diffTrees is the out-of-core-engine "directory walk" driver spec.md §2
// leaves to the CLI: per spec.md §2's data-flow note, for every file under
// Src it parses source and each target copy into a per-file leaf map (C3),
// then calls mdtree.Diff (C5) once per file, concatenating the rows.
func diffTrees(resolver *mdconfig.Resolver, global *mdconfig.Options, opts diffRunOptions) ([]difflog.Row, error) {
	entries, err := walkTree(opts.Src, global)
	if err != nil {
		return nil, trace.Errorf("diff: walking %s: %w", opts.Src, err)
	}
	// Also pick up files that exist only in the first target (pure
	// deletions): union of relpaths across Src and Trg[0].
	if len(opts.Trg) > 0 {
		extra, err := walkTree(opts.Trg[0], global)
		if err != nil {
			return nil, trace.Errorf("diff: walking %s: %w", opts.Trg[0], err)
		}
		entries = unionEntries(entries, extra)
	}

	bar := progress.NewBar("diffing files", len(entries), opts.Quiet)
	var rows []difflog.Row
	for _, e := range entries {
		fileRows, err := diffFile(resolver, global, opts, e.relPath)
		if err != nil {
			return nil, err
		}
		rows = append(rows, fileRows...)
		bar.Add(1)
	}
	bar.Finish()
	return rows, nil
}

func unionEntries(a, b []fileEntry) []fileEntry {
	seen := make(map[string]bool, len(a))
	out := append([]fileEntry{}, a...)
	for _, e := range a {
		seen[e.relPath] = true
	}
	for _, e := range b {
		if !seen[e.relPath] {
			out = append(out, e)
			seen[e.relPath] = true
		}
	}
	return out
}

func diffFile(resolver *mdconfig.Resolver, global *mdconfig.Options, opts diffRunOptions, rel string) ([]difflog.Row, error) {
	_, trgExists, err := readFile(pathIn(opts.Trg[0], rel))
	if err != nil {
		return nil, trace.Errorf("diff: reading %s: %w", rel, err)
	}
	srcLeaves, metadata, err := fileLeaves(resolver, global, "SRC", opts.Src, rel, !trgExists)
	if err != nil {
		return nil, trace.Errorf("diff: parsing %s/%s: %w", opts.Src, rel, err)
	}

	var targetMaps []*mdtree.LeafMap
	for i, trgRoot := range opts.Trg {
		trgLeaves, trgMetadata, err := fileLeaves(resolver, global, fmt.Sprintf("TRG%d", i+1), trgRoot, rel, false)
		if err != nil {
			return nil, trace.Errorf("diff: parsing %s/%s: %w", trgRoot, rel, err)
		}
		if metadata == "" {
			metadata = trgMetadata
		}
		targetMaps = append(targetMaps, trgLeaves)
	}

	diffOpts := mdtree.DiffOptions{
		DeveloperWorkLogName: opts.WorkTeam + "-" + opts.RequestTimeStamp,
		RequestTimeStamp:     opts.RequestTimeStamp,
		WorkTeam:             opts.WorkTeam,
		DeveloperName:        opts.DeveloperName,
		UserStory:            opts.UserStory,
		Metadata:             metadata,
		FilePath:             rel,
		DiffKeySeparator:     global.DiffKeySeparator,
	}
	return mdtree.Diff(diffOpts, srcLeaves, targetMaps...), nil
}

func pathIn(root, rel string) string {
	return filepath.Join(root, rel)
}

func loadResolver(path string) (*mdconfig.Resolver, *mdconfig.Options, error) {
	if path == "" {
		resolver, err := mdconfig.NewResolver(strings.NewReader(""))
		if err != nil {
			return nil, nil, err
		}
		return resolver, resolver.Resolve(""), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	resolver, err := mdconfig.NewResolver(f)
	if err != nil {
		return nil, nil, err
	}
	return resolver, resolver.Resolve(""), nil
}
