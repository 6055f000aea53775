// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"os"

	"github.com/antgroup/metasync/modules/difflog"
	"github.com/antgroup/metasync/modules/mdtree"
	"github.com/antgroup/metasync/modules/mdtree/mdconfig"
	"github.com/antgroup/metasync/modules/trace"
)

// Merge is the `metasync merge` subcommand: it reads a difflog CSV and
// applies its rows to a target metadata tree, one merge-action tree per
// file (spec.md §2 "merge" data flow).
type Merge struct {
	Log    string `arg:"" name:"log" help:"Diff log CSV to apply"`
	Trg    string `arg:"" name:"trg" help:"Target metadata tree to update in place"`
	Config string `name:"mdconfig" help:"Path to the mdtree scope config file" placeholder:"<file>"`
	DryRun bool   `name:"dry-run" help:"Report planned changes without writing files"`
}

func (c *Merge) Run(g *Globals) error {
	resolver, global, err := loadResolver(c.Config)
	if err != nil {
		return trace.Errorf("merge: loading mdconfig: %w", err)
	}

	f, err := os.Open(c.Log)
	if err != nil {
		return trace.Errorf("merge: opening %s: %w", c.Log, err)
	}
	rows, err := difflog.Read(f)
	_ = f.Close()
	if err != nil {
		return trace.Errorf("merge: %w", err)
	}

	byPath := difflog.GroupByPathTimestamp(rows)
	for path, byTS := range byPath {
		var ordered []difflog.Row
		for _, ts := range difflog.SortedTimestamps(byTS) {
			ordered = append(ordered, byTS[ts]...)
		}
		if err := mergeFile(resolver, global, path, ordered, c.Trg, c.DryRun); err != nil {
			return err
		}
		g.DbgPrint("merge: %s: applied %d rows", path, len(ordered))
	}
	return nil
}

func mergeFile(resolver *mdconfig.Resolver, global *mdconfig.Options, rel string, rows []difflog.Row, trgRoot string, dryRun bool) error {
	result := mdtree.BuildMergeTree(rows)
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "metasync: merge: %s: %v\n", rel, e)
	}
	for _, n := range result.Notes {
		fmt.Fprintf(os.Stderr, "metasync: merge: %s: %s\n", rel, n)
	}

	path := pathIn(trgRoot, rel)
	if result.File != nil {
		if dryRun {
			return nil
		}
		return os.WriteFile(path, []byte(result.File.NewContent), 0o644)
	}
	if result.Root == nil {
		return nil
	}

	content, existed, err := readFile(path)
	if err != nil {
		return trace.Errorf("merge: reading %s: %w", path, err)
	}
	if !existed {
		fmt.Fprintf(os.Stderr, "metasync: merge: %s: target file does not exist for a structural update\n", rel)
		return nil
	}

	ctx := mdtree.NewContext(resolver, "TRG1", rel, false).WithMerge(result.Root)
	tree, err := mdtree.Parse(ctx, content)
	if err != nil {
		return trace.Errorf("merge: parsing %s: %w", path, err)
	}
	if dryRun {
		return nil
	}
	return mdtree.WriteAtomic(resolver, tree, path)
}
