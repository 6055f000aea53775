// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package mdtree

import "github.com/antgroup/metasync/modules/mdtree/mdconfig"

// Mode narrows which optional work C3/C4 perform for a given run (spec.md
// §4.3 step 4: report mode, sub-filters present, or a bound merge action are
// each, independently, a reason to descend into a complex sub-section).
type Mode struct {
	// Report requests full descent regardless of filters/merge actions,
	// e.g. to populate a leaf map for diffing.
	Report bool
}

// Context is the single value threaded through C2–C8 in place of the
// source's implicit globals (spec.md §9 "Deep shared state"): resolved
// config, current branch tag, current file path, leaf-map accumulator,
// duplicate-key accumulator, and (during merge) the merge-actions tree.
type Context struct {
	Resolver *mdconfig.Resolver
	Branch   string
	FilePath string
	Mode     Mode

	LeafMap    *LeafMap
	Duplicates *DuplicateTracker

	// MergeRoot is nil outside a merge run. When set, C3/C4 consult and
	// consume entries from it as they descend.
	MergeRoot *MergeNode
}

// NewContext returns a Context ready for a parse-only (diff) run: merge
// actions are not bound.
func NewContext(resolver *mdconfig.Resolver, branch, filePath string, report bool) *Context {
	return &Context{
		Resolver:   resolver,
		Branch:     branch,
		FilePath:   filePath,
		Mode:       Mode{Report: report},
		LeafMap:    NewLeafMap(),
		Duplicates: NewDuplicateTracker(),
	}
}

// WithMerge returns a copy of ctx with a merge-actions tree bound, for a
// merge run over FilePath.
func (c *Context) WithMerge(root *MergeNode) *Context {
	dup := *c
	dup.MergeRoot = root
	return &dup
}

// diffKeySeparator returns the separator in effect for scope "" (the global
// scope), since the separator is a process-wide setting rather than a
// per-section one (spec.md §4.1 `diffKeySeparator`).
func (c *Context) diffKeySeparator() string {
	return c.Resolver.Resolve("").DiffKeySeparator
}

// buildDiffKey renders levels (up to 4 structural-level strings, in
// L1..L4 order) into a joined diff key for c.FilePath, using the active
// separator. Missing trailing levels are left empty.
func (c *Context) buildDiffKey(levels []string) string {
	k := DiffKey{FilePath: c.FilePath}
	if len(levels) > 0 {
		k.L1 = levels[0]
	}
	if len(levels) > 1 {
		k.L2 = levels[1]
	}
	if len(levels) > 2 {
		k.L3 = levels[2]
	}
	if len(levels) > 3 {
		k.L4 = levels[3]
	}
	return k.Join(c.diffKeySeparator())
}

// emitLeaf records one leaf (spec.md §3/§8): value keyed by levels, noting
// the occurrence in the duplicate tracker and overwriting any prior value
// for the same key in the leaf map (C8 reports the collision; C5 always
// diffs against the latest write).
func (c *Context) emitLeaf(levels []string, value string, shape Shape) {
	key := c.buildDiffKey(levels)
	c.Duplicates.Record(c.Branch, key, value)
	c.LeafMap.Put(key, Leaf{Value: value, Shape: shape})
}

// scope returns the dash-joined metadata-type/sub-section chain for the
// given section-name path (spec.md §4.1).
func scope(metadataType string, names ...string) string {
	s := metadataType
	for _, n := range names {
		if n == "" {
			continue
		}
		s += "-" + n
	}
	return s
}
