// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package mdtree

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/antgroup/metasync/modules/mdtree/mdconfig"
)

var foldCaser = cases.Fold()

// Render is C7: it walks tree's sections in original order, sorting the
// sub-sections of any Standard section whose resolved `reconstruct`
// option is not `#DONOTSORT#` by case-folded sort key (ties broken by
// original/insertion order, a stable sort), and concatenates every
// sub-section's content back into one file (spec.md §4.7).
func Render(resolver *mdconfig.Resolver, tree *Tree) string {
	var b strings.Builder
	for _, sect := range tree.Sections {
		subs := liveSubSections(sect.SubSections)
		if sect.Type == Standard {
			opts := resolver.Resolve(scope(tree.MetadataType, sect.Name))
			if opts.ShouldSort() {
				subs = sortedByFoldedKey(subs)
			}
		}
		for _, ss := range subs {
			b.WriteString(ss.Content)
		}
	}
	return b.String()
}

func liveSubSections(all []*SubSection) []*SubSection {
	out := make([]*SubSection, 0, len(all))
	for _, ss := range all {
		if !ss.deleted {
			out = append(out, ss)
		}
	}
	return out
}

func sortedByFoldedKey(subs []*SubSection) []*SubSection {
	out := make([]*SubSection, len(subs))
	copy(out, subs)
	sort.SliceStable(out, func(i, j int) bool {
		return foldCaser.String(out[i].SortKey) < foldCaser.String(out[j].SortKey)
	})
	return out
}

// WriteAtomic renders tree and replaces path's contents via the exact
// swap spec.md §4.7 prescribes: write `<path>.new`, rename `path` ->
// `path.orig`, rename `path.new` -> `path`, delete `path.orig`. An I/O
// failure at any step is fatal for this file only, leaving whichever of
// `.orig`/`.new` still exists as a recovery hint (spec.md §7).
func WriteAtomic(resolver *mdconfig.Resolver, tree *Tree, path string) error {
	content := Render(resolver, tree)
	newPath := path + ".new"
	origPath := path + ".orig"

	if err := os.WriteFile(newPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("mdtree: %s: writing %s: %w", path, newPath, err)
	}
	if err := os.Rename(path, origPath); err != nil {
		return fmt.Errorf("mdtree: %s: renaming to %s: %w", path, origPath, err)
	}
	if err := os.Rename(newPath, path); err != nil {
		return fmt.Errorf("mdtree: %s: renaming %s into place: %w", path, newPath, err)
	}
	if err := os.Remove(origPath); err != nil {
		return fmt.Errorf("mdtree: %s: removing backup %s: %w", path, origPath, err)
	}
	return nil
}
