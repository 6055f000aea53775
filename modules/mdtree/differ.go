// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package mdtree

import (
	"sort"
	"strings"

	"github.com/antgroup/metasync/modules/difflog"
)

// DiffOptions carries the row metadata columns that are not derivable
// from leaf comparison itself (spec.md §6): these come from the work
// team/story prompt the CLI driver gathers before a diff run.
type DiffOptions struct {
	DeveloperWorkLogName string
	RequestTimeStamp     string
	WorkTeam             string
	DeveloperName        string
	UserStory            string
	Metadata             string // "TYPE=NAME"
	FilePath             string
	DiffKeySeparator     string
}

// Diff compares src against one or more targets (targets[0] is TRG1, the
// branch that determines row classification; further targets only
// contribute additional "Old Value" columns) and returns one difflog.Row
// per differing leaf, in diff-key order (spec.md §4.5, §5 ordering
// guarantee (1)).
func Diff(opts DiffOptions, src *LeafMap, targets ...*LeafMap) []difflog.Row {
	keys := unionKeys(src, targets)

	var primary *LeafMap
	if len(targets) > 0 {
		primary = targets[0]
	}

	skipMetadata := false
	skipPrefix := ""

	var rows []difflog.Row
	for _, key := range keys {
		if skipMetadata {
			break
		}
		if skipPrefix != "" {
			if strings.HasPrefix(key, skipPrefix) {
				continue
			}
			skipPrefix = ""
		}

		dk := SplitDiffKey(key, opts.DiffKeySeparator)
		srcLeaf, srcOK := src.Get(key)
		var trgLeaf Leaf
		var trgOK bool
		if primary != nil {
			trgLeaf, trgOK = primary.Get(key)
		}

		if srcOK && trgOK && leavesEqual(srcLeaf.Value, trgLeaf.Value) {
			continue
		}

		row := difflog.Row{
			DeveloperWorkLogName: opts.DeveloperWorkLogName,
			RequestTimeStamp:     opts.RequestTimeStamp,
			WorkTeam:             opts.WorkTeam,
			DeveloperName:        opts.DeveloperName,
			UserStory:            opts.UserStory,
			Metadata:             opts.Metadata,
			Path:                 opts.FilePath,
			L1Key:                dk.L1,
			L2Key:                dk.L2,
			L3Key:                dk.L3,
			L4Key:                dk.L4,
		}

		switch {
		case dk.L1 == LevelNewMetadata && !trgOK:
			row.MergeAction = difflog.ActionCreateFile
			row.NewValue = srcLeaf.Value
			skipMetadata = true

		case dk.L1 == LevelOverwrite:
			if !trgOK {
				row.MergeAction = difflog.ActionCreateFile
			} else {
				row.MergeAction = difflog.ActionUpdateFile
				row.OldValues = append(row.OldValues, trgLeaf.Value)
			}
			row.NewValue = srcLeaf.Value

		case !srcOK && trgOK:
			row.MergeAction = difflog.ActionDeleteItem
			row.OldValues = append(row.OldValues, trgLeaf.Value)

		case !trgOK:
			row.MergeAction = difflog.ActionCreateItem
			row.NewValue = srcLeaf.Value
			if containsContentsLevel(dk) {
				skipPrefix = parentPrefix(key, opts.DiffKeySeparator)
			}

		default:
			if containsContentsLevel(dk) {
				// A descendant's #CONTENTS# leaf differs but the parent
				// structural key matched on both sides: the parent
				// already exists, so this is not an insertion; deeper
				// field-level rows (if any) carry the real change.
				continue
			}
			row.MergeAction = difflog.ActionUpdateItem
			row.NewValue = srcLeaf.Value
			row.OldValues = append(row.OldValues, trgLeaf.Value)
		}

		for _, extra := range targetsBeyondPrimary(targets) {
			if v, ok := extra.Get(key); ok {
				row.OldValues = append(row.OldValues, v.Value)
			} else {
				row.OldValues = append(row.OldValues, "")
			}
		}

		rows = append(rows, row)
	}
	return rows
}

func targetsBeyondPrimary(targets []*LeafMap) []*LeafMap {
	if len(targets) <= 1 {
		return nil
	}
	return targets[1:]
}

func unionKeys(src *LeafMap, targets []*LeafMap) []string {
	seen := map[string]bool{}
	var keys []string
	add := func(m *LeafMap) {
		if m == nil {
			return
		}
		for _, k := range m.Keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	add(src)
	for _, t := range targets {
		add(t)
	}
	sort.Strings(keys)
	return keys
}

// containsContentsLevel reports whether any of dk's structural levels is
// the #CONTENTS# sentinel (spec.md §4.5).
func containsContentsLevel(dk DiffKey) bool {
	for _, l := range []string{dk.L1, dk.L2, dk.L3, dk.L4} {
		if l == LevelContents {
			return true
		}
	}
	return false
}

// parentPrefix returns the joined-key prefix through the level preceding
// #CONTENTS#, not #CONTENTS# itself: C4 emits #PARAMS# and each child
// block as siblings of #CONTENTS# at that same depth (subparser.go), not
// nested under it, so the prefix used to recognize and skip them must
// stop one level short of the #CONTENTS# token (spec.md §4.5
// "skipChildSections").
func parentPrefix(key, sep string) string {
	marker := sep + LevelContents
	idx := strings.Index(key, marker)
	if idx < 0 {
		return ""
	}
	return key[:idx]
}

// leavesEqual compares two leaf values ignoring each line's leading
// whitespace (spec.md §4.5).
func leavesEqual(a, b string) bool {
	return stripLeadingWhitespace(a) == stripLeadingWhitespace(b)
}

func stripLeadingWhitespace(s string) string {
	lines := splitLinesKeep(s)
	for i, l := range lines {
		lines[i] = strings.TrimLeft(l, " \t")
	}
	return strings.Join(lines, "\n")
}
