// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/antgroup/metasync/modules/mdtree"
	"github.com/antgroup/metasync/modules/mdtree/mdconfig"
)

// fileEntry is one discovered metadata file, relative to its tree root.
type fileEntry struct {
	relPath string
	dir     string // first path segment, used for overwrite/metadatamap lookups
}

// walkTree lists every regular file under root, relative to root, sorted
// for deterministic diff-row ordering. Files whose bare name starts with
// one of global.ExcludeFiles are omitted (spec.md §6 `excludeFiles`).
func walkTree(root string, global *mdconfig.Options) ([]fileEntry, error) {
	var entries []fileEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if excludedByPrefix(rel, global.ExcludeFiles) {
			return nil
		}
		entries = append(entries, fileEntry{relPath: rel, dir: firstSegment(rel)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].relPath < entries[j].relPath })
	return entries, nil
}

func firstSegment(rel string) string {
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		return rel[:i]
	}
	return rel
}

func excludedByPrefix(rel string, prefixes []string) bool {
	base := filepath.Base(rel)
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(base, p) {
			return true
		}
	}
	return false
}

// isOverwriteDir reports whether rel's first path segment (spec.md §9: only
// the first segment is ever checked, nested overwrite roots are not
// supported) is one of global.Overwrite.
func isOverwriteDir(rel string, global *mdconfig.Options) bool {
	dir := firstSegment(rel)
	for _, d := range global.Overwrite {
		if d == dir {
			return true
		}
	}
	return false
}

// metadataRef resolves a file's (TYPE, NAME) pair from an overwrite
// directory's metadatamap-<dir> entries: each entry is "TYPE suffix",
// matched by the longest suffix of the bare filename; "#BASENAME#" in the
// suffix slot means "name is everything before the first dot" rather than a
// literal suffix to strip.
func metadataRef(rel string, global *mdconfig.Options) (mdType, name string, ok bool) {
	dir := firstSegment(rel)
	entries := global.MetadataMap[dir]
	base := filepath.Base(rel)
	bestLen := -1
	for _, entry := range entries {
		fields := strings.Fields(entry)
		if len(fields) != 2 {
			continue
		}
		mtype, suffix := fields[0], fields[1]
		if suffix == "#BASENAME#" {
			if bestLen < 0 {
				mdType, name, ok = mtype, beforeFirstDot(base), true
			}
			continue
		}
		if strings.HasSuffix(base, suffix) && len(suffix) > bestLen {
			bestLen = len(suffix)
			mdType = mtype
			name = strings.TrimSuffix(base, suffix)
			ok = true
		}
	}
	return mdType, name, ok
}

func beforeFirstDot(base string) string {
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// readFile reads path's content, returning ("", false, nil) if it is absent.
func readFile(path string) (string, bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(b), true, nil
}

// fileLeaves builds the per-file leaf map and (type, name) metadata
// reference for one side (source or a target) of a diff, classifying rel
// as overwrite, brand-new, or structural per spec.md §4.5/§9.
func fileLeaves(resolver *mdconfig.Resolver, global *mdconfig.Options, branch, root string, rel string, isNewOnThisSide bool) (leaves *mdtree.LeafMap, metadata string, err error) {
	content, existed, err := readFile(filepath.Join(root, rel))
	if err != nil {
		return nil, "", err
	}
	leaves = mdtree.NewLeafMap()
	if !existed {
		return leaves, "", nil
	}

	sep := global.DiffKeySeparator
	if isOverwriteDir(rel, global) {
		// Overwrite-directory files always key off #OVERWRITE#, new or
		// not: Diff already turns an empty target side into Create File
		// for this level (spec.md §4.5), so no #NEW_METADATA# framing is
		// needed here.
		mtype, name, _ := metadataRef(rel, global)
		leaves.Put(mdtree.DiffKey{FilePath: rel, L1: mdtree.LevelOverwrite}.Join(sep), mdtree.Leaf{Value: content, Shape: mdtree.SIMPLE})
		return leaves, mtype + "=" + name, nil
	}

	// report=true: a diff run has no merge tree to descend for, so C4 only
	// descends into complex sub-sections when report mode asks for it
	// (spec.md §4.3/§4.4) — without this a diff never produces #CONTENTS#
	// children and falls back to whole-block comparison.
	ctx := mdtree.NewContext(resolver, branch, rel, true)
	tree, perr := mdtree.Parse(ctx, content)
	if perr == mdtree.ErrNotMetadata {
		// Not a recognizable metadata file: fall back to whole-file
		// comparison so it still participates in the diff.
		leaves = mdtree.NewLeafMap()
		leaves.Put(mdtree.DiffKey{FilePath: rel, L1: mdtree.LevelOverwrite}.Join(sep), mdtree.Leaf{Value: content, Shape: mdtree.SIMPLE})
		return leaves, "", nil
	}
	if perr != nil {
		return nil, "", perr
	}
	if isNewOnThisSide {
		// A brand-new structural file is diffed as a single whole-file
		// leaf (spec.md §4.5 "#NEW_METADATA#") rather than structurally,
		// so its creation produces one Create File row instead of one
		// Create Item row per leaf.
		leaves = mdtree.NewLeafMap()
		leaves.Put(mdtree.DiffKey{FilePath: rel, L1: mdtree.LevelNewMetadata}.Join(sep), mdtree.Leaf{Value: content, Shape: mdtree.SIMPLE})
		return leaves, tree.MetadataType + "=" + tree.MetadataName, nil
	}
	return ctx.LeafMap, tree.MetadataType + "=" + tree.MetadataName, nil
}
