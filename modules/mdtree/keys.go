// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package mdtree

import "strings"

// Sentinel leaf-path components (spec.md §3).
const (
	LevelSingle      = "#SINGLE#"
	LevelParam       = "#PARAM#"
	LevelParams      = "#PARAMS#"
	LevelContents    = "#CONTENTS#"
	LevelOverwrite   = "#OVERWRITE#"
	LevelNewMetadata = "#NEW_METADATA#"
)

// DiffKey is the path tuple (filepath, L1, L2, L3, L4) joined by a
// configurable separator, used as a position-independent leaf identifier.
type DiffKey struct {
	FilePath string
	L1       string
	L2       string
	L3       string
	L4       string
}

// Join renders k using sep (spec.md §3's "Leaf map" definition).
func (k DiffKey) Join(sep string) string {
	return strings.Join([]string{k.FilePath, k.L1, k.L2, k.L3, k.L4}, sep)
}

// SplitDiffKey parses a joined diff key back into its components.
func SplitDiffKey(s, sep string) DiffKey {
	parts := strings.SplitN(s, sep, 5)
	k := DiffKey{}
	if len(parts) > 0 {
		k.FilePath = parts[0]
	}
	if len(parts) > 1 {
		k.L1 = parts[1]
	}
	if len(parts) > 2 {
		k.L2 = parts[2]
	}
	if len(parts) > 3 {
		k.L3 = parts[3]
	}
	if len(parts) > 4 {
		k.L4 = parts[4]
	}
	return k
}

// sectionLevel renders a structural level component `SNAME=SVALUE`.
func sectionLevel(name, key string) string {
	return name + "=" + key
}

// splitSectionLevel splits a `SNAME=SVALUE` level back into its parts. Used
// by the merger, which must also accept a bare SVALUE (spec.md §4.6).
func splitSectionLevel(level string) (name, key string, ok bool) {
	i := strings.IndexByte(level, '=')
	if i < 0 {
		return "", level, false
	}
	return level[:i], level[i+1:], true
}

// isMD5FallbackKey reports whether key looks like a C2 MD5-fallback key:
// exactly 32 lowercase hex characters, no spaces (spec.md §9).
func isMD5FallbackKey(key string) bool {
	if len(key) != 32 {
		return false
	}
	for _, r := range key {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
