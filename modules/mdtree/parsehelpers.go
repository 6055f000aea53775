// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package mdtree

import "strings"

// blockItem is one entry found while scanning a sub-section's body: either
// a nested tag block (delimited by matching same-name open/close lines) or
// a single non-block ("parameter") line.
type blockItem struct {
	isBlock bool
	tagName string
	lines   []string // raw lines, no trailing newline, in original order
	deleted bool
}

// scanItems walks body line-by-line, grouping nested same-tag blocks and
// leaving simple lines standalone, preserving original order and content.
func scanItems(lines []string) []blockItem {
	var items []blockItem
	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if m := openOnlyRe.FindStringSubmatch(trimmed); m != nil {
			name := m[1]
			depth := 1
			block := []string{lines[i]}
			j := i + 1
			for j < len(lines) && depth > 0 {
				lt := strings.TrimSpace(lines[j])
				if om := openOnlyRe.FindStringSubmatch(lt); om != nil && om[1] == name {
					depth++
				} else if cm := closeOnlyRe.FindStringSubmatch(lt); cm != nil && cm[1] == name {
					depth--
				}
				block = append(block, lines[j])
				j++
			}
			items = append(items, blockItem{isBlock: true, tagName: name, lines: block})
			i = j
			continue
		}
		items = append(items, blockItem{lines: []string{lines[i]}})
		i++
	}
	return items
}

// stripWrap removes a leading `<tag>` / trailing `</tag>` pair wrapping the
// block, if present, returning the inner body lines and the two wrap lines
// (empty string when absent).
func stripWrap(lines []string) (body []string, open, close string) {
	if len(lines) < 2 {
		return lines, "", ""
	}
	first := strings.TrimSpace(lines[0])
	last := strings.TrimSpace(lines[len(lines)-1])
	if openOnlyRe.MatchString(first) && closeOnlyRe.MatchString(last) {
		return lines[1 : len(lines)-1], lines[0], lines[len(lines)-1]
	}
	return lines, "", ""
}

// joinItems renders items (plus optional wrap lines) back into a single
// string with a trailing newline, the stored form of sub-section content.
func joinItems(open string, items []blockItem, close string) string {
	var lines []string
	if open != "" {
		lines = append(lines, open)
	}
	for _, it := range items {
		if it.deleted {
			continue
		}
		lines = append(lines, it.lines...)
	}
	if close != "" {
		lines = append(lines, close)
	}
	return strings.Join(lines, "\n") + "\n"
}

// insertIndex finds where to splice a newly created entry with sortKey
// among items whose already-resolved keys are given in itemKeys (parallel
// to the items slice the caller will insert into; entries with an empty
// key, e.g. plain parameter lines, never match). MD5-fallback keys
// (spec.md §9, "no natural order") are always appended at the end. This is
// a pragmatic linear scan over items in their current order, not a binary
// search over a presumed-sorted array, since nested levels are never
// re-sorted by the reconstructor and insertion order is all they get.
func insertIndex(itemKeys []string, sortKey string) int {
	if isMD5FallbackKey(sortKey) {
		return len(itemKeys)
	}
	for idx, key := range itemKeys {
		if key == "" {
			continue
		}
		if key > sortKey {
			return idx
		}
	}
	return len(itemKeys)
}

// ensureTrailingNewline appends "\n" to s if it lacks one, tolerating
// corrupted CSV "New Value" cells that dropped their trailing newline
// (spec.md "Byte-preservation").
func ensureTrailingNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
