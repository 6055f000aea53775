// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package mdtree

import "strings"

const maxLevel = 4

// descendLevel is C4: it scans a sub-section's (or a nested block's) body
// for further nested blocks, emitting leaves for this level's own content
// (#CONTENTS#, #PARAMS#) and, recursively, for every level below it, up to
// spec.md's 5-deep bound (root + L1..L4). pathPrefix holds the diff-key
// levels already assigned (length == current node's own depth); scopeChain
// holds the matching tag names, under metadataType, for config-scope
// resolution. It returns the node's content with any bound merge actions
// spliced in.
func descendLevel(ctx *Context, metadataType string, scopeChain, pathPrefix []string, node *MergeNode, content string) string {
	if len(pathPrefix) >= maxLevel {
		// No slot left to key children individually; preserve verbatim
		// (spec.md §3 invariant: deeper input kept but not keyed).
		return content
	}
	lines := splitLinesKeep(content)
	body, open, close := stripWrap(lines)
	items := scanItems(body)

	ctx.emitLeaf(withLevel(pathPrefix, LevelContents), content, COMPLEX)

	var simpleLines []string
	itemKeys := make([]string, len(items))
	for _, it := range items {
		if it.isBlock {
			continue
		}
		simpleLines = append(simpleLines, it.lines...)
	}
	if len(simpleLines) > 0 {
		ctx.emitLeaf(withLevel(pathPrefix, LevelParams), strings.Join(simpleLines, "\n")+"\n", SIMPLE)
	}

	for i, it := range items {
		if !it.isBlock {
			continue
		}
		raw := strings.Join(it.lines, "\n") + "\n"
		childScope := scope(metadataType, append(append([]string{}, scopeChain...), it.tagName)...)
		opts := ctx.Resolver.Resolve(childScope)
		key, shape := SynthesizeKey(raw, opts.Sort)
		structKey := sectionLevel(it.tagName, key)
		itemKeys[i] = key

		var childNode *MergeNode
		if node != nil {
			childNode, _ = node.Lookup(it.tagName, key)
		}
		final := raw
		if childNode != nil {
			if change, ok := childNode.TakeChange(); ok {
				final = ensureTrailingNewline(change)
			}
			if childNode.TakeDelete() {
				items[i].deleted = true
				continue
			}
		}

		childPath := withLevel(pathPrefix, structKey)
		if shape == COMPLEX && len(childPath) < maxLevel && !opts.IsFullSection() && (ctx.Mode.Report || childNode != nil) {
			childScopeChain := append(append([]string{}, scopeChain...), it.tagName)
			final = descendLevel(ctx, metadataType, childScopeChain, childPath, childNode, final)
		} else {
			ctx.emitLeaf(childPath, final, shape)
		}
		items[i].lines = splitLinesKeep(final)
	}

	if node != nil {
		creates := node.TakeCreates()
		byTag := map[string][]CreateEntry{}
		var order []string
		for _, c := range creates {
			if _, ok := byTag[c.SectionName]; !ok {
				order = append(order, c.SectionName)
			}
			byTag[c.SectionName] = append(byTag[c.SectionName], c)
		}
		for _, tag := range order {
			for _, c := range byTag[tag] {
				newItem := blockItem{isBlock: true, tagName: tag, lines: splitLinesKeep(ensureTrailingNewline(c.Content))}
				idx := insertIndex(itemKeys, c.SortKey)
				items = insertBlockItem(items, idx, newItem)
				itemKeys = insertKeyAt(itemKeys, idx, c.SortKey)
			}
		}
	}

	return joinItems(open, items, close)
}

// withLevel returns a fresh slice equal to prefix with one more level
// appended, never aliasing prefix's backing array.
func withLevel(prefix []string, level string) []string {
	out := make([]string, len(prefix)+1)
	copy(out, prefix)
	out[len(prefix)] = level
	return out
}

func insertBlockItem(items []blockItem, idx int, it blockItem) []blockItem {
	items = append(items, blockItem{})
	copy(items[idx+1:], items[idx:])
	items[idx] = it
	return items
}

func insertKeyAt(keys []string, idx int, key string) []string {
	keys = append(keys, "")
	copy(keys[idx+1:], keys[idx:])
	keys[idx] = key
	return keys
}
