// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package mdtree

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/antgroup/metasync/modules/mdtree/mdconfig"
)

var (
	rootOpenRe  = regexp.MustCompile(`^<([A-Za-z0-9_.]+)(?:\s+xmlns="[^"]*")?\s*>$`)
	selfCloseRe = regexp.MustCompile(`^<([^/>][^>]*)/>$`)
	valueTagRe  = regexp.MustCompile(`^<([^/>][^>]*)>(.*)</([^>]+)>$`)
)

// ErrNotMetadata is returned by Parse when content lacks a recognizable
// root tag within its first three lines (spec.md §4.3 Start state): the
// caller should skip the file with a log note rather than treat it as an
// error.
var ErrNotMetadata = fmt.Errorf("mdtree: not a metadata file")

// Parse is C3: it tokenizes content (one file's full original bytes) into
// a Tree, emitting leaves into ctx.LeafMap (and occurrence counts into
// ctx.Duplicates) as a side effect. When ctx.MergeRoot is bound, pending
// ##CHANGE##/##DELETE##/##CREATE## actions are consumed as sections are
// visited.
func Parse(ctx *Context, content string) (*Tree, error) {
	lines := splitLinesKeep(content)

	metadataType, headerLine, bodyStart, err := findRoot(lines)
	if err != nil {
		return nil, err
	}

	tree := &Tree{
		MetadataType: metadataType,
		MetadataName: stemOf(ctx.FilePath),
		FilePath:     ctx.FilePath,
	}
	tree.Sections = append(tree.Sections, &Section{
		Name: metadataType,
		Type: Header,
		SubSections: []*SubSection{
			{SortKey: LevelSingle, Shape: SIMPLE, Content: headerLine + "\n"},
		},
	})

	p := &parser{ctx: ctx, tree: tree, metadataType: metadataType}
	closeTag := "</" + metadataType + ">"
	for i := bodyStart; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if p.inSubSection {
			p.buffer = append(p.buffer, line)
			if trimmed == "</"+p.current.Name+">" {
				p.inSubSection = false
				p.commitBuffered()
			}
			continue
		}

		if trimmed == closeTag {
			p.flushPendingCreates("")
			tree.Sections = append(tree.Sections, &Section{
				Name: metadataType,
				Type: End,
				SubSections: []*SubSection{
					{SortKey: LevelSingle, Shape: SIMPLE, Content: line + "\n"},
				},
			})
			return tree, nil
		}

		if m := selfCloseRe.FindStringSubmatch(trimmed); m != nil {
			p.flushPendingCreates(m[1])
			sect := &Section{Name: m[1], Type: Empty}
			tree.Sections = append(tree.Sections, sect)
			p.current = sect

			content := line + "\n"
			if p.ctx.MergeRoot != nil {
				if node, ok := p.ctx.MergeRoot.Lookup(m[1], LevelSingle); ok {
					if change, ok := node.TakeChange(); ok {
						content = ensureTrailingNewline(change)
					}
					if node.TakeDelete() {
						content = ""
					}
				}
			}
			if content != "" {
				sect.SubSections = append(sect.SubSections, &SubSection{SortKey: LevelSingle, Shape: SIMPLE, Content: content})
				ctx.emitLeaf([]string{sectionLevel(m[1], LevelSingle)}, content, SIMPLE)
			}
			continue
		}

		if m := valueTagRe.FindStringSubmatch(trimmed); m != nil && m[1] == m[3] {
			p.flushPendingCreates(m[1])
			sect := &Section{Name: m[1], Type: Params}
			tree.Sections = append(tree.Sections, sect)
			p.current = sect

			content := line + "\n"
			if p.ctx.MergeRoot != nil {
				if node, ok := p.ctx.MergeRoot.Lookup(m[1], LevelParam); ok {
					if change, ok := node.TakeChange(); ok {
						content = ensureTrailingNewline(change)
					}
					if node.TakeDelete() {
						content = ""
					}
				}
			}
			if content != "" {
				sect.SubSections = append(sect.SubSections, &SubSection{SortKey: LevelParam, Shape: SIMPLE, Content: content})
				ctx.emitLeaf([]string{sectionLevel(m[1], LevelParam)}, content, SIMPLE)
			}
			continue
		}

		if om := openOnlyRe.FindStringSubmatch(trimmed); om != nil {
			tag := om[1]
			if p.current == nil || p.current.Type != Standard || p.current.Name != tag {
				p.flushPendingCreates(tag)
				sect := &Section{Name: tag, Type: Standard}
				tree.Sections = append(tree.Sections, sect)
				p.current = sect
			}
			p.inSubSection = true
			p.buffer = []string{line}
			continue
		}

		// Stray line outside any recognized construct: ignore rather than
		// abort, matching the lenient-stream-parser design.
	}

	return nil, fmt.Errorf("mdtree: %s: missing closing %s", ctx.FilePath, closeTag)
}

// findRoot implements the Start state: look for the root tag within the
// first three lines.
func findRoot(lines []string) (metadataType, headerLine string, bodyStart int, err error) {
	limit := 3
	if len(lines) < limit {
		limit = len(lines)
	}
	for i := 0; i < limit; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if m := rootOpenRe.FindStringSubmatch(trimmed); m != nil {
			return m[1], lines[i], i + 1, nil
		}
	}
	return "", "", 0, ErrNotMetadata
}

// stemOf returns filename's basename without extension (spec.md §3
// "Metadata file").
func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// parser holds the top-level (C3) state-machine variables across the line
// loop in Parse.
type parser struct {
	ctx          *Context
	tree         *Tree
	metadataType string

	current      *Section
	inSubSection bool
	buffer       []string
}

// flushPendingCreates appends any still-pending ##CREATE## entries bound
// directly under ctx.MergeRoot to the sections preceding nextTag in name
// order (or all remaining ones, when nextTag is "" at end-of-file), as
// brand-new top-level sections (spec.md §4.6 "Check for new
// sections/subsections"). Existing sections receive their own pending
// creates when committed, via commitStandardTail.
func (p *parser) flushPendingCreates(nextTag string) {
	if p.ctx.MergeRoot == nil {
		return
	}
	names := p.ctx.MergeRoot.ChildNames()
	sort.Strings(names)
	for _, name := range names {
		if nextTag != "" && name >= nextTag {
			continue
		}
		if p.hasSection(name) {
			continue
		}
		child, ok := p.ctx.MergeRoot.Lookup(name, "")
		if !ok {
			continue
		}
		creates := child.TakeCreates()
		if len(creates) == 0 {
			continue
		}
		sect := &Section{Name: name, Type: Standard}
		for _, c := range creates {
			content := ensureTrailingNewline(c.Content)
			sect.SubSections = append(sect.SubSections, &SubSection{SortKey: c.SortKey, Shape: COMPLEX, Content: content})
			p.ctx.emitLeaf([]string{sectionLevel(name, c.SortKey)}, content, COMPLEX)
		}
		p.tree.Sections = append(p.tree.Sections, sect)
	}
}

func (p *parser) hasSection(name string) bool {
	for _, s := range p.tree.Sections {
		if s.Name == name {
			return true
		}
	}
	return false
}

// commitBuffered commits the currently buffered Standard sub-section per
// spec.md §4.3's five commit steps.
func (p *parser) commitBuffered() {
	raw := strings.Join(p.buffer, "\n") + "\n"
	p.buffer = nil
	tagName := p.current.Name

	opts := p.ctx.Resolver.Resolve(scope(p.metadataType, tagName))
	if matchesDelete(raw, opts.Delete) {
		return
	}

	key, shape := SynthesizeKey(raw, opts.Sort)
	if !p.retained(opts, key) {
		return
	}

	var node *MergeNode
	if p.ctx.MergeRoot != nil {
		node, _ = p.ctx.MergeRoot.Lookup(tagName, key)
	}

	final := raw
	if node != nil {
		if change, ok := node.TakeChange(); ok {
			final = ensureTrailingNewline(change)
		}
		if node.TakeDelete() {
			return
		}
	}

	structKey := sectionLevel(tagName, key)
	if shape == COMPLEX && !opts.IsFullSection() && (p.ctx.Mode.Report || len(opts.Filter) > 0 || node != nil) {
		final = descendLevel(p.ctx, p.metadataType, []string{tagName}, []string{structKey}, node, final)
	} else {
		p.ctx.emitLeaf([]string{structKey}, final, shape)
	}

	p.current.SubSections = append(p.current.SubSections, &SubSection{SortKey: key, Shape: shape, Content: final})

	if node != nil {
		p.flushCreatesInto(tagName, node)
	}
}

// flushCreatesInto appends any pending ##CREATE## entries belonging under
// node directly to the current Standard section, in sorted order relative
// to its existing siblings (MD5-fallback keys appended last).
func (p *parser) flushCreatesInto(tagName string, node *MergeNode) {
	creates := node.TakeCreates()
	if len(creates) == 0 {
		return
	}
	keys := make([]string, len(p.current.SubSections))
	for i, ss := range p.current.SubSections {
		keys[i] = ss.SortKey
	}
	for _, c := range creates {
		content := ensureTrailingNewline(c.Content)
		idx := insertIndex(keys, c.SortKey)
		ss := &SubSection{SortKey: c.SortKey, Shape: COMPLEX, Content: content}
		p.current.SubSections = append(p.current.SubSections, nil)
		copy(p.current.SubSections[idx+1:], p.current.SubSections[idx:])
		p.current.SubSections[idx] = ss
		keys = append(keys, "")
		copy(keys[idx+1:], keys[idx:])
		keys[idx] = c.SortKey
		p.ctx.emitLeaf([]string{sectionLevel(tagName, c.SortKey)}, content, COMPLEX)
	}
}

// matchesDelete reports whether every substring in rule is present in
// content (spec.md §4.1 `delete`).
func matchesDelete(content string, rule []string) bool {
	if len(rule) == 0 {
		return false
	}
	for _, sub := range rule {
		if !strings.Contains(content, sub) {
			return false
		}
	}
	return true
}

// retained applies the `filter` option (spec.md §4.1, §4.3 step 3): when
// filters are configured, a key is kept only if it matches one of them
// (`NAME.KEY` against the artifact's own name), unless report mode or a
// merge run is in progress, both of which always retain everything so
// leaf maps and merge targets stay complete.
func (p *parser) retained(opts *mdconfig.Options, key string) bool {
	if len(opts.Filter) == 0 {
		return true
	}
	if p.ctx.Mode.Report || p.ctx.MergeRoot != nil {
		return true
	}
	for _, f := range opts.Filter {
		parts := strings.SplitN(f, ".", 2)
		if len(parts) == 2 && parts[0] == p.tree.MetadataName && parts[1] == key {
			return true
		}
	}
	return false
}
