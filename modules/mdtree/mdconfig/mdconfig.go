// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package mdconfig resolves per-scope parsing/diffing/reconstruction options
// for the metadata tree engine (modules/mdtree). It reads a section-oriented
// key=value dialect — an anonymous root section of global keys, followed by
// any number of `[scope]` sections — where scope is the dash-joined
// metadata-type/sub-section chain (e.g. `CustomObject-fields-valueSet`).
package mdconfig

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgraph-io/ristretto/v2"
)

// Option names recognized in a scope section. Unrecognized keys are kept
// verbatim in Options.Extra so callers can add their own without a parser
// change.
const (
	KeySort             = "sort"
	KeyDelete           = "delete"
	KeyReconstruct      = "reconstruct"
	KeyFilter           = "filter"
	KeyParser           = "parser"
	KeyMerge            = "merge"
	KeyOverwrite        = "overwrite"
	KeyExcludeFiles     = "excludeFiles"
	KeyDiffKeySeparator = "diffKeySeparator"
)

const metadataMapPrefix = "metadatamap-"

// Reconstruct modes (option KeyReconstruct).
const (
	ReconstructSort      = "#SORT#"
	ReconstructDoNotSort = "#DONOTSORT#"
)

// Parser modes (option KeyParser).
const (
	ParserFullSection = "#FULLSECTION#"
)

// DefaultDiffKeySeparator is ASCII Record Separator, chosen because it is
// vanishingly unlikely to appear in metadata content.
const DefaultDiffKeySeparator = "\x1e"

// Options is the resolved configuration for one scope.
type Options struct {
	Sort             []string
	Delete           []string
	Reconstruct      string
	Filter           []string
	Parser           string
	Merge            []string
	Overwrite        []string
	ExcludeFiles     []string
	DiffKeySeparator string
	MetadataMap      map[string][]string // dir -> ["TYPE suffix", ...]
	Extra            map[string][]string
}

func newOptions() *Options {
	return &Options{
		Reconstruct: ReconstructSort,
		MetadataMap: make(map[string][]string),
		Extra:       make(map[string][]string),
	}
}

func (o *Options) merge(key, value string) {
	switch {
	case key == KeySort:
		o.Sort = append(o.Sort, value)
	case key == KeyDelete:
		o.Delete = append(o.Delete, value)
	case key == KeyReconstruct:
		o.Reconstruct = value
	case key == KeyFilter:
		o.Filter = append(o.Filter, value)
	case key == KeyParser:
		o.Parser = value
	case key == KeyMerge:
		o.Merge = append(o.Merge, value)
	case key == KeyOverwrite:
		o.Overwrite = append(o.Overwrite, value)
	case key == KeyExcludeFiles:
		o.ExcludeFiles = append(o.ExcludeFiles, value)
	case key == KeyDiffKeySeparator:
		o.DiffKeySeparator = value
	case strings.HasPrefix(key, metadataMapPrefix):
		dir := strings.TrimPrefix(key, metadataMapPrefix)
		o.MetadataMap[dir] = append(o.MetadataMap[dir], value)
	default:
		o.Extra[key] = append(o.Extra[key], value)
	}
}

// rawConfig is the parsed file before scope resolution: a root section plus
// named scope sections, each an ordered list of key=value pairs (order
// matters for list-valued options such as `sort`).
type rawConfig struct {
	root     []kv
	sections map[string][]kv
	order    []string
}

type kv struct {
	key   string
	value string
}

// Parse reads the section-oriented dialect from r.
//
// Grammar, one directive per non-blank, non-comment line:
//   - `[scope]` opens a named section; scope may be empty (`[]`), equivalent
//     to continuing the root section.
//   - `key = value` (or `key=value`) adds one key/value pair to the current
//     section. Repeated keys accumulate as a list.
//   - `#` or `;` at the start of a line (after trimming) marks a comment.
//
// This is deliberately simpler than a general git-style config grammar (no
// subsections). A value that strconv.Unquote accepts as a Go quoted literal
// is unquoted, escapes included (e.g. "\x1e"); any other value is taken
// verbatim. A hand-rolled scanner keeps the resolver dependency-free at
// this layer (see DESIGN.md).
func Parse(r io.Reader) (*rawConfig, error) {
	rc := &rawConfig{sections: make(map[string][]kv)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	current := ""
	seen := map[string]bool{}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			end := strings.IndexByte(line, ']')
			if end < 0 {
				return nil, fmt.Errorf("mdconfig: line %d: unterminated section header %q", lineNo, line)
			}
			current = strings.TrimSpace(line[1:end])
			if !seen[current] {
				seen[current] = true
				rc.order = append(rc.order, current)
			}
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return nil, fmt.Errorf("mdconfig: line %d: expected key=value, got %q", lineNo, line)
		}
		key := strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])
		if unq, err := strconv.Unquote(value); err == nil {
			value = unq
		}
		pair := kv{key: key, value: value}
		if current == "" {
			rc.root = append(rc.root, pair)
		} else {
			rc.sections[current] = append(rc.sections[current], pair)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("mdconfig: %w", err)
	}
	return rc, nil
}

// Resolver exposes pure, cached scope resolution. It holds no mutable
// configuration state of its own beyond the parsed file and a lookup cache;
// Resolve never mutates the underlying rawConfig.
type Resolver struct {
	raw   *rawConfig
	cache *ristretto.Cache[string, *Options]
}

// NewResolver builds a Resolver from a parsed config file. A small
// ristretto cache absorbs repeat lookups of the same scope, which happens
// often: a tree with thousands of sibling entries resolves the same
// (type, section) scope once per entry.
func NewResolver(r io.Reader) (*Resolver, error) {
	raw, err := Parse(r)
	if err != nil {
		return nil, err
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, *Options]{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("mdconfig: unable to initialize scope cache: %w", err)
	}
	return &Resolver{raw: raw, cache: c}, nil
}

// metadataTypeScope returns the first dash-joined component of scope, i.e.
// the owning metadata type's own (unqualified) scope.
func metadataTypeScope(scope string) string {
	if i := strings.IndexByte(scope, '-'); i >= 0 {
		return scope[:i]
	}
	return scope
}

// Resolve looks up options for scope, falling back first to the owning
// metadata type's scope, then to the global (root) section. The first of
// these sections that exists supplies every option; options are not merged
// field-by-field across sections, so an option absent from that section
// takes its default and is not looked up in a broader section.
func (r *Resolver) Resolve(scope string) *Options {
	if v, ok := r.cache.Get(scope); ok {
		return v
	}
	opt := r.resolveUncached(scope)
	r.cache.Set(scope, opt, 1)
	r.cache.Wait()
	return opt
}

func (r *Resolver) resolveUncached(scope string) *Options {
	if pairs, ok := r.raw.sections[scope]; ok && scope != "" {
		return optionsFromPairs(pairs)
	}
	if typeScope := metadataTypeScope(scope); typeScope != scope {
		if pairs, ok := r.raw.sections[typeScope]; ok {
			return optionsFromPairs(pairs)
		}
	}
	return optionsFromPairs(r.raw.root)
}

func optionsFromPairs(pairs []kv) *Options {
	o := newOptions()
	for _, p := range pairs {
		o.merge(p.key, p.value)
	}
	if o.DiffKeySeparator == "" {
		o.DiffKeySeparator = DefaultDiffKeySeparator
	}
	return o
}

// IsFullSection reports whether opt disables descent into a Standard
// section's children during sub-section parsing (spec.md §4.1 `parser`).
func (o *Options) IsFullSection() bool {
	return o.Parser == ParserFullSection
}

// ShouldSort reports whether C7 must sort this section's siblings.
func (o *Options) ShouldSort() bool {
	return o.Reconstruct != ReconstructDoNotSort
}
