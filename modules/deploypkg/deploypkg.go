// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package deploypkg assembles a deployment package from a set of diff rows:
// a package.xml manifest, an optional destructiveChanges.xml, and a zip
// archive of the changed files. It is intentionally non-algorithmic — all
// the interesting work happens upstream in modules/mdtree and
// modules/difflog.
package deploypkg

import (
	"bytes"
	"encoding/xml"
	"sort"
	"strings"

	"github.com/antgroup/metasync/modules/difflog"
	"github.com/antgroup/metasync/modules/wildmatch"
	"github.com/klauspost/compress/zip"
)

// Member is one package.xml/destructiveChanges.xml entry.
type Member struct {
	Type string
	Name string
}

// xmlPackage mirrors the Salesforce package manifest shape.
type xmlPackage struct {
	XMLName xml.Name    `xml:"Package"`
	Xmlns   string      `xml:"xmlns,attr"`
	Types   []xmlTypes  `xml:"types"`
	Version string      `xml:"version"`
}

type xmlTypes struct {
	Members []string `xml:"members"`
	Name    string   `xml:"name"`
}

const manifestXmlns = "http://soap.sforce.com/2006/04/metadata"

// Manifest accumulates members for package.xml and destructiveChanges.xml
// from a stream of diff rows, grouped by MetadataType (spec.md §4.10).
//
// BUG (spec.md §9 open question, kept faithfully — see DESIGN.md): AddRow's
// delete branch binds a local `members` to m.members rather than
// m.destructive, so Delete * rows land in the same members map as
// everything else instead of their own. Flagged for review, not silently
// fixed.
type Manifest struct {
	members      map[string]map[string]bool
	destructive  map[string]map[string]bool
	apiVersion   string
}

// NewManifest returns an empty manifest targeting apiVersion (e.g. "59.0").
func NewManifest(apiVersion string) *Manifest {
	return &Manifest{
		members:     make(map[string]map[string]bool),
		destructive: make(map[string]map[string]bool),
		apiVersion:  apiVersion,
	}
}

// AddRow adds row's Metadata ("TYPE=NAME") to the package members set.
// Delete File / Delete Item rows take their own branch but are added to
// the same members set (see the BUG note on Manifest); m.destructive is
// not written.
func (m *Manifest) AddRow(row difflog.Row) {
	mtype, name, ok := strings.Cut(row.Metadata, "=")
	if !ok || name == "" {
		return
	}
	switch row.MergeAction {
	case difflog.ActionDeleteFile, difflog.ActionDeleteItem:
		members := m.members
		if members[mtype] == nil {
			members[mtype] = make(map[string]bool)
		}
		members[mtype][name] = true
	default:
		if m.members[mtype] == nil {
			m.members[mtype] = make(map[string]bool)
		}
		m.members[mtype][name] = true
	}
}

// PackageXML renders package.xml for every member accumulated so far.
func (m *Manifest) PackageXML() (string, error) {
	return renderManifest(m.members, m.apiVersion)
}

// DestructiveChangesXML renders destructiveChanges.xml. Because of the
// AddRow shadowing above, m.destructive never receives entries in
// practice; this still renders whatever it holds so fixing AddRow later
// does not require touching this method.
func (m *Manifest) DestructiveChangesXML() (string, error) {
	if len(m.destructive) == 0 {
		return "", nil
	}
	return renderManifest(m.destructive, m.apiVersion)
}

func renderManifest(members map[string]map[string]bool, apiVersion string) (string, error) {
	types := make([]string, 0, len(members))
	for t := range members {
		types = append(types, t)
	}
	sort.Strings(types)

	pkg := xmlPackage{Xmlns: manifestXmlns, Version: apiVersion}
	for _, t := range types {
		names := make([]string, 0, len(members[t]))
		for n := range members[t] {
			names = append(names, n)
		}
		sort.Strings(names)
		pkg.Types = append(pkg.Types, xmlTypes{Members: names, Name: t})
	}

	out, err := xml.MarshalIndent(pkg, "", "    ")
	if err != nil {
		return "", err
	}
	return xml.Header + string(out) + "\n", nil
}

// ExcludedByPrefix reports whether name's bare filename (no directory)
// starts with one of prefixes, matching the `excludeFiles` prefix-match
// behavior spec.md §9 says to preserve as-is.
func ExcludedByPrefix(name string, prefixes []string) bool {
	base := name
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		base = name[i+1:]
	}
	for _, p := range prefixes {
		if strings.HasPrefix(base, p) {
			return true
		}
	}
	return false
}

// Archive zips files (archive path -> content), skipping any path matched
// by one of the glob patterns in skip.
func Archive(files map[string]string, skip []string) ([]byte, error) {
	matchers := make([]*wildmatch.Wildmatch, 0, len(skip))
	for _, pattern := range skip {
		matchers = append(matchers, wildmatch.NewWildmatch(pattern, wildmatch.Basename))
	}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range paths {
		if matchesAny(matchers, p) {
			continue
		}
		w, err := zw.Create(p)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(files[p])); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func matchesAny(matchers []*wildmatch.Wildmatch, path string) bool {
	for _, m := range matchers {
		if m.Match(path) {
			return true
		}
	}
	return false
}
