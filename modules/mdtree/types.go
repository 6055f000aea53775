// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package mdtree is the metadata tree engine: it tokenizes a restricted XML
// dialect into a bounded-depth section tree, synthesizes stable sort/diff
// keys, compares leaf maps across branches, and splices merge actions back
// into a tree during reconstruction.
package mdtree

// SectionType classifies a top-level section within a metadata file.
type SectionType int

const (
	// Header holds the opening `<TYPE xmlns="...">` line.
	Header SectionType = iota
	// Standard sections contain zero or more individually sortable,
	// mergeable sub-sections.
	Standard
	// Empty sections are a single self-closing `<tag/>` line.
	Empty
	// Params sections hold one primitive `<tag>value</tag>` line.
	Params
	// End holds the closing `</TYPE>` line.
	End
)

func (t SectionType) String() string {
	switch t {
	case Header:
		return "Header"
	case Standard:
		return "Standard"
	case Empty:
		return "Empty"
	case Params:
		return "Params"
	case End:
		return "End"
	default:
		return "Unknown"
	}
}

// Shape describes whether a sub-section's parameter-line region contained
// any nested opening tags.
type Shape int

const (
	// SIMPLE sub-sections have no nested child blocks.
	SIMPLE Shape = iota
	// COMPLEX sub-sections contain at least one nested opening tag.
	COMPLEX
)

func (s Shape) String() string {
	if s == COMPLEX {
		return "COMPLEX"
	}
	return "SIMPLE"
}

// SubSection is one entry within a Standard section (or the sole entry of a
// Header/Empty/Params section). Content is a contiguous byte range of the
// original file: the exact original bytes, including the trailing newline.
type SubSection struct {
	SortKey string
	Shape   Shape
	Content string

	// Children is not filled by the parser: C4 (descendLevel) returns the
	// sub-section's rewritten text, which is stored in Content, and
	// Children stays nil.
	Children []*SubSection

	// Name is a nested child's own tag name. The parser does not set it.
	Name string

	// deleted makes Render skip this sub-section. The parser drops a
	// ##DELETE## target by not appending it, so it does not set this flag.
	deleted bool
}

// Section is a named, ordered list of sub-sections.
type Section struct {
	Name        string
	Type        SectionType
	SubSections []*SubSection
}

// Tree is the parsed representation of one metadata file.
type Tree struct {
	MetadataType string
	MetadataName string
	FilePath     string
	Sections     []*Section
}
