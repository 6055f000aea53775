package mdtree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/metasync/modules/mdtree/mdconfig"
)

func newTestResolver(t *testing.T, cfg string) *mdconfig.Resolver {
	t.Helper()
	r, err := mdconfig.NewResolver(strings.NewReader(cfg))
	require.NoError(t, err)
	return r
}

func TestParseRenderRoundTrip(t *testing.T) {
	content := "<CustomObject xmlns=\"http://soap.sforce.com/2006/04/metadata\">\n" +
		"    <fields>\n" +
		"        <fullName>Foo__c</fullName>\n" +
		"        <type>Text</type>\n" +
		"    </fields>\n" +
		"</CustomObject>\n"

	resolver := newTestResolver(t, "")
	ctx := NewContext(resolver, "SRC", "objects/Account.object", false)

	tree, err := Parse(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, "CustomObject", tree.MetadataType)
	assert.Equal(t, "Account", tree.MetadataName)
	assert.Equal(t, 1, ctx.LeafMap.Size())

	out := Render(resolver, tree)
	assert.Equal(t, content, out)
}

func TestParseMultipleFieldsSortedOnReconstruct(t *testing.T) {
	content := "<CustomObject xmlns=\"x\">\n" +
		"<fields>\n<fullName>B__c</fullName>\n</fields>\n" +
		"<fields>\n<fullName>A__c</fullName>\n</fields>\n" +
		"</CustomObject>\n"

	resolver := newTestResolver(t, "[CustomObject-fields]\nsort = fullName\n")
	ctx := NewContext(resolver, "SRC", "objects/Account.object", false)

	tree, err := Parse(ctx, content)
	require.NoError(t, err)

	out := Render(resolver, tree)
	// B__c precedes A__c in the source, but reconstruct sorts by key.
	assert.True(t, strings.Index(out, "A__c") < strings.Index(out, "B__c"))
}

func TestParseNotMetadata(t *testing.T) {
	resolver := newTestResolver(t, "")
	ctx := NewContext(resolver, "SRC", "README.md", false)
	_, err := Parse(ctx, "just some text\nwith no root tag\nat all\nor here either\n")
	assert.ErrorIs(t, err, ErrNotMetadata)
}

func TestParseDuplicateKeysReported(t *testing.T) {
	content := "<CustomObject xmlns=\"x\">\n" +
		"<recordTypes>\n<fullName>Foo</fullName>\n</recordTypes>\n" +
		"<recordTypes>\n<fullName>Foo</fullName>\n</recordTypes>\n" +
		"</CustomObject>\n"

	resolver := newTestResolver(t, "[CustomObject-recordTypes]\nsort = fullName\n")
	ctx := NewContext(resolver, "SRC", "objects/Account.object", false)

	_, err := Parse(ctx, content)
	require.NoError(t, err)

	dups := ctx.Duplicates.Report()
	require.Len(t, dups, 1)
	assert.Equal(t, 2, dups[0].Count)
}

func TestParseEmptyAndParamsSections(t *testing.T) {
	content := "<CustomObject xmlns=\"x\">\n" +
		"<indexes/>\n" +
		"<label>Account</label>\n" +
		"</CustomObject>\n"

	resolver := newTestResolver(t, "")
	ctx := NewContext(resolver, "SRC", "objects/Account.object", false)

	tree, err := Parse(ctx, content)
	require.NoError(t, err)
	require.Len(t, tree.Sections, 4) // Header, Empty, Params, End
	assert.Equal(t, Empty, tree.Sections[1].Type)
	assert.Equal(t, Params, tree.Sections[2].Type)
	assert.True(t, ctx.LeafMap.Has(DiffKey{FilePath: "objects/Account.object", L1: sectionLevel("indexes", LevelSingle)}.Join(mdconfig.DefaultDiffKeySeparator)))
	assert.True(t, ctx.LeafMap.Has(DiffKey{FilePath: "objects/Account.object", L1: sectionLevel("label", LevelParam)}.Join(mdconfig.DefaultDiffKeySeparator)))
}

func TestParseFilterDropsUnmatchedEntries(t *testing.T) {
	content := "<CustomObject xmlns=\"x\">\n" +
		"<fields>\n<fullName>Keep__c</fullName>\n</fields>\n" +
		"<fields>\n<fullName>Drop__c</fullName>\n</fields>\n" +
		"</CustomObject>\n"

	resolver := newTestResolver(t, "[CustomObject-fields]\nsort = fullName\nfilter = Account.Keep__c\n")
	ctx := NewContext(resolver, "SRC", "objects/Account.object", false)

	tree, err := Parse(ctx, content)
	require.NoError(t, err)
	require.Len(t, tree.Sections[1].SubSections, 1)
	assert.Equal(t, "Keep__c", tree.Sections[1].SubSections[0].SortKey)
}
