package mdtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDoNotSortPreservesOrder(t *testing.T) {
	content := "<CustomObject xmlns=\"x\">\n" +
		"<fields>\n<fullName>B__c</fullName>\n</fields>\n" +
		"<fields>\n<fullName>A__c</fullName>\n</fields>\n" +
		"</CustomObject>\n"

	resolver := newTestResolver(t, "[CustomObject-fields]\nsort = fullName\nreconstruct = #DONOTSORT#\n")
	ctx := NewContext(resolver, "SRC", "objects/Account.object", false)

	tree, err := Parse(ctx, content)
	require.NoError(t, err)

	out := Render(resolver, tree)
	assert.Equal(t, content, out)
}

func TestRenderIdempotent(t *testing.T) {
	content := "<CustomObject xmlns=\"x\">\n" +
		"<fields>\n<fullName>B__c</fullName>\n</fields>\n" +
		"<fields>\n<fullName>A__c</fullName>\n</fields>\n" +
		"</CustomObject>\n"

	resolver := newTestResolver(t, "[CustomObject-fields]\nsort = fullName\n")
	ctx1 := NewContext(resolver, "SRC", "objects/Account.object", false)
	tree1, err := Parse(ctx1, content)
	require.NoError(t, err)
	first := Render(resolver, tree1)

	ctx2 := NewContext(resolver, "SRC", "objects/Account.object", false)
	tree2, err := Parse(ctx2, first)
	require.NoError(t, err)
	second := Render(resolver, tree2)

	assert.Equal(t, first, second)
}
