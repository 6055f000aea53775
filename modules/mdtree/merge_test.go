package mdtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/metasync/modules/difflog"
)

func TestBuildMergeTreeCreateItem(t *testing.T) {
	row := difflog.Row{
		MergeAction: difflog.ActionCreateItem,
		Path:        testFilePath,
		L1Key:       "fields=New__c",
		L2Key:       LevelContents,
		NewValue:    "<fields>\n<fullName>New__c</fullName>\n</fields>\n",
	}
	res := BuildMergeTree([]difflog.Row{row})
	require.Empty(t, res.Errors)
	require.NotNil(t, res.Root)

	creates := res.Root.TakeCreates()
	require.Len(t, creates, 1)
	assert.Equal(t, "fields", creates[0].SectionName)
	assert.Equal(t, "New__c", creates[0].SortKey)
	assert.Equal(t, row.NewValue, creates[0].Content)
}

func TestBuildMergeTreeUpdateItem(t *testing.T) {
	row := difflog.Row{
		MergeAction: difflog.ActionUpdateItem,
		Path:        testFilePath,
		L1Key:       "fields=Foo__c",
		L2Key:       LevelContents,
		NewValue:    "<fields>\n<type>Number</type>\n</fields>\n",
	}
	res := BuildMergeTree([]difflog.Row{row})
	require.Empty(t, res.Errors)

	node, ok := res.Root.Lookup("fields", "Foo__c")
	require.True(t, ok)
	change, ok := node.TakeChange()
	require.True(t, ok)
	assert.Equal(t, row.NewValue, change)
}

func TestBuildMergeTreeDeleteItem(t *testing.T) {
	row := difflog.Row{
		MergeAction: difflog.ActionDeleteItem,
		Path:        testFilePath,
		L1Key:       "indexes=" + LevelSingle,
	}
	res := BuildMergeTree([]difflog.Row{row})
	require.Empty(t, res.Errors)

	node, ok := res.Root.Lookup("indexes", LevelSingle)
	require.True(t, ok)
	assert.True(t, node.TakeDelete())
}

func TestBuildMergeTreeFileActionIdempotent(t *testing.T) {
	rows := []difflog.Row{
		{MergeAction: difflog.ActionUpdateFile, Path: testFilePath, NewValue: "first"},
		{MergeAction: difflog.ActionUpdateFile, Path: testFilePath, NewValue: "second"},
	}
	res := BuildMergeTree(rows)
	require.NotNil(t, res.File)
	assert.Equal(t, "first", res.File.NewContent)
	require.Len(t, res.Notes, 1)
	assert.Contains(t, res.Notes[0], "already updated")
}

func TestBuildMergeTreeUnknownAction(t *testing.T) {
	rows := []difflog.Row{{MergeAction: "Rename Item", Path: testFilePath}}
	res := BuildMergeTree(rows)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Error(), "unknown merge action")
}

func TestBuildMergeTreeNestedUpdatePath(t *testing.T) {
	row := difflog.Row{
		MergeAction: difflog.ActionUpdateItem,
		Path:        testFilePath,
		L1Key:       "recordTypes=Foo",
		L2Key:       "picklistValues=Status",
		L3Key:       LevelParams,
		NewValue:    "<picklist>Status</picklist>\n<default>true</default>\n",
	}
	res := BuildMergeTree([]difflog.Row{row})
	require.Empty(t, res.Errors)

	rt, ok := res.Root.Lookup("recordTypes", "Foo")
	require.True(t, ok)
	pv, ok := rt.Lookup("picklistValues", "Status")
	require.True(t, ok)
	change, ok := pv.TakeChange()
	require.True(t, ok)
	assert.Equal(t, row.NewValue, change)
}
