package mdtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/metasync/modules/difflog"
)

const testSep = "\x1e"
const testFilePath = "objects/Account.object"

func baseDiffOptions() DiffOptions {
	return DiffOptions{
		Metadata:         "CustomObject=Account",
		FilePath:         testFilePath,
		DiffKeySeparator: testSep,
		RequestTimeStamp: "2026-07-30T00:00:00Z",
	}
}

func dk(levels ...string) string {
	k := DiffKey{FilePath: testFilePath}
	if len(levels) > 0 {
		k.L1 = levels[0]
	}
	if len(levels) > 1 {
		k.L2 = levels[1]
	}
	if len(levels) > 2 {
		k.L3 = levels[2]
	}
	if len(levels) > 3 {
		k.L4 = levels[3]
	}
	return k.Join(testSep)
}

func TestDiffEqualBranchesProduceNoRows(t *testing.T) {
	src := NewLeafMap()
	trg := NewLeafMap()
	key := dk("fields=Foo__c")
	src.Put(key, Leaf{Value: "  <a>1</a>\n", Shape: SIMPLE})
	trg.Put(key, Leaf{Value: "<a>1</a>\n", Shape: SIMPLE}) // leading whitespace differs only

	rows := Diff(baseDiffOptions(), src, trg)
	assert.Empty(t, rows)
}

func TestDiffCreateItemSuppressesRedundantChildren(t *testing.T) {
	// descendLevel (subparser.go) emits #CONTENTS#, #PARAMS#, and each
	// nested block's own structural key as siblings at the same depth,
	// never nesting the latter two under #CONTENTS#; this layout mirrors
	// that: all three leaves share L1=fields=Foo__c and differ only in L2.
	parentKey := dk("fields=Foo__c", LevelContents)
	paramsKey := dk("fields=Foo__c", LevelParams)
	childKey := dk("fields=Foo__c", "picklistValues=d41d8cd98f00b204e9800998ecf8427e")

	src := NewLeafMap()
	src.Put(parentKey, Leaf{Value: "<fields>\n<fullName>Foo__c</fullName>\n<type>Text</type>\n<picklistValues>\n<restricted>true</restricted>\n</picklistValues>\n</fields>\n", Shape: COMPLEX})
	src.Put(paramsKey, Leaf{Value: "<fullName>Foo__c</fullName>\n<type>Text</type>\n", Shape: SIMPLE})
	src.Put(childKey, Leaf{Value: "<picklistValues>\n<restricted>true</restricted>\n</picklistValues>\n", Shape: COMPLEX})
	trg := NewLeafMap()

	rows := Diff(baseDiffOptions(), src, trg)
	require.Len(t, rows, 1)
	assert.Equal(t, difflog.ActionCreateItem, rows[0].MergeAction)
	assert.Equal(t, "fields=Foo__c", rows[0].L1Key)
	assert.Equal(t, LevelContents, rows[0].L2Key)
}

func TestDiffUpdateItem(t *testing.T) {
	src := NewLeafMap()
	trg := NewLeafMap()
	key := dk("fields=Foo__c")
	src.Put(key, Leaf{Value: "<fields>\n<type>Number</type>\n</fields>\n", Shape: COMPLEX})
	trg.Put(key, Leaf{Value: "<fields>\n<type>Text</type>\n</fields>\n", Shape: COMPLEX})

	rows := Diff(baseDiffOptions(), src, trg)
	require.Len(t, rows, 1)
	assert.Equal(t, difflog.ActionUpdateItem, rows[0].MergeAction)
	assert.Equal(t, "<fields>\n<type>Text</type>\n</fields>\n", rows[0].OldValue())
}

func TestDiffDeleteItem(t *testing.T) {
	src := NewLeafMap()
	trg := NewLeafMap()
	trg.Put(dk("indexes="+LevelSingle), Leaf{Value: "<indexes/>\n", Shape: SIMPLE})

	rows := Diff(baseDiffOptions(), src, trg)
	require.Len(t, rows, 1)
	assert.Equal(t, difflog.ActionDeleteItem, rows[0].MergeAction)
}

func TestDiffNewMetadataCreateFileSkipsChildren(t *testing.T) {
	src := NewLeafMap()
	src.Put(dk(LevelNewMetadata), Leaf{Value: "whole file bytes", Shape: SIMPLE})
	src.Put(dk("zz-later-key"), Leaf{Value: "should not appear", Shape: SIMPLE})
	trg := NewLeafMap()

	rows := Diff(baseDiffOptions(), src, trg)
	require.Len(t, rows, 1)
	assert.Equal(t, difflog.ActionCreateFile, rows[0].MergeAction)
}

func TestDiffOverwriteCreateAndUpdate(t *testing.T) {
	opts := baseDiffOptions()
	key := dk(LevelOverwrite)

	src := NewLeafMap()
	src.Put(key, Leaf{Value: "new bytes", Shape: SIMPLE})
	rows := Diff(opts, src, NewLeafMap())
	require.Len(t, rows, 1)
	assert.Equal(t, difflog.ActionCreateFile, rows[0].MergeAction)

	trg := NewLeafMap()
	trg.Put(key, Leaf{Value: "old bytes", Shape: SIMPLE})
	rows = Diff(opts, src, trg)
	require.Len(t, rows, 1)
	assert.Equal(t, difflog.ActionUpdateFile, rows[0].MergeAction)
	assert.Equal(t, "old bytes", rows[0].OldValue())
}

func TestDiffExtraTargetsAddOldValueColumnsOnly(t *testing.T) {
	src := NewLeafMap()
	trg1 := NewLeafMap()
	trg2 := NewLeafMap()
	key := dk("fields=Foo__c")
	src.Put(key, Leaf{Value: "new", Shape: SIMPLE})
	trg1.Put(key, Leaf{Value: "trg1-old", Shape: SIMPLE})
	trg2.Put(key, Leaf{Value: "trg2-old", Shape: SIMPLE})

	rows := Diff(baseDiffOptions(), src, trg1, trg2)
	require.Len(t, rows, 1)
	require.Len(t, rows[0].OldValues, 2)
	assert.Equal(t, "trg1-old", rows[0].OldValues[0])
	assert.Equal(t, "trg2-old", rows[0].OldValues[1])
}
