package mdconfig

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
excludeFiles = .
excludeFiles = package
excludeFiles = destructiveChanges

[CustomObject]
merge = objects
sort = fullName

[CustomObject-fields-valueSet]
sort = fullName
reconstruct = #DONOTSORT#

[profile-fieldPermissions]
sort = field
delete = IsManaged
`

func TestResolveScopeChain(t *testing.T) {
	r, err := NewResolver(strings.NewReader(sample))
	require.NoError(t, err)

	global := r.Resolve("")
	assert.Equal(t, []string{".", "package", "destructiveChanges"}, global.ExcludeFiles)

	obj := r.Resolve("CustomObject")
	assert.Equal(t, []string{"fullName"}, obj.Sort)
	assert.Equal(t, []string{"objects"}, obj.Merge)

	vs := r.Resolve("CustomObject-fields-valueSet")
	assert.Equal(t, []string{"fullName"}, vs.Sort)
	assert.False(t, vs.ShouldSort())

	// Unknown nested scope falls back to its metadata-type scope.
	fallback := r.Resolve("CustomObject-somethingElse")
	assert.Equal(t, []string{"fullName"}, fallback.Sort)

	// Unknown top-level scope falls back to global.
	unknown := r.Resolve("Unrelated")
	assert.Equal(t, []string{".", "package", "destructiveChanges"}, unknown.ExcludeFiles)
}

func TestResolveCachesResult(t *testing.T) {
	r, err := NewResolver(strings.NewReader(sample))
	require.NoError(t, err)
	first := r.Resolve("profile-fieldPermissions")
	second := r.Resolve("profile-fieldPermissions")
	assert.Same(t, first, second)
	assert.Equal(t, []string{"IsManaged"}, first.Delete)
}

func TestMetadataMapOption(t *testing.T) {
	const cfg = `
[CustomObject]
metadatamap-objects = CustomObject
metadatamap-layouts = Layout #BASENAME#
`
	r, err := NewResolver(strings.NewReader(cfg))
	require.NoError(t, err)
	opt := r.Resolve("CustomObject")
	assert.Equal(t, []string{"CustomObject"}, opt.MetadataMap["objects"])
	assert.Equal(t, []string{"Layout #BASENAME#"}, opt.MetadataMap["layouts"])
}

func TestDefaultDiffKeySeparator(t *testing.T) {
	r, err := NewResolver(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, DefaultDiffKeySeparator, r.Resolve("").DiffKeySeparator)
}

func TestParseRejectsMalformedLine(t *testing.T) {
	_, err := NewResolver(strings.NewReader("not-a-key-value-line\n"))
	assert.Error(t, err)
}
