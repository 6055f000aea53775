package tr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityPassthrough(t *testing.T) {
	assert.Equal(t, "hello", W("hello"))
}

func TestLoadFrom(t *testing.T) {
	require.NoError(t, LoadFrom(strings.NewReader(`"Create File" = "Crear archivo"`)))
	assert.Equal(t, "Crear archivo", W("Create File"))
	assert.Equal(t, "unseen key", W("unseen key"))
}

func TestInitializeWithoutEnv(t *testing.T) {
	t.Setenv("METASYNC_LANG_FILE", "")
	assert.NoError(t, Initialize())
}
