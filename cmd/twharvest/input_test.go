package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twharvest/pkg/handle"
)

func TestParseReferencesList(t *testing.T) {
	refs, err := parseReferences([]byte(`
- 12345
- "@nasa"
- https://twitter.com/esa/
- plain
`))
	require.NoError(t, err)
	require.Len(t, refs, 4)

	assert.True(t, refs[0].IsID())
	assert.Equal(t, []handle.Handle{"12345", "nasa", "esa", "plain"}, handle.ResolveAll(refs))
	assert.Equal(t, "@nasa", refs[1].String())
}

func TestParseReferencesMapping(t *testing.T) {
	refs, err := parseReferences([]byte(`{"accounts": [783214, "twitter"]}`))
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, handle.ID(783214), refs[0])
}

func TestParseReferencesErrors(t *testing.T) {
	_, err := parseReferences([]byte(`just a string`))
	assert.Error(t, err)

	_, err = parseReferences([]byte(`- 1.5`))
	assert.Error(t, err)

	_, err = parseReferences([]byte(`[unclosed`))
	assert.Error(t, err)

	// Decoded as floats; they must not wrap around to negative ids
	_, err = parseReferences([]byte("- 99999999999999999999\n"))
	assert.ErrorContains(t, err, "out of range")
	_, err = parseReferences([]byte("- 1e19\n"))
	assert.ErrorContains(t, err, "out of range")

	refs, err := parseReferences(nil)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestReadReferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("accounts:\n  - foo\n"), 0o644))

	refs, err := readReferences(path)
	require.NoError(t, err)
	assert.Equal(t, []handle.Reference{handle.Text("foo")}, refs)

	_, err = readReferences(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestArgReferences(t *testing.T) {
	refs := argReferences([]string{"42", "@foo", "0042x", "-3"})
	require.Len(t, refs, 4)
	assert.Equal(t, handle.ID(42), refs[0])
	assert.Equal(t, handle.Text("@foo"), refs[1])
	assert.Equal(t, handle.Text("0042x"), refs[2])
	assert.Equal(t, handle.ID(-3), refs[3])
}

func TestArgReferencesKeepNonCanonicalNumbers(t *testing.T) {
	for _, arg := range []string{"007", "+7", "0"} {
		refs := argReferences([]string{arg})
		require.Len(t, refs, 1)
		assert.Equal(t, arg, refs[0].String())
		assert.Equal(t, handle.Handle(arg), handle.Resolve(refs[0]))
	}
	assert.False(t, argReferences([]string{"007"})[0].IsID())
	assert.True(t, argReferences([]string{"0"})[0].IsID())
}
