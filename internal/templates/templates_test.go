package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinCatalog(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)
	require.NotZero(t, c.Len())

	tpl, ok := c.Find("landing page")
	require.True(t, ok)
	assert.Equal(t, "Landing Page", tpl.Name)
	assert.Contains(t, tpl.Code, "<html>")

	for _, tpl := range c.All() {
		assert.NotEmpty(t, tpl.Name)
		assert.NotEmpty(t, tpl.Description, tpl.Name)
	}
}

func TestLoadAppendsUserTemplates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("name: Zine\ncode: <p>zine</p>\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a-notes.yaml"), []byte("description: notes\ncode: <p/>\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0644))

	builtin, err := Builtin()
	require.NoError(t, err)

	c, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, builtin.Len()+2, c.Len())

	all := c.All()
	assert.Equal(t, "a-notes", all[builtin.Len()].Name)
	assert.Equal(t, "custom", all[builtin.Len()].Category)

	z, ok := c.Find("ZINE")
	require.True(t, ok)
	assert.Equal(t, "<p>zine</p>", z.Code)
}

func TestLoadMissingDir(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.NotZero(t, c.Len())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: [oops"), 0644))
	_, err := Load(dir)
	assert.Error(t, err)
}
