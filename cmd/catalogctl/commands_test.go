package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"MiniShop/internal/catalog"
)

const shirtJSON = `{
  "id": 1, "title": "Shirt", "description": "Blue shirt", "code": "SH01",
  "price": 20, "status": true, "stock": 5, "category": "apparel",
  "thumbnails": ["a.jpg"]
}`

type env struct {
	dir     string
	catalog string
	archive string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	return env{
		dir:     dir,
		catalog: filepath.Join(dir, "products.json"),
		archive: filepath.Join(dir, "removed.json"),
	}
}

func (e env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--catalog", e.catalog, "--archive", e.archive, "--log-level", "error"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func (e env) file(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestCatalogctl_AddGetList(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "", "add", "-f", e.file(t, "shirt.json", shirtJSON))
	require.NoError(t, err)

	out, err := e.run(t, "", "get", "1")
	require.NoError(t, err)
	var got catalog.Product
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "SH01", got.Code)
	assert.Equal(t, "20", got.Price.String())

	out, err = e.run(t, "", "list")
	require.NoError(t, err)
	var list []catalog.Product
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)

	raw, err := os.ReadFile(e.catalog)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "[\n  {\n"), "catalog file is indented with two spaces")
}

func TestCatalogctl_AddFromStdin(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, shirtJSON, "add", "-f", "-")
	require.NoError(t, err)

	_, err = e.run(t, shirtJSON, "add", "-f", "-")
	require.ErrorIs(t, err, catalog.ErrDuplicateCode)
}

func TestCatalogctl_UpdateDeleteRemoved(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, shirtJSON, "add", "-f", "-")
	require.NoError(t, err)

	out, err := e.run(t, `{"stock": 9, "price": 18.5}`, "update", "1", "-f", "-")
	require.NoError(t, err)
	var updated catalog.Product
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Equal(t, 9, updated.Stock)
	assert.Equal(t, "18.5", updated.Price.String())

	_, err = e.run(t, `{"id": 7}`, "update", "1", "-f", "-")
	assert.Error(t, err, "the id is not patchable")

	_, err = e.run(t, "", "delete", "1")
	require.NoError(t, err)

	out, err = e.run(t, "", "removed")
	require.NoError(t, err)
	var removed []catalog.Product
	require.NoError(t, json.Unmarshal([]byte(out), &removed))
	require.Len(t, removed, 1)
	assert.Equal(t, 9, removed[0].Stock)

	_, err = e.run(t, "", "get", "1")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestCatalogctl_YAMLOutput(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, shirtJSON, "add", "-f", "-")
	require.NoError(t, err)

	out, err := e.run(t, "", "-o", "yaml", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "{", "block style only")

	var docs []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "Shirt", docs[0]["title"])
	assert.Equal(t, 20, docs[0]["price"])
	assert.Equal(t, []any{"a.jpg"}, docs[0]["thumbnails"])
}

func TestCatalogctl_Errors(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "", "-o", "xml", "list")
	assert.ErrorContains(t, err, "invalid output")

	_, err = e.run(t, "", "get", "abc")
	assert.ErrorIs(t, err, catalog.ErrInvalidID)

	_, err = e.run(t, `{"id": 2, "code": "X"}`, "add", "-f", "-")
	assert.ErrorIs(t, err, catalog.ErrMissingFields)

	_, err = e.run(t, "", "add")
	assert.Error(t, err, "-f is required")

	require.NoError(t, os.WriteFile(e.catalog, []byte("{broken"), 0o644))
	_, err = e.run(t, "", "list")
	assert.ErrorIs(t, err, catalog.ErrStorage)
}
