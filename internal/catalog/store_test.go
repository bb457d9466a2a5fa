package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTempFileStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	return NewFileStore(
		filepath.Join(dir, "data", "products.json"),
		filepath.Join(dir, "data", "removed_products.json"),
		nil,
	)
}

func TestFileStore_LoadMissingFileIsEmpty(t *testing.T) {
	s := newTempFileStore(t)

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFileStore_LoadBlankFileIsEmpty(t *testing.T) {
	s := newTempFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("  \n"), 0o644))

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileStore_LoadCorruptFileFails(t *testing.T) {
	s := newTempFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte(`[{"id": 1,`), 0o644))

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
	assert.Error(t, s.Ping(context.Background()))
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTempFileStore(t)
	ctx := context.Background()
	want := []Product{shirt(), mug(), hat()}

	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assertProducts(t, want, got)
}

func TestFileStore_SaveFormat(t *testing.T) {
	s := newTempFileStore(t)
	require.NoError(t, s.Save(context.Background(), []Product{shirt()}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "single_product", data)
}

func TestFileStore_SaveNilWritesEmptyArray(t *testing.T) {
	s := newTempFileStore(t)
	require.NoError(t, s.Save(context.Background(), nil))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "empty_catalog", data)
}

func TestFileStore_SaveLeavesNoTempFiles(t *testing.T) {
	s := newTempFileStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, []Product{shirt()}))
	require.NoError(t, s.Save(ctx, []Product{shirt(), mug()}))

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "products.json", entries[0].Name())
}

func TestFileStore_ArchiveIsSeparateFile(t *testing.T) {
	s := newTempFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []Product{shirt()}))
	require.NoError(t, s.SaveArchive(ctx, []Product{mug()}))

	catalog, err := s.Load(ctx)
	require.NoError(t, err)
	assertProducts(t, []Product{shirt()}, catalog)

	archive, err := s.LoadArchive(ctx)
	require.NoError(t, err)
	assertProducts(t, []Product{mug()}, archive)
}

func TestFileStore_CancelledContext(t *testing.T) {
	s := newTempFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Save(ctx, []Product{shirt()}), context.Canceled)

	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr))
}
