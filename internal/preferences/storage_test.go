package preferences

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"birdsong/internal/models"
	"birdsong/internal/structures"
	"birdsong/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	m := NewMemoryStorage()

	val, err := m.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	input := []byte("value")
	require.NoError(t, m.Set("k", input))
	input[0] = 'X'

	val, err = m.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "value", string(val))

	require.NoError(t, m.Remove("k"))
	val, _ = m.Get("k")
	assert.Nil(t, val)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "birdsong_user-preferences.json", FileName(DefaultKey))
	assert.Equal(t, "a_b_c.json", FileName("a/b c"))
	assert.Equal(t, ".._etc.json", FileName("../etc"))
}

func TestFileStorage_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStorage(filepath.Join(dir, "nested"))
	require.NoError(t, err)

	val, err := fs.Get(DefaultKey)
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, fs.Set(DefaultKey, []byte(`{"version":1}`)))
	val, err = fs.Get(DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(val))

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temporary file left behind")
	assert.Equal(t, FileName(DefaultKey), entries[0].Name())

	require.NoError(t, fs.Remove(DefaultKey))
	require.NoError(t, fs.Remove(DefaultKey))
	val, _ = fs.Get(DefaultKey)
	assert.Nil(t, val)
}

func TestFileStorage_SharedBetweenInstances(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFileStorage(dir)
	require.NoError(t, err)
	b, err := NewFileStorage(dir)
	require.NoError(t, err)

	require.NoError(t, a.Set("k", []byte("from a")))
	val, err := b.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "from a", string(val))
}

func TestFileStorage_WatchPaths(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStorage(dir)
	require.NoError(t, err)
	assert.Empty(t, fs.WatchPaths())

	_, _ = fs.Get("one")
	_, _ = fs.Get("one")
	assert.Equal(t, []string{filepath.Join(dir, "one.json")}, fs.WatchPaths())
}

func TestSQLiteStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	s, err := NewSQLiteStorage(context.Background(), path)
	require.NoError(t, err)

	val, err := s.Get(DefaultKey)
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, s.Set(DefaultKey, []byte("first")))
	require.NoError(t, s.Set(DefaultKey, []byte("second")))
	val, err = s.Get(DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, "second", string(val))
	assert.Equal(t, []string{path}, s.WatchPaths())
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStorage(context.Background(), path)
	require.NoError(t, err)
	defer reopened.Close()

	val, err = reopened.Get(DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, "second", string(val))

	require.NoError(t, reopened.Remove(DefaultKey))
	val, err = reopened.Get(DefaultKey)
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestSQLiteStorage_BacksStore(t *testing.T) {
	s, err := NewSQLiteStorage(context.Background(), filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	defer s.Close()

	logger := &testutil.MockLogger{}
	store := NewStore(logger, WithStorage(s))
	store.Update(models.PreferencesPatch{Timeline: &models.TimelinePatch{BucketMinutes: floatPtr(15)}})

	again := NewStore(logger, WithStorage(s))
	assert.Equal(t, 15, again.GetSnapshot().Timeline.BucketMinutes)
}

func TestOpenStorage(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		backend string
		path    string
		want    interface{}
		warns   int
	}{
		{name: "memory", backend: "memory", want: &MemoryStorage{}},
		{name: "file", backend: "file", path: filepath.Join(dir, "files"), want: &FileStorage{}},
		{name: "sqlite", backend: "sqlite", path: filepath.Join(dir, "db", "prefs.db"), want: &SQLiteStorage{}},
		{name: "unknown falls back", backend: "redis", want: &MemoryStorage{}, warns: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &testutil.MockLogger{}
			conf := &structures.Config{Preferences: structures.PreferencesConfig{Backend: tt.backend, Path: tt.path}}

			storage := OpenStorage(context.Background(), conf, logger)
			defer storage.Close()

			assert.IsType(t, tt.want, storage)
			assert.Equal(t, tt.warns, logger.Count("warn"))
		})
	}
}

func TestOpenStorage_UnwritableDirFallsBack(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	logger := &testutil.MockLogger{}
	conf := &structures.Config{Preferences: structures.PreferencesConfig{Backend: "file", Path: filepath.Join(blocker, "sub")}}

	storage := OpenStorage(context.Background(), conf, logger)
	assert.IsType(t, &MemoryStorage{}, storage)
	assert.Equal(t, 1, logger.Count("warn"))
}
