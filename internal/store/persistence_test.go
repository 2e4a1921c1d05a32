package store

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fmd/internal/testutil"
)

func newTestManager(t *testing.T) (*SnapshotManager, RealtimeStore) {
	t.Helper()
	compressor, err := NewZstdCompressor()
	require.NoError(t, err)
	t.Cleanup(compressor.Close)

	s := newTestStore()
	return NewSnapshotManager(compressor, s, &testutil.MockLogger{}), s
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	manager, s := newTestManager(t)
	require.NoError(t, s.Write("devices/esp-1/name", "Kitchen"))
	require.NoError(t, s.Write("users/u1/role", "admin"))

	file := filepath.Join(t.TempDir(), "snapshot.bin")
	require.NoError(t, manager.SaveToFile(file))

	restored, restoredStore := newTestManager(t)
	require.NoError(t, restored.LoadFromFile(file))

	val, ok := restoredStore.Fetch("devices/esp-1/name")
	require.True(t, ok)
	assert.Equal(t, "Kitchen", val)
	val, ok = restoredStore.Fetch("users/u1/role")
	require.True(t, ok)
	assert.Equal(t, "admin", val)
}

func TestLoadMissingFileIsFreshInstall(t *testing.T) {
	manager, s := newTestManager(t)

	err := manager.LoadFromFile(filepath.Join(t.TempDir(), "does-not-exist.bin"))

	require.NoError(t, err)
	assert.Empty(t, s.Export())
}

func TestLoadPlainJSONFallback(t *testing.T) {
	manager, s := newTestManager(t)

	raw, err := json.Marshal(map[string]any{"devices": map[string]any{"esp-1": map[string]any{"name": "Legacy"}}})
	require.NoError(t, err)
	file := filepath.Join(t.TempDir(), "snapshot.bin")
	require.NoError(t, os.WriteFile(file, raw, 0o644))

	require.NoError(t, manager.LoadFromFile(file))

	val, ok := s.Fetch("devices/esp-1/name")
	require.True(t, ok)
	assert.Equal(t, "Legacy", val)
}

func TestLoadCorruptFileFails(t *testing.T) {
	manager, _ := newTestManager(t)

	file := filepath.Join(t.TempDir(), "snapshot.bin")
	require.NoError(t, os.WriteFile(file, []byte("not a snapshot"), 0o644))

	assert.Error(t, manager.LoadFromFile(file))
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	manager, s := newTestManager(t)
	require.NoError(t, s.Write("devices/esp-1/name", "A"))

	dir := t.TempDir()
	file := filepath.Join(dir, "snapshot.bin")
	require.NoError(t, manager.SaveToFile(file))

	_, err := os.Stat(file + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
