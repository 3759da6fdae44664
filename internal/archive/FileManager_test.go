package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sae/internal/models"
	"sae/internal/testutil"
)

func newTestFileManager(t *testing.T) *FileManager {
	t.Helper()
	compressor, err := NewZstdCompressor()
	require.NoError(t, err)
	fm := NewFileManager(compressor, &testutil.MockLogger{})
	t.Cleanup(fm.Close)
	return fm
}

func TestFileManager_Roundtrip(t *testing.T) {
	fm := newTestFileManager(t)
	path := filepath.Join(t.TempDir(), "snapshot.bin")

	files := []models.FileRecord{
		{Path: "archive/20250808/janedoe/janedoe_story_20250808_01.jpg", Size: 1024},
		{Path: "archive/Avatars/janedoe_avatar_20250808.jpg", Size: 2048},
	}
	require.NoError(t, fm.SaveToFile(path, files))

	snapshot, err := fm.LoadFromFile(path)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, models.SnapshotVersion, snapshot.Version)
	assert.Equal(t, files, snapshot.Files)
	assert.False(t, snapshot.ScannedAt.IsZero())
}

func TestFileManager_MissingFile(t *testing.T) {
	fm := newTestFileManager(t)

	snapshot, err := fm.LoadFromFile(filepath.Join(t.TempDir(), "absent.bin"))
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

// A snapshot that fails to decompress is treated the same as a missing
// one, so a corrupt file never blocks the boot-time rescan.
func TestFileManager_CorruptFileIgnored(t *testing.T) {
	fm := newTestFileManager(t)
	path := filepath.Join(t.TempDir(), "corrupt.bin")
	require.NoError(t, os.WriteFile(path, []byte("not a snapshot"), 0644))

	snapshot, err := fm.LoadFromFile(path)
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestFileManager_NoTempLeftover(t *testing.T) {
	fm := newTestFileManager(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.bin")

	require.NoError(t, fm.SaveToFile(path, nil))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "snapshot.bin", entries[0].Name())
}
