package tasks

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudpane/backend/internal/vfs"
)

func TestBackupRoundTrip(t *testing.T) {
	dir := t.TempDir()

	items := []vfs.Item{
		{ID: "itm_a", Name: "Documents", Kind: vfs.KindFolder, ModifiedAt: time.Now().UTC()},
		{ID: "itm_b", Name: "report.pdf", Kind: vfs.KindDocument, ByteSize: 2048, ModifiedAt: time.Now().UTC()},
	}
	settings := json.RawMessage(`{"storageSize":256}`)

	path, err := WriteBackup(dir, items, settings)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "backup-"))
	assert.True(t, strings.HasSuffix(path, ".json.gz"))

	snap, err := ReadBackup(path)
	require.NoError(t, err)
	assert.Equal(t, snapshotVersion, snap.Version)
	assert.False(t, snap.CreatedAt.IsZero())
	require.Len(t, snap.Items, 2)
	assert.Equal(t, "report.pdf", snap.Items[1].Name)
	assert.Equal(t, int64(2048), snap.Items[1].ByteSize)
	assert.JSONEq(t, string(settings), string(snap.Settings))
}

func TestBackupWithoutSettings(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteBackup(dir, nil, nil)
	require.NoError(t, err)

	snap, err := ReadBackup(path)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
}

func TestReadBackupRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-a-backup.json.gz")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := ReadBackup(path)
	assert.Error(t, err)
}
