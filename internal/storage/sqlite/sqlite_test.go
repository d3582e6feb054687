package sqlitestorage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nari/actlog/internal/config"
	"github.com/nari/actlog/internal/database"
	"github.com/nari/actlog/internal/model"
	gormstorage "github.com/nari/actlog/internal/storage/gorm"
	"github.com/nari/actlog/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSession = "2BcD3WqFOUhrmCZb7b7cYmQ1FNB"

func deps() gormstorage.Dependencies {
	return gormstorage.Dependencies{SessionID: testSession, FlushInterval: time.Hour}
}

func countAbilityEvents(t *testing.T, path string) int64 {
	t.Helper()
	db, err := database.OpenSqlite(path)
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&model.AbilityEvent{}).Count(&count).Error)
	return count
}

func TestInMemory_DumpOnClose(t *testing.T) {
	dumpPath := filepath.Join(t.TempDir(), "actlog.db")

	b := New(config.SQLiteConfig{DumpPath: dumpPath}, deps())
	require.NoError(t, b.Init())

	require.NoError(t, b.BuildAbilityEvent(core.AbilityRecord{Timestamp: 1, Sequence: 1}))
	require.NoError(t, b.BuildAbilityEvent(core.AbilityRecord{Timestamp: 2, Sequence: 2}))

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	assert.Equal(t, int64(2), countAbilityEvents(t, dumpPath))
}

func TestInMemory_PeriodicDump(t *testing.T) {
	dumpPath := filepath.Join(t.TempDir(), "actlog.db")

	b := New(config.SQLiteConfig{DumpPath: dumpPath, DumpInterval: 20 * time.Millisecond}, deps())
	require.NoError(t, b.Init())
	defer b.Close()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(dumpPath)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFile_NoDump(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "direct.db")

	b := New(config.SQLiteConfig{Path: path, DumpPath: filepath.Join(dir, "unused.db"), DumpInterval: time.Millisecond}, deps())
	require.NoError(t, b.Init())
	require.NoError(t, b.BuildAbilityEvent(core.AbilityRecord{Sequence: 1}))
	require.NoError(t, b.Close())

	_, err := os.Stat(filepath.Join(dir, "unused.db"))
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, int64(1), countAbilityEvents(t, path))
}

func TestDump_NoPath(t *testing.T) {
	b := New(config.SQLiteConfig{}, deps())
	require.NoError(t, b.Init())
	defer b.Close()

	assert.Error(t, b.Dump())
}

func TestNew_OpensNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lazy.db")

	b := New(config.SQLiteConfig{Path: path}, deps())
	assert.Nil(t, b.DB())
	require.NoError(t, b.Close())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no database file before Init")
}

func TestInit_OpenFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "actlog.db")

	b := New(config.SQLiteConfig{Path: path}, deps())
	err := b.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create SQLite DB")
	assert.Nil(t, b.DB())
	require.NoError(t, b.Close())
}

func TestClose_ReleasesConnection(t *testing.T) {
	b := New(config.SQLiteConfig{}, deps())
	require.NoError(t, b.Init())
	sqlDB, err := b.DB().DB()
	require.NoError(t, err)

	require.NoError(t, b.Close())
	assert.Nil(t, b.DB())
	assert.Error(t, sqlDB.Ping(), "connection closed")
}
