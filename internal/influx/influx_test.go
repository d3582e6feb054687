package influx

import (
	"bufio"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/nari/actlog/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachable(backupPath string) config.InfluxConfig {
	return config.InfluxConfig{
		URL:        "http://127.0.0.1:1",
		Token:      "token",
		Org:        "actlog",
		Bucket:     "combat_events",
		BackupPath: backupPath,
	}
}

func readBackup(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	var lines []string
	sc := bufio.NewScanner(gz)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	return lines
}

func TestConnect_FallsBackToBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "backup.lp.gz")
	m := NewManager(unreachable(path), zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Connect(ctx))
	assert.False(t, m.IsValid)
	require.NotNil(t, m.BackupWriter)

	p := influxdb2_write.NewPoint("ability",
		map[string]string{"ability_id": "00001D67"},
		map[string]interface{}{"sequence": 1},
		time.Unix(1644458992, 0),
	)
	require.NoError(t, m.WritePoint(p))
	require.NoError(t, m.WritePoint(p))
	require.NoError(t, m.Close())

	lines := readBackup(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, "ability,ability_id=00001D67 sequence=1i 1644458992000000000", lines[0])
}

func TestConnect_NoBackupPath(t *testing.T) {
	m := NewManager(unreachable(""), zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := m.Connect(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no backup path")
	assert.NoError(t, m.Close())
}

func TestWritePoint_NotConnected(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, zerolog.Nop())
	err := m.WritePoint(influxdb2_write.NewPointWithMeasurement("x"))
	assert.Error(t, err)
}
