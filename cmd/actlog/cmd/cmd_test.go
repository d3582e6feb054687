package cmd

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nari/actlog/internal/checksum"
	"github.com/nari/actlog/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ts = "2022-02-09T20:09:52.6303877-06:00"

func hexFloat(f float32) string {
	return fmt.Sprintf("%08X", math.Float32bits(f))
}

func sign(t *testing.T, index int, alg checksum.Algorithm, parts ...string) string {
	t.Helper()
	body := strings.Join(parts, "|") + "|"
	sum, err := checksum.Sum(body, index, alg)
	require.NoError(t, err)
	return body + sum
}

func abilityParts() []string {
	parts := []string{
		"21", ts,
		"1000A001", "Tiny Poutini",
		"00001D67", "Glare",
		"40001234", "Striking Dummy",
	}
	for k := 0; k < 8; k++ {
		parts = append(parts, "00000003", "04D20000")
	}
	for i := 0; i < 2; i++ {
		parts = append(parts, "0000AC71", "0000AC71", "00002710", "00002710", "00000000", "00000000")
		parts = append(parts, hexFloat(100.5), hexFloat(-12.25), hexFloat(0), hexFloat(1.5))
	}
	return append(parts, "0000BEEF")
}

// writeLog writes lines to a temporary log file and returns its path.
func writeLog(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, "Network_26202_20220209.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(body), 0o644))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(viper.Reset)

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestValidate_AllLinesValid(t *testing.T) {
	dir := t.TempDir()
	logPath := writeLog(t, dir,
		sign(t, 1, checksum.Primary, "253", ts, "FFXIV PLUGIN VERSION: 2.2.1.6"),
		sign(t, 2, checksum.Fallback, abilityParts()...),
	)

	out, err := run(t, "validate", "--config", dir, logPath)
	require.NoError(t, err)
	assert.Contains(t, out, "2 lines, 0 failed")
}

func TestValidate_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	good := sign(t, 1, checksum.Fallback, "253", ts, "FFXIV PLUGIN VERSION: 2.2.1.6")
	// signed for index 1 but placed at index 2
	moved := sign(t, 1, checksum.Fallback, abilityParts()...)
	logPath := writeLog(t, dir, good, moved, "21|"+ts+"|garbage|xyz")

	out, err := run(t, "validate", "--config", dir, logPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, out, "line 2: checksum mismatch (sha256)")
	assert.Contains(t, out, "line 3: unrecognized checksum suffix")
	assert.Contains(t, out, "3 lines, 2 failed")
}

func TestValidate_FixedAlgorithm(t *testing.T) {
	dir := t.TempDir()
	logPath := writeLog(t, dir, sign(t, 1, checksum.Fallback, "253", ts, "FFXIV PLUGIN VERSION: 2.2.1.6"))

	out, err := run(t, "validate", "--config", dir, "--algorithm", "md5", logPath)
	require.Error(t, err)
	assert.Contains(t, out, "line 1:")
}

func TestValidate_AlgorithmFromConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"checksum": {"algorithm": "md5"}}`)
	logPath := writeLog(t, dir, sign(t, 1, checksum.Fallback, "253", ts, "FFXIV PLUGIN VERSION: 2.2.1.6"))

	out, err := run(t, "validate", "--config", dir, logPath)
	require.Error(t, err)
	assert.Contains(t, out, "line 1:")

	// an explicit flag wins over the config
	out, err = run(t, "validate", "--config", dir, "--algorithm", "auto", logPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1 lines, 0 failed")
}

func TestValidate_UnknownAlgorithm(t *testing.T) {
	dir := t.TempDir()
	logPath := writeLog(t, dir, "x")

	_, err := run(t, "validate", "--config", dir, "--algorithm", "crc32", logPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown checksum algorithm")
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := run(t, "validate", "--config", t.TempDir(), filepath.Join(t.TempDir(), "nope.log"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open log")
}

func TestIngest_MemoryExport(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "records")
	logsDir := filepath.Join(dir, "logs")
	writeConfig(t, dir, fmt.Sprintf(`{
		"logsDir": %q,
		"storage": {
			"type": "memory",
			"memory": {"outputDir": %q, "compressOutput": false}
		}
	}`, logsDir, outDir))

	logPath := writeLog(t, dir,
		sign(t, 1, checksum.Primary, "253", ts, "FFXIV PLUGIN VERSION: 2.2.1.6"),
		sign(t, 2, checksum.Fallback, abilityParts()...),
		sign(t, 1, checksum.Fallback, abilityParts()...),
	)

	out, err := run(t, "ingest", "--config", dir, logPath)
	require.NoError(t, err)
	assert.Contains(t, out, "lines             3")
	assert.Contains(t, out, "decoded           1")
	assert.Contains(t, out, "checksum failures 1")
	assert.Contains(t, out, "exported "+outDir)

	exports, err := filepath.Glob(filepath.Join(outDir, "actlog_*.json"))
	require.NoError(t, err)
	assert.Len(t, exports, 1)

	logs, err := filepath.Glob(filepath.Join(logsDir, "actlog.*.log"))
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestIngest_UnknownStorage(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, fmt.Sprintf(`{"logsDir": %q, "storage": {"type": "redis"}}`, filepath.Join(dir, "logs")))
	logPath := writeLog(t, dir, "x")

	_, err := run(t, "ingest", "--config", dir, logPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage type: redis")
}

func TestRoot_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{not json`)
	logPath := writeLog(t, dir, "x")

	_, err := run(t, "validate", "--config", dir, logPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestRoot_LogLevelOverride(t *testing.T) {
	dir := t.TempDir()
	logPath := writeLog(t, dir, sign(t, 1, checksum.Primary, "253", ts, "v"))

	_, err := run(t, "validate", "--config", dir, "--log-level", "debug", logPath)
	require.NoError(t, err)
	assert.Equal(t, "debug", config.GetLoggingConfig().Level)
}
