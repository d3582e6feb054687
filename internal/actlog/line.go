// Package actlog splits raw ACT network log lines and reads log files.
package actlog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// Delimiter separates the fields of a log line.
const Delimiter = "|"

// ACT line type codes the pipeline decodes.
const (
	TypeAbility      = "21"
	TypeAOEAbility   = "22"
	TypeTargetMarker = "29"
	TypeDirector     = "33"
	TypeStatusList   = "38"
	TypeVersionInfo  = "253"
)

// Line is one raw log line split into its parts.
type Line struct {
	Index     int    // 1-based position in the log, folded into the checksum
	Type      string // decimal type code
	Timestamp string
	Fields    []string // everything after the timestamp, checksum suffix last
	Raw       string
}

// Split breaks raw into type, timestamp and fields.
func Split(raw string, index int) (Line, error) {
	raw = strings.TrimRight(raw, "\r\n")
	parts := strings.Split(raw, Delimiter)
	if len(parts) < 3 {
		return Line{}, fmt.Errorf("line %d: expected at least 3 fields, got %d", index, len(parts))
	}
	return Line{
		Index:     index,
		Type:      parts[0],
		Timestamp: parts[1],
		Fields:    parts[2:],
		Raw:       raw,
	}, nil
}

// timestampLayout accepts ACT's 7-digit fractional seconds.
const timestampLayout = "2006-01-02T15:04:05.999999999Z07:00"

// ParseTimestamp converts an ACT timestamp such as
// "2022-02-09T20:09:52.6303877-06:00" to unix milliseconds.
func ParseTimestamp(s string) (int64, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return 0, fmt.Errorf("error parsing timestamp %q: %w", s, err)
	}
	return t.UnixMilli(), nil
}

// maxLineSize bounds a single log line; status lists with many effects run long.
const maxLineSize = 1 << 20

// Scan calls fn for every non-empty line in r with its 1-based index.
// It stops at the first error from fn or when ctx is cancelled.
func Scan(ctx context.Context, r io.Reader, fn func(raw string, index int) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	index := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		index++
		raw := sc.Text()
		if raw == "" {
			continue
		}
		if err := fn(raw, index); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("error reading log: %w", err)
	}
	return nil
}
