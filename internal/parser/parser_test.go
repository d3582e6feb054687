package parser

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() *Parser {
	return NewParser(slog.Default())
}

func TestNewParser(t *testing.T) {
	p := newTestParser()
	require.NotNil(t, p)
	assert.False(t, p.Lenient())

	p = NewParser(nil, WithLenient(true))
	require.NotNil(t, p)
	assert.True(t, p.Lenient())
}

func TestFieldError(t *testing.T) {
	_, cause := U32FromHex("zz")
	err := &FieldError{Index: 4, Role: "target.id", Value: "zz", Err: cause}

	assert.ErrorIs(t, err, ErrMalformedNumber)
	assert.Contains(t, err.Error(), "field 4 (target.id)")
	assert.Contains(t, err.Error(), `"zz"`)
}

func TestLenientLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := NewParser(logger, WithLenient(true))

	fields := abilityFixture()
	fields[0] = "garbage"

	rec, err := p.DecodeAbility(0, fields)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), rec.Source.ID)
	assert.Contains(t, buf.String(), "Malformed field decoded as zero")
	assert.Contains(t, buf.String(), "role=source.id")
}
