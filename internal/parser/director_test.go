package parser

import (
	"testing"

	"github.com/nari/actlog/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDirectorUpdate(t *testing.T) {
	tests := []struct {
		command string
		want    core.DirectorCommand
		name    string
	}{
		{"40000001", core.DirectorInit, "init"},
		{"40000003", core.DirectorComplete, "complete"},
		{"40000005", core.DirectorFadeOut, "fade_out"},
		{"40000006", core.DirectorBarrierDown, "barrier_down"},
		{"40000010", core.DirectorFadeIn, "fade_in"},
		{"40000012", core.DirectorBarrierUp, "barrier_up"},
	}

	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := []string{"8003753A", tt.command, "00000000", "00000000", "00000000", "00000000", "6c4b6a1e3b7f0c2d"}
			rec, err := p.DecodeDirectorUpdate(1644458992630, fields)
			require.NoError(t, err)
			assert.Equal(t, core.DirectorRecord{
				Timestamp:  1644458992630,
				InstanceID: 0x8003,
				Command:    tt.want,
			}, rec)
			assert.Equal(t, tt.name, rec.Command.String())
		})
	}
}

func TestDecodeDirectorUpdate_UnknownCommand(t *testing.T) {
	rec, err := newTestParser().DecodeDirectorUpdate(0, []string{"8003753A", "8000000C"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownDirectorCommand)
	assert.Contains(t, err.Error(), "8000000C")
	assert.Equal(t, core.DirectorRecord{}, rec)
}

func TestDecodeDirectorUpdate_Truncated(t *testing.T) {
	_, err := newTestParser().DecodeDirectorUpdate(0, []string{"8003753A"})
	assert.ErrorIs(t, err, ErrTruncatedRecord)
}

func TestDecodeDirectorUpdate_MalformedInstance(t *testing.T) {
	tests := []struct {
		name  string
		field string
	}{
		{"short", "800"},
		{"not hex", "zz03753A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestParser().DecodeDirectorUpdate(0, []string{tt.field, "40000001"})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedNumber)

			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, 0, fe.Index)
			assert.Equal(t, "instance", fe.Role)
		})
	}
}

func TestDecodeDirectorUpdate_MalformedCommand(t *testing.T) {
	_, err := newTestParser().DecodeDirectorUpdate(0, []string{"8003753A", "4000000G"})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "command", fe.Role)
}
