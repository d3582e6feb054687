package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestU32FromHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    uint32
		wantErr bool
	}{
		{"zero", "00000000", 0, false},
		{"max", "FFFFFFFF", 0xFFFFFFFF, false},
		{"lowercase", "10909b23", 0x10909B23, false},
		{"short", "1F", 0x1F, false},
		{"overflow", "100000000", 0, true},
		{"empty", "", 0, true},
		{"non-hex", "1234567G", 0, true},
		{"0x prefix", "0x1234", 0, true},
		{"sign", "-1", 0, true},
		{"underscore", "12_34", 0, true},
		{"name field", "Striking Dummy", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := U32FromHex(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedNumber)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestU32FromHex_RoundTrip(t *testing.T) {
	inputs := []string{
		"00000000", "00000001", "7FFFFFFF", "80000000", "FFFFFFFF",
		"10909B23", "4000a1b2", "deadBEEF", "3f800000", "0000ff01",
	}
	for _, s := range inputs {
		t.Run(s, func(t *testing.T) {
			v, err := U32FromHex(s)
			require.NoError(t, err)
			assert.Equal(t, strings.ToUpper(s), fmt.Sprintf("%08X", v))
		})
	}
}

func TestU16FromHex(t *testing.T) {
	v, err := U16FromHex("FFFF")
	require.NoError(t, err)
	assert.Equal(t, uint16(0xFFFF), v)

	_, err = U16FromHex("10000")
	assert.ErrorIs(t, err, ErrMalformedNumber)

	_, err = U16FromHex("zz")
	assert.ErrorIs(t, err, ErrMalformedNumber)
}

func TestU64FromHex(t *testing.T) {
	v, err := U64FromHex("50BCD605C50A749F")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x50BCD605C50A749F), v)

	_, err = U64FromHex("150BCD605C50A749F")
	assert.ErrorIs(t, err, ErrMalformedNumber)
}

func TestF32FromHexBits(t *testing.T) {
	tests := []struct {
		input string
		want  float32
	}{
		{"3F800000", 1.0},
		{"00000000", 0.0},
		{"BF800000", -1.0},
		{"40490FDB", 3.1415927},
		{"C2C80000", -100.0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := F32FromHexBits(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := F32FromHexBits("1.0")
	assert.ErrorIs(t, err, ErrMalformedNumber)
}

func TestU16PairFromHex(t *testing.T) {
	hi, lo, err := U16PairFromHex("0001FFFF")
	require.NoError(t, err)
	assert.Equal(t, uint16(1), hi)
	assert.Equal(t, uint16(65535), lo)

	_, _, err = U16PairFromHex("0001FFFFF")
	assert.ErrorIs(t, err, ErrMalformedNumber)
}

func TestU8QuadFromHex(t *testing.T) {
	got, err := U8QuadFromHex("01020304")
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{1, 2, 3, 4}, got)

	got, err = U8QuadFromHex("FF")
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{0, 0, 0, 0xFF}, got)

	_, err = U8QuadFromHex("not hex")
	assert.ErrorIs(t, err, ErrMalformedNumber)
}
