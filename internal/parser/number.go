package parser

import (
	"fmt"
	"math"
	"strconv"
)

// parseHex parses s as an unsigned base-16 number of the given bit size.
// Prefixes, signs and underscores are rejected.
func parseHex(s string, bitSize int) (uint64, error) {
	v, err := strconv.ParseUint(s, 16, bitSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a valid %d-bit hex value", ErrMalformedNumber, s, bitSize)
	}
	return v, nil
}

// U16FromHex parses a 16-bit hex field.
func U16FromHex(s string) (uint16, error) {
	v, err := parseHex(s, 16)
	return uint16(v), err
}

// U32FromHex parses a 32-bit hex field.
func U32FromHex(s string) (uint32, error) {
	v, err := parseHex(s, 32)
	return uint32(v), err
}

// U64FromHex parses a 64-bit hex field.
func U64FromHex(s string) (uint64, error) {
	return parseHex(s, 64)
}

// F32FromHexBits reads a 32-bit hex field as the bit pattern of an IEEE-754
// float. "3F800000" is 1.0.
func F32FromHexBits(s string) (float32, error) {
	v, err := U32FromHex(s)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// U16PairFromHex splits a 32-bit hex field into its high and low halves.
func U16PairFromHex(s string) (hi, lo uint16, err error) {
	v, err := U32FromHex(s)
	if err != nil {
		return 0, 0, err
	}
	return uint16(v >> 16), uint16(v), nil
}

// U8QuadFromHex splits a 32-bit hex field into bytes, most significant first.
func U8QuadFromHex(s string) ([4]uint8, error) {
	v, err := U32FromHex(s)
	if err != nil {
		return [4]uint8{}, err
	}
	return [4]uint8{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}
