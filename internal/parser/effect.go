package parser

import (
	"math"

	"github.com/nari/actlog/pkg/core"
)

// DecodeActionEffect unpacks an action effect from its two words.
//
//	a: param0 | param1 | severity | category   (one byte each)
//	b: value (16 bits) | flags | multiplier
func DecodeActionEffect(a, b string) (core.ActionEffect, error) {
	wa, err := U32FromHex(a)
	if err != nil {
		return core.ActionEffect{}, err
	}
	wb, err := U32FromHex(b)
	if err != nil {
		return core.ActionEffect{}, err
	}
	return actionEffectFromWords(wa, wb), nil
}

// DecodeStatusEffect unpacks a status effect from its three fields.
func DecodeStatusEffect(a, b, c string) (core.StatusEffect, error) {
	wa, err := U32FromHex(a)
	if err != nil {
		return core.StatusEffect{}, err
	}
	wb, err := U32FromHex(b)
	if err != nil {
		return core.StatusEffect{}, err
	}
	wc, err := U32FromHex(c)
	if err != nil {
		return core.StatusEffect{}, err
	}
	return statusEffectFromWords(wa, wb, wc), nil
}

func actionEffectFromWords(a, b uint32) core.ActionEffect {
	return core.ActionEffect{
		Param0:     uint8(a >> 24),
		Param1:     uint8(a >> 16),
		Severity:   uint8(a >> 8),
		Category:   uint8(a),
		Value:      uint16(b >> 16),
		Flags:      uint8(b >> 8),
		Multiplier: uint8(b),
	}
}

func statusEffectFromWords(a, b, c uint32) core.StatusEffect {
	return core.StatusEffect{
		Param0:    uint16(a >> 16),
		Param1:    uint16(a),
		Magnitude: math.Float32frombits(b),
		Duration:  c,
	}
}
