package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// floatJSON writes finite values as JSON numbers. NaN and ±Inf have no JSON
// number form, so they are written as their 8-digit hex bit pattern, the
// same form the log uses.
type floatJSON float32

func (f floatJSON) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return json.Marshal(fmt.Sprintf("%08X", math.Float32bits(float32(f))))
	}
	return json.Marshal(float32(f))
}

func (f *floatJSON) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		bits, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return fmt.Errorf("invalid float bit pattern %q: %w", s, err)
		}
		*f = floatJSON(math.Float32frombits(uint32(bits)))
		return nil
	}
	var v float32
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = floatJSON(v)
	return nil
}

func (p Position) MarshalJSON() ([]byte, error) {
	var out [4]floatJSON
	for i, v := range p {
		out[i] = floatJSON(v)
	}
	return json.Marshal(out)
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var in [4]floatJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	for i, v := range in {
		p[i] = float32(v)
	}
	return nil
}

type statusEffectJSON struct {
	Param0    uint16    `json:"param0"`
	Param1    uint16    `json:"param1"`
	Magnitude floatJSON `json:"magnitude"`
	Duration  uint32    `json:"duration"`
}

func (e StatusEffect) MarshalJSON() ([]byte, error) {
	return json.Marshal(statusEffectJSON{
		Param0:    e.Param0,
		Param1:    e.Param1,
		Magnitude: floatJSON(e.Magnitude),
		Duration:  e.Duration,
	})
}

func (e *StatusEffect) UnmarshalJSON(data []byte) error {
	var in statusEffectJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = StatusEffect{
		Param0:    in.Param0,
		Param1:    in.Param1,
		Magnitude: float32(in.Magnitude),
		Duration:  in.Duration,
	}
	return nil
}
