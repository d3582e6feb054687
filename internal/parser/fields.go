package parser

import (
	"errors"
	"fmt"
	"math"

	"github.com/nari/actlog/pkg/core"
)

// fieldReader walks a field slice left to right. The first error sticks and
// every later read returns a zero value.
type fieldReader struct {
	p      *Parser
	fields []string
	pos    int
	err    error
}

func (p *Parser) newReader(fields []string) *fieldReader {
	return &fieldReader{p: p, fields: fields}
}

func (r *fieldReader) next(role string) (int, string, bool) {
	if r.err != nil {
		return 0, "", false
	}
	if r.pos >= len(r.fields) {
		r.err = fmt.Errorf("%w: missing field %d (%s)", ErrTruncatedRecord, r.pos, role)
		return 0, "", false
	}
	i := r.pos
	r.pos++
	return i, r.fields[i], true
}

func (r *fieldReader) text(role string) string {
	_, v, _ := r.next(role)
	return v
}

func (r *fieldReader) skip(role string) {
	r.next(role)
}

func (r *fieldReader) u32(role string) uint32 {
	i, s, ok := r.next(role)
	if !ok {
		return 0
	}
	v, err := U32FromHex(s)
	if err != nil {
		r.fail(i, role, s, err)
		return 0
	}
	return v
}

func (r *fieldReader) f32(role string) float32 {
	return math.Float32frombits(r.u32(role))
}

func (r *fieldReader) fail(index int, role, value string, err error) {
	if r.p.lenient && errors.Is(err, ErrMalformedNumber) {
		r.p.logger.Warn("Malformed field decoded as zero",
			"index", index, "role", role, "value", value)
		return
	}
	r.err = &FieldError{Index: index, Role: role, Value: value, Err: err}
}

func (r *fieldReader) actor(role string) core.ActorIdentity {
	id := r.u32(role + ".id")
	name := r.text(role + ".name")
	return core.ActorIdentity{ID: id, Name: name}
}

func (r *fieldReader) resources(role string) core.Resources {
	var res core.Resources
	for i := range res {
		res[i] = r.u32(fmt.Sprintf("%s[%d]", role, i))
	}
	return res
}

func (r *fieldReader) position(role string) core.Position {
	var pos core.Position
	for i := range pos {
		pos[i] = r.f32(fmt.Sprintf("%s[%d]", role, i))
	}
	return pos
}

func (r *fieldReader) actionEffect(role string) core.ActionEffect {
	a := r.u32(role + ".a")
	b := r.u32(role + ".b")
	return actionEffectFromWords(a, b)
}

func (r *fieldReader) statusEffect(role string) core.StatusEffect {
	a := r.u32(role + ".params")
	b := r.u32(role + ".magnitude")
	c := r.u32(role + ".duration")
	return statusEffectFromWords(a, b, c)
}
