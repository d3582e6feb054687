package parser

import (
	"fmt"
	"strconv"

	"github.com/nari/actlog/pkg/core"
)

// MarkerFieldCount is the number of fields a target marker line must carry.
//
//	0    operation (Add, Update, Delete)
//	1    marker id, decimal
//	2- 3 source id, name
//	4- 5 target id, name
const MarkerFieldCount = 6

// DecodeTargetMarker assembles a head marker change. An id outside the
// game's marker set fails with ErrInvalidMarkerID.
func (p *Parser) DecodeTargetMarker(timestamp int64, fields []string) (core.MarkerRecord, error) {
	if len(fields) < MarkerFieldCount {
		return core.MarkerRecord{}, fmt.Errorf("%w: target marker needs %d fields, got %d",
			ErrTruncatedRecord, MarkerFieldCount, len(fields))
	}

	r := p.newReader(fields)
	rec := core.MarkerRecord{Timestamp: timestamp}
	rec.Operation = r.markerOperation("operation")
	rec.Marker = r.marker("marker")
	rec.Source = r.actor("source")
	rec.Target = r.actor("target")

	if r.err != nil {
		return core.MarkerRecord{}, fmt.Errorf("error decoding target marker: %w", r.err)
	}
	return rec, nil
}

func (r *fieldReader) markerOperation(role string) core.MarkerOperation {
	i, s, ok := r.next(role)
	if !ok {
		return 0
	}
	op, known := core.ParseMarkerOperation(s)
	if !known {
		r.fail(i, role, s, ErrInvalidMarkerOperation)
	}
	return op
}

func (r *fieldReader) marker(role string) core.PlayerMarker {
	i, s, ok := r.next(role)
	if !ok {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		r.fail(i, role, s, fmt.Errorf("%w: %q is not a decimal marker id", ErrMalformedNumber, s))
		return 0
	}
	if v > uint64(core.MarkerAttack8) {
		r.fail(i, role, s, ErrInvalidMarkerID)
		return 0
	}
	return core.PlayerMarker(v)
}
