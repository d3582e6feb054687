package parser

import (
	"fmt"

	"github.com/nari/actlog/pkg/core"
)

// DirectorFieldCount is the number of fields a director update must carry:
// the category/instance word and the command id. Command arguments that
// follow are not decoded.
const DirectorFieldCount = 2

// DecodeDirectorUpdate assembles an instance state change. The instance id
// is the first four hex digits of the first field. Commands other than
// the instance state changes return ErrUnknownDirectorCommand.
func (p *Parser) DecodeDirectorUpdate(timestamp int64, fields []string) (core.DirectorRecord, error) {
	if len(fields) < DirectorFieldCount {
		return core.DirectorRecord{}, fmt.Errorf("%w: director update needs %d fields, got %d",
			ErrTruncatedRecord, DirectorFieldCount, len(fields))
	}

	r := p.newReader(fields)
	rec := core.DirectorRecord{Timestamp: timestamp}
	rec.InstanceID = r.instanceID("instance")
	rec.Command = core.DirectorCommand(r.u32("command"))

	if r.err != nil {
		return core.DirectorRecord{}, fmt.Errorf("error decoding director update: %w", r.err)
	}
	if !rec.Command.Known() {
		return core.DirectorRecord{}, fmt.Errorf("%w: %08X", ErrUnknownDirectorCommand, uint32(rec.Command))
	}
	return rec, nil
}

// instanceID reads the leading four hex digits of a category/instance word.
func (r *fieldReader) instanceID(role string) uint16 {
	i, s, ok := r.next(role)
	if !ok {
		return 0
	}
	if len(s) < 4 {
		r.fail(i, role, s, fmt.Errorf("%w: need 4 hex digits", ErrMalformedNumber))
		return 0
	}
	v, err := U16FromHex(s[:4])
	if err != nil {
		r.fail(i, role, s, err)
		return 0
	}
	return v
}
