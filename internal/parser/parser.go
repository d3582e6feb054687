package parser

import (
	"log/slog"
)

// Parser assembles records from the fields of a single log line.
// It is immutable after construction and safe for concurrent use.
type Parser struct {
	logger  *slog.Logger
	lenient bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithLenient makes malformed numeric fields decode as zero (with a warning)
// instead of failing the record. Truncated and misaligned lines still fail.
func WithLenient(lenient bool) Option {
	return func(p *Parser) {
		p.lenient = lenient
	}
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger, opts ...Option) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Parser{logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Lenient reports whether malformed numbers are zero-defaulted.
func (p *Parser) Lenient() bool {
	return p.lenient
}
