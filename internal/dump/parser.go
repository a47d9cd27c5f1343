// Package dump reads a tab-separated database export with several tables
// interleaved in one stream and decodes the sections it knows about into a
// store.Store. Malformed rows, unknown sections and oversized lines are
// recovered locally; only read errors are returned.
package dump

import (
	"fmt"
	"io"
	"log/slog"

	"dominion/internal/log"
	"dominion/internal/store"
)

// Phase is the parser's position relative to table sections
type Phase int

const (
	PhaseInitial Phase = iota
	PhaseSkipping
	PhaseInTable
)

func (p Phase) String() string {
	switch p {
	case PhaseSkipping:
		return "skipping"
	case PhaseInTable:
		return "in_table"
	default:
		return "initial"
	}
}

// State is the parser state. Table is only meaningful in PhaseInTable.
type State struct {
	Phase Phase
	Table TableKind
}

// Initial is the state outside of any section
var Initial = State{Phase: PhaseInitial}

func (s State) String() string {
	if s.Phase == PhaseInTable {
		return fmt.Sprintf("%s(%s)", s.Phase, s.Table)
	}
	return s.Phase.String()
}

// Config controls table resolution and the line capacity
type Config struct {
	Tables       TableNames
	LineCapacity int
	Encoding     string
}

// DefaultConfig returns the configuration for a stock export
func DefaultConfig() Config {
	return Config{
		Tables:       DefaultTableNames,
		LineCapacity: DefaultLineCapacity,
	}
}

// Parser routes dump lines to record decoders. Records accumulate in the
// store across Parse calls.
type Parser struct {
	store  *store.Store
	cfg    Config
	logger *slog.Logger

	state State
	row   int // rows seen in the current section
	stats Stats
}

// NewParser creates a parser that appends into st
func NewParser(st *store.Store, cfg Config) *Parser {
	if cfg.LineCapacity < 1 {
		cfg.LineCapacity = DefaultLineCapacity
	}
	return &Parser{
		store:  st,
		cfg:    cfg,
		logger: log.With("component", "dump"),
		state:  Initial,
	}
}

// SetLogger replaces the parser's logger
func (p *Parser) SetLogger(l *slog.Logger) {
	p.logger = l
}

// Parse consumes r to the end. Each call starts outside of any section.
func (p *Parser) Parse(r io.Reader) (Stats, error) {
	src, err := NewDecodingReader(r, p.cfg.Encoding)
	if err != nil {
		return p.stats, err
	}

	lr := NewLineReader(src, p.cfg.LineCapacity)
	st := Initial
	for lr.Scan() {
		if lr.Truncated() {
			p.logger.Debug("line truncated", "line", p.stats.Lines+lr.Lines(), "state", st)
		}
		st = p.step(st, lr.Text())
	}

	p.state = st
	p.stats.Lines += lr.Lines()
	p.stats.TruncatedLines += lr.TruncatedLines()
	p.stats.DiscardedBytes += lr.DiscardedBytes()

	if st.Phase != PhaseInitial {
		p.stats.Unterminated++
		p.logger.Warn("dump ended inside a table section", "state", st)
		p.state = Initial
	}

	if err := lr.Err(); err != nil {
		return p.stats, fmt.Errorf("failed to read dump: %w", err)
	}
	return p.stats, nil
}

// ProcessLine feeds a single normalized line through the state machine
func (p *Parser) ProcessLine(line string) {
	p.state = p.step(p.state, line)
}

// State returns the current state
func (p *Parser) State() State { return p.state }

// Stats returns the counters accumulated so far
func (p *Parser) Stats() Stats { return p.stats }

// step applies one line to st and returns the next state
func (p *Parser) step(st State, line string) State {
	switch st.Phase {
	case PhaseInitial:
		name, ok := ParseDirective(line)
		if !ok {
			return st
		}
		kind := p.cfg.Tables.Resolve(name)
		if kind == TableUnknown {
			p.stats.noteUnknown(name)
			p.stats.Sections[TableUnknown]++
			p.logger.Debug("skipping table", "table", name)
			return State{Phase: PhaseSkipping}
		}
		p.row = 0
		p.stats.Sections[kind]++
		p.logger.Debug("entering table", "table", name, "kind", kind)
		return State{Phase: PhaseInTable, Table: kind}

	case PhaseSkipping:
		if line == Sentinel {
			return Initial
		}
		p.stats.SkippedRows++
		return st

	case PhaseInTable:
		if line == Sentinel {
			p.logger.Debug("leaving table", "kind", st.Table, "rows", p.row)
			return Initial
		}
		p.row++
		p.stats.Rows[st.Table]++
		if p.decode(st.Table, SplitFields(line)) {
			p.stats.Decoded[st.Table]++
		} else {
			p.stats.Dropped[st.Table]++
			p.logger.Debug("row dropped", "kind", st.Table, "row", p.row)
		}
		return st
	}
	return Initial
}
