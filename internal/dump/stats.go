package dump

// Stats are diagnostic counters for one or more Parse calls. Nothing
// downstream of the parser depends on them.
type Stats struct {
	Lines          int
	TruncatedLines int
	DiscardedBytes int64

	// Per table kind, indexed by TableKind
	Sections [numTableKinds]int
	Rows     [numTableKinds]int
	Decoded  [numTableKinds]int
	Dropped  [numTableKinds]int

	SkippedRows   int
	UnknownTables []string
	Unterminated  int
}

// RowsFor returns dispatched, decoded and dropped row counts for kind
func (s Stats) RowsFor(kind TableKind) (rows, decoded, dropped int) {
	return s.Rows[kind], s.Decoded[kind], s.Dropped[kind]
}

// TotalDropped returns dropped rows across all known kinds
func (s Stats) TotalDropped() int {
	total := 0
	for _, n := range s.Dropped {
		total += n
	}
	return total
}

func (s *Stats) noteUnknown(name string) {
	for _, n := range s.UnknownTables {
		if n == name {
			return
		}
	}
	s.UnknownTables = append(s.UnknownTables, name)
}
