package dump

import (
	"bufio"
	"fmt"
	"io"
)

// SliceResult counts what Slice copied
type SliceResult struct {
	Sections int
	Rows     int
}

// Slice copies every section of table from r to w, directive and sentinel
// included, one normalized line per output line. Sections left open at the
// end of the stream are copied as far as they go.
func Slice(r io.Reader, w io.Writer, table string, cfg Config) (SliceResult, error) {
	var res SliceResult
	want := normalizeTableName(table)
	if want == "" {
		return res, fmt.Errorf("table name is required")
	}

	src, err := NewDecodingReader(r, cfg.Encoding)
	if err != nil {
		return res, err
	}

	bw := bufio.NewWriter(w)
	lr := NewLineReader(src, cfg.LineCapacity)
	inside := false
	for lr.Scan() {
		line := lr.Text()
		if !inside {
			name, ok := ParseDirective(line)
			if !ok || normalizeTableName(name) != want {
				continue
			}
			inside = true
			res.Sections++
		} else if line == Sentinel {
			inside = false
		} else {
			res.Rows++
		}
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return res, fmt.Errorf("failed to write slice: %w", err)
		}
	}
	if err := lr.Err(); err != nil {
		return res, fmt.Errorf("failed to read dump: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return res, fmt.Errorf("failed to write slice: %w", err)
	}
	return res, nil
}
