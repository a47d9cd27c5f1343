package dump

import (
	"bufio"
	"io"
	"strings"
)

// DefaultLineCapacity is the raw line capacity used when none is configured
const DefaultLineCapacity = 4096

// LineReader yields trimmed lines from a stream while holding at most
// capacity bytes of any one line. A raw line longer than capacity
// (terminator included) is cut to its first capacity bytes and everything
// up to and including the next '\n' is thrown away, so one oversized record
// cannot desynchronize the lines after it.
type LineReader struct {
	br       *bufio.Reader
	capacity int

	line      string
	truncated bool
	done      bool
	err       error

	lines          int
	truncatedLines int
	discarded      int64
}

// NewLineReader creates a reader with the given raw line capacity
func NewLineReader(r io.Reader, capacity int) *LineReader {
	if capacity < 1 {
		capacity = DefaultLineCapacity
	}
	// bufio refuses buffers smaller than 16 bytes; shorter capacities are
	// enforced by slicing.
	size := capacity
	if size < 16 {
		size = 16
	}
	return &LineReader{br: bufio.NewReaderSize(r, size), capacity: capacity}
}

// Scan advances to the next line. It returns false at end of stream or on
// a read error, which is then available from Err.
func (lr *LineReader) Scan() bool {
	if lr.done {
		return false
	}

	raw, err := lr.br.ReadSlice('\n')
	var text string
	truncated := false

	switch {
	case err == bufio.ErrBufferFull:
		truncated = true
		text = string(raw[:lr.capacity])
		lr.discarded += int64(len(raw) - lr.capacity)
		err = lr.discardLine()
	case len(raw) > lr.capacity:
		truncated = true
		text = string(raw[:lr.capacity])
		lr.discarded += int64(len(raw) - lr.capacity)
	default:
		text = string(raw)
	}

	if err != nil {
		lr.done = true
		if err != io.EOF {
			lr.err = err
			return false
		}
		if len(text) == 0 {
			return false
		}
	}

	lr.line = strings.TrimSpace(text)
	lr.truncated = truncated
	lr.lines++
	if truncated {
		lr.truncatedLines++
	}
	return true
}

// discardLine drops bytes up to and including the next terminator
func (lr *LineReader) discardLine() error {
	for {
		chunk, err := lr.br.ReadSlice('\n')
		lr.discarded += int64(len(chunk))
		if err != bufio.ErrBufferFull {
			return err
		}
	}
}

// Text returns the current trimmed line
func (lr *LineReader) Text() string { return lr.line }

// Truncated reports whether the current line was cut at capacity
func (lr *LineReader) Truncated() bool { return lr.truncated }

// Err returns the first non-EOF read error
func (lr *LineReader) Err() error { return lr.err }

// Lines returns the number of lines yielded so far
func (lr *LineReader) Lines() int { return lr.lines }

// TruncatedLines returns the number of yielded lines that were cut at capacity
func (lr *LineReader) TruncatedLines() int { return lr.truncatedLines }

// DiscardedBytes returns the number of bytes thrown away after truncation
func (lr *LineReader) DiscardedBytes() int64 { return lr.discarded }

// SplitFields splits a line on tabs. Adjacent tabs give empty fields; no
// quoting or escaping is interpreted.
func SplitFields(line string) []string {
	return strings.Split(line, "\t")
}
