package dump

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// charmaps maps encoding names, including PostgreSQL client_encoding
// spellings, to single-byte decoders
var charmaps = map[string]*charmap.Charmap{
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso8859-1":    charmap.ISO8859_1,
	"latin9":       charmap.ISO8859_15,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1252": charmap.Windows1252,
	"win1252":      charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"cp437":        charmap.CodePage437,
	"koi8-r":       charmap.KOI8R,
	"koi8r":        charmap.KOI8R,
}

func normalizeEncoding(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func isPassthrough(name string) bool {
	switch name {
	case "", "utf-8", "utf8", "sql_ascii", "ascii":
		return true
	}
	return false
}

// KnownEncoding reports whether NewDecodingReader accepts name
func KnownEncoding(name string) bool {
	n := normalizeEncoding(name)
	if isPassthrough(n) {
		return true
	}
	_, ok := charmaps[n]
	return ok
}

// NewDecodingReader wraps r so that it yields UTF-8. UTF-8 and ASCII input
// is returned unchanged.
func NewDecodingReader(r io.Reader, name string) (io.Reader, error) {
	n := normalizeEncoding(name)
	if isPassthrough(n) {
		return r, nil
	}
	cm, ok := charmaps[n]
	if !ok {
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
	return transform.NewReader(r, cm.NewDecoder()), nil
}
