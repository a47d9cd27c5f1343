// Package rgb decodes the two color encodings found in a dump: a 24-bit
// packed integer and a "#RRGGBB" style hex string.
package rgb

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
)

// Color is a normalized color, each component in [0, 1]
type Color struct {
	R, G, B float64
}

// Black is returned for any malformed input
var Black = Color{}

// FromPacked extracts red, green and blue from bits 16, 8 and 0 of v.
// Bits above 23 are ignored.
func FromPacked(v uint32) Color {
	return Color{
		R: float64((v>>16)&0xff) / 255,
		G: float64((v>>8)&0xff) / 255,
		B: float64(v&0xff) / 255,
	}
}

// FromHex decodes s from offset 1 onward as a hexadecimal packed value.
// The sigil at offset 0 is not checked. Strings shorter than 7 bytes and
// strings that are not valid hex yield Black.
func FromHex(s string) Color {
	if len(s) < 7 {
		return Black
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return Black
	}
	return FromPacked(uint32(v))
}

// ParsePacked parses a decimal field as a packed color, parse-or-zero
func ParsePacked(s string) Color {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Black
	}
	return FromPacked(uint32(v))
}

// Packed re-encodes c as a 24-bit integer, rounding each component
func (c Color) Packed() uint32 {
	return uint32(channel(c.R))<<16 | uint32(channel(c.G))<<8 | uint32(channel(c.B))
}

// Hex formats c as "#rrggbb"
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", c.Packed())
}

// NRGBA converts c to an opaque 8-bit color
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: channel(c.R), G: channel(c.G), B: channel(c.B), A: 0xff}
}

// SwapRB returns c with red and blue exchanged
func (c Color) SwapRB() Color {
	return Color{R: c.B, G: c.G, B: c.R}
}

func channel(v float64) uint8 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 1:
		return 0xff
	}
	return uint8(math.Round(v * 255))
}
