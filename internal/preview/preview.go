// Package preview prints a rendered map inline in a sixel-capable terminal.
package preview

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"io"
	"os"

	"github.com/BourgeoisBear/rasterm"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-sixel"

	"dominion/internal/render"
)

// ErrNotTerminal is returned when the output is not a terminal
var ErrNotTerminal = errors.New("preview output is not a terminal")

// Encoder selects the sixel implementation
type Encoder string

const (
	// EncoderRasterm quantizes to the Plan 9 palette with Floyd-Steinberg
	// dithering and encodes with rasterm
	EncoderRasterm Encoder = "rasterm"
	// EncoderSixel hands the RGBA image to go-sixel
	EncoderSixel Encoder = "sixel"
)

// MaxWidth and MaxHeight bound the preview size in pixels
const (
	MaxWidth  = 800
	MaxHeight = 600
)

// ParseEncoder validates an encoder name
func ParseEncoder(name string) (Encoder, error) {
	switch Encoder(name) {
	case "", EncoderRasterm:
		return EncoderRasterm, nil
	case EncoderSixel:
		return EncoderSixel, nil
	}
	return "", fmt.Errorf("unknown preview encoder %q", name)
}

// Show writes img to f if f is a terminal
func Show(f *os.File, img image.Image, enc Encoder) error {
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return ErrNotTerminal
	}
	bw := bufio.NewWriter(f)
	if err := Write(bw, img, enc); err != nil {
		return err
	}
	if _, err := io.WriteString(bw, "\n"); err != nil {
		return err
	}
	return bw.Flush()
}

// Write encodes img as sixel data, scaled down to fit MaxWidth x MaxHeight
func Write(w io.Writer, img image.Image, enc Encoder) error {
	img = render.Fit(img, MaxWidth, MaxHeight)

	switch enc {
	case EncoderSixel:
		e := sixel.NewEncoder(w)
		e.Dither = false
		if err := e.Encode(img); err != nil {
			return fmt.Errorf("failed to encode sixel: %w", err)
		}
		return nil
	case EncoderRasterm, "":
		bounds := img.Bounds()
		paletted := image.NewPaletted(bounds, palette.Plan9)
		draw.FloydSteinberg.Draw(paletted, bounds, img, bounds.Min)
		if err := rasterm.SixelWriteImage(w, paletted); err != nil {
			return fmt.Errorf("failed to encode sixel: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown preview encoder %q", enc)
}
