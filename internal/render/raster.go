// Package render draws spatial objects onto an opaque RGBA canvas.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"dominion/internal/log"
	"dominion/internal/rgb"
	"dominion/internal/store"
)

// MarkerRadius is the radius in pixels of every object marker
const MarkerRadius = 1.0

// MaxCanvasPixels caps the canvas allocation
const MaxCanvasPixels = 1 << 28

// ErrCanvasTooLarge is returned when a canvas or resample target would
// exceed MaxCanvasPixels
var ErrCanvasTooLarge = errors.New("canvas too large")

// Options control canvas sizing and colors
type Options struct {
	Zoom int
	// Width and Height, when both positive, resample the finished canvas
	// to that output size.
	Width  int
	Height int
	// SwapRedBlue draws each object with red and blue exchanged, which is
	// the established look of the map.
	SwapRedBlue bool
	Background  rgb.Color
}

// DefaultOptions returns zoom 1, black background, red/blue swapped
func DefaultOptions() Options {
	return Options{Zoom: 1, SwapRedBlue: true}
}

// Rasterize allocates a canvas sized from the store's bounds, paints the
// background and draws one marker per spatial object in store order, so
// later objects cover earlier ones.
func Rasterize(st *store.Store, opts Options) (*image.RGBA, error) {
	if opts.Zoom < 1 {
		return nil, fmt.Errorf("zoom must be at least 1, got %d", opts.Zoom)
	}

	bounds := ComputeBounds(st)
	width, height, err := bounds.CanvasSize(opts.Zoom)
	if err != nil {
		return nil, err
	}
	resample := opts.Width > 0 && opts.Height > 0
	if resample {
		if err := checkArea(opts.Width, opts.Height); err != nil {
			return nil, err
		}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(opts.Background.NRGBA()), image.Point{}, draw.Src)

	zoom := float64(opts.Zoom)
	drawn := 0
	st.EachObject(func(o store.SpatialObject) {
		c := o.Color
		if opts.SwapRedBlue {
			c = c.SwapRB()
		}
		if DrawMarker(canvas, o.X*zoom, o.Y*zoom, c) {
			drawn++
		}
	})

	log.Debug("rasterized", "width", width, "height", height, "objects", st.ObjectCount(), "visible", drawn)

	if resample {
		return Resample(canvas, opts.Width, opts.Height), nil
	}
	if opts.Width > 0 || opts.Height > 0 {
		log.Warn("ignoring partial resolution override", "width", opts.Width, "height", opts.Height)
	}
	return canvas, nil
}

// DrawMarker fills a disc of MarkerRadius centred on the centre of the
// pixel containing (x, y). It reports whether any pixel landed on dst.
func DrawMarker(dst draw.Image, x, y float64, c rgb.Color) bool {
	px, py := math.Floor(x), math.Floor(y)
	if math.IsNaN(px) || math.IsNaN(py) || math.Abs(px) > math.MaxInt32 || math.Abs(py) > math.MaxInt32 {
		return false
	}
	m := &disc{cx: int(px), cy: int(py), r: MarkerRadius}
	r := m.Bounds().Intersect(dst.Bounds())
	if r.Empty() {
		return false
	}
	draw.DrawMask(dst, r, image.NewUniform(c.NRGBA()), image.Point{}, m, r.Min, draw.Over)
	return true
}

// disc is an alpha mask that is opaque for pixels whose centre lies within
// r of the centre of pixel (cx, cy)
type disc struct {
	cx, cy int
	r      float64
}

func (d *disc) ColorModel() color.Model { return color.AlphaModel }

func (d *disc) Bounds() image.Rectangle {
	n := int(math.Ceil(d.r))
	return image.Rect(d.cx-n, d.cy-n, d.cx+n+1, d.cy+n+1)
}

func (d *disc) At(x, y int) color.Color {
	dx, dy := float64(x-d.cx), float64(y-d.cy)
	if dx*dx+dy*dy <= d.r*d.r {
		return color.Alpha{A: 0xff}
	}
	return color.Alpha{}
}
