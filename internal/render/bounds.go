package render

import (
	"fmt"
	"math"

	"dominion/internal/store"
)

// Bounds are the largest x and y seen across the spatial objects. Both
// start at zero, so negative coordinates never widen the canvas.
type Bounds struct {
	MaxX, MaxY float64
}

// ComputeBounds scans the store's spatial objects without modifying them
func ComputeBounds(st *store.Store) Bounds {
	var b Bounds
	st.EachObject(func(o store.SpatialObject) {
		if o.X > b.MaxX {
			b.MaxX = o.X
		}
		if o.Y > b.MaxY {
			b.MaxY = o.Y
		}
	})
	return b
}

// CanvasSize returns (ceil(max)+1)*zoom for each axis. Sizes are worked
// out in floating point so huge coordinates or zooms cannot wrap, and any
// canvas over MaxCanvasPixels is rejected with ErrCanvasTooLarge.
func (b Bounds) CanvasSize(zoom int) (width, height int, err error) {
	if zoom < 1 {
		zoom = 1
	}
	w := (math.Ceil(b.MaxX) + 1) * float64(zoom)
	h := (math.Ceil(b.MaxY) + 1) * float64(zoom)
	if !(w*h <= MaxCanvasPixels) {
		return 0, 0, fmt.Errorf("%w: %.0fx%.0f exceeds %d pixels", ErrCanvasTooLarge, w, h, MaxCanvasPixels)
	}
	return int(w), int(h), nil
}

// checkArea applies the MaxCanvasPixels cap to an explicit size
func checkArea(width, height int) error {
	if width > MaxCanvasPixels || height > MaxCanvasPixels || int64(width)*int64(height) > MaxCanvasPixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrCanvasTooLarge, width, height, MaxCanvasPixels)
	}
	return nil
}
