package render

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Resample scales src to width x height with nearest-neighbour sampling so
// markers keep hard edges
func Resample(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// Fit scales src down with bilinear filtering so that it fits within
// maxWidth x maxHeight, keeping the aspect ratio. Images that already fit
// are returned unchanged.
func Fit(src image.Image, maxWidth, maxHeight int) image.Image {
	b := src.Bounds()
	if b.Dx() <= maxWidth && b.Dy() <= maxHeight {
		return src
	}
	scale := float64(maxWidth) / float64(b.Dx())
	if s := float64(maxHeight) / float64(b.Dy()); s < scale {
		scale = s
	}
	w := max(1, int(float64(b.Dx())*scale))
	h := max(1, int(float64(b.Dy())*scale))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
