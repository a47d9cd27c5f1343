package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dominion/internal/rgb"
	"dominion/internal/store"
)

var opaqueBlack = color.RGBA{A: 0xff}

func storeWith(objects ...store.SpatialObject) *store.Store {
	st := store.New()
	for _, o := range objects {
		st.AddObject(o)
	}
	return st
}

func TestComputeBounds(t *testing.T) {
	st := storeWith(
		store.SpatialObject{X: 3, Y: 9.5},
		store.SpatialObject{X: 12.25, Y: 1},
		store.SpatialObject{X: -40, Y: -2},
	)

	b := ComputeBounds(st)
	assert.Equal(t, Bounds{MaxX: 12.25, MaxY: 9.5}, b)

	w, h, err := b.CanvasSize(1)
	require.NoError(t, err)
	assert.Equal(t, 14, w)
	assert.Equal(t, 11, h)

	w, h, err = b.CanvasSize(3)
	require.NoError(t, err)
	assert.Equal(t, 42, w)
	assert.Equal(t, 33, h)
}

func TestComputeBoundsEmptyStore(t *testing.T) {
	b := ComputeBounds(store.New())
	w, h, err := b.CanvasSize(2)
	require.NoError(t, err)
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, h)
}

func TestRasterizeSingleObject(t *testing.T) {
	st := storeWith(store.SpatialObject{ID: 1, Name: "Alpha", X: 10, Y: 20, Color: rgb.FromPacked(0xFF0000)})

	img, err := Rasterize(st, DefaultOptions())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, img.Bounds().Dx(), 11)
	assert.GreaterOrEqual(t, img.Bounds().Dy(), 21)

	// red is drawn in the blue channel
	marker := color.RGBA{B: 0xff, A: 0xff}
	assert.Equal(t, marker, img.RGBAAt(10, 20))
	assert.Equal(t, marker, img.RGBAAt(9, 20))
	assert.Equal(t, marker, img.RGBAAt(10, 19))
	assert.Equal(t, opaqueBlack, img.RGBAAt(9, 19))
	assert.Equal(t, opaqueBlack, img.RGBAAt(0, 0))
}

func TestRasterizeWithoutSwap(t *testing.T) {
	st := storeWith(store.SpatialObject{X: 2, Y: 2, Color: rgb.FromPacked(0xFF0000)})
	opts := DefaultOptions()
	opts.SwapRedBlue = false

	img, err := Rasterize(st, opts)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, img.RGBAAt(2, 2))
}

func TestLaterObjectsOcclude(t *testing.T) {
	st := storeWith(
		store.SpatialObject{ID: 1, X: 5, Y: 5, Color: rgb.FromPacked(0x00FF00)},
		store.SpatialObject{ID: 2, X: 5, Y: 5, Color: rgb.FromPacked(0x0000FF)},
	)

	img, err := Rasterize(st, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, img.RGBAAt(5, 5))

	// reversing the order flips the visible marker
	reversed := storeWith(st.Objects()[1], st.Objects()[0])
	img, err = Rasterize(reversed, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{G: 0xff, A: 0xff}, img.RGBAAt(5, 5))
}

func TestRasterizeZoom(t *testing.T) {
	st := storeWith(store.SpatialObject{X: 4, Y: 1, Color: rgb.FromPacked(0xFFFFFF)})
	opts := DefaultOptions()
	opts.Zoom = 4

	img, err := Rasterize(st, opts)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 8), img.Bounds())
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, img.RGBAAt(16, 4))
	assert.Equal(t, opaqueBlack, img.RGBAAt(4, 1))
}

func TestRasterizeBackground(t *testing.T) {
	opts := DefaultOptions()
	opts.Background = rgb.FromHex("#102030")

	img, err := Rasterize(store.New(), opts)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0x10, 0x20, 0x30, 0xff}, img.RGBAAt(0, 0))
}

func TestRasterizeResolutionOverride(t *testing.T) {
	st := storeWith(store.SpatialObject{X: 9, Y: 9, Color: rgb.FromPacked(0xFFFFFF)})
	opts := DefaultOptions()
	opts.Width, opts.Height = 100, 50

	img, err := Rasterize(st, opts)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 50), img.Bounds())
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, img.RGBAAt(95, 47))

	opts.Height = 0
	img, err = Rasterize(st, opts)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 10), img.Bounds())
}

func TestRasterizeRejectsBadZoom(t *testing.T) {
	_, err := Rasterize(store.New(), Options{Zoom: 0})
	assert.Error(t, err)
}

func TestRasterizeRejectsOversizedCanvas(t *testing.T) {
	huge := DefaultOptions()
	huge.Zoom = 1 << 62

	override := DefaultOptions()
	override.Width, override.Height = 1<<40, 1<<40

	tests := []struct {
		name string
		st   *store.Store
		opts Options
	}{
		{"huge x", storeWith(store.SpatialObject{X: 1e19, Y: 1}), DefaultOptions()},
		{"huge y", storeWith(store.SpatialObject{X: 1, Y: 1e300}), DefaultOptions()},
		{"huge zoom", store.New(), huge},
		{"area over cap", storeWith(store.SpatialObject{X: 1 << 15, Y: 1 << 15}), DefaultOptions()},
		{"huge override", store.New(), override},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var img *image.RGBA
			var err error
			require.NotPanics(t, func() { img, err = Rasterize(tt.st, tt.opts) })
			assert.ErrorIs(t, err, ErrCanvasTooLarge)
			assert.Nil(t, img)
		})
	}
}

func TestCanvasSizeRejectsWrap(t *testing.T) {
	_, _, err := Bounds{MaxX: 1e19}.CanvasSize(1)
	assert.ErrorIs(t, err, ErrCanvasTooLarge)

	_, _, err = Bounds{}.CanvasSize(1 << 62)
	assert.ErrorIs(t, err, ErrCanvasTooLarge)
}

func TestRasterizeDoesNotMutateStore(t *testing.T) {
	o := store.SpatialObject{ID: 1, X: 3, Y: 4, Color: rgb.FromPacked(0x123456)}
	st := storeWith(o)

	_, err := Rasterize(st, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []store.SpatialObject{o}, st.Objects())
}

func TestDrawMarkerClipsAtEdges(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	assert.True(t, DrawMarker(img, -1, 0, rgb.FromPacked(0xFFFFFF)))
	assert.Equal(t, uint8(0xff), img.RGBAAt(0, 0).R)
	assert.False(t, DrawMarker(img, -10, -10, rgb.FromPacked(0xFFFFFF)))
}

func TestFit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 100))
	out := Fit(src, 200, 200)
	assert.Equal(t, image.Rect(0, 0, 200, 50), out.Bounds())
	assert.Same(t, src, Fit(src, 400, 100))
}
