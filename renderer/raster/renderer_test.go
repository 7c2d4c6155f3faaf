package raster

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/poster/fonts"
	"github.com/ByLCY/poster/renderer"
)

func countPainted(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
				n++
			}
		}
	}
	return n
}

func TestNewClampsBackingStore(t *testing.T) {
	c := New(0, 0, Options{})
	w, h := c.Size()
	assert.Zero(t, w)
	assert.Zero(t, h)
	assert.Equal(t, image.Rect(0, 0, 1, 1), c.Image().Bounds())

	c = New(10.2, 5, Options{})
	assert.Equal(t, image.Rect(0, 0, 11, 5), c.Image().Bounds())
}

func TestFillRect(t *testing.T) {
	c := New(10, 10, Options{})
	c.SetFillStyle("#00ff00")
	c.FillRect(0, 0, 10, 5)

	r, g, b, a := c.Image().At(5, 2).RGBA()
	assert.Greater(t, g, uint32(0xf000))
	assert.Less(t, r, uint32(0x1000))
	assert.Less(t, b, uint32(0x1000))
	assert.Greater(t, a, uint32(0xf000))

	_, _, _, a = c.Image().At(5, 8).RGBA()
	assert.Zero(t, a)
}

func TestMeasureText(t *testing.T) {
	c := New(100, 100, Options{})
	c.SetFont("normal 20px sans-serif")
	one := c.MeasureText("a")
	require.Greater(t, one, 0.0)
	assert.InDelta(t, 3*one, c.MeasureText("aaa"), 1e-6)

	c.SetFont("normal 40px sans-serif")
	assert.InDelta(t, 2*one, c.MeasureText("a"), 0.1)
}

func TestMeasureTextUnrounded(t *testing.T) {
	c := New(100, 100, Options{})
	c.SetFont("normal 20px sans-serif")

	face := fonts.Default.Lookup([]string{"sans-serif"}, 400, false)
	want, err := fonts.Default.Measure(face, "hello", 20)
	require.NoError(t, err)
	got := c.MeasureText("hello")
	assert.Equal(t, want, got)
	assert.InDelta(t, 44.1, got, 0.2)
	assert.NotEqual(t, math.Round(got), got)

	assert.Less(t, c.MeasureText("i"), c.MeasureText("m"))
}

// inkRight 返回最右侧非透明像素的 x+1。
func inkRight(img image.Image) int {
	right := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a > 0 && x+1 > right {
				right = x + 1
			}
		}
	}
	return right
}

func TestFillTextMatchesMeasure(t *testing.T) {
	render := func(s string) (*Canvas, image.Image) {
		c := New(160, 40, Options{})
		c.SetFont("normal 20px sans-serif")
		c.FillText(s, 5, 30)
		return c, c.Image()
	}
	c, hello := render("hello")
	_, dots := render("iiiii")

	assert.LessOrEqual(t, inkRight(hello), 5+int(math.Ceil(c.MeasureText("hello")))+1)
	assert.Less(t, inkRight(dots), inkRight(hello))
	assert.NotEqual(t, countPainted(hello), countPainted(dots))
}

func TestFillAndStrokeText(t *testing.T) {
	fill := New(120, 60, Options{})
	fill.SetFont("bold 40px sans-serif")
	fill.FillText("Hi", 10, 45)
	assert.Positive(t, countPainted(fill.Image()))

	stroke := New(120, 60, Options{})
	stroke.SetFont("bold 40px sans-serif")
	stroke.SetStrokeStyle("#f00")
	stroke.SetTextAlign(renderer.AlignCenter)
	stroke.StrokeText("Hi", 60, 45)
	assert.Positive(t, countPainted(stroke.Image()))
}

func TestDrawImageRectCrops(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			col := color.NRGBA{R: 255, A: 255}
			if y >= 2 {
				col = color.NRGBA{B: 255, A: 255}
			}
			src.SetNRGBA(x, y, col)
		}
	}

	c := New(20, 20, Options{})
	c.DrawImageRect(src, 0, 2, 4, 2, 0, 0, 20, 20)
	r, _, b, a := c.Image().At(10, 10).RGBA()
	assert.Positive(t, a)
	assert.Greater(t, b, r)

	// 源矩形完全在图外时不绘制
	empty := New(20, 20, Options{})
	empty.DrawImageRect(src, 10, 10, 4, 4, 0, 0, 20, 20)
	assert.Zero(t, countPainted(empty.Image()))
}
