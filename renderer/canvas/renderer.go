package canvasrenderer

import (
	"image"
	"image/color"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/poster/fonts"
	"github.com/ByLCY/poster/renderer"
)

// Canvas 是基于 github.com/tdewolff/canvas 的矢量画布，导出时按 1px/单位光栅化。
type Canvas struct {
	renderer.State

	width, height float64
	c             *canvas.Canvas
	ctx           *canvas.Context
	fonts         *fonts.Registry
}

var (
	_ renderer.Context = (*Canvas)(nil)
	_ renderer.Canvas  = (*Canvas)(nil)
)

// Options configures the vector canvas.
type Options struct {
	Fonts  *fonts.Registry // 为空时使用 fonts.Default
	Logger *slog.Logger
}

// New creates a width x height pixel canvas with a top-left origin.
func New(width, height float64, opts Options) *Canvas {
	if opts.Fonts == nil {
		opts.Fonts = fonts.Default
	}
	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 与 2D context 一致：左上角为原点，y 轴向下
	return &Canvas{
		State:  renderer.NewState(opts.Logger),
		width:  width,
		height: height,
		c:      c,
		ctx:    ctx,
		fonts:  opts.Fonts,
	}
}

func (c *Canvas) Context() renderer.Context { return c }

func (c *Canvas) Size() (float64, float64) { return c.width, c.height }

// Image 光栅化当前画布。
func (c *Canvas) Image() image.Image {
	return rasterizer.Draw(c.c, canvas.DPMM(1), canvas.DefaultColorSpace)
}

func (c *Canvas) FillRect(x, y, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	c.ctx.SetFillColor(c.Fill)
	c.ctx.SetStrokeColor(canvas.Transparent)
	c.ctx.DrawPath(x, y, canvas.Rectangle(w, h))
}

func (c *Canvas) FillText(text string, x, y float64) {
	c.drawText(text, x, y, c.Fill, canvas.Transparent)
}

// StrokeText 描绘文字轮廓，线宽 1px。
func (c *Canvas) StrokeText(text string, x, y float64) {
	c.drawText(text, x, y, canvas.Transparent, c.Stroke)
}

func (c *Canvas) MeasureText(text string) float64 {
	face := c.fonts.Lookup(c.Font.Families, c.Font.Weight, c.Font.Italic)
	width, err := c.fonts.Measure(face, text, c.Font.Size)
	if err != nil {
		c.warn("测量文字失败", err)
		return 0
	}
	return width
}

// drawText 以基线起点 (x, y) 绘制文字轮廓，填充与描边颜色二选一。
func (c *Canvas) drawText(text string, x, y float64, fill, stroke color.Color) {
	f, err := c.fonts.Parsed(c.fonts.Lookup(c.Font.Families, c.Font.Weight, c.Font.Italic))
	if err != nil {
		c.warn("加载字体失败", err)
		return
	}
	path, advance, err := textPath(f, text, c.Font.Size)
	if err != nil {
		c.warn("生成文字轮廓失败", err)
		return
	}
	if c.Align == renderer.AlignCenter {
		x -= advance / 2
	}
	c.ctx.SetFillColor(fill)
	c.ctx.SetStrokeColor(stroke)
	c.ctx.SetStrokeWidth(1)
	c.ctx.DrawPath(x, y, path)
}

func (c *Canvas) DrawImage(img image.Image, dx, dy, dw, dh float64) {
	b := img.Bounds()
	c.DrawImageRect(img, float64(b.Min.X), float64(b.Min.Y), float64(b.Dx()), float64(b.Dy()), dx, dy, dw, dh)
}

func (c *Canvas) DrawImageRect(img image.Image, sx, sy, sw, sh, dx, dy, dw, dh float64) {
	src, dx, dy, dw, dh, ok := renderer.ClampSource(img.Bounds(), sx, sy, sw, sh, dx, dy, dw, dh)
	if !ok {
		return
	}
	if src != img.Bounds() {
		img = imaging.Crop(img, src)
	}
	iw, ih := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	c.ctx.Push()
	c.ctx.Translate(dx, dy)
	c.ctx.Scale(dw/iw, dh/ih)
	c.ctx.DrawImage(0, 0, img, canvas.DPMM(1))
	c.ctx.Pop()
}

func (c *Canvas) warn(msg string, err error) {
	if c.Logger != nil {
		c.Logger.Warn(msg, "font", c.Font.String(), "err", err)
	}
}
