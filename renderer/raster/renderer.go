// Package raster 用 github.com/gogpu/gg 实现位图 2D 上下文，对应小程序的 canvas 节点。
package raster

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/ByLCY/poster/fonts"
	"github.com/ByLCY/poster/renderer"
)

// Canvas 是 width x height 像素的位图画布。
type Canvas struct {
	renderer.State

	width, height float64
	dc            *gg.Context
	fonts         *fonts.Registry
	outlines      *text.OutlineExtractor

	mu      sync.Mutex
	sources map[string]*text.FontSource
}

var (
	_ renderer.Context = (*Canvas)(nil)
	_ renderer.Canvas  = (*Canvas)(nil)
)

// Options configures the raster canvas.
type Options struct {
	Fonts  *fonts.Registry
	Logger *slog.Logger
}

// New creates a raster canvas. The backing pixmap is at least 1x1.
func New(width, height float64, opts Options) *Canvas {
	if opts.Fonts == nil {
		opts.Fonts = fonts.Default
	}
	w := max(int(math.Ceil(width)), 1)
	h := max(int(math.Ceil(height)), 1)
	return &Canvas{
		State:    renderer.NewState(opts.Logger),
		width:    width,
		height:   height,
		dc:       gg.NewContext(w, h),
		fonts:    opts.Fonts,
		outlines: text.NewOutlineExtractor(),
		sources:  map[string]*text.FontSource{},
	}
}

func (c *Canvas) Context() renderer.Context { return c }

func (c *Canvas) Size() (float64, float64) { return c.width, c.height }

func (c *Canvas) Image() image.Image { return c.dc.Image() }

// Close releases the pixmap.
func (c *Canvas) Close() error { return c.dc.Close() }

func (c *Canvas) FillRect(x, y, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	c.dc.SetColor(c.Fill)
	c.dc.DrawRectangle(x, y, w, h)
	if err := c.dc.Fill(); err != nil {
		c.warn("填充矩形失败", err)
	}
}

func (c *Canvas) FillText(s string, x, y float64) {
	if !c.textPath(s, x, y) {
		return
	}
	c.dc.SetColor(c.Fill)
	if err := c.dc.Fill(); err != nil {
		c.warn("填充文字失败", err)
	}
}

// StrokeText 描绘文字轮廓，线宽 1px。
func (c *Canvas) StrokeText(s string, x, y float64) {
	if !c.textPath(s, x, y) {
		return
	}
	c.dc.SetColor(c.Stroke)
	c.dc.SetLineWidth(1)
	if err := c.dc.Stroke(); err != nil {
		c.warn("描边文字失败", err)
	}
}

// MeasureText 累加未经 hinting 的字形步进，与绘制时的字形位置一致。
func (c *Canvas) MeasureText(s string) float64 {
	face := c.fonts.Lookup(c.Font.Families, c.Font.Weight, c.Font.Italic)
	width, err := c.fonts.Measure(face, s, c.Font.Size)
	if err != nil {
		c.warn("测量文字失败", err)
		return 0
	}
	return width
}

// textPath 把文字轮廓写入当前路径，字形位置取自 fonts.Shape。
func (c *Canvas) textPath(s string, x, y float64) bool {
	face := c.fonts.Lookup(c.Font.Families, c.Font.Weight, c.Font.Italic)
	f, err := c.fonts.Parsed(face)
	if err != nil {
		c.warn("加载字体失败", err)
		return false
	}
	glyphs, advance, err := fonts.Shape(f, s, c.Font.Size)
	if err != nil {
		c.warn("排列文字失败", err)
		return false
	}
	source, err := c.source(face)
	if err != nil {
		c.warn("加载字体失败", err)
		return false
	}
	if c.Align == renderer.AlignCenter {
		x -= advance / 2
	}
	parsed := source.Parsed()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.dc.ClearPath()
	for _, g := range glyphs {
		outline, err := c.outlines.ExtractOutline(parsed, text.GlyphID(g.Index), c.Font.Size)
		if err != nil || outline == nil {
			continue
		}
		ox := x + g.X
		for i, seg := range outline.Segments {
			p := seg.Points
			switch seg.Op {
			case text.OutlineOpMoveTo:
				if i > 0 {
					c.dc.ClosePath()
				}
				c.dc.NewSubPath()
				c.dc.MoveTo(ox+float64(p[0].X), y+float64(p[0].Y))
			case text.OutlineOpLineTo:
				c.dc.LineTo(ox+float64(p[0].X), y+float64(p[0].Y))
			case text.OutlineOpQuadTo:
				c.dc.QuadraticTo(ox+float64(p[0].X), y+float64(p[0].Y), ox+float64(p[1].X), y+float64(p[1].Y))
			case text.OutlineOpCubicTo:
				c.dc.CubicTo(ox+float64(p[0].X), y+float64(p[0].Y), ox+float64(p[1].X), y+float64(p[1].Y), ox+float64(p[2].X), y+float64(p[2].Y))
			}
		}
		c.dc.ClosePath()
	}
	return true
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
	// ImageBuf 以 (0,0) 为原点
	src = src.Sub(img.Bounds().Min)
	c.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:             dx,
		Y:             dy,
		DstWidth:      dw,
		DstHeight:     dh,
		SrcRect:       &src,
		Interpolation: gg.InterpBilinear,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})
}

func (c *Canvas) source(f fonts.Face) (*text.FontSource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if source, ok := c.sources[f.Name]; ok {
		return source, nil
	}
	source, err := text.NewFontSource(f.Data)
	if err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", f.Name, err)
	}
	c.sources[f.Name] = source
	return source, nil
}

func (c *Canvas) warn(msg string, err error) {
	if c.Logger != nil {
		c.Logger.Warn(msg, "font", c.Font.String(), "err", err)
	}
}
