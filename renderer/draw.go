package renderer

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/ByLCY/poster/layout"
)

// ErrImageNotLoaded 表示图片项尚未回填图片数据。
var ErrImageNotLoaded = errors.New("图片尚未加载")

// DrawText 绘制文本项。行高等于字号；y 为基线，第一行位于 top + fontSize。
func DrawText(ctx Context, item *layout.TextItem, toPx layout.Converter) {
	if item.IsStroke {
		ctx.SetStrokeStyle(item.Color)
	} else {
		ctx.SetFillStyle(item.Color)
	}
	ctx.SetFont(FontString(string(item.FontWeight), toPx(item.FontSize), item.FontFamily))

	var x float64
	if item.IsCenter {
		ctx.SetTextAlign(AlignCenter)
		x = toPx(100 / 2)
	} else {
		ctx.SetTextAlign(AlignStart)
		x = toPx(item.Left)
	}

	draw := ctx.FillText
	if item.IsStroke {
		draw = ctx.StrokeText
	}

	if !item.Wraps() {
		draw(item.Content, x, toPx(item.Top+item.FontSize))
		return
	}
	lines := layout.Segment(ctx.MeasureText, item.Content, toPx(item.MaxWidth))
	for i, line := range lines {
		draw(line, x, toPx(item.Top+item.FontSize*float64(i+1)))
	}
}

// DrawImage 绘制图片项。IsClip 时按目标宽高比在垂直方向居中裁剪源图（只裁高度）。
func DrawImage(ctx Context, item *layout.ImageItem, toPx layout.Converter) error {
	if item.Img == nil {
		return fmt.Errorf("%s: %w", item.Src, ErrImageNotLoaded)
	}
	dx, dy := toPx(item.Left), toPx(item.Top)
	dw, dh := toPx(item.Width), toPx(item.Height)
	if !item.IsClip {
		ctx.DrawImage(item.Img, dx, dy, dw, dh)
		return nil
	}
	sx, sy, sw, sh := ClipRect(item.Img.Bounds().Dx(), item.Img.Bounds().Dy(), item.Width, item.Height)
	ctx.DrawImageRect(item.Img, sx, sy, sw, sh, dx, dy, dw, dh)
	return nil
}

// ClipRect 计算 aspect-fill 裁剪的源矩形：宽度取整张图，高度按目标比例换算后垂直居中。
func ClipRect(imgW, imgH int, width, height float64) (sx, sy, sw, sh float64) {
	ratio := width / height
	sw = float64(imgW)
	sh = sw / ratio
	sy = (float64(imgH) - sh) / 2
	return 0, sy, sw, sh
}

// ClampSource 将源矩形裁到图片范围内，并按比例调整目标矩形，与 canvas drawImage 的行为一致。
// 交集为空时 ok 为 false。
func ClampSource(bounds image.Rectangle, sx, sy, sw, sh, dx, dy, dw, dh float64) (src image.Rectangle, ddx, ddy, ddw, ddh float64, ok bool) {
	if sw <= 0 || sh <= 0 || dw <= 0 || dh <= 0 {
		return image.Rectangle{}, 0, 0, 0, 0, false
	}
	kx, ky := dw/sw, dh/sh
	x0 := math.Max(sx, float64(bounds.Min.X))
	y0 := math.Max(sy, float64(bounds.Min.Y))
	x1 := math.Min(sx+sw, float64(bounds.Max.X))
	y1 := math.Min(sy+sh, float64(bounds.Max.Y))
	if x1 <= x0 || y1 <= y0 {
		return image.Rectangle{}, 0, 0, 0, 0, false
	}
	src = image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
	ddx = dx + (x0-sx)*kx
	ddy = dy + (y0-sy)*ky
	return src, ddx, ddy, (x1 - x0) * kx, (y1 - y0) * ky, true
}
