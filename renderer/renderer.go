package renderer

import (
	"context"
	"image"

	"github.com/ByLCY/poster/layout"
)

// TextAlign 对应 canvas 的 textAlign。
type TextAlign int

const (
	AlignStart TextAlign = iota
	AlignCenter
)

// Context 是绘制海报所需的 2D 绘图接口（canvas 2d context 的子集）。
// 非法的颜色或字体字符串会被忽略，保留之前的值。
type Context interface {
	SetFillStyle(color string)
	SetStrokeStyle(color string)
	SetFont(font string)
	SetTextAlign(align TextAlign)

	FillRect(x, y, w, h float64)
	// FillText/StrokeText 的 y 为基线位置。
	FillText(text string, x, y float64)
	StrokeText(text string, x, y float64)
	MeasureText(text string) float64

	// DrawImage 将整张图片缩放绘制到目标矩形。
	DrawImage(img image.Image, dx, dy, dw, dh float64)
	// DrawImageRect 将源矩形 (sx, sy, sw, sh) 缩放绘制到目标矩形。
	DrawImageRect(img image.Image, sx, sy, sw, sh, dx, dy, dw, dh float64)
}

// Canvas 是宿主提供的画布。
type Canvas interface {
	Context() Context
	Size() (width, height float64)
	// Image 返回当前画布内容的位图快照。
	Image() image.Image
}

// Target 描述如何获取画布：小程序通过组件作用域与节点 id 查找。
type Target struct {
	CanvasID string
	Scope    string
}

// ExportOptions 控制导出格式。
type ExportOptions struct {
	ImageType string
	Quality   float64
	Width     float64
	Height    float64
}

// Platform 抽象宿主环境（浏览器或小程序）。编排器只依赖该接口。
type Platform interface {
	Name() string
	DeviceMetrics() layout.Metrics
	DefaultImageType() string
	AcquireCanvas(ctx context.Context, target Target, width, height float64) (Canvas, error)
	LoadImage(ctx context.Context, src string, c Canvas) (image.Image, error)
	Export(ctx context.Context, c Canvas, opts ExportOptions) (*layout.Output, error)
}
