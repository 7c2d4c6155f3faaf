// Package miniprogram 是小程序式宿主：在作用域中按 id 查找 canvas 节点，由节点创建图片，导出为临时文件。
package miniprogram

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"

	"github.com/disintegration/imaging"

	"github.com/ByLCY/poster/layout"
	"github.com/ByLCY/poster/renderer"
)

// ErrExportFailed 表示没有生成临时文件。
var ErrExportFailed = errors.New("生成失败")

const (
	FileTypePNG = "png"
	FileTypeJPG = "jpg"
)

// Options configures the mini-program platform.
type Options struct {
	Metrics layout.Metrics
	Host    *Host
	TempDir string // 为空时使用 os.TempDir()
	Logger  *slog.Logger
}

// Platform implements renderer.Platform on top of a Host.
type Platform struct {
	metrics layout.Metrics
	host    *Host
	tempDir string
	logger  *slog.Logger
}

var _ renderer.Platform = (*Platform)(nil)

// New creates a platform. A nil Host gets an empty one.
func New(opts Options) *Platform {
	p := &Platform{metrics: opts.Metrics, host: opts.Host, tempDir: opts.TempDir, logger: opts.Logger}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.host == nil {
		p.host = NewHost(HostOptions{Logger: p.logger})
	}
	return p
}

// Host returns the node tree used to resolve canvas ids.
func (p *Platform) Host() *Host { return p.host }

func (p *Platform) Name() string { return "miniprogram" }

func (p *Platform) DeviceMetrics() layout.Metrics { return p.metrics }

func (p *Platform) DefaultImageType() string { return FileTypePNG }

// AcquireCanvas 查找 "#canvasId" 节点并设置尺寸。
func (p *Platform) AcquireCanvas(_ context.Context, target renderer.Target, width, height float64) (renderer.Canvas, error) {
	if target.CanvasID == "" {
		return nil, fmt.Errorf("缺少 canvasId: %w", ErrCanvasNotFound)
	}
	node, err := p.host.Query(target.Scope, "#"+target.CanvasID)
	if err != nil {
		return nil, err
	}
	node.Resize(width, height)
	return node, nil
}

// LoadImage 由画布节点创建并加载图片。
func (p *Platform) LoadImage(ctx context.Context, src string, c renderer.Canvas) (image.Image, error) {
	node, ok := c.(*Node)
	if !ok {
		return nil, fmt.Errorf("画布 %T 不是小程序节点", c)
	}
	img, err := node.CreateImage(ctx, src)
	if err != nil {
		p.logger.Error("图片加载失败", "src", src, "canvas", node.ID, "err", err)
		return nil, err
	}
	return img, nil
}

// Export 对应 canvasToTempFilePath：jpg 输出 JPEG，其余输出 PNG，写入临时目录。
func (p *Platform) Export(ctx context.Context, c renderer.Canvas, opts renderer.ExportOptions) (*layout.Output, error) {
	path, err := p.toTempFile(ctx, c, opts)
	if err != nil {
		p.logger.Error("导出临时文件失败", "err", err)
		return nil, err
	}
	if path == "" {
		return nil, ErrExportFailed
	}
	return &layout.Output{ExportSrc: path, CanvasWidth: opts.Width, CanvasHeight: opts.Height}, nil
}

func (p *Platform) toTempFile(ctx context.Context, c renderer.Canvas, opts renderer.ExportOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	w, h := c.Size()
	if w <= 0 || h <= 0 {
		return "", fmt.Errorf("画布尺寸 %gx%g: %w", w, h, ErrExportFailed)
	}
	format, ext := imaging.PNG, ".png"
	if opts.ImageType == FileTypeJPG {
		format, ext = imaging.JPEG, ".jpg"
	}
	img := c.Image()
	dw, dh := max(int(math.Round(w)), 1), max(int(math.Round(h)), 1)
	if b := img.Bounds(); b.Dx() != dw || b.Dy() != dh {
		// 位图尺寸向上取整，导出时裁回画布尺寸
		img = imaging.Crop(img, image.Rect(0, 0, dw, dh))
	}

	f, err := os.CreateTemp(p.tempDir, "poster-*"+ext)
	if err != nil {
		return "", fmt.Errorf("创建临时文件失败: %w", err)
	}
	if err := imaging.Encode(f, img, format, imaging.JPEGQuality(renderer.JPEGQuality(opts.Quality))); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("编码图片失败: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("写入临时文件失败: %w", err)
	}
	return f.Name(), nil
}
