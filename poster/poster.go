// Package poster 把绘制参数渲染成海报：获取画布、铺背景、并行预加载图片、按顺序绘制后导出。
package poster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/poster/layout"
	"github.com/ByLCY/poster/renderer"
)

// ErrNilRequest is returned by Create for a nil request.
var ErrNilRequest = errors.New("绘制参数为空")

// Create 在 p 提供的画布上绘制 req 并导出。
//
// 所有图片项先并行加载，全部成功后才开始绘制；任一图片失败则返回该错误且不会导出。
// 绘制严格按 DrawArray 的顺序进行，后绘制的覆盖先绘制的。未知类型的绘制项只记录警告。
// 加载成功的图片会回填到对应 ImageItem 的 Img 字段。
func Create(ctx context.Context, p renderer.Platform, req *layout.Request) (*layout.Output, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	log := Logger().With("platform", p.Name())

	cfg := layout.NewConfig(p.DeviceMetrics())
	opts := req.Resolve(cfg, p.DefaultImageType())
	log.Debug("绘制参数", "width", opts.Width, "height", opts.Height, "unit", layout.UnitToString(opts.Unit), "dpr", opts.DPR, "items", len(req.DrawArray))

	c, err := p.AcquireCanvas(ctx, renderer.Target{CanvasID: req.CanvasID, Scope: req.That}, opts.Width, opts.Height)
	if err != nil {
		return nil, fmt.Errorf("获取画布失败: %w", err)
	}
	dc := c.Context()
	dc.SetFillStyle(opts.BgColor)
	dc.FillRect(0, 0, opts.Width, opts.Height)

	if err := preload(ctx, p, c, req.DrawArray.Images()); err != nil {
		log.Error("加载图片失败", "err", err)
		return nil, err
	}

	for i, item := range req.DrawArray {
		switch it := item.(type) {
		case *layout.TextItem:
			renderer.DrawText(dc, it, opts.ToPx)
		case *layout.ImageItem:
			if err := renderer.DrawImage(dc, it, opts.ToPx); err != nil {
				log.Warn("跳过图片", "index", i, "err", err)
			}
		case nil:
			log.Warn("跳过空绘制项", "index", i)
		default:
			log.Warn("未知的绘制类型", "index", i, "type", it.Type())
		}
	}

	out, err := p.Export(ctx, c, renderer.ExportOptions{
		ImageType: opts.ImageType,
		Quality:   opts.Quality,
		Width:     opts.Width,
		Height:    opts.Height,
	})
	if err != nil {
		log.Error("导出海报失败", "err", err)
		return nil, fmt.Errorf("导出海报失败: %w", err)
	}
	return out, nil
}

// Loader 加载单个图片来源。
type Loader func(ctx context.Context, src string) (image.Image, error)

// LoadAll 并行加载 sources 中的每个来源，返回键相同的结果。
// 第一个失败的加载决定返回的错误，其余加载通过 context 取消，结果被丢弃。
func LoadAll[K comparable](ctx context.Context, sources map[K]string, load Loader) (map[K]image.Image, error) {
	type result struct {
		key K
		img image.Image
	}
	results := make(chan result, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for key, src := range sources {
		g.Go(func() error {
			start := time.Now()
			img, err := load(gctx, src)
			if err != nil {
				return fmt.Errorf("加载图片 %s 失败: %w", src, err)
			}
			Logger().Debug("图片已加载", "src", src, "elapsed", time.Since(start))
			results <- result{key, img}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)
	out := make(map[K]image.Image, len(sources))
	for r := range results {
		out[r.key] = r.img
	}
	return out, nil
}

func preload(ctx context.Context, p renderer.Platform, c renderer.Canvas, images []*layout.ImageItem) error {
	if len(images) == 0 {
		return nil
	}
	sources := make(map[int]string, len(images))
	for i, item := range images {
		sources[i] = item.Src
	}
	loaded, err := LoadAll(ctx, sources, func(ctx context.Context, src string) (image.Image, error) {
		return p.LoadImage(ctx, src, c)
	})
	if err != nil {
		return err
	}
	for i, item := range images {
		item.Img = loaded[i]
	}
	return nil
}
