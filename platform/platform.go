// Package platform 按名称创建宿主适配器，供命令行与 HTTP 服务共用。
package platform

import (
	"fmt"
	"log/slog"

	"github.com/ByLCY/poster/assets"
	"github.com/ByLCY/poster/config"
	"github.com/ByLCY/poster/fonts"
	"github.com/ByLCY/poster/layout"
	"github.com/ByLCY/poster/platform/miniprogram"
	"github.com/ByLCY/poster/platform/web"
	"github.com/ByLCY/poster/renderer"
)

const (
	Web         = "web"
	MiniProgram = "miniprogram"
)

// Env 保存由配置构建、可在多次绘制间共享的资源。
type Env struct {
	Config  *config.Config
	Fonts   *fonts.Registry
	Fetcher *assets.Fetcher
	Logger  *slog.Logger
}

// NewEnv 根据配置加载字体并创建图片获取器。
func NewEnv(cfg *config.Config, logger *slog.Logger) (*Env, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	reg, err := cfg.FontRegistry()
	if err != nil {
		return nil, fmt.Errorf("加载字体失败: %w", err)
	}
	return &Env{
		Config: cfg,
		Fonts:  reg,
		Fetcher: assets.NewFetcher(assets.Options{
			BaseDir: cfg.Assets.BaseDir,
			Timeout: cfg.Assets.Timeout.Duration,
			QRSize:  cfg.Assets.QRSize,
			Logger:  logger,
		}),
		Logger: logger,
	}, nil
}

// New 为一次绘制创建宿主。小程序宿主会为请求中的 canvasId 注册节点；缺少 canvasId 时由绘制流程报错。
func (e *Env) New(name string, req *layout.Request) (renderer.Platform, error) {
	logger := e.Logger.With("platform", name)
	switch name {
	case "", Web:
		return web.New(web.Options{
			Metrics: e.Config.Metrics(),
			Origin:  e.Config.Web.Origin,
			Fetcher: e.Fetcher,
			Fonts:   e.Fonts,
			Logger:  logger,
		})
	case MiniProgram:
		host := miniprogram.NewHost(miniprogram.HostOptions{Fetcher: e.Fetcher, Fonts: e.Fonts, Logger: logger})
		if req != nil && req.CanvasID != "" {
			host.Register(req.That, req.CanvasID)
		}
		return miniprogram.New(miniprogram.Options{
			Metrics: e.Config.Metrics(),
			Host:    host,
			TempDir: e.Config.MiniProgram.TempDir,
			Logger:  logger,
		}), nil
	default:
		return nil, fmt.Errorf("未知的平台 %q", name)
	}
}
