// Package web 是浏览器式宿主：每次绘制新建矢量画布，按同源策略加载图片，导出为 data URL。
package web

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/ByLCY/poster/assets"
	"github.com/ByLCY/poster/fonts"
	"github.com/ByLCY/poster/layout"
	"github.com/ByLCY/poster/renderer"
	canvasrenderer "github.com/ByLCY/poster/renderer/canvas"
)

const (
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
)

// Options configures the web platform.
type Options struct {
	Metrics layout.Metrics
	// Origin 是页面源，例如 https://poster.example；相对地址以它为基准。
	Origin  string
	Fetcher *assets.Fetcher
	// Jar 是页面的 cookie，只随同源请求发送。为空时新建。
	Jar    http.CookieJar
	Fonts  *fonts.Registry
	Logger *slog.Logger
}

// Platform implements renderer.Platform for a browser-like host.
type Platform struct {
	metrics      layout.Metrics
	origin       *url.URL
	fetcher      *assets.Fetcher
	credentialed *http.Client
	anonymous    *http.Client
	fonts        *fonts.Registry
	logger       *slog.Logger
}

var _ renderer.Platform = (*Platform)(nil)

// New creates a web platform.
func New(opts Options) (*Platform, error) {
	p := &Platform{
		metrics: opts.Metrics,
		fetcher: opts.Fetcher,
		fonts:   opts.Fonts,
		logger:  opts.Logger,
	}
	if opts.Origin != "" {
		u, err := url.Parse(opts.Origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("页面源 %q 无效", opts.Origin)
		}
		p.origin = &url.URL{Scheme: u.Scheme, Host: u.Host}
	}
	jar := opts.Jar
	if jar == nil {
		jar, _ = cookiejar.New(nil)
	}
	p.credentialed = &http.Client{Jar: jar}
	p.anonymous = &http.Client{}
	if p.fetcher == nil {
		p.fetcher = assets.NewFetcher(assets.Options{Logger: opts.Logger})
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	return p, nil
}

func (p *Platform) Name() string { return "web" }

func (p *Platform) DeviceMetrics() layout.Metrics { return p.metrics }

func (p *Platform) DefaultImageType() string { return MimePNG }

// AcquireCanvas 每次返回新的画布，忽略 target。
func (p *Platform) AcquireCanvas(_ context.Context, _ renderer.Target, width, height float64) (renderer.Canvas, error) {
	return canvasrenderer.New(width, height, canvasrenderer.Options{Fonts: p.fonts, Logger: p.logger}), nil
}

// LoadImage 加载图片。跨源地址以匿名模式请求（不带 cookie，带 Origin 头）。
func (p *Platform) LoadImage(ctx context.Context, src string, _ renderer.Canvas) (image.Image, error) {
	resolved := p.resolve(src)
	var opts []assets.RequestOption
	if p.origin != nil && isHTTP(resolved) {
		if ShouldCrossOrigin(resolved, p.origin.String()) {
			opts = append(opts, assets.WithClient(p.anonymous), assets.WithHeader("Origin", p.origin.String()))
		} else {
			opts = append(opts, assets.WithClient(p.credentialed))
		}
	} else if isHTTP(resolved) {
		opts = append(opts, assets.WithClient(p.anonymous))
	}
	img, err := p.fetcher.Load(ctx, resolved, opts...)
	if err != nil {
		p.logger.Error("图片加载失败", "src", src, "err", err)
		return nil, err
	}
	return img, nil
}

// Export 编码为 data URL：image/jpeg 输出 JPEG，其余类型一律输出 PNG。面积为 0 时返回 "data:,"。
func (p *Platform) Export(_ context.Context, c renderer.Canvas, opts renderer.ExportOptions) (*layout.Output, error) {
	w, h := c.Size()
	if w <= 0 || h <= 0 {
		return &layout.Output{DataURL: "data:,"}, nil
	}
	data, mime, err := Encode(c.Image(), opts.ImageType, opts.Quality)
	if err != nil {
		return nil, err
	}
	return &layout.Output{DataURL: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)}, nil
}

// Encode 按 MIME 类型编码图片并返回实际使用的类型。
func Encode(img image.Image, imageType string, quality float64) ([]byte, string, error) {
	var buf bytes.Buffer
	if strings.EqualFold(imageType, MimeJPEG) {
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(renderer.JPEGQuality(quality))); err != nil {
			return nil, "", fmt.Errorf("编码 JPEG 失败: %w", err)
		}
		return buf.Bytes(), MimeJPEG, nil
	}
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, "", fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), MimePNG, nil
}

// ShouldCrossOrigin 判断 src 是否需要以匿名跨源模式加载：仅当 src 是绝对 http(s) 地址且与 origin 不同源。
func ShouldCrossOrigin(src, origin string) bool {
	if !isHTTP(src) {
		return false
	}
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	o, err := url.Parse(origin)
	if err != nil || o.Host == "" {
		return true
	}
	return !strings.EqualFold(u.Scheme, o.Scheme) || hostPort(u) != hostPort(o)
}

func (p *Platform) resolve(src string) string {
	if p.origin == nil || isHTTP(src) || strings.Contains(src, ":") {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return p.origin.ResolveReference(ref).String()
}

func isHTTP(src string) bool {
	lower := strings.ToLower(src)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func hostPort(u *url.URL) string {
	port := u.Port()
	if port == "" {
		switch strings.ToLower(u.Scheme) {
		case "http":
			port = "80"
		case "https":
			port = "443"
		}
	}
	return strings.ToLower(u.Hostname()) + ":" + port
}
