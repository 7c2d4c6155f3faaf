// Package assets 负责把图片来源解析为字节并解码：http(s)、data: URL、qrcode: 与本地文件。
package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	qrcode "github.com/skip2/go-qrcode"
	_ "golang.org/x/image/webp"
)

var (
	// ErrNotImage 表示取回的内容不是可识别的图片。
	ErrNotImage = errors.New("内容不是图片")
	// ErrUnsupportedSource 表示无法识别的图片来源。
	ErrUnsupportedSource = errors.New("不支持的图片来源")
	// ErrOutsideBaseDir 表示本地文件不在资源目录内，或没有配置资源目录。
	ErrOutsideBaseDir = errors.New("本地文件不在资源目录内")
)

// DefaultQRSize 是 qrcode: 来源生成的二维码边长（像素）。
const DefaultQRSize = 256

// Options configures a Fetcher.
type Options struct {
	Client  *http.Client  // 为空时使用 http.DefaultClient
	BaseDir string        // 本地文件的根目录，为空时不读取本地文件
	Timeout time.Duration // 单次获取的超时，0 表示不限制
	QRSize  int
	Logger  *slog.Logger
}

// Fetcher 获取并解码图片，可被多个 goroutine 同时使用。
type Fetcher struct {
	client  *http.Client
	baseDir string
	timeout time.Duration
	qrSize  int
	logger  *slog.Logger
}

// NewFetcher creates a Fetcher from opts.
func NewFetcher(opts Options) *Fetcher {
	f := &Fetcher{
		client:  opts.Client,
		baseDir: opts.BaseDir,
		timeout: opts.Timeout,
		qrSize:  opts.QRSize,
		logger:  opts.Logger,
	}
	if f.client == nil {
		f.client = http.DefaultClient
	}
	if f.qrSize <= 0 {
		f.qrSize = DefaultQRSize
	}
	return f
}

// Request 调整单次 http(s) 获取。
type Request struct {
	Client *http.Client
	Header http.Header
}

// RequestOption mutates a Request.
type RequestOption func(*Request)

// WithClient uses c instead of the fetcher's client.
func WithClient(c *http.Client) RequestOption {
	return func(r *Request) { r.Client = c }
}

// WithHeader adds a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Header == nil {
			r.Header = http.Header{}
		}
		r.Header.Add(key, value)
	}
}

// Load 获取 src 并解码为图片。
func (f *Fetcher) Load(ctx context.Context, src string, opts ...RequestOption) (image.Image, error) {
	data, err := f.Fetch(ctx, src, opts...)
	if err != nil {
		return nil, err
	}
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", describe(src), err)
	}
	return img, nil
}

// Fetch 读取 src 对应的原始字节。
func (f *Fetcher) Fetch(ctx context.Context, src string, opts ...RequestOption) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	src = strings.TrimSpace(src)
	switch {
	case src == "":
		return nil, fmt.Errorf("图片地址为空: %w", ErrUnsupportedSource)
	case hasScheme(src, "http"), hasScheme(src, "https"):
		req := Request{Client: f.client}
		for _, opt := range opts {
			opt(&req)
		}
		return f.fetchHTTP(ctx, src, req)
	case hasScheme(src, "data"):
		_, data, err := DecodeDataURL(src)
		return data, err
	case strings.HasPrefix(src, "qrcode:"):
		png, err := qrcode.Encode(strings.TrimPrefix(src, "qrcode:"), qrcode.Medium, f.qrSize)
		if err != nil {
			return nil, fmt.Errorf("生成二维码失败: %w", err)
		}
		return png, nil
	case hasScheme(src, "file"):
		u, err := url.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("解析图片地址 %s 失败: %w", src, err)
		}
		return f.readFile(u.Path)
	case strings.Contains(src, "://"):
		return nil, fmt.Errorf("%s: %w", src, ErrUnsupportedSource)
	default:
		return f.readFile(src)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, src string, r Request) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求 %s 失败: %w", src, err)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("下载图片 %s 失败: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("下载图片 %s 失败: HTTP %d", src, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", src, err)
	}
	if f.logger != nil {
		f.logger.Debug("下载图片", "src", src, "bytes", len(body))
	}
	return body, nil
}

// readFile 只读取资源目录内的文件：未配置资源目录时拒绝一切本地路径，
// 绝对路径须落在资源目录下，经 os.Root 读取以阻止 ".." 与符号链接越界。
func (f *Fetcher) readFile(path string) ([]byte, error) {
	if f.baseDir == "" {
		return nil, fmt.Errorf("未配置资源目录，不能读取 %s: %w", path, ErrOutsideBaseDir)
	}
	rel, err := f.localPath(path)
	if err != nil {
		return nil, err
	}
	root, err := os.OpenRoot(f.baseDir)
	if err != nil {
		return nil, fmt.Errorf("打开资源目录失败: %w", err)
	}
	defer root.Close()
	data, err := root.ReadFile(rel)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", path, err)
	}
	if f.logger != nil {
		f.logger.Debug("读取本地图片", "path", rel, "bytes", len(data))
	}
	return data, nil
}

// localPath 把 path 转为相对资源目录的路径。
func (f *Fetcher) localPath(path string) (string, error) {
	rel := filepath.FromSlash(path)
	if filepath.IsAbs(rel) {
		base, err := filepath.Abs(f.baseDir)
		if err != nil {
			return "", fmt.Errorf("解析资源目录失败: %w", err)
		}
		if rel, err = filepath.Rel(base, rel); err != nil {
			return "", fmt.Errorf("%s: %w", path, ErrOutsideBaseDir)
		}
	}
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%s: %w", path, ErrOutsideBaseDir)
	}
	return rel, nil
}

// Decode 识别图片格式后解码，按 EXIF 方向自动旋转。
func Decode(data []byte) (image.Image, error) {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown || kind.MIME.Type != "image" {
		return nil, ErrNotImage
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind.MIME.Value, err)
	}
	return img, nil
}

// DecodeDataURL 解析 data:[<mediatype>][;base64],<data>，返回媒体类型与内容。
// 未写媒体类型时为 text/plain。
func DecodeDataURL(src string) (string, []byte, error) {
	if !hasScheme(src, "data") {
		return "", nil, fmt.Errorf("不是 data URL: %w", ErrUnsupportedSource)
	}
	meta, payload, ok := strings.Cut(src[len("data:"):], ",")
	if !ok {
		return "", nil, fmt.Errorf("data URL 缺少逗号: %w", ErrUnsupportedSource)
	}
	mime, isBase64 := meta, false
	if len(meta) >= len(";base64") && strings.EqualFold(meta[len(meta)-len(";base64"):], ";base64") {
		mime, isBase64 = meta[:len(meta)-len(";base64")], true
	}
	if mime, _, _ = strings.Cut(mime, ";"); mime == "" {
		mime = "text/plain"
	}
	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return "", nil, fmt.Errorf("data URL base64 解码失败: %w", err)
		}
		return mime, data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("data URL 解码失败: %w", err)
	}
	return mime, []byte(data), nil
}

func hasScheme(src, scheme string) bool {
	return len(src) > len(scheme) && src[len(scheme)] == ':' && strings.EqualFold(src[:len(scheme)], scheme)
}

// describe shortens data URLs for error messages.
func describe(src string) string {
	if hasScheme(src, "data") && len(src) > 32 {
		return src[:32] + "..."
	}
	return src
}
