package miniprogram

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"

	"github.com/ByLCY/poster/assets"
	"github.com/ByLCY/poster/fonts"
	"github.com/ByLCY/poster/renderer"
	"github.com/ByLCY/poster/renderer/raster"
)

// ErrCanvasNotFound 表示选择器在作用域内没有匹配的 canvas 节点。
var ErrCanvasNotFound = errors.New("找不到 canvas 节点")

// Node 是 type="2d" 的 canvas 节点。设置尺寸会清空画布，与小程序一致。
type Node struct {
	ID    string
	Scope string

	mu     sync.Mutex
	canvas *raster.Canvas
	host   *Host
}

var _ renderer.Canvas = (*Node)(nil)

// Resize 设置画布像素尺寸并清空内容。
func (n *Node) Resize(width, height float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.canvas != nil {
		_ = n.canvas.Close()
	}
	n.canvas = raster.New(width, height, raster.Options{Fonts: n.host.fonts, Logger: n.host.logger})
}

func (n *Node) current() *raster.Canvas {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.canvas == nil {
		n.canvas = raster.New(0, 0, raster.Options{Fonts: n.host.fonts, Logger: n.host.logger})
	}
	return n.canvas
}

// Context 返回 2d 绘图上下文。
func (n *Node) Context() renderer.Context { return n.current() }

func (n *Node) Size() (float64, float64) { return n.current().Size() }

func (n *Node) Image() image.Image { return n.current().Image() }

// CreateImage 通过节点加载图片，对应 canvas.createImage()。
func (n *Node) CreateImage(ctx context.Context, src string) (image.Image, error) {
	return n.host.fetcher.Load(ctx, src)
}

// HostOptions configures a Host.
type HostOptions struct {
	Fetcher *assets.Fetcher
	Fonts   *fonts.Registry
	Logger  *slog.Logger
}

// Host 保存页面与组件中的 canvas 节点，按作用域隔离；空作用域表示页面本身。
type Host struct {
	fetcher *assets.Fetcher
	fonts   *fonts.Registry
	logger  *slog.Logger

	mu     sync.RWMutex
	scopes map[string]map[string]*Node
}

// NewHost creates an empty node tree.
func NewHost(opts HostOptions) *Host {
	h := &Host{
		fetcher: opts.Fetcher,
		fonts:   opts.Fonts,
		logger:  opts.Logger,
		scopes:  map[string]map[string]*Node{},
	}
	if h.fetcher == nil {
		h.fetcher = assets.NewFetcher(assets.Options{Logger: opts.Logger})
	}
	return h
}

// Register 在作用域中声明一个 canvas 节点；同名节点会被替换。
func (h *Host) Register(scope, id string) *Node {
	node := &Node{ID: id, Scope: scope, host: h}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.scopes[scope] == nil {
		h.scopes[scope] = map[string]*Node{}
	}
	h.scopes[scope][id] = node
	return node
}

// Unregister removes a node.
func (h *Host) Unregister(scope, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.scopes[scope], id)
}

// Query 按 "#id" 选择器在作用域中查找节点。
func (h *Host) Query(scope, selector string) (*Node, error) {
	id, ok := strings.CutPrefix(selector, "#")
	if !ok || id == "" {
		return nil, fmt.Errorf("选择器 %q 无效: %w", selector, ErrCanvasNotFound)
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	node, ok := h.scopes[scope][id]
	if !ok {
		return nil, fmt.Errorf("%s（作用域 %q）: %w", selector, scope, ErrCanvasNotFound)
	}
	return node, nil
}
