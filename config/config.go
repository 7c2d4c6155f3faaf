// Package config 读取工具配置（TOML）与海报请求文件（JSON、YAML、TOML 或 DSL）。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ByLCY/poster/fonts"
	"github.com/ByLCY/poster/layout"
)

// 默认值：375 宽视口、2 倍像素比。
const (
	DefaultViewportWidth = 375
	DefaultDPR           = 2
	DefaultListen        = ":8080"
)

// Config 是 CLI 与 HTTP 服务共用的配置。
type Config struct {
	Viewport    Viewport    `toml:"viewport"`
	Web         Web         `toml:"web"`
	MiniProgram MiniProgram `toml:"miniprogram"`
	Assets      Assets      `toml:"assets"`
	Server      Server      `toml:"server"`
	Fonts       []Font      `toml:"fonts"`
}

// Viewport 模拟宿主上报的窗口信息。
type Viewport struct {
	Width float64 `toml:"width"`
	DPR   float64 `toml:"dpr"`
	Scale float64 `toml:"scale"`
}

type Web struct {
	Origin string `toml:"origin"`
}

type MiniProgram struct {
	TempDir string `toml:"temp_dir"`
}

// Assets 控制图片获取。
type Assets struct {
	BaseDir string   `toml:"base_dir"`
	Timeout Duration `toml:"timeout"`
	QRSize  int      `toml:"qr_size"`
}

type Server struct {
	Listen string `toml:"listen"`
}

// Font 注册一个字体文件到某个字族。
type Font struct {
	Family string `toml:"family"`
	Path   string `toml:"path"`
	Bold   bool   `toml:"bold"`
	Italic bool   `toml:"italic"`
}

// Duration 以 "10s" 形式书写。
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("无效的时长 %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Viewport: Viewport{Width: DefaultViewportWidth, DPR: DefaultDPR, Scale: 1},
		Server:   Server{Listen: DefaultListen},
	}
}

// Load 读取 TOML 配置；path 为空时返回默认配置。相对路径以配置文件所在目录为基准。
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置 %s 失败: %w", path, err)
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, cfg.Validate()
}

func (c *Config) resolvePaths(dir string) {
	if c.Assets.BaseDir != "" && !filepath.IsAbs(c.Assets.BaseDir) {
		c.Assets.BaseDir = filepath.Join(dir, c.Assets.BaseDir)
	}
	for i := range c.Fonts {
		if c.Fonts[i].Path != "" && !filepath.IsAbs(c.Fonts[i].Path) {
			c.Fonts[i].Path = filepath.Join(dir, c.Fonts[i].Path)
		}
	}
}

// Validate 检查取值范围。
func (c *Config) Validate() error {
	if c.Viewport.Width <= 0 {
		return fmt.Errorf("viewport.width 必须大于 0")
	}
	if c.Viewport.DPR < 0 || c.Viewport.Scale < 0 {
		return fmt.Errorf("viewport.dpr 与 viewport.scale 不能为负数")
	}
	if c.Assets.Timeout.Duration < 0 {
		return fmt.Errorf("assets.timeout 不能为负数")
	}
	for i, f := range c.Fonts {
		if f.Family == "" || f.Path == "" {
			return fmt.Errorf("fonts[%d] 需要 family 与 path", i)
		}
	}
	return nil
}

// Metrics 返回配置中的视口信息。
func (c *Config) Metrics() layout.Metrics {
	return layout.Metrics{WindowWidth: c.Viewport.Width, DevicePixelRatio: c.Viewport.DPR, Scale: c.Viewport.Scale}
}

// FontRegistry 返回注册了配置字体的字体表；没有额外字体时返回 fonts.Default。
func (c *Config) FontRegistry() (*fonts.Registry, error) {
	if len(c.Fonts) == 0 {
		return fonts.Default, nil
	}
	reg := fonts.NewRegistry()
	for _, f := range c.Fonts {
		if err := reg.RegisterFile(f.Family, f.Bold, f.Italic, f.Path); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
