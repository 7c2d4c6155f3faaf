package layout

// Request 对应一次 createPoster 调用的全部参数，字段名与 JSON 配置保持一致。
type Request struct {
	CanvasWidth   float64  `json:"canvasWidth"`
	CanvasHeight  float64  `json:"canvasHeight"`
	CanvasBgColor string   `json:"canvasBgColor,omitempty"`
	DPR           float64  `json:"dpr,omitempty"`
	ImageType     string   `json:"imageType,omitempty"`
	Quality       *float64 `json:"quality,omitempty"`
	IsVw          *bool    `json:"isVw,omitempty"`
	DrawArray     Items    `json:"drawArray"`

	// 小程序：canvas 节点 id 与组件作用域（为空表示页面）。
	CanvasID string `json:"canvasId,omitempty"`
	That     string `json:"that,omitempty"`
}

const (
	DefaultBgColor = "#fff"
	DefaultQuality = 0.92
)

// Options 是补全默认值后的绘制参数，Width/Height 已换算为像素。
type Options struct {
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	BgColor   string    `json:"bgColor"`
	DPR       float64   `json:"dpr"`
	ImageType string    `json:"imageType"`
	Quality   float64   `json:"quality"`
	Unit      Unit      `json:"unit"`
	ToPx      Converter `json:"-"`
}

// UseVW reports whether lengths are viewport units (the default).
func (r *Request) UseVW() bool {
	return r.IsVw == nil || *r.IsVw
}

// Resolve 补全默认值：背景 #fff、质量 0.92、默认使用 vw、像素比与图片类型取自宿主。
func (r *Request) Resolve(cfg Config, defaultImageType string) Options {
	opts := Options{
		BgColor:   r.CanvasBgColor,
		DPR:       r.DPR,
		ImageType: r.ImageType,
		Quality:   DefaultQuality,
		Unit:      UnitVW,
	}
	if opts.BgColor == "" {
		opts.BgColor = DefaultBgColor
	}
	if opts.DPR == 0 {
		opts.DPR = cfg.DPR
	}
	if opts.ImageType == "" {
		opts.ImageType = defaultImageType
	}
	if r.Quality != nil {
		opts.Quality = *r.Quality
	}
	if !r.UseVW() {
		opts.Unit = UnitPX
	}
	opts.ToPx = cfg.Converter(opts.Unit, opts.DPR)
	opts.Width = opts.ToPx(r.CanvasWidth)
	opts.Height = opts.ToPx(r.CanvasHeight)
	return opts
}

// Output 是导出结果：浏览器端为 DataURL，小程序端为临时文件路径与像素尺寸。
type Output struct {
	DataURL      string  `json:"dataURL,omitempty"`
	ExportSrc    string  `json:"exportSrc,omitempty"`
	CanvasWidth  float64 `json:"canvasWidth,omitempty"`
	CanvasHeight float64 `json:"canvasHeight,omitempty"`
}

// String returns the data URL or the exported file path.
func (o *Output) String() string {
	if o == nil {
		return ""
	}
	if o.DataURL != "" {
		return o.DataURL
	}
	return o.ExportSrc
}

// Bool and Float return pointers for the optional Request fields.
func Bool(v bool) *bool { return &v }

func Float(v float64) *float64 { return &v }
