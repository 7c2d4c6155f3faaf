package layout

// 该文件定义绘制参数的单位以及 vw → 像素的换算。

// Unit 表示一次绘制中所有长度参数采用的单位。
type Unit int

const (
	UnitVW Unit = iota // 视口宽度的 1%（类似 CSS vw）
	UnitPX             // 逻辑像素，只乘以像素比
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitVW:
		return "vw"
	case UnitPX:
		return "px"
	default:
		return ""
	}
}

// Metrics 是宿主环境上报的设备信息。
type Metrics struct {
	WindowWidth      float64 `json:"windowWidth"`
	DevicePixelRatio float64 `json:"devicePixelRatio"`
	// Scale 是整体缩放，0 表示 1。
	Scale float64 `json:"scale,omitempty"`
}

// Config 保存换算基准：1vw 对应的逻辑像素、整体缩放与默认像素比。
// 由 NewConfig 根据 Metrics 计算一次，之后只读。
type Config struct {
	OneVW float64 `json:"oneVW"`
	Scale float64 `json:"scale"`
	DPR   float64 `json:"dpr"`
}

// NewConfig 根据宿主上报的窗口宽度与像素比生成换算配置，Scale 默认为 1。
func NewConfig(m Metrics) Config {
	dpr := m.DevicePixelRatio
	if dpr <= 0 {
		dpr = 1
	}
	scale := m.Scale
	if scale <= 0 {
		scale = 1
	}
	return Config{
		OneVW: m.WindowWidth / 100,
		Scale: scale,
		DPR:   dpr,
	}
}

// WithScale returns a copy of c using the given global multiplier.
func (c Config) WithScale(scale float64) Config {
	c.Scale = scale
	return c
}

// VWToPx 将 vw 转为绘制像素；dpr 为 0 时使用配置中的像素比。
func (c Config) VWToPx(vw, dpr float64) float64 {
	if dpr == 0 {
		dpr = c.DPR
	}
	return c.OneVW * dpr * vw * c.Scale
}

// ToPixels converts value in the given unit to device pixels.
func (c Config) ToPixels(value float64, unit Unit, dpr float64) float64 {
	if unit == UnitPX {
		if dpr == 0 {
			dpr = c.DPR
		}
		return value * dpr
	}
	return c.VWToPx(value, dpr)
}

// Converter 把单个长度值换算为设备像素。一次绘制只会使用同一个 Converter。
type Converter func(value float64) float64

// Converter 固定单位与像素比，返回换算函数。
func (c Config) Converter(unit Unit, dpr float64) Converter {
	return func(value float64) float64 {
		return c.ToPixels(value, unit, dpr)
	}
}
