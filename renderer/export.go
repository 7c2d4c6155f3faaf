package renderer

import (
	"math"

	"github.com/ByLCY/poster/layout"
)

// JPEGQuality 把 0~1 的导出质量换算为 1~100 的 JPEG 质量，超出范围时使用默认值 0.92。
func JPEGQuality(q float64) int {
	if q < 0 || q > 1 || math.IsNaN(q) {
		q = layout.DefaultQuality
	}
	return max(int(math.Round(q*100)), 1)
}
