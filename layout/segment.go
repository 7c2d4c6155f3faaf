package layout

import "strings"

// Segment 按字符贪心切分 content，使每段宽度不超过 maxWidth。
// 不识别单词边界，任意字符之间都可以断行（适合中日韩文本）。
// 单个字符本身超宽时独占一段，不会被丢弃。空内容返回 nil。
func Segment(measure func(s string) float64, content string, maxWidth float64) []string {
	var (
		segments []string
		pending  strings.Builder
		width    float64
	)
	for _, r := range content {
		ch := string(r)
		w := measure(ch)
		if pending.Len() == 0 || width+w <= maxWidth {
			pending.WriteString(ch)
			width += w
			continue
		}
		segments = append(segments, pending.String())
		pending.Reset()
		pending.WriteString(ch)
		width = w
	}
	if pending.Len() > 0 {
		segments = append(segments, pending.String())
	}
	return segments
}
