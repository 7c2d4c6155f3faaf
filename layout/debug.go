package layout

import (
	"encoding/json"
	"os"
)

// Plan 是换算后的绘制计划，仅用于调试输出。
type Plan struct {
	Options Options       `json:"options"`
	Items   []PlannedItem `json:"items"`
}

// PlannedItem 记录单个绘制项换算后的像素坐标。
type PlannedItem struct {
	Index    int     `json:"index"`
	Type     string  `json:"type"`
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`
	MaxWidth float64 `json:"maxWidth,omitempty"`
	Content  string  `json:"content,omitempty"`
	Src      string  `json:"src,omitempty"`
	Skipped  bool    `json:"skipped,omitempty"`
}

// NewPlan 根据请求与补全后的参数生成绘制计划。
func NewPlan(req *Request, opts Options) *Plan {
	toPx := opts.ToPx
	plan := &Plan{Options: opts, Items: make([]PlannedItem, 0, len(req.DrawArray))}
	for i, item := range req.DrawArray {
		p := PlannedItem{Index: i, Type: item.Type()}
		switch v := item.(type) {
		case *TextItem:
			p.Left = toPx(v.Left)
			if v.IsCenter {
				p.Left = toPx(50)
			}
			p.Top = toPx(v.Top)
			p.FontSize = toPx(v.FontSize)
			if v.Wraps() {
				p.MaxWidth = toPx(v.MaxWidth)
			}
			p.Content = v.Content
		case *ImageItem:
			p.Left, p.Top = toPx(v.Left), toPx(v.Top)
			p.Width, p.Height = toPx(v.Width), toPx(v.Height)
			p.Src = v.Src
		default:
			p.Skipped = true
		}
		plan.Items = append(plan.Items, p)
	}
	return plan
}

// WriteDebugJSON 将绘制计划输出为 JSON，便于调试或可视化。
func WriteDebugJSON(plan *Plan, path string) error {
	if plan == nil {
		return nil
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
