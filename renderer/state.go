package renderer

import (
	"image/color"
	"log/slog"
)

// State 保存 2D 上下文的样式状态，供各后端嵌入。
// 与浏览器一致：无法解析的颜色或字体会被忽略。
type State struct {
	Fill   color.NRGBA
	Stroke color.NRGBA
	Font   Font
	Align  TextAlign

	Logger *slog.Logger
}

// NewState 返回默认状态：黑色填充/描边、10px sans-serif、左对齐。
func NewState(logger *slog.Logger) State {
	black := color.NRGBA{A: 255}
	return State{Fill: black, Stroke: black, Font: DefaultFont, Align: AlignStart, Logger: logger}
}

func (s *State) SetFillStyle(value string) {
	c, err := ParseColor(value)
	if err != nil {
		s.debug("忽略 fillStyle", err)
		return
	}
	s.Fill = c
}

func (s *State) SetStrokeStyle(value string) {
	c, err := ParseColor(value)
	if err != nil {
		s.debug("忽略 strokeStyle", err)
		return
	}
	s.Stroke = c
}

func (s *State) SetFont(value string) {
	f, err := ParseFont(value)
	if err != nil {
		s.debug("忽略 font", err)
		return
	}
	s.Font = f
}

func (s *State) SetTextAlign(align TextAlign) { s.Align = align }

func (s *State) debug(msg string, err error) {
	if s.Logger != nil {
		s.Logger.Debug(msg, "err", err)
	}
}
