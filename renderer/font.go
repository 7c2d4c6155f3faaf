package renderer

import (
	"fmt"
	"strconv"
	"strings"
)

// Font 是解析后的 CSS font 简写。
type Font struct {
	Italic   bool
	Weight   int
	Size     float64 // 像素
	Families []string
}

// DefaultFont 与 canvas 的默认值一致：10px sans-serif。
var DefaultFont = Font{Weight: 400, Size: 10, Families: []string{"sans-serif"}}

// FontString 组装 "{weight} {size}px {family}"。
func FontString(weight string, sizePx float64, family string) string {
	return fmt.Sprintf("%s %spx %s", weight, strconv.FormatFloat(sizePx, 'f', -1, 64), family)
}

// ParseFont 解析形如 "bold 24px sans-serif" 或 `italic 700 12.5px/1.2 "PingFang SC", serif` 的字体字符串。
func ParseFont(value string) (Font, error) {
	font := Font{Weight: 400}
	rest := strings.TrimSpace(value)
	for rest != "" {
		token, tail, _ := strings.Cut(rest, " ")
		rest = strings.TrimSpace(tail)
		if size, ok := parseFontSize(token); ok {
			font.Size = size
			font.Families = parseFamilies(rest)
			if len(font.Families) == 0 {
				return Font{}, fmt.Errorf("字体 %q 缺少 font-family", value)
			}
			return font, nil
		}
		switch lower := strings.ToLower(token); lower {
		case "normal", "small-caps":
		case "italic", "oblique":
			font.Italic = true
		case "bold", "bolder":
			font.Weight = 700
		case "lighter":
			font.Weight = 300
		default:
			w, err := strconv.Atoi(lower)
			if err != nil || w < 1 || w > 1000 {
				return Font{}, fmt.Errorf("字体 %q 中的 %q 无法识别", value, token)
			}
			font.Weight = w
		}
	}
	return Font{}, fmt.Errorf("字体 %q 缺少字号", value)
}

// String formats f back into CSS shorthand.
func (f Font) String() string {
	style := ""
	if f.Italic {
		style = "italic "
	}
	return style + FontString(strconv.Itoa(f.Weight), f.Size, strings.Join(f.Families, ", "))
}

// Bold reports whether the weight should use a bold face.
func (f Font) Bold() bool { return f.Weight >= 600 }

func parseFontSize(token string) (float64, bool) {
	token, _, _ = strings.Cut(token, "/")
	num, ok := strings.CutSuffix(strings.ToLower(token), "px")
	if !ok {
		return 0, false
	}
	size, err := strconv.ParseFloat(num, 64)
	if err != nil || size < 0 {
		return 0, false
	}
	return size, true
}

func parseFamilies(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		name := strings.Trim(strings.TrimSpace(part), `"'`)
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}
