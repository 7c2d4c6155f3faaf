package renderer

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ParseColor 解析 CSS 颜色：#rgb、#rgba、#rrggbb、#rrggbbaa、rgb()/rgba()、颜色名与 transparent。
func ParseColor(value string) (color.NRGBA, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case v == "":
		return color.NRGBA{}, fmt.Errorf("颜色值为空")
	case v == "transparent":
		return color.NRGBA{}, nil
	case strings.HasPrefix(v, "#"):
		return parseHexColor(v)
	case strings.HasPrefix(v, "rgb"):
		return parseRGBFunc(v)
	}
	if c, ok := colornames.Map[v]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	return color.NRGBA{}, fmt.Errorf("颜色值 %s 无法解析", value)
}

func parseHexColor(v string) (color.NRGBA, error) {
	alpha := uint8(255)
	hex := strings.TrimPrefix(v, "#")
	switch len(hex) {
	case 4:
		a, err := strconv.ParseUint(strings.Repeat(hex[3:], 2), 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("颜色值 %s 无法解析", v)
		}
		alpha = uint8(a)
		hex = hex[:3]
	case 8:
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("颜色值 %s 无法解析", v)
		}
		alpha = uint8(a)
		hex = hex[:6]
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("颜色值 %s 无法解析: %w", v, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

func parseRGBFunc(v string) (color.NRGBA, error) {
	open, end := strings.IndexByte(v, '('), strings.LastIndexByte(v, ')')
	if open < 0 || end < open {
		return color.NRGBA{}, fmt.Errorf("颜色值 %s 无法解析", v)
	}
	parts := strings.FieldsFunc(v[open+1:end], func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("颜色值 %s 无法解析", v)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		f, err := parseChannel(parts[i], 255)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("颜色值 %s 无法解析: %w", v, err)
		}
		ch[i] = uint8(f + 0.5)
	}
	alpha := uint8(255)
	if len(parts) == 4 {
		f, err := parseChannel(parts[3], 1)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("颜色值 %s 无法解析: %w", v, err)
		}
		alpha = uint8(f*255 + 0.5)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: alpha}, nil
}

// parseChannel parses a number or percentage and clamps it to [0, max].
func parseChannel(s string, max float64) (float64, error) {
	pct := strings.HasSuffix(s, "%")
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, err
	}
	if pct {
		f = f / 100 * max
	}
	if f < 0 {
		f = 0
	}
	if f > max {
		f = max
	}
	return f, nil
}
