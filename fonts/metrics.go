package fonts

import (
	"fmt"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Glyph 是排版后的一个字形，X 为相对文本起点的水平偏移（像素）。
type Glyph struct {
	Index sfnt.GlyphIndex
	X     float64
}

// Parsed 返回 face 解析后的 sfnt 字体，按 Face.Name 缓存。
func (r *Registry) Parsed(face Face) (*sfnt.Font, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.parsed[face.Name]; ok {
		return f, nil
	}
	f, err := sfnt.Parse(face.Data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", face.Name, err)
	}
	if r.parsed == nil {
		r.parsed = map[string]*sfnt.Font{}
	}
	r.parsed[face.Name] = f
	return f, nil
}

// Shape 按字体自身（未经 hinting）的步进与字距排列 text，返回各字形位置与总宽度。
// 缺字的字符落在 .notdef 上，仍占用其步进。
func Shape(f *sfnt.Font, text string, sizePx float64) ([]Glyph, float64, error) {
	var buf sfnt.Buffer
	ppem := fixed.Int26_6(math.Round(sizePx * 64))
	glyphs := make([]Glyph, 0, len(text))
	var (
		pen     fixed.Int26_6
		prev    sfnt.GlyphIndex
		hasPrev bool
	)
	for _, r := range text {
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil {
			return nil, 0, err
		}
		if hasPrev {
			if kern, err := f.Kern(&buf, prev, idx, ppem, font.HintingNone); err == nil {
				pen += kern
			}
		}
		glyphs = append(glyphs, Glyph{Index: idx, X: fromFixed(pen)})
		advance, err := f.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
		if err != nil {
			return nil, 0, err
		}
		pen += advance
		prev, hasPrev = idx, true
	}
	return glyphs, fromFixed(pen), nil
}

// Measure 返回 text 在 face 下的宽度。
func (r *Registry) Measure(face Face, text string, sizePx float64) (float64, error) {
	f, err := r.Parsed(face)
	if err != nil {
		return 0, err
	}
	_, width, err := Shape(f, text, sizePx)
	return width, err
}

func fromFixed(v fixed.Int26_6) float64 { return float64(v) / 64 }
