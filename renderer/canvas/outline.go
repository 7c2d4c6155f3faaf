package canvasrenderer

import (
	"math"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/poster/fonts"
)

// textPath 把文本转为以基线起点为原点的轮廓路径（y 轴向下），并返回总步进宽度。
func textPath(f *sfnt.Font, text string, sizePx float64) (*canvas.Path, float64, error) {
	glyphs, advance, err := fonts.Shape(f, text, sizePx)
	if err != nil {
		return nil, 0, err
	}
	var buf sfnt.Buffer
	ppem := fixed.Int26_6(math.Round(sizePx * 64))
	p := &canvas.Path{}
	for _, g := range glyphs {
		segments, err := f.LoadGlyph(&buf, g.Index, ppem, nil)
		if err != nil {
			return nil, 0, err
		}
		appendSegments(p, segments, g.X)
	}
	return p, advance, nil
}

func appendSegments(p *canvas.Path, segments sfnt.Segments, ox float64) {
	open := false
	for _, seg := range segments {
		a := seg.Args
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				p.Close()
			}
			p.MoveTo(ox+fromFixed(a[0].X), fromFixed(a[0].Y))
			open = true
		case sfnt.SegmentOpLineTo:
			p.LineTo(ox+fromFixed(a[0].X), fromFixed(a[0].Y))
		case sfnt.SegmentOpQuadTo:
			p.QuadTo(ox+fromFixed(a[0].X), fromFixed(a[0].Y), ox+fromFixed(a[1].X), fromFixed(a[1].Y))
		case sfnt.SegmentOpCubeTo:
			p.CubeTo(ox+fromFixed(a[0].X), fromFixed(a[0].Y), ox+fromFixed(a[1].X), fromFixed(a[1].Y), ox+fromFixed(a[2].X), fromFixed(a[2].Y))
		}
	}
	if open {
		p.Close()
	}
}

func fromFixed(v fixed.Int26_6) float64 { return float64(v) / 64 }
