// Package rendertest 提供记录绘制调用的 renderer.Context，用于测试。
package rendertest

import (
	"fmt"
	"image"
	"image/color"
	"sync"
	"unicode/utf8"

	"github.com/ByLCY/poster/renderer"
)

// Op 是一次被记录的绘制调用。
type Op struct {
	Name  string
	Text  string
	Args  []float64
	Style string // fill/stroke 颜色或字体，取决于 Name
	Align renderer.TextAlign
	Image image.Image
}

func (o Op) String() string {
	if o.Text != "" {
		return fmt.Sprintf("%s(%q %v)", o.Name, o.Text, o.Args)
	}
	return fmt.Sprintf("%s(%s %v)", o.Name, o.Style, o.Args)
}

// Recorder 实现 renderer.Context 与 renderer.Canvas，记录所有调用。
// MeasureText 按每个字符 CharWidth 像素计算。
type Recorder struct {
	renderer.State
	CharWidth float64
	W, H      float64

	mu  sync.Mutex
	ops []Op
}

var (
	_ renderer.Context = (*Recorder)(nil)
	_ renderer.Canvas  = (*Recorder)(nil)
)

// New returns a recorder with a 10px per rune measure.
func New(w, h float64) *Recorder {
	return &Recorder{State: renderer.NewState(nil), CharWidth: 10, W: w, H: h}
}

func (r *Recorder) record(op Op) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

// Ops returns a copy of the recorded calls.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// Find returns recorded calls with the given name.
func (r *Recorder) Find(name string) []Op {
	var out []Op
	for _, op := range r.Ops() {
		if op.Name == name {
			out = append(out, op)
		}
	}
	return out
}

func (r *Recorder) SetFillStyle(v string) {
	r.State.SetFillStyle(v)
	r.record(Op{Name: "fillStyle", Style: v})
}

func (r *Recorder) SetStrokeStyle(v string) {
	r.State.SetStrokeStyle(v)
	r.record(Op{Name: "strokeStyle", Style: v})
}

func (r *Recorder) SetFont(v string) {
	r.State.SetFont(v)
	r.record(Op{Name: "font", Style: v})
}

func (r *Recorder) SetTextAlign(a renderer.TextAlign) {
	r.State.SetTextAlign(a)
	r.record(Op{Name: "textAlign", Align: a})
}

func (r *Recorder) FillRect(x, y, w, h float64) {
	r.record(Op{Name: "fillRect", Style: hex(r.Fill), Args: []float64{x, y, w, h}})
}

func (r *Recorder) FillText(text string, x, y float64) {
	r.record(Op{Name: "fillText", Text: text, Style: hex(r.Fill), Align: r.Align, Args: []float64{x, y}})
}

func (r *Recorder) StrokeText(text string, x, y float64) {
	r.record(Op{Name: "strokeText", Text: text, Style: hex(r.Stroke), Align: r.Align, Args: []float64{x, y}})
}

func (r *Recorder) MeasureText(text string) float64 {
	return float64(utf8.RuneCountInString(text)) * r.CharWidth
}

func (r *Recorder) DrawImage(img image.Image, dx, dy, dw, dh float64) {
	r.record(Op{Name: "drawImage", Image: img, Args: []float64{dx, dy, dw, dh}})
}

func (r *Recorder) DrawImageRect(img image.Image, sx, sy, sw, sh, dx, dy, dw, dh float64) {
	r.record(Op{Name: "drawImageRect", Image: img, Args: []float64{sx, sy, sw, sh, dx, dy, dw, dh}})
}

func (r *Recorder) Context() renderer.Context { return r }

func (r *Recorder) Size() (float64, float64) { return r.W, r.H }

func (r *Recorder) Image() image.Image {
	return image.NewNRGBA(image.Rect(0, 0, int(r.W), int(r.H)))
}

func hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
