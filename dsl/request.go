package dsl

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ByLCY/poster/layout"
)

// Load 解析 DSL 并转换为绘制请求。
func Load(r io.Reader) (*layout.Request, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析 DSL 失败: %w", err)
	}
	return ToRequest(doc)
}

// ToRequest 把文档转换为 layout.Request。text、image 以外的元素保留为 UnknownItem，未知属性报错。
func ToRequest(doc *Document) (*layout.Request, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	req := &layout.Request{DrawArray: layout.Items{}}
	for _, st := range doc.Statements {
		switch {
		case st.Assignment != nil:
			if err := applyPoster(req, st.Assignment); err != nil {
				return nil, err
			}
		case st.Element != nil:
			item, err := buildItem(st.Element)
			if err != nil {
				return nil, err
			}
			req.DrawArray = append(req.DrawArray, item)
		}
	}
	return req, nil
}

func applyPoster(req *layout.Request, a *Assignment) error {
	var err error
	switch a.Key {
	case "width":
		req.CanvasWidth, err = number(a)
	case "height":
		req.CanvasHeight, err = number(a)
	case "background":
		req.CanvasBgColor = a.Value.Text()
	case "units":
		switch a.Value.Text() {
		case "vw":
			req.IsVw = layout.Bool(true)
		case "px":
			req.IsVw = layout.Bool(false)
		default:
			err = errorf(a, "units 只能是 vw 或 px，得到 %q", a.Value.Text())
		}
	case "dpr":
		req.DPR, err = number(a)
	case "type":
		req.ImageType = a.Value.Text()
	case "quality":
		var q float64
		q, err = number(a)
		req.Quality = layout.Float(q)
	case "canvas":
		req.CanvasID = a.Value.Text()
	case "scope":
		req.That = a.Value.Text()
	default:
		err = errorf(a, "未知的海报属性 %q", a.Key)
	}
	return err
}

func buildItem(el *Element) (layout.DrawItem, error) {
	switch el.Name {
	case layout.TypeText:
		item := layout.NewTextItem("")
		for _, a := range el.Props {
			if err := applyText(item, a); err != nil {
				return nil, err
			}
		}
		return item, nil
	case layout.TypeImage:
		item := &layout.ImageItem{}
		for _, a := range el.Props {
			if err := applyImage(item, a); err != nil {
				return nil, err
			}
		}
		return item, nil
	default:
		props := map[string]any{"type": el.Name}
		for _, a := range el.Props {
			props[a.Key] = rawValue(a.Value)
		}
		raw, err := json.Marshal(props)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", el.Pos, err)
		}
		return &layout.UnknownItem{Kind: el.Name, Raw: raw}, nil
	}
}

func applyText(t *layout.TextItem, a *Assignment) error {
	var err error
	switch a.Key {
	case "content":
		t.Content = a.Value.Text()
	case "left":
		t.Left, err = number(a)
	case "top":
		t.Top, err = number(a)
	case "size":
		t.FontSize, err = number(a)
	case "weight":
		t.FontWeight = layout.Weight(a.Value.Text())
	case "family":
		t.FontFamily = a.Value.Text()
	case "color":
		t.Color = a.Value.Text()
	case "center":
		t.IsCenter, err = boolean(a)
	case "stroke":
		t.IsStroke, err = boolean(a)
	case "max-width":
		t.MaxWidth, err = number(a)
	default:
		err = errorf(a, "text 不支持属性 %q", a.Key)
	}
	return err
}

func applyImage(img *layout.ImageItem, a *Assignment) error {
	var err error
	switch a.Key {
	case "src":
		img.Src = a.Value.Text()
	case "clip":
		img.IsClip, err = boolean(a)
	case "width":
		img.Width, err = number(a)
	case "height":
		img.Height, err = number(a)
	case "left":
		img.Left, err = number(a)
	case "top":
		img.Top, err = number(a)
	default:
		err = errorf(a, "image 不支持属性 %q", a.Key)
	}
	return err
}

func number(a *Assignment) (float64, error) {
	if a.Value == nil || a.Value.Number == nil {
		return 0, errorf(a, "%s 需要数字，得到 %q", a.Key, a.Value.Text())
	}
	return *a.Value.Number, nil
}

func boolean(a *Assignment) (bool, error) {
	switch strings.ToLower(a.Value.Text()) {
	case "true", "yes":
		return true, nil
	case "false", "no":
		return false, nil
	default:
		return false, errorf(a, "%s 需要 true 或 false，得到 %q", a.Key, a.Value.Text())
	}
}

func rawValue(v *Value) any {
	if v != nil && v.Number != nil {
		return *v.Number
	}
	switch t := v.Text(); t {
	case "true":
		return true
	case "false":
		return false
	default:
		return t
	}
}

func errorf(a *Assignment, format string, args ...any) error {
	return fmt.Errorf("%s: %s", a.Pos, fmt.Sprintf(format, args...))
}
