package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"strconv"
)

// 绘制项类型。
const (
	TypeText  = "text"
	TypeImage = "image"
)

// 文本默认值。
const (
	DefaultTextColor  = "#000"
	DefaultFontSize   = 3.0
	DefaultFontFamily = "sans-serif"
	DefaultFontWeight = "normal"
)

// DrawItem 是绘制列表中的一项：*TextItem、*ImageItem 或 *UnknownItem。
type DrawItem interface {
	Type() string
	drawItem()
}

// TextItem 描述一段文字。
type TextItem struct {
	Color      string  `json:"color"`
	FontSize   float64 `json:"fontSize"`
	FontFamily string  `json:"fontFamily"`
	FontWeight Weight  `json:"fontWeight"`
	IsCenter   bool    `json:"isCenter"`
	Content    string  `json:"content"`
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	IsStroke   bool    `json:"isStroke"`
	// MaxWidth 为 0 时不换行。
	MaxWidth float64 `json:"maxWidth,omitempty"`
}

// NewTextItem 返回带默认值的文本项。
func NewTextItem(content string) *TextItem {
	return &TextItem{
		Color:      DefaultTextColor,
		FontSize:   DefaultFontSize,
		FontFamily: DefaultFontFamily,
		FontWeight: DefaultFontWeight,
		Content:    content,
	}
}

func (*TextItem) Type() string { return TypeText }
func (*TextItem) drawItem()    {}

// Wraps reports whether the text is segmented into lines.
func (t *TextItem) Wraps() bool { return t.MaxWidth > 0 }

// MarshalJSON adds the type discriminator.
func (t *TextItem) MarshalJSON() ([]byte, error) {
	type alias TextItem
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{TypeText, (*alias)(t)})
}

// ImageItem 描述一张图片；Img 在预加载完成后由编排器回填。
type ImageItem struct {
	Src    string  `json:"src"`
	IsClip bool    `json:"isClip"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`

	Img image.Image `json:"-"`
}

func (*ImageItem) Type() string { return TypeImage }
func (*ImageItem) drawItem()    {}

// MarshalJSON adds the type discriminator.
func (i *ImageItem) MarshalJSON() ([]byte, error) {
	type alias ImageItem
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{TypeImage, (*alias)(i)})
}

// UnknownItem 保留无法识别的绘制项，绘制时会被跳过并输出警告。
type UnknownItem struct {
	Kind string
	Raw  json.RawMessage
}

func (u *UnknownItem) Type() string { return u.Kind }
func (*UnknownItem) drawItem()      {}

// MarshalJSON returns the original payload.
func (u *UnknownItem) MarshalJSON() ([]byte, error) {
	if len(u.Raw) == 0 {
		return json.Marshal(map[string]string{"type": u.Kind})
	}
	return u.Raw, nil
}

// Items 是按绘制顺序排列的绘制列表，在 JSON 边界按 type 字段解码。
type Items []DrawItem

// UnmarshalJSON decodes each element by its "type" field.
func (it *Items) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*it = nil
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("drawArray 必须是数组: %w", err)
	}
	items := make(Items, 0, len(raws))
	for i, raw := range raws {
		item, err := DecodeItem(raw)
		if err != nil {
			return fmt.Errorf("drawArray[%d]: %w", i, err)
		}
		items = append(items, item)
	}
	*it = items
	return nil
}

// DecodeItem 解码单个绘制项并补全默认值。
func DecodeItem(raw json.RawMessage) (DrawItem, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("解析绘制项失败: %w", err)
	}
	switch head.Type {
	case TypeText:
		item := NewTextItem("")
		if err := json.Unmarshal(raw, item); err != nil {
			return nil, fmt.Errorf("解析文本项失败: %w", err)
		}
		return item, nil
	case TypeImage:
		item := &ImageItem{}
		if err := json.Unmarshal(raw, item); err != nil {
			return nil, fmt.Errorf("解析图片项失败: %w", err)
		}
		return item, nil
	default:
		return &UnknownItem{Kind: head.Type, Raw: append(json.RawMessage(nil), raw...)}, nil
	}
}

// Images returns the image items in drawing order.
func (it Items) Images() []*ImageItem {
	var out []*ImageItem
	for _, item := range it {
		if img, ok := item.(*ImageItem); ok {
			out = append(out, img)
		}
	}
	return out
}

// Weight 是 CSS 字重，JSON 中既可以写 "bold" 也可以写 700。
type Weight string

// UnmarshalJSON accepts both strings and numbers.
func (w *Weight) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*w = Weight(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("字重 %s 无法解析", data)
	}
	*w = Weight(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}
