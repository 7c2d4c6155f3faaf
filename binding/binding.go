// Package binding 把 ${path} 占位符替换为数据中的值，用于填充海报的文字与图片地址。
package binding

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/ByLCY/poster/layout"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Apply 就地替换 req 中文本项的 Content 与图片项的 Src。data 为空时不做任何修改。
// 返回被替换的占位符数量。
func Apply(req *layout.Request, data any) int {
	if req == nil || data == nil {
		return 0
	}
	n := 0
	for _, item := range req.DrawArray {
		switch it := item.(type) {
		case *layout.TextItem:
			var c int
			it.Content, c = interpolate(it.Content, data)
			n += c
		case *layout.ImageItem:
			var c int
			it.Src, c = interpolate(it.Src, data)
			n += c
		}
	}
	return n
}

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 路径支持点号与下标，例如 ${user.tags[0]}。若 data 为空或路径不存在，则保留原占位符。
func Interpolate(text string, data any) string {
	out, _ := interpolate(text, data)
	return out
}

func interpolate(text string, data any) (string, int) {
	if data == nil || !strings.Contains(text, "${") {
		return text, 0
	}
	n := 0
	out := exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		if path == "" {
			return match
		}
		val, ok := Resolve(data, path)
		if !ok {
			return match
		}
		n++
		return format(val)
	})
	return out, n
}

// Resolve 按路径取值。
func Resolve(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name, rest, found := strings.Cut(segment, "[")
	if !found {
		return name, nil
	}
	rest = "[" + rest
	var indexes []string
	for len(rest) > 0 && rest[0] == '[' {
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			break
		}
		indexes = append(indexes, rest[1:end])
		rest = rest[end+1:]
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	c, ok := current.([]any)
	if !ok || idx < 0 || idx >= len(c) {
		return nil, false
	}
	return c[idx], true
}

// format 把值转为文本：数字不带多余小数，对象与数组输出 JSON。
func format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
