package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/poster/dsl"
	"github.com/ByLCY/poster/layout"
)

// RequestFile 是请求文件的内容：绘制参数加上可选的绑定数据。
type RequestFile struct {
	layout.Request
	Data any `json:"data,omitempty"`
}

// LoadRequest 按扩展名读取请求文件：.json、.yaml/.yml、.toml 或 .poster（DSL）。
func LoadRequest(path string) (*RequestFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取请求文件失败: %w", err)
	}
	return ParseRequest(data, filepath.Ext(path))
}

// ParseRequest 按格式解析请求，format 为扩展名（带或不带点）。
func ParseRequest(data []byte, format string) (*RequestFile, error) {
	format = strings.TrimPrefix(strings.ToLower(format), ".")
	var (
		doc any
		err error
	)
	switch format {
	case "json":
		return decodeJSON(data)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &doc)
	case "toml":
		err = toml.Unmarshal(data, &doc)
	case "poster", "dsl":
		req, err := dsl.Load(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return &RequestFile{Request: *req}, nil
	default:
		return nil, fmt.Errorf("不支持的请求格式 %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("解析 %s 请求失败: %w", format, err)
	}
	// YAML 与 TOML 先转成 JSON，绘制项统一按 type 字段解码
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("转换 %s 请求失败: %w", format, err)
	}
	return decodeJSON(raw)
}

func decodeJSON(data []byte) (*RequestFile, error) {
	var f RequestFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("解析请求失败: %w", err)
	}
	return &f, nil
}
