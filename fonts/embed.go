package fonts

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// Face 是选中的字体文件，Name 唯一标识该字体，可作为渲染器缓存键。
type Face struct {
	Name string
	Data []byte
}

// Registry 按 font-family 名称管理字体文件，内置 sans-serif、serif、monospace 三个通用族。
type Registry struct {
	mu       sync.RWMutex
	families map[string]map[variant]Face
	parsed   map[string]*sfnt.Font
}

type variant struct {
	bold   bool
	italic bool
}

// Default 是带内置字体的全局注册表。
var Default = NewRegistry()

// NewRegistry 创建注册表并装入内置字体：Go 字体作为 sans-serif，Latin Modern 作为 serif。
func NewRegistry() *Registry {
	r := &Registry{families: map[string]map[variant]Face{}, parsed: map[string]*sfnt.Font{}}
	r.put("sans-serif", false, false, Face{"go-regular", goregular.TTF})
	r.put("sans-serif", true, false, Face{"go-bold", gobold.TTF})
	r.put("sans-serif", false, true, Face{"go-italic", goitalic.TTF})
	r.put("sans-serif", true, true, Face{"go-bold-italic", gobolditalic.TTF})
	r.put("serif", false, false, Face{"lmroman10-regular", lmroman10regular.TTF})
	r.put("serif", true, false, Face{"lmroman10-bold", lmroman10bold.TTF})
	r.put("serif", false, true, Face{"lmroman10-italic", lmroman10italic.TTF})
	r.put("serif", true, true, Face{"lmroman10-bold-italic", lmroman10bolditalic.TTF})
	r.put("monospace", false, false, Face{"go-mono", gomono.TTF})
	r.put("monospace", true, false, Face{"go-mono-bold", gomonobold.TTF})
	return r
}

func (r *Registry) put(family string, bold, italic bool, face Face) {
	key := strings.ToLower(family)
	if r.families[key] == nil {
		r.families[key] = map[variant]Face{}
	}
	r.families[key][variant{bold, italic}] = face
}

// Register 注册字体数据，之后可在 font-family 中按名称引用。
func (r *Registry) Register(family string, bold, italic bool, data []byte) error {
	if family == "" || len(data) == 0 {
		return fmt.Errorf("注册字体失败: family 与字体数据不能为空")
	}
	name := fmt.Sprintf("%s|%t|%t", strings.ToLower(family), bold, italic)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(family, bold, italic, Face{Name: name, Data: data})
	delete(r.parsed, name)
	return nil
}

// RegisterFile 从文件注册字体。
func (r *Registry) RegisterFile(family string, bold, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	return r.Register(family, bold, italic, data)
}

// Lookup 依次尝试 families 中的字体族，找不到时回退到 sans-serif。
// 同一族内缺少粗体/斜体时依次降级到常规体。
func (r *Registry) Lookup(families []string, weight int, italic bool) Face {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bold := weight >= 600
	candidates := append(append([]string(nil), families...), "sans-serif")
	for _, family := range candidates {
		variants, ok := r.families[strings.ToLower(family)]
		if !ok {
			continue
		}
		for _, v := range []variant{{bold, italic}, {bold, false}, {false, italic}, {false, false}} {
			if face, ok := variants[v]; ok {
				return face
			}
		}
	}
	return Face{"go-regular", goregular.TTF}
}
