// Package groupconfig 负责从群组描述末行中提取/解析嵌入的 JSON 配置，并在写回时重新嵌入，保证人类可读文本不被破坏。
package groupconfig

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// KeyCategory 是当前唯一被消费的配置键。
const KeyCategory = "category"

// Shape 表示描述末行的解析形态。只有 ShapeObject 会被当作配置。
type Shape int

const (
	ShapeAbsent Shape = iota
	ShapeInvalid
	ShapeObject
	// ShapeArray 与 ShapeScalar 目前不会由 Parse 产生：Extract 只接受以 '{' 开头的末行，
	// 数组与标量末行都被视为 ShapeAbsent。保留它们是为了让 Shape 覆盖所有 JSON 形态。
	ShapeArray
	ShapeScalar
)

func (s Shape) String() string {
	switch s {
	case ShapeAbsent:
		return "absent"
	case ShapeInvalid:
		return "invalid"
	case ShapeObject:
		return "object"
	case ShapeArray:
		return "array"
	case ShapeScalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// Config 是嵌入在描述中的 JSON 对象，保留原始文本以便未知键在写回时不丢失。
type Config struct {
	raw string
}

func (c Config) IsEmpty() bool {
	return strings.TrimSpace(c.raw) == ""
}

// Raw 返回配置对象的紧凑 JSON；空配置返回空串。
func (c Config) Raw() string {
	if c.IsEmpty() {
		return ""
	}
	return c.raw
}

// Category 仅在 category 为非空 JSON 字符串时返回其值。
func (c Config) Category() string {
	if c.IsEmpty() {
		return ""
	}
	v := gjson.Get(c.raw, KeyCategory)
	if v.Type != gjson.String {
		return ""
	}
	return v.String()
}

// Get 返回任意顶层键的值（字符串去引号，其余类型为原始 JSON）。
func (c Config) Get(key string) (string, bool) {
	if c.IsEmpty() {
		return "", false
	}
	var (
		out   string
		found bool
	)
	gjson.Parse(c.raw).ForEach(func(k, v gjson.Result) bool {
		if k.String() != key {
			return true
		}
		out, found = valueString(v), true
		return false
	})
	return out, found
}

// Map 以 map 形式暴露全部顶层键，便于调用方与测试断言。
func (c Config) Map() map[string]string {
	out := map[string]string{}
	if c.IsEmpty() {
		return out
	}
	gjson.Parse(c.raw).ForEach(func(k, v gjson.Result) bool {
		out[k.String()] = valueString(v)
		return true
	})
	return out
}

// Keys 返回排序后的顶层键。
func (c Config) Keys() []string {
	m := c.Map()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WithCategory 返回设置了 category 的新配置，其它键原样保留。
func (c Config) WithCategory(category string) Config {
	out, err := sjson.Set(c.Raw(), KeyCategory, category)
	if err != nil {
		// 原始文本已损坏时退化为仅含 category 的对象。
		return categoryOnly(category)
	}
	return Config{raw: compact(out)}
}

func categoryOnly(category string) Config {
	v, _ := json.Marshal(category) // string 编码不会失败
	return Config{raw: `{"` + KeyCategory + `":` + string(v) + `}`}
}

// FromMap 用于从外部（API/CLI）构造配置，值一律按 JSON 字符串写入。
func FromMap(m map[string]string) Config {
	if len(m) == 0 {
		return Config{}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	raw := "{}"
	for _, k := range keys {
		next, err := sjson.Set(raw, escapePath(k), m[k])
		if err != nil {
			continue
		}
		raw = next
	}
	return Config{raw: compact(raw)}
}

func valueString(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.String()
	}
	return v.Raw
}

func compact(raw string) string {
	return gjson.Get(raw, "@ugly").Raw
}

// escapePath 转义 sjson 路径中的特殊字符，使任意键都按字面量写入。
func escapePath(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', ':', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
