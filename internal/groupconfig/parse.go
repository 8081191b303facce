package groupconfig

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Extract 以最后一个换行切分描述：之前的全部内容为正文，末行为候选配置。
// 只有存在换行且末行以 '{' 开头时才返回 ok；候选内容不做任何合法性校验。
func Extract(description string) (plainText string, candidate string, ok bool) {
	i := strings.LastIndexByte(description, '\n')
	if i < 0 {
		return "", "", false
	}
	candidate = description[i+1:]
	if !strings.HasPrefix(candidate, "{") {
		return "", "", false
	}
	return description[:i], candidate, true
}

// Result 是一次纯解析的结果，不持有也不修改任何群组状态。
type Result struct {
	Shape     Shape
	Config    Config
	PlainText string
	Candidate string
}

// Stripped 仅在末行是 JSON 对象时返回去掉配置后的描述。
func (r Result) Stripped() (string, bool) {
	if r.Shape != ShapeObject {
		return "", false
	}
	return r.PlainText, true
}

// Parse 解析描述末行的配置。非对象（数组/标量）与非法 JSON 都返回空配置。
func Parse(description string) Result {
	plain, candidate, ok := Extract(description)
	if !ok {
		return Result{Shape: ShapeAbsent}
	}
	r := Result{PlainText: plain, Candidate: candidate}
	if !gjson.Valid(candidate) {
		r.Shape = ShapeInvalid
		return r
	}
	v := gjson.Parse(candidate)
	switch {
	case v.IsObject():
		r.Shape = ShapeObject
		r.Config = Config{raw: compact(v.Raw)}
	case v.IsArray():
		r.Shape = ShapeArray
	default:
		r.Shape = ShapeScalar
	}
	return r
}

// ApplyIfStripped 在解析成功（对象）时把去掉配置后的正文写回 desc，否则保持原样。
func ApplyIfStripped(desc *string, r Result) bool {
	if desc == nil {
		return false
	}
	stripped, ok := r.Stripped()
	if !ok {
		return false
	}
	*desc = stripped
	return true
}

// Embed 把配置作为独立末行追加到正文后；空配置不改动正文。
func Embed(plainText string, cfg Config) string {
	raw := cfg.Raw()
	if raw == "" {
		return plainText
	}
	return plainText + "\n" + raw
}
