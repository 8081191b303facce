// Package groups 实现群组分类的解析与变更：从描述末行的嵌入配置解析分类，并按运行期开关选择持久化策略。
package groups

import (
	"log/slog"
	"strings"

	"gaps/internal/groupconfig"
	"gaps/internal/obs"
)

// Group 是一次管理操作内被反复读写的群组状态。
type Group struct {
	ID          int64
	Email       string
	Name        string
	Description string
	Category    string

	// Config 是最近一次 UpdateConfig 解析出的配置；重新嵌入时用它保留 category 以外的键。
	Config groupconfig.Config
}

// Requestor 包装发起操作的用户，仅用于审计上下文，不参与分类判定。
type Requestor struct {
	UserID int64
	Email  string
}

func (r Requestor) String() string {
	if e := strings.TrimSpace(r.Email); e != "" {
		return e
	}
	return "system"
}

// Toggles 是一次调用所使用的运行期开关快照。
type Toggles struct {
	PersistConfigToGroup  bool
	PopulateGroupSettings bool
}

// ParseConfig 解析 g.Description 末行的配置；仅当末行是 JSON 对象时才把描述改写为去掉配置后的正文。
// 成功剥离后再次调用会得到空配置，需要配置值的调用方应保存本次返回值。
func ParseConfig(g *Group) groupconfig.Config {
	r := groupconfig.Parse(g.Description)
	obs.RecordGroupConfigParse(r.Shape.String())
	if r.Shape == groupconfig.ShapeInvalid {
		slog.Debug("群组描述末行不是合法 JSON，保留原文", "group_id", g.ID)
	}
	groupconfig.ApplyIfStripped(&g.Description, r)
	return r.Config
}

// UpdateConfig 从描述解析分类；配置缺失或 category 为空时用邮箱 @ 之前的部分兜底。不做任何 I/O。
func UpdateConfig(g *Group, r Requestor) {
	cfg := ParseConfig(g)
	g.Config = cfg
	if c := cfg.Category(); c != "" {
		g.Category = c
	} else {
		g.Category = GuessCategory(g.Email)
	}
	slog.Debug("已解析群组分类", "group_id", g.ID, "category", g.Category, "requestor", r.String())
}

// DefaultCategory 仅在邮箱本地部分也为空时使用，保证分类永不为空。
const DefaultCategory = "uncategorized"

// GuessCategory 取邮箱第一个 '@' 之前的部分，例如 talk@stripe.com -> talk。
func GuessCategory(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	if local = strings.TrimSpace(local); local == "" {
		return DefaultCategory
	}
	return local
}
