package groups

import (
	"context"
	"errors"
	"fmt"

	"gaps/internal/groupconfig"
)

// Strategy 标识一次分类变更实际执行的持久化策略。
type Strategy string

const (
	// StrategyStore 直接写主存储的 category 字段，不读写描述。
	StrategyStore Strategy = "store"
	// StrategyDirectory 先用远端最新描述对账，再把配置嵌回描述推送到目录服务。
	StrategyDirectory Strategy = "directory"
)

var ErrDirectoryUnavailable = errors.New("目录服务未配置")

type CategoryStore interface {
	UpdateGroupCategory(ctx context.Context, id int64, category string) error
}

type Directory interface {
	GroupDescription(ctx context.Context, email string) (string, error)
	PushDescription(ctx context.Context, email string, description string) error
}

// Policy 持有两种持久化策略所需的外部协作者；自身无状态。
type Policy struct {
	Store     CategoryStore
	Directory Directory
}

// StrategyFor 仅由 PersistConfigToGroup 决定策略。
func StrategyFor(t Toggles) Strategy {
	if t.PersistConfigToGroup {
		return StrategyDirectory
	}
	return StrategyStore
}

// MoveCategory 把 g 的分类改为 newCategory，并按 t 恰好执行一种持久化策略。
// 目录服务策略下，对账（拉取远端描述并解析）严格先于推送，避免用过期的内存状态覆盖并发修改。
// 存储与目录服务的错误原样向上传递，不做重试。
func (p Policy) MoveCategory(ctx context.Context, g *Group, newCategory string, r Requestor, t Toggles) (Strategy, error) {
	g.Category = newCategory

	strategy := StrategyFor(t)
	switch strategy {
	case StrategyStore:
		if p.Store == nil {
			return strategy, errors.New("主存储未初始化")
		}
		if err := p.Store.UpdateGroupCategory(ctx, g.ID, newCategory); err != nil {
			return strategy, fmt.Errorf("写入群组分类失败: %w", err)
		}
		return strategy, nil
	default:
		if err := p.reconcile(ctx, g, r); err != nil {
			return strategy, err
		}
		g.Category = newCategory
		g.Config = g.Config.WithCategory(newCategory)
		return strategy, p.PersistConfig(ctx, g)
	}
}

// reconcile 用远端当前描述替换内存中的描述，再重新解析配置。
func (p Policy) reconcile(ctx context.Context, g *Group, r Requestor) error {
	if p.Directory == nil {
		return ErrDirectoryUnavailable
	}
	desc, err := p.Directory.GroupDescription(ctx, g.Email)
	if err != nil {
		return fmt.Errorf("拉取群组描述失败: %w", err)
	}
	g.Description = desc
	UpdateConfig(g, r)
	return nil
}

// PersistConfig 把 g.Config 重新嵌入到描述末行并推送到目录服务。g.Description 必须是已剥离配置的正文。
func (p Policy) PersistConfig(ctx context.Context, g *Group) error {
	if p.Directory == nil {
		return ErrDirectoryUnavailable
	}
	desc := groupconfig.Embed(g.Description, g.Config)
	if err := p.Directory.PushDescription(ctx, g.Email, desc); err != nil {
		return fmt.Errorf("推送群组描述失败: %w", err)
	}
	return nil
}
