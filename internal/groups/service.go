package groups

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gaps/internal/obs"
)

var (
	ErrEmptyCategory     = errors.New("分类不能为空")
	ErrPopulateDisabled  = errors.New("未开启 populate_group_settings，无法从目录服务同步")
	ErrCategoryTooLong   = errors.New("分类过长（最多 128 字符）")
	errGroupStoreMissing = errors.New("群组存储未初始化")
)

const (
	ActionMoveCategory = "group.move_category"
	ActionSync         = "group.sync"
	ActionImport       = "group.import"
)

type GroupStore interface {
	CategoryStore
	LoadGroup(ctx context.Context, id int64) (Group, error)
	InsertGroup(ctx context.Context, g Group) (int64, error)
	SaveGroupSnapshot(ctx context.Context, id int64, description string, category string) error
}

type ToggleSource interface {
	Toggles(ctx context.Context) (Toggles, error)
}

// AuditEvent 记录一次管理操作；不包含描述正文。
type AuditEvent struct {
	RequestID string
	Actor     string
	Action    string
	GroupID   int64
	Strategy  string
	Before    string
	After     string
	Error     string
}

type AuditSink interface {
	InsertGroupAudit(ctx context.Context, ev AuditEvent) error
}

type ServiceOptions struct {
	Store     GroupStore
	Directory Directory
	Toggles   ToggleSource
	// Audit 可选；为空时不写审计。
	Audit AuditSink
	// RequestID 可选，用于从 ctx 中取出请求 ID 关联审计记录。
	RequestID func(ctx context.Context) string
}

// Service 把分类解析/变更与主存储、目录服务、运行期开关、审计串起来，供 HTTP 与 CLI 复用。
type Service struct {
	store     GroupStore
	directory Directory
	toggles   ToggleSource
	audit     AuditSink
	requestID func(ctx context.Context) string
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		store:     opts.Store,
		directory: opts.Directory,
		toggles:   opts.Toggles,
		audit:     opts.Audit,
		requestID: opts.RequestID,
	}
}

func (s *Service) policy() Policy {
	return Policy{Store: s.store, Directory: s.directory}
}

func (s *Service) currentToggles(ctx context.Context) (Toggles, error) {
	if s.toggles == nil {
		return Toggles{}, nil
	}
	return s.toggles.Toggles(ctx)
}

// Toggles 返回当前生效的运行期开关；读取失败时返回错误而不是默认值。
func (s *Service) Toggles(ctx context.Context) (Toggles, error) {
	return s.currentToggles(ctx)
}

// ResolveGroup 读取群组并解析分类，只返回结果不落库。
func (s *Service) ResolveGroup(ctx context.Context, id int64, r Requestor) (Group, error) {
	if s.store == nil {
		return Group{}, errGroupStoreMissing
	}
	g, err := s.store.LoadGroup(ctx, id)
	if err != nil {
		return Group{}, err
	}
	UpdateConfig(&g, r)
	return g, nil
}

// MoveGroupCategory 读取一次运行期开关后执行分类变更，并写审计。
func (s *Service) MoveGroupCategory(ctx context.Context, id int64, newCategory string, r Requestor) (Group, Strategy, error) {
	newCategory, err := normalizeCategory(newCategory)
	if err != nil {
		return Group{}, "", err
	}
	if s.store == nil {
		return Group{}, "", errGroupStoreMissing
	}
	g, err := s.store.LoadGroup(ctx, id)
	if err != nil {
		return Group{}, "", err
	}
	before := g.Category

	t, err := s.currentToggles(ctx)
	if err != nil {
		s.writeAudit(ctx, AuditEvent{Actor: r.String(), Action: ActionMoveCategory, GroupID: id, Before: before, After: newCategory}, err)
		return g, "", err
	}
	strategy, err := s.policy().MoveCategory(ctx, &g, newCategory, r, t)
	obs.RecordGroupCategoryMove(string(strategy), err == nil)
	s.writeAudit(ctx, AuditEvent{
		Actor:    r.String(),
		Action:   ActionMoveCategory,
		GroupID:  id,
		Strategy: string(strategy),
		Before:   before,
		After:    newCategory,
	}, err)
	if err != nil {
		slog.Error("群组分类变更失败", "group_id", id, "strategy", strategy, "err", err)
		return g, strategy, err
	}
	slog.Info("群组分类已变更", "group_id", id, "strategy", strategy, "before", before, "after", newCategory, "requestor", r.String())
	return g, strategy, nil
}

// SyncGroup 从目录服务拉取描述、解析分类，并把描述原文与分类一起写回主存储。
func (s *Service) SyncGroup(ctx context.Context, id int64, r Requestor) (Group, error) {
	t, err := s.currentToggles(ctx)
	if err != nil {
		return Group{}, err
	}
	if !t.PopulateGroupSettings {
		return Group{}, ErrPopulateDisabled
	}
	if s.store == nil {
		return Group{}, errGroupStoreMissing
	}
	if s.directory == nil {
		return Group{}, ErrDirectoryUnavailable
	}
	g, err := s.store.LoadGroup(ctx, id)
	if err != nil {
		return Group{}, err
	}
	before := g.Category

	raw, err := s.directory.GroupDescription(ctx, g.Email)
	if err != nil {
		err = fmt.Errorf("拉取群组描述失败: %w", err)
		s.writeAudit(ctx, AuditEvent{Actor: r.String(), Action: ActionSync, GroupID: id, Before: before}, err)
		return Group{}, err
	}
	g.Description = raw
	UpdateConfig(&g, r)

	err = s.store.SaveGroupSnapshot(ctx, id, raw, g.Category)
	s.writeAudit(ctx, AuditEvent{Actor: r.String(), Action: ActionSync, GroupID: id, Before: before, After: g.Category}, err)
	if err != nil {
		return Group{}, err
	}
	return g, nil
}

// ImportGroup 新建群组记录；分类从描述解析，描述原文（含末行配置）原样保存。
func (s *Service) ImportGroup(ctx context.Context, email string, name string, description string, r Requestor) (Group, error) {
	if s.store == nil {
		return Group{}, errGroupStoreMissing
	}
	g := Group{
		Email:       strings.ToLower(strings.TrimSpace(email)),
		Name:        strings.TrimSpace(name),
		Description: description,
	}
	UpdateConfig(&g, r)

	rec := g
	rec.Description = description
	id, err := s.store.InsertGroup(ctx, rec)
	if err != nil {
		return Group{}, err
	}
	g.ID = id
	s.writeAudit(ctx, AuditEvent{Actor: r.String(), Action: ActionImport, GroupID: id, After: g.Category}, nil)
	return g, nil
}

func (s *Service) writeAudit(ctx context.Context, ev AuditEvent, cause error) {
	if s.audit == nil {
		return
	}
	if cause != nil {
		ev.Error = cause.Error()
	}
	if s.requestID != nil {
		ev.RequestID = s.requestID(ctx)
	}
	if err := s.audit.InsertGroupAudit(ctx, ev); err != nil {
		slog.Warn("写入审计失败", "action", ev.Action, "group_id", ev.GroupID, "err", err)
	}
}

func normalizeCategory(raw string) (string, error) {
	c := strings.TrimSpace(raw)
	if c == "" {
		return "", ErrEmptyCategory
	}
	if len(c) > 128 {
		return "", ErrCategoryTooLong
	}
	return c, nil
}
