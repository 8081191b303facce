package store

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gaps/internal/groups"
)

// ToggleState 表示运行期开关的最终状态，以及每个开关是否来自 app_settings 覆盖。
type ToggleState struct {
	PersistConfigToGroup  bool
	PopulateGroupSettings bool

	PersistConfigToGroupOverridden  bool
	PopulateGroupSettingsOverridden bool
}

// ToggleStateEffective 合并配置文件默认值与 app_settings；app_settings 优先，读取失败时回退默认值。
// 仅用于展示；决定持久化策略的路径必须用 LoadToggleState。
func (s *Store) ToggleStateEffective(ctx context.Context) ToggleState {
	out, err := s.LoadToggleState(ctx)
	if err != nil {
		slog.Warn("读取运行期开关失败，使用默认值", "err", err)
		return s.defaultToggleState()
	}
	return out
}

func (s *Store) defaultToggleState() ToggleState {
	return ToggleState{
		PersistConfigToGroup:  s.toggleDefaults.PersistConfigToGroup,
		PopulateGroupSettings: s.toggleDefaults.PopulateGroupSettings,
	}
}

// LoadToggleState 与 ToggleStateEffective 相同，但读取 app_settings 失败时返回错误。
func (s *Store) LoadToggleState(ctx context.Context) (ToggleState, error) {
	out := s.defaultToggleState()

	m, err := s.GetAppSettings(ctx, SettingPersistConfigToGroup, SettingPopulateGroupSettings)
	if err != nil {
		return ToggleState{}, fmt.Errorf("读取运行期开关失败: %w", err)
	}

	parseBool := func(key string) (bool, bool) {
		raw, ok := m[key]
		if !ok {
			return false, false
		}
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return false, false
		}
		return v, true
	}

	if v, ok := parseBool(SettingPersistConfigToGroup); ok {
		out.PersistConfigToGroup = v
		out.PersistConfigToGroupOverridden = true
	}
	if v, ok := parseBool(SettingPopulateGroupSettings); ok {
		out.PopulateGroupSettings = v
		out.PopulateGroupSettingsOverridden = true
	}
	return out, nil
}

// Toggles 实现 groups.ToggleSource：每次调用都重新读取，不做进程内缓存。
func (s *Store) Toggles(ctx context.Context) (groups.Toggles, error) {
	st, err := s.LoadToggleState(ctx)
	if err != nil {
		return groups.Toggles{}, err
	}
	return groups.Toggles{
		PersistConfigToGroup:  st.PersistConfigToGroup,
		PopulateGroupSettings: st.PopulateGroupSettings,
	}, nil
}
