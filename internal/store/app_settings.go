package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// 运行期开关：由外部配置管理（管理后台/CLI）写入 app_settings，进程无需重启即可生效。
const (
	SettingPersistConfigToGroup  = "persist_config_to_group"
	SettingPopulateGroupSettings = "populate_group_settings"
)

func (s *Store) GetAppSetting(ctx context.Context, key string) (string, bool, error) {
	if s.db == nil {
		return "", false, nil
	}
	var v string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM app_settings WHERE `key`=?", key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("查询 app_settings 失败: %w", err)
	}
	return v, true, nil
}

func (s *Store) UpsertAppSetting(ctx context.Context, key string, value string) error {
	if s.db == nil {
		return ErrDBNotInitialized
	}
	if _, err := s.db.ExecContext(ctx, upsertAppSettingSQL(s.dialect), key, value); err != nil {
		return fmt.Errorf("写入 app_settings 失败: %w", err)
	}
	return nil
}

func (s *Store) DeleteAppSetting(ctx context.Context, key string) error {
	if s.db == nil {
		return ErrDBNotInitialized
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM app_settings WHERE `key`=?", key); err != nil {
		return fmt.Errorf("删除 app_settings 失败: %w", err)
	}
	return nil
}

func (s *Store) GetAppSettings(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 || s.db == nil {
		return out, nil
	}
	var b strings.Builder
	b.WriteString("SELECT `key`, value FROM app_settings WHERE `key` IN (")
	args := make([]any, 0, len(keys))
	for i, k := range keys {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
		args = append(args, k)
	}
	b.WriteString(")")

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("查询 app_settings 失败: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("读取 app_settings 失败: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("读取 app_settings 失败: %w", err)
	}
	return out, nil
}

func (s *Store) GetBoolAppSetting(ctx context.Context, key string) (bool, bool, error) {
	raw, ok, err := s.GetAppSetting(ctx, key)
	if err != nil || !ok {
		return false, ok, err
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, true, fmt.Errorf("解析 app_settings[%s] 失败: %w", key, err)
	}
	return b, true, nil
}

func (s *Store) UpsertBoolAppSetting(ctx context.Context, key string, value bool) error {
	return s.UpsertAppSetting(ctx, key, strconv.FormatBool(value))
}
