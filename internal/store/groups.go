package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Group 是主存储中的群组记录。description 保存外部目录服务的描述原文（可能带有末行配置）。
type Group struct {
	ID          int64
	Email       string
	Name        string
	Description string
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CategoryCount struct {
	Category string
	Groups   int64
}

const groupColumns = `id, group_email, group_name, description, category, created_at, updated_at`

func scanGroup(row interface{ Scan(dest ...any) error }) (Group, error) {
	var g Group
	var name, desc, category sql.NullString
	if err := row.Scan(&g.ID, &g.Email, &name, &desc, &category, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return Group{}, err
	}
	g.Name = name.String
	g.Description = desc.String
	g.Category = category.String
	return g, nil
}

func (s *Store) CreateGroup(ctx context.Context, email string, name string, description string, category string) (int64, error) {
	if s.db == nil {
		return 0, ErrDBNotInitialized
	}
	email, err := normalizeGroupEmail(email)
	if err != nil {
		return 0, err
	}
	if _, err := s.GetGroupByEmail(ctx, email); err == nil {
		return 0, ErrGroupEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO directory_groups(group_email, group_name, description, category, created_at, updated_at)
VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
`, email, strings.TrimSpace(name), description, strings.TrimSpace(category))
	if err != nil {
		if isDuplicateKeyError(err) {
			return 0, ErrGroupEmailTaken
		}
		return 0, fmt.Errorf("创建群组失败: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("获取群组 id 失败: %w", err)
	}
	return id, nil
}

func (s *Store) GetGroupByID(ctx context.Context, id int64) (Group, error) {
	if s.db == nil {
		return Group{}, ErrDBNotInitialized
	}
	g, err := scanGroup(s.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM directory_groups WHERE id=? LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Group{}, sql.ErrNoRows
		}
		return Group{}, fmt.Errorf("查询群组失败: %w", err)
	}
	return g, nil
}

func (s *Store) GetGroupByEmail(ctx context.Context, email string) (Group, error) {
	if s.db == nil {
		return Group{}, ErrDBNotInitialized
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Group{}, errors.New("group_email 不能为空")
	}
	g, err := scanGroup(s.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM directory_groups WHERE group_email=? LIMIT 1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Group{}, sql.ErrNoRows
		}
		return Group{}, fmt.Errorf("查询群组失败: %w", err)
	}
	return g, nil
}

// ListGroups 按邮箱排序列出群组；category 非空时只返回该分类。
func (s *Store) ListGroups(ctx context.Context, category string) ([]Group, error) {
	if s.db == nil {
		return nil, ErrDBNotInitialized
	}
	q := `SELECT ` + groupColumns + ` FROM directory_groups`
	var args []any
	if c := strings.TrimSpace(category); c != "" {
		q += ` WHERE category=?`
		args = append(args, c)
	}
	q += ` ORDER BY group_email ASC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("查询群组列表失败: %w", err)
	}
	defer rows.Close()

	var out []Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描群组失败: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历群组失败: %w", err)
	}
	return out, nil
}

// UpdateGroupCategory 只写 category 字段，不读写 description。
func (s *Store) UpdateGroupCategory(ctx context.Context, id int64, category string) error {
	if s.db == nil {
		return ErrDBNotInitialized
	}
	res, err := s.db.ExecContext(ctx, `UPDATE directory_groups SET category=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, category, id)
	if err != nil {
		return fmt.Errorf("更新群组分类失败: %w", err)
	}
	return s.requireGroupAffected(ctx, id, res)
}

func (s *Store) UpdateGroupDescription(ctx context.Context, id int64, description string) error {
	if s.db == nil {
		return ErrDBNotInitialized
	}
	res, err := s.db.ExecContext(ctx, `UPDATE directory_groups SET description=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, description, id)
	if err != nil {
		return fmt.Errorf("更新群组描述失败: %w", err)
	}
	return s.requireGroupAffected(ctx, id, res)
}

// SaveGroupSnapshot 同时写入描述与分类（用于从目录服务同步群组设置）。
func (s *Store) SaveGroupSnapshot(ctx context.Context, id int64, description string, category string) error {
	if s.db == nil {
		return ErrDBNotInitialized
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE directory_groups
SET description=?, category=?, updated_at=CURRENT_TIMESTAMP
WHERE id=?
`, description, category, id)
	if err != nil {
		return fmt.Errorf("保存群组快照失败: %w", err)
	}
	return s.requireGroupAffected(ctx, id, res)
}

func (s *Store) DeleteGroup(ctx context.Context, id int64) error {
	if s.db == nil {
		return ErrDBNotInitialized
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM directory_groups WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("删除群组失败: %w", err)
	}
	return s.requireGroupAffected(ctx, id, res)
}

func (s *Store) ListCategories(ctx context.Context) ([]CategoryCount, error) {
	if s.db == nil {
		return nil, ErrDBNotInitialized
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT category, COUNT(1)
FROM directory_groups
WHERE category IS NOT NULL AND category<>''
GROUP BY category
ORDER BY category ASC
`)
	if err != nil {
		return nil, fmt.Errorf("查询分类失败: %w", err)
	}
	defer rows.Close()

	var out []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Groups); err != nil {
			return nil, fmt.Errorf("扫描分类失败: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历分类失败: %w", err)
	}
	return out, nil
}

// requireGroupAffected 在影响行数为 0 时区分“记录不存在”与“值未变化”（MySQL 默认只统计实际变更行）。
func (s *Store) requireGroupAffected(ctx context.Context, id int64, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("获取影响行数失败: %w", err)
	}
	if n > 0 {
		return nil
	}
	var one int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM directory_groups WHERE id=? LIMIT 1`, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("查询群组失败: %w", err)
	}
	return nil
}

func isDuplicateKeyError(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
