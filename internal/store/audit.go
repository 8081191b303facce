package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gaps/internal/groups"
)

// AuditEvent 是 audit_events 中的一条管理操作记录（不记录描述正文，只记录分类与策略）。
type AuditEvent struct {
	ID        int64
	EventID   string
	Time      time.Time
	RequestID string
	Actor     string
	Action    string
	GroupID   int64
	Strategy  string
	Before    string
	After     string
	Error     string
}

// InsertGroupAudit 实现 groups.AuditSink。
func (s *Store) InsertGroupAudit(ctx context.Context, ev groups.AuditEvent) error {
	if s.db == nil {
		return ErrDBNotInitialized
	}
	var errMsg any
	if msg := strings.TrimSpace(ev.Error); msg != "" {
		if len(msg) > 1024 {
			msg = msg[:1024]
		}
		errMsg = msg
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO audit_events(
  event_id, time, request_id, actor, action, group_id, strategy, before_value, after_value, error_message
) VALUES(
  ?, CURRENT_TIMESTAMP, ?, ?, ?, ?, ?, ?, ?, ?
)
`, uuid.NewString(), ev.RequestID, ev.Actor, ev.Action, ev.GroupID, ev.Strategy, ev.Before, ev.After, errMsg)
	if err != nil {
		return fmt.Errorf("写入 audit_events 失败: %w", err)
	}
	return nil
}

// ListGroupAuditEvents 按时间倒序返回某个群组的审计记录。
func (s *Store) ListGroupAuditEvents(ctx context.Context, groupID int64, limit int) ([]AuditEvent, error) {
	if s.db == nil {
		return nil, ErrDBNotInitialized
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, event_id, time, request_id, actor, action, group_id, strategy, before_value, after_value, error_message
FROM audit_events
WHERE group_id=?
ORDER BY id DESC
LIMIT ?
`, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("查询 audit_events 失败: %w", err)
	}
	defer rows.Close()

	var out []AuditEvent
	for rows.Next() {
		var ev AuditEvent
		var requestID, strategy, before, after, errMsg sql.NullString
		if err := rows.Scan(&ev.ID, &ev.EventID, &ev.Time, &requestID, &ev.Actor, &ev.Action, &ev.GroupID, &strategy, &before, &after, &errMsg); err != nil {
			return nil, fmt.Errorf("扫描 audit_events 失败: %w", err)
		}
		ev.RequestID = requestID.String
		ev.Strategy = strategy.String
		ev.Before = before.String
		ev.After = after.String
		ev.Error = errMsg.String
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历 audit_events 失败: %w", err)
	}
	return out, nil
}
