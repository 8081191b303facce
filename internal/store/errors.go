package store

import "errors"

var (
	// ErrGroupEmailTaken 表示群组邮箱已存在（group_email 唯一）。
	ErrGroupEmailTaken = errors.New("群组邮箱已存在")
	// ErrDBNotInitialized 表示 Store 未绑定数据库连接。
	ErrDBNotInitialized = errors.New("db 为空")
)
