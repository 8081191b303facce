package store

import (
	"database/sql"
	"strings"

	"gaps/internal/config"
)

type Store struct {
	db      *sql.DB
	dialect Dialect

	toggleDefaults config.ToggleDefaultsConfig
}

func New(db *sql.DB) *Store {
	return &Store{
		db:      db,
		dialect: DialectMySQL,
	}
}

func (s *Store) SetDialect(d Dialect) {
	if strings.TrimSpace(string(d)) == "" {
		return
	}
	s.dialect = d
}

// SetToggleDefaults 设置运行期开关的配置文件默认值（app_settings 未配置时生效）。
func (s *Store) SetToggleDefaults(v config.ToggleDefaultsConfig) {
	s.toggleDefaults = v
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}
