package store

// Dialect 表示数据库方言，用于处理 MySQL/SQLite 的 SQL 语法差异。
type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite"
)

// upsertAppSettingSQL 返回按方言区分的 app_settings upsert 语句。
func upsertAppSettingSQL(d Dialect) string {
	if d == DialectSQLite {
		return "INSERT INTO app_settings(`key`, value, created_at, updated_at)\n" +
			"VALUES(?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)\n" +
			"ON CONFLICT(`key`) DO UPDATE SET value=excluded.value, updated_at=CURRENT_TIMESTAMP"
	}
	return "INSERT INTO app_settings(`key`, value, created_at, updated_at)\n" +
		"VALUES(?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)\n" +
		"ON DUPLICATE KEY UPDATE value=VALUES(value), updated_at=CURRENT_TIMESTAMP"
}
