// Package store 负责数据库连接、schema 初始化与群组记录读写，业务层只处理领域语义而不是 SQL 细节。
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"gaps/internal/config"
)

// Open 按配置打开数据库并完成 schema 初始化（SQLite 内置 schema / MySQL 迁移）。
func Open(env string, cfg config.DBConfig) (*sql.DB, Dialect, error) {
	db, dialect, err := OpenDB(env, cfg.Driver, cfg.DSN, cfg.SQLitePath)
	if err != nil {
		return nil, "", err
	}
	switch dialect {
	case DialectMySQL:
		err = ApplyMigrations(db)
	case DialectSQLite:
		err = EnsureSQLiteSchema(db)
	default:
		err = fmt.Errorf("未知数据库方言：%s", dialect)
	}
	if err != nil {
		_ = db.Close()
		return nil, "", err
	}
	return db, dialect, nil
}

func OpenDB(env string, driver string, mysqlDSN string, sqlitePath string) (*sql.DB, Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite":
		db, err := OpenSQLite(sqlitePath)
		if err != nil {
			return nil, "", err
		}
		return db, DialectSQLite, nil
	case "mysql":
		db, err := OpenMySQL(env, mysqlDSN)
		if err != nil {
			return nil, "", err
		}
		return db, DialectMySQL, nil
	default:
		return nil, "", fmt.Errorf("不支持的 db.driver：%s", driver)
	}
}

func OpenMySQL(env string, dsn string) (*sql.DB, error) {
	dsn, err := normalizeMySQLDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open(mysql): %w", err)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if env == "dev" {
		err = waitMySQLInDev(db, dsn)
	} else {
		err = pingOnce(db)
	}
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func OpenSQLite(path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite_path 不能为空")
	}

	// 允许通过 query 参数传递 driver 选项（例如 ?_busy_timeout=30000），这里需要先确保文件目录存在。
	filePath := path
	if i := strings.IndexByte(filePath, '?'); i >= 0 {
		filePath = filePath[:i]
	}
	if filePath != "" && filePath != ":memory:" && !strings.HasPrefix(filePath, "file::memory:") {
		dir := filepath.Dir(filePath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("创建 sqlite 数据目录失败: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open(sqlite): %w", err)
	}
	// 管理操作是低频串行写入，单连接可避免 SQLite 锁竞争。
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := pingOnce(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	_, _ = db.Exec(`PRAGMA journal_mode=WAL`)
	return db, nil
}

func pingOnce(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db.Ping: %w", err)
	}
	return nil
}

// waitMySQLInDev 在开发环境等待 MySQL 容器就绪；库不存在时自动创建一次。
func waitMySQLInDev(db *sql.DB, dsn string) error {
	const (
		maxWait    = 30 * time.Second
		maxBackoff = 2 * time.Second
	)

	deadline := time.Now().Add(maxWait)
	backoff := 200 * time.Millisecond
	waitLogged := false
	var lastErr error

	for time.Now().Before(deadline) {
		err := pingOnce(db)
		if err == nil {
			return nil
		}
		lastErr = err

		if mysqlErrorNumber(err) == 1049 {
			if err2 := createDatabaseIfMissing(dsn); err2 != nil {
				return errors.Join(err, err2)
			}
			slog.Info("检测到 MySQL 数据库不存在，已自动创建并重试连接")
			continue
		}
		// 1045/1044：账号或库权限错误，重试没有意义。
		if n := mysqlErrorNumber(err); n == 1045 || n == 1044 {
			return err
		}

		if !waitLogged {
			slog.Info("等待 MySQL 就绪（dev）", "timeout", maxWait.String())
			waitLogged = true
		}
		time.Sleep(backoff)
		backoff = min(backoff*2, maxBackoff)
	}

	if lastErr == nil {
		lastErr = driver.ErrBadConn
	}
	return lastErr
}

// normalizeMySQLDSN 强制 parseTime=true，使 DATETIME 列可直接扫描为 time.Time。
func normalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(strings.TrimSpace(dsn))
	if err != nil {
		return "", fmt.Errorf("解析 MySQL DSN 失败: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

func mysqlErrorNumber(err error) uint16 {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return 0
	}
	return myErr.Number
}

func createDatabaseIfMissing(dsn string) error {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return fmt.Errorf("mysql.ParseDSN: %w", err)
	}
	if cfg.DBName == "" {
		return errors.New("dsn 未包含数据库名")
	}

	adminCfg := *cfg
	adminCfg.DBName = ""
	adminDB, err := sql.Open("mysql", adminCfg.FormatDSN())
	if err != nil {
		return fmt.Errorf("sql.Open(admin): %w", err)
	}
	defer adminDB.Close()

	stmt := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` DEFAULT CHARACTER SET utf8mb4", strings.ReplaceAll(cfg.DBName, "`", "``"))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := adminDB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	return nil
}
