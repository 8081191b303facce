// Package config 负责读取并合并服务配置（环境变量为主，可选读取 YAML 配置文件），避免在业务代码里散落解析逻辑。
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env       string          `yaml:"env"`
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Directory DirectoryConfig `yaml:"directory"`
	Security  SecurityConfig  `yaml:"security"`

	// ToggleDefaults 提供运行期开关（app_settings）的配置文件默认值。
	// 仅当数据库未配置对应 app_settings 键时才会生效（app_settings 仍优先）。
	ToggleDefaults ToggleDefaultsConfig `yaml:"toggle_defaults"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`

	ReadHeaderTimeoutSeconds int `yaml:"read_header_timeout_seconds"`
	ReadTimeoutSeconds       int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds      int `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds       int `yaml:"idle_timeout_seconds"`
}

type DBConfig struct {
	// Driver 支持 mysql/sqlite；为空时会根据 dsn 自动推断：
	// - 当 dsn 非空且 driver 为空：推断为 mysql
	// - 其他情况默认 sqlite
	Driver string `yaml:"driver"`
	// DSN 仅用于 MySQL（示例：user:pass@tcp(127.0.0.1:3306)/gaps?parseTime=true&charset=utf8mb4）
	DSN string `yaml:"dsn"`
	// SQLitePath 是 SQLite 数据库文件路径（可包含 DSN query，如 ?_busy_timeout=30000）。
	SQLitePath string `yaml:"sqlite_path"`
}

// DirectoryConfig 描述外部目录服务（托管群组的一方）的访问方式。
// BaseURL 为空表示未接入目录服务：依赖目录服务的操作会直接报错而不是静默跳过。
type DirectoryConfig struct {
	BaseURL        string `yaml:"base_url"`
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type SecurityConfig struct {
	// SessionSecret 用于管理后台 Cookie 会话签名；为空时每次启动随机生成（重启后会话失效）。
	SessionSecret        string `yaml:"session_secret"`
	DisableSecureCookies bool   `yaml:"disable_secure_cookies"`
}

type ToggleDefaultsConfig struct {
	PersistConfigToGroup  bool `yaml:"persist_config_to_group"`
	PopulateGroupSettings bool `yaml:"populate_group_settings"`
}

// LoadFromEnv 仅从环境变量加载配置（不读取任何配置文件）。
func LoadFromEnv() (Config, error) {
	cfg := defaultConfig()
	applyEnvOverrides(&cfg)
	return normalizeAndValidate(cfg)
}

// LoadFromFile 读取 YAML 配置文件，再叠加环境变量覆盖；path 为空时等价于 LoadFromEnv。
func LoadFromFile(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return LoadFromEnv()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("读取配置文件失败: %w", err)
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("解析配置文件失败（%s）: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return normalizeAndValidate(cfg)
}

func normalizeAndValidate(cfg Config) (Config, error) {
	cfg.Env = strings.TrimSpace(cfg.Env)
	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	cfg.Server.Addr = strings.TrimSpace(cfg.Server.Addr)
	if cfg.Server.Addr == "" {
		return Config{}, errors.New("server.addr 不能为空")
	}

	cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
	cfg.DB.DSN = strings.TrimSpace(cfg.DB.DSN)
	cfg.DB.SQLitePath = strings.TrimSpace(cfg.DB.SQLitePath)

	if cfg.DB.Driver == "" {
		if cfg.DB.DSN != "" {
			cfg.DB.Driver = "mysql"
		} else {
			cfg.DB.Driver = "sqlite"
		}
	}

	switch cfg.DB.Driver {
	case "sqlite":
		if cfg.DB.SQLitePath == "" {
			cfg.DB.SQLitePath = "./data/gaps.db?_busy_timeout=30000"
		}
	case "mysql":
		if cfg.DB.DSN == "" {
			return Config{}, errors.New("db.dsn 不能为空（db.driver=mysql）")
		}
	default:
		return Config{}, fmt.Errorf("db.driver 不支持：%s（仅支持 mysql/sqlite）", cfg.DB.Driver)
	}

	baseURL, err := NormalizeHTTPBaseURL(cfg.Directory.BaseURL, "directory.base_url")
	if err != nil {
		return Config{}, err
	}
	cfg.Directory.BaseURL = baseURL
	cfg.Directory.Token = strings.TrimSpace(cfg.Directory.Token)
	if cfg.Directory.TimeoutSeconds < 0 {
		return Config{}, errors.New("directory.timeout_seconds 不能为负数")
	}

	cfg.Security.SessionSecret = strings.TrimSpace(cfg.Security.SessionSecret)
	return cfg, nil
}

func NormalizeHTTPBaseURL(raw string, label string) (string, error) {
	v := strings.TrimRight(strings.TrimSpace(raw), "/")
	if v == "" {
		return "", nil
	}
	u, err := url.Parse(v)
	if err != nil {
		if strings.TrimSpace(label) == "" {
			return "", fmt.Errorf("解析 base_url 失败: %w", err)
		}
		return "", fmt.Errorf("解析 %s 失败: %w", label, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		if strings.TrimSpace(label) == "" {
			return "", errors.New("base_url 仅支持 http/https")
		}
		return "", fmt.Errorf("%s 仅支持 http/https", label)
	}
	if u.Host == "" {
		if strings.TrimSpace(label) == "" {
			return "", errors.New("base_url host 不能为空")
		}
		return "", fmt.Errorf("%s host 不能为空", label)
	}
	return v, nil
}

func defaultConfig() Config {
	return Config{
		Env: "dev",
		Server: ServerConfig{
			Addr: ":8080",

			ReadHeaderTimeoutSeconds: 5,
			ReadTimeoutSeconds:       30,
			WriteTimeoutSeconds:      60,
			IdleTimeoutSeconds:       120,
		},
		DB: DBConfig{
			SQLitePath: "./data/gaps.db?_busy_timeout=30000",
		},
		Directory: DirectoryConfig{
			TimeoutSeconds: 15,
		},
	}
}
