package config

import (
	"os"
	"strconv"
)

func applyEnvOverrides(cfg *Config) {
	applyCoreEnvOverrides(cfg)
	applyServerEnvOverrides(cfg)
	applyDirectoryEnvOverrides(cfg)
	applyToggleEnvOverrides(cfg)
}

func applyCoreEnvOverrides(cfg *Config) {
	if v := os.Getenv("GAPS_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("GAPS_DB_DRIVER"); v != "" {
		cfg.DB.Driver = v
	}
	if v := os.Getenv("GAPS_DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}
	if v := os.Getenv("GAPS_SQLITE_PATH"); v != "" {
		cfg.DB.SQLitePath = v
	}
	if v := os.Getenv("GAPS_SESSION_SECRET"); v != "" {
		cfg.Security.SessionSecret = v
	}
	if v := os.Getenv("GAPS_DISABLE_SECURE_COOKIES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Security.DisableSecureCookies = b
		}
	}
}

func applyServerEnvOverrides(cfg *Config) {
	if v := os.Getenv("GAPS_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("GAPS_SERVER_READ_HEADER_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Server.ReadHeaderTimeoutSeconds = n
		}
	}
	if v := os.Getenv("GAPS_SERVER_READ_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Server.ReadTimeoutSeconds = n
		}
	}
	if v := os.Getenv("GAPS_SERVER_WRITE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Server.WriteTimeoutSeconds = n
		}
	}
	if v := os.Getenv("GAPS_SERVER_IDLE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Server.IdleTimeoutSeconds = n
		}
	}
}

func applyDirectoryEnvOverrides(cfg *Config) {
	if v := os.Getenv("GAPS_DIRECTORY_BASE_URL"); v != "" {
		cfg.Directory.BaseURL = v
	}
	if v := os.Getenv("GAPS_DIRECTORY_TOKEN"); v != "" {
		cfg.Directory.Token = v
	}
	if v := os.Getenv("GAPS_DIRECTORY_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Directory.TimeoutSeconds = n
		}
	}
}

func applyToggleEnvOverrides(cfg *Config) {
	if v := os.Getenv("GAPS_PERSIST_CONFIG_TO_GROUP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ToggleDefaults.PersistConfigToGroup = b
		}
	}
	if v := os.Getenv("GAPS_POPULATE_GROUP_SETTINGS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ToggleDefaults.PopulateGroupSettings = b
		}
	}
}
