package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnv 依次尝试当前目录与可执行文件所在目录的 .env，加载第一个存在的文件。
// 已存在的环境变量优先，不会被 .env 覆盖。
func LoadDotEnv() error {
	paths := []string{".env"}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), ".env"))
	}

	for _, p := range paths {
		loaded, err := loadDotEnvFile(p)
		if err != nil {
			return fmt.Errorf("加载 .env 失败（%s）: %w", p, err)
		}
		if loaded {
			break
		}
	}
	return nil
}

func loadDotEnvFile(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := godotenv.Load(path); err != nil {
		return true, err
	}
	return true, nil
}
