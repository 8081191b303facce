package main

import (
	"os"
	"strings"
)

func lookupEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
