// gaps-admin 是群组目录管理的命令行工具，与 HTTP 服务共用同一套存储与群组服务。
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
