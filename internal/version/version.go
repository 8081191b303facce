// Package version 提供构建信息（通过 -ldflags -X 注入），供 healthz、启动日志与 gaps-admin version 使用。
package version

import (
	"fmt"
	"runtime/debug"
)

type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info 返回注入的构建信息；未注入 commit 时尝试读取 go 工具链写入的 vcs.revision。
func Info() BuildInfo {
	out := BuildInfo{Version: Version, Commit: Commit, Date: Date}
	if out.Commit == "none" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && s.Value != "" {
					out.Commit = s.Value
				}
			}
		}
	}
	return out
}

func (b BuildInfo) String() string {
	commit := b.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("gaps %s (%s, %s)", b.Version, commit, b.Date)
}
