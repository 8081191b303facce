package obs

import (
	"expvar"
	"sync/atomic"
	"time"
)

var (
	groupConfigParses   = expvar.NewMap("group_config_parse_total")
	groupCategoryMoves  = expvar.NewMap("group_category_moves_total")
	directoryCallErrors = expvar.NewMap("directory_call_errors_total")

	groupCategoryMoveFailures int64
	directoryLastOKUnix       int64
)

func init() {
	expvar.Publish("group_category_move_failures_total", expvar.Func(func() any {
		return atomic.LoadInt64(&groupCategoryMoveFailures)
	}))
	expvar.Publish("directory_last_ok_unix", expvar.Func(func() any {
		return atomic.LoadInt64(&directoryLastOKUnix)
	}))
}

// RecordGroupConfigParse 按解析形态（absent/invalid/object/...）计数。
func RecordGroupConfigParse(shape string) {
	if shape == "" {
		return
	}
	groupConfigParses.Add(shape, 1)
}

// RecordGroupCategoryMove 按持久化策略计数；失败额外累计到总失败数。
func RecordGroupCategoryMove(strategy string, ok bool) {
	if strategy != "" {
		groupCategoryMoves.Add(strategy, 1)
	}
	if !ok {
		atomic.AddInt64(&groupCategoryMoveFailures, 1)
	}
}

func RecordDirectoryCall(op string, err error) {
	if err == nil {
		atomic.StoreInt64(&directoryLastOKUnix, time.Now().Unix())
		return
	}
	if op == "" {
		op = "unknown"
	}
	directoryCallErrors.Add(op, 1)
}
