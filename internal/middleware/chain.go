package middleware

import "net/http"

type Middleware func(http.Handler) http.Handler

// Chain 按书写顺序包裹 h：第一个中间件位于最外层。
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		h = mws[i](h)
	}
	return h
}
