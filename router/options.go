package router

import (
	"net/http"

	"gaps/internal/groups"
	"gaps/internal/store"
)

type Options struct {
	Store  *store.Store
	Groups *groups.Service

	// system
	Healthz http.HandlerFunc
}
