package handler

import (
	"net/http"

	"github.com/animaweaver/chatstore/internal/api/response"
	"github.com/animaweaver/chatstore/internal/store"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including storage availability
func ReadyCheck(kv store.KV) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var probe []struct{}
		if err := kv.Load(store.ChatsKey, &probe); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "storage not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}
