package handler

import (
	"net/http"

	"github.com/rmacedo/edgeadmin-go/internal/auth"
	"github.com/rmacedo/edgeadmin-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Auth — POST /v1/auth/local-login, GET /v1/auth/me
// ============================================================

func localLoginHandler(localAdmin *auth.LocalAdmin, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "POST /v1/auth/local-login")
		defer span.End()

		var req domain.LocalLoginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Username == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "username and password are required")
			return
		}

		resp, err := localAdmin.Login(&req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func meHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, PrincipalFromContext(r.Context()))
	}
}
