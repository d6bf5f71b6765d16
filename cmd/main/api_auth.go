package main

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// AuthAPI guards the admin API with a single bearer token.
type AuthAPI struct {
	tokenHash [sha256.Size]byte
	enabled   bool
	logger    *slog.Logger
}

func NewAuthAPI(token string, logger *slog.Logger) *AuthAPI {
	return &AuthAPI{
		tokenHash: sha256.Sum256([]byte(token)),
		enabled:   token != "",
		logger:    logger,
	}
}

// Authenticate checks for a valid "Authorization: Bearer <token>" header.
// Without a configured token every request is refused.
func (a *AuthAPI) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.enabled {
			respondWithError(w, http.StatusForbidden, "Admin API is disabled: no api_token configured")
			return
		}

		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		got := sha256.Sum256([]byte(token))
		if subtle.ConstantTimeCompare(got[:], a.tokenHash[:]) != 1 {
			a.logger.Warn("Rejected admin API request", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
			respondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		err := json.NewEncoder(w).Encode(payload)
		if err != nil {
			slog.Error("Failed to encode JSON response", "error", err)
		}
	}
}
