package handler

import (
	"net/http"
	"strconv"

	"github.com/gridarena/server/internal/auth"
)

// AuthHandler issues development tokens. Identity lives in an external
// service in production; this endpoint only exists when auth is enabled so
// local clients can obtain a bearer token.
type AuthHandler struct {
	jwtMgr *auth.JWTManager
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(jwtMgr *auth.JWTManager) *AuthHandler {
	return &AuthHandler{jwtMgr: jwtMgr}
}

// DevToken handles GET /auth/dev?player_id=N
func (h *AuthHandler) DevToken(w http.ResponseWriter, r *http.Request) {
	playerID, err := strconv.ParseInt(r.URL.Query().Get("player_id"), 10, 64)
	if err != nil || playerID <= 0 {
		writeError(w, http.StatusBadRequest, "player_id query parameter is required")
		return
	}

	token, err := h.jwtMgr.GenerateToken(playerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "player_id": playerID})
}
