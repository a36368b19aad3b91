package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/gridarena/server/internal/auth"
	"github.com/gridarena/server/internal/service"
	"github.com/gridarena/server/pkg/arena"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads and decodes JSON from a request body.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// pathID parses an integer path segment.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

// claimAllowed reports whether the caller may act as the claimed player. With
// auth disabled there is no token and any claim passes.
func claimAllowed(r *http.Request, claimed int64) bool {
	authed := auth.PlayerIDFromContext(r.Context())
	return authed == 0 || authed == claimed
}

// requireClaim rejects requests whose bearer token belongs to a different
// player than the one named in the request.
func requireClaim(w http.ResponseWriter, r *http.Request, claimed int64) bool {
	if !claimAllowed(r, claimed) {
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error": "token does not match player_id",
			"kind":  string(arena.KindForbidden),
		})
		return false
	}
	return true
}

var refusalStatus = map[arena.RefusalKind]int{
	arena.KindNotFound:      http.StatusNotFound,
	arena.KindForbidden:     http.StatusForbidden,
	arena.KindIllegalAction: http.StatusBadRequest,
	arena.KindStaleState:    http.StatusConflict,
	arena.KindBusy:          http.StatusServiceUnavailable,
	arena.KindConflict:      http.StatusConflict,
	arena.KindInternal:      http.StatusInternalServerError,
}

// writeServiceError maps service and engine errors onto the wire taxonomy.
// Engine refusals carry their kind; lifecycle sentinels are translated here.
func writeServiceError(w http.ResponseWriter, err error) {
	var r *arena.Refusal
	if errors.As(err, &r) {
		msg := r.Msg
		if r.Kind == arena.KindInternal {
			log.Error().Err(err).Msg("Internal engine error")
			msg = "internal error"
		}
		writeJSON(w, refusalStatus[r.Kind], map[string]string{"error": msg, "kind": string(r.Kind)})
		return
	}

	switch {
	case errors.Is(err, service.ErrMatchNotFound), errors.Is(err, service.ErrPlayerNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error(), "kind": string(arena.KindNotFound)})
	case errors.Is(err, service.ErrNotTheChallenged):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error(), "kind": string(arena.KindForbidden)})
	case errors.Is(err, service.ErrMatchNotWaiting):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error(), "kind": string(arena.KindStaleState)})
	case errors.Is(err, service.ErrFieldNotFound), errors.Is(err, service.ErrSelfChallenge), errors.Is(err, service.ErrEmptyArmy):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "kind": string(arena.KindIllegalAction)})
	default:
		log.Error().Err(err).Msg("Unhandled service error")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error", "kind": string(arena.KindInternal)})
	}
}
