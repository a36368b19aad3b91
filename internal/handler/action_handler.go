package handler

import (
	"net/http"

	"github.com/gridarena/server/internal/service"
	"github.com/gridarena/server/pkg/arena"
)

// ActionHandler handles action submission for active matches.
type ActionHandler struct {
	svc *service.ActionService
}

// NewActionHandler creates an ActionHandler.
func NewActionHandler(svc *service.ActionService) *ActionHandler {
	return &ActionHandler{svc: svc}
}

type actionRequest struct {
	PlayerID int64  `json:"player_id"`
	UnitID   int64  `json:"unit_id"`
	Action   string `json:"action"`
	TargetX  *int   `json:"target_x,omitempty"`
	TargetY  *int   `json:"target_y,omitempty"`
	TargetID int64  `json:"target_id,omitempty"`
}

type actionResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	TurnSwitched  bool   `json:"turn_switched"`
	GameStatus    string `json:"game_status"`
	WinnerID      int64  `json:"winner_id,omitempty"`
	Draw          bool   `json:"draw,omitempty"`
	CurrentPlayer int64  `json:"current_player_id"`
}

// SubmitAction handles POST /arena/api/games/{id}/move
func (h *ActionHandler) SubmitAction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerID == 0 || req.UnitID == 0 {
		writeError(w, http.StatusBadRequest, "player_id and unit_id are required")
		return
	}
	if !requireClaim(w, r, req.PlayerID) {
		return
	}

	action := arena.Action{
		PlayerID: req.PlayerID,
		StackID:  req.UnitID,
		TargetID: req.TargetID,
	}
	switch req.Action {
	case "move":
		if req.TargetX == nil || req.TargetY == nil {
			writeError(w, http.StatusBadRequest, "move requires target_x and target_y")
			return
		}
		action.Kind = arena.ActionMove
		action.TargetX = *req.TargetX
		action.TargetY = *req.TargetY
	case "attack":
		if req.TargetID == 0 {
			writeError(w, http.StatusBadRequest, "attack requires target_id")
			return
		}
		action.Kind = arena.ActionAttack
	case "skip":
		action.Kind = arena.ActionSkip
	case "defer":
		action.Kind = arena.ActionDefer
	default:
		writeError(w, http.StatusBadRequest, "action must be move, attack, skip or defer")
		return
	}

	res, err := h.svc.Submit(r.Context(), id, action)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActionResponse(res))
}

// Surrender handles POST /arena/api/games/{id}/surrender
func (h *ActionHandler) Surrender(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	var req struct {
		PlayerID int64 `json:"player_id"`
	}
	if err := decodeJSON(r, &req); err != nil || req.PlayerID == 0 {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	if !requireClaim(w, r, req.PlayerID) {
		return
	}

	res, err := h.svc.Surrender(r.Context(), id, req.PlayerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActionResponse(res))
}

func toActionResponse(res *service.ActionResult) actionResponse {
	status := "active"
	if res.Status == arena.StatusCompleted {
		status = "completed"
	}
	return actionResponse{
		Success:       true,
		Message:       res.Message,
		TurnSwitched:  res.TurnSwitched,
		GameStatus:    status,
		WinnerID:      res.WinnerID,
		Draw:          res.Draw,
		CurrentPlayer: res.CurrentPlayer,
	}
}
