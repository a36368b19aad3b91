package handler

import (
	"net/http"
	"strconv"

	"github.com/gridarena/server/internal/service"
	"github.com/gridarena/server/pkg/arena"
)

// MatchHandler handles the roster, catalog and match lifecycle endpoints.
type MatchHandler struct {
	svc *service.MatchService
}

// NewMatchHandler creates a MatchHandler.
func NewMatchHandler(svc *service.MatchService) *MatchHandler {
	return &MatchHandler{svc: svc}
}

// ListPlayers handles GET /arena/api/players
func (h *MatchHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.svc.Players(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if players == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// ListUnits handles GET /arena/api/units
func (h *MatchHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.svc.UnitCatalog(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, units)
}

// CreateGame handles POST /arena/api/games/create
func (h *MatchHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player1ID   int64  `json:"player1_id"`
		Player2Name string `json:"player2_name"`
		FieldSize   string `json:"field_size"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Player1ID == 0 || req.Player2Name == "" || req.FieldSize == "" {
		writeError(w, http.StatusBadRequest, "player1_id, player2_name and field_size are required")
		return
	}
	if !requireClaim(w, r, req.Player1ID) {
		return
	}

	m, err := h.svc.CreateChallenge(r.Context(), req.Player1ID, req.Player2Name, req.FieldSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// AcceptGame handles POST /arena/api/games/{id}/accept
func (h *MatchHandler) AcceptGame(w http.ResponseWriter, r *http.Request) {
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

	state, err := h.svc.Accept(r.Context(), id, req.PlayerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse(state, nil))
}

// DeclineGame handles POST /arena/api/games/{id}/decline
func (h *MatchHandler) DeclineGame(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.Decline(r.Context(), id, req.PlayerID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "declined"})
}

// PendingGames handles GET /arena/api/games/pending?player_id=N
func (h *MatchHandler) PendingGames(w http.ResponseWriter, r *http.Request) {
	playerID, err := strconv.ParseInt(r.URL.Query().Get("player_id"), 10, 64)
	if err != nil || playerID <= 0 {
		writeError(w, http.StatusBadRequest, "player_id query parameter is required")
		return
	}
	pending, err := h.svc.Pending(r.Context(), playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if pending == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

// GetState handles GET /arena/api/games/{id}/state?since=ordinal
func (h *MatchHandler) GetState(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	var since int64
	if raw := r.URL.Query().Get("since"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "invalid since ordinal")
			return
		}
		since = v
	}

	state, events, err := h.svc.State(r.Context(), id, since)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse(state, events))
}

// StackActions handles GET /arena/api/games/{id}/units/{stack_id}/actions
func (h *MatchHandler) StackActions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	stackID, ok := pathID(r, "stack_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid unit id")
		return
	}

	moves, targets, err := h.svc.StackActions(r.Context(), id, stackID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	type targetView struct {
		ID int64 `json:"id"`
		X  int   `json:"x"`
		Y  int   `json:"y"`
	}
	resp := struct {
		CanMove   []arena.Cell `json:"can_move"`
		CanAttack []targetView `json:"can_attack"`
	}{CanMove: []arena.Cell{}, CanAttack: []targetView{}}
	resp.CanMove = append(resp.CanMove, moves...)
	for _, tgt := range targets {
		resp.CanAttack = append(resp.CanAttack, targetView{ID: tgt.ID, X: tgt.X, Y: tgt.Y})
	}
	writeJSON(w, http.StatusOK, resp)
}

// stackView is the wire shape of one stack inside a state response.
type stackView struct {
	ID       int64          `json:"id"`
	PlayerID int64          `json:"player_id"`
	X        int            `json:"x"`
	Y        int            `json:"y"`
	Count    int            `json:"count"`
	HP       int            `json:"hp"`
	HasMoved bool           `json:"has_moved"`
	Deferred bool           `json:"deferred"`
	UnitType arena.UnitType `json:"unit_type"`
}

type stateView struct {
	MatchID       int64         `json:"match_id"`
	Status        arena.Status  `json:"status"`
	Player1ID     int64         `json:"player1_id"`
	Player2ID     int64         `json:"player2_id"`
	CurrentPlayer int64         `json:"current_player_id"`
	WinnerID      int64         `json:"winner_id,omitempty"`
	Draw          bool          `json:"draw,omitempty"`
	Round         int           `json:"round"`
	Width         int           `json:"width"`
	Height        int           `json:"height"`
	Stacks        []stackView   `json:"stacks"`
	Obstacles     []arena.Cell  `json:"obstacles"`
	Events        []arena.Event `json:"events"`
}

func stateResponse(s *arena.State, events []arena.Event) stateView {
	view := stateView{
		MatchID:       s.MatchID,
		Status:        s.Status,
		Player1ID:     s.Player1,
		Player2ID:     s.Player2,
		CurrentPlayer: s.Current,
		WinnerID:      s.Winner,
		Draw:          s.Draw,
		Round:         s.Round,
		Width:         s.Width,
		Height:        s.Height,
		Stacks:        []stackView{},
		Obstacles:     []arena.Cell{},
		Events:        []arena.Event{},
	}
	for _, st := range s.Stacks {
		view.Stacks = append(view.Stacks, stackView{
			ID: st.ID, PlayerID: st.PlayerID, X: st.X, Y: st.Y,
			Count: st.Count, HP: st.HP, HasMoved: st.Acted, Deferred: st.Deferred,
			UnitType: st.Unit,
		})
	}
	view.Obstacles = append(view.Obstacles, s.Obstacles...)
	view.Events = append(view.Events, events...)
	return view
}
