package model

import (
	"time"

	"github.com/gridarena/server/pkg/arena"
)

// Player represents a registered player.
type Player struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Match represents one battle between two players.
type Match struct {
	ID         int64      `json:"id"`
	Player1ID  int64      `json:"player1_id"`
	Player2ID  int64      `json:"player2_id"`
	FieldName  string     `json:"field_name"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Status     string     `json:"status"` // waiting, in_progress, completed
	CurrentID  int64      `json:"current_player_id,omitempty"`
	WinnerID   int64      `json:"winner_id,omitempty"`
	Draw       bool       `json:"draw,omitempty"`
	Round      int        `json:"round"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Field is a named battle field preset.
type Field struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ArmyUnit is one roster entry a player brings into battle.
type ArmyUnit struct {
	UnitID int64 `json:"unit_id"`
	Count  int   `json:"count"`
}

// LoadedMatch bundles the engine state with the optimistic version of the
// match row it was loaded from. Saves must present the same version.
type LoadedMatch struct {
	State   *arena.State
	Version int64
}
