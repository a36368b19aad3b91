package arena

import (
	"encoding/json"
	"time"
)

// Kind identifies an event type in the match log.
type Kind string

const (
	KindMatchStarted  Kind = "match_started"
	KindMove          Kind = "move"
	KindAttack        Kind = "attack"
	KindSkip          Kind = "skip"
	KindDefer         Kind = "defer"
	KindTurnAdvanced  Kind = "turn_advanced"
	KindRoundAdvanced Kind = "round_advanced"
	KindMatchEnded    Kind = "match_ended"
)

// Termination reasons recorded in the match_ended payload.
const (
	ReasonElimination = "elimination"
	ReasonSurrender   = "surrender"
	ReasonRoundCap    = "round_cap"
)

// Event is one append-only record in a match's log. Ordinals are strictly
// increasing per match with no gaps; the full sequence plus the initial
// placement reconstructs the match exactly.
type Event struct {
	MatchID int64           `json:"match_id"`
	Ordinal int64           `json:"ordinal"`
	Kind    Kind            `json:"kind"`
	Summary string          `json:"summary"`
	Payload json.RawMessage `json:"payload,omitempty"`
	At      time.Time       `json:"at"`
}

// MatchStartedPayload records the initial placement parameters.
type MatchStartedPayload struct {
	Player1 int64 `json:"player1_id"`
	Player2 int64 `json:"player2_id"`
	Width   int   `json:"width"`
	Height  int   `json:"height"`
	Stacks  int   `json:"stacks"`
}

// MovePayload records a completed move action.
type MovePayload struct {
	StackID int64 `json:"stack_id"`
	FromX   int   `json:"from_x"`
	FromY   int   `json:"from_y"`
	ToX     int   `json:"to_x"`
	ToY     int   `json:"to_y"`
}

// CounterStrike is the counter-attack sub-record inside an attack payload.
type CounterStrike struct {
	Damage        int  `json:"damage"`
	Crit          bool `json:"crit"`
	Lucky         bool `json:"lucky"`
	Dodge         bool `json:"dodge"`
	Killed        int  `json:"killed"`
	AttackerCount int  `json:"attacker_count"` // original attacker, after the counter lands
	AttackerHP    int  `json:"attacker_hp"`
}

// AttackPayload records a resolved attack, including the target's surviving
// strength and the attacker's own (kamikaze and counter-attack both change
// it). Counter is nil when no counter-attack resolved.
type AttackPayload struct {
	AttackerID    int64          `json:"attacker_id"`
	TargetID      int64          `json:"target_id"`
	Damage        int            `json:"damage"`
	Crit          bool           `json:"crit"`
	Lucky         bool           `json:"lucky"`
	Dodge         bool           `json:"dodge"`
	Killed        int            `json:"killed"`
	TargetCount   int            `json:"target_count"`
	TargetHP      int            `json:"target_hp"`
	AttackerCount int            `json:"attacker_count"`
	AttackerHP    int            `json:"attacker_hp"`
	Counter       *CounterStrike `json:"counter"`
}

// StackPayload records a skip or defer action.
type StackPayload struct {
	StackID int64 `json:"stack_id"`
}

// TurnPayload records the cursor handing over to the other player.
type TurnPayload struct {
	PlayerID int64 `json:"current_player_id"`
	StackID  int64 `json:"stack_id"`
}

// RoundPayload records a round boundary.
type RoundPayload struct {
	Round int `json:"round"`
}

// EndPayload records match termination. WinnerID is zero on a draw; Loser is
// set when the match ended by surrender.
type EndPayload struct {
	WinnerID int64  `json:"winner_id,omitempty"`
	Loser    int64  `json:"loser_id,omitempty"`
	Draw     bool   `json:"draw,omitempty"`
	Reason   string `json:"reason"`
}

// emit builds the next event for this match and advances the ordinal counter.
func (s *State) emit(kind Kind, summary string, payload any) Event {
	var raw json.RawMessage
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}
	ev := Event{
		MatchID: s.MatchID,
		Ordinal: s.NextOrdinal,
		Kind:    kind,
		Summary: summary,
		Payload: raw,
		At:      time.Now().UTC(),
	}
	s.NextOrdinal++
	return ev
}

// finish terminates the match and emits the match_ended event.
func (s *State) finish(evs *[]Event, winner int64, draw bool, reason string) {
	s.Status = StatusCompleted
	s.Winner = winner
	s.Draw = draw
	summary := "match ended in a draw"
	if !draw {
		summary = "match ended"
	}
	*evs = append(*evs, s.emit(KindMatchEnded, summary,
		EndPayload{WinnerID: winner, Draw: draw, Reason: reason}))
}
