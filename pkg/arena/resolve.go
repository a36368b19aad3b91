package arena

import "fmt"

// ActionKind identifies a player action.
type ActionKind string

const (
	ActionMove      ActionKind = "move"
	ActionAttack    ActionKind = "attack"
	ActionSkip      ActionKind = "skip"
	ActionDefer     ActionKind = "defer"
	ActionSurrender ActionKind = "surrender"
)

// Action is one player request against a match.
type Action struct {
	PlayerID int64
	StackID  int64
	Kind     ActionKind
	TargetX  int
	TargetY  int
	TargetID int64
}

// Apply validates and applies one action against the state, returning the
// events the action produced. On refusal the state is left untouched and no
// events are emitted. Apply is the sole mutator of match state.
func Apply(s *State, a Action, d *Dice) ([]Event, error) {
	if s.Status != StatusInProgress {
		return nil, refuse(KindIllegalAction, "match is not active")
	}

	if a.Kind == ActionSurrender {
		return applySurrender(s, a)
	}

	if !s.IsPlayer(a.PlayerID) {
		return nil, refuse(KindNotFound, "player %d is not in this match", a.PlayerID)
	}
	if a.PlayerID != s.Current {
		return nil, refuse(KindForbidden, "it is not your turn")
	}
	st := s.StackByID(a.StackID)
	if st == nil {
		return nil, refuse(KindNotFound, "unit %d not found", a.StackID)
	}
	if st.PlayerID != a.PlayerID {
		return nil, refuse(KindForbidden, "unit %d belongs to your opponent", a.StackID)
	}
	if !st.Alive() {
		return nil, refuse(KindIllegalAction, "unit %s is dead", st.Unit.Name)
	}
	if st.Acted {
		// The caller's snapshot was valid when read but this stack has
		// acted since; duplicates land here inside the lock.
		return nil, refuse(KindStaleState, "unit %s has already acted this round", st.Unit.Name)
	}
	if cur := s.CurrentStack(); cur == nil || cur.ID != st.ID {
		return nil, refuse(KindIllegalAction, "it is not this unit's turn")
	}

	switch a.Kind {
	case ActionMove:
		return applyMove(s, st, Cell{a.TargetX, a.TargetY})
	case ActionAttack:
		return applyAttack(s, st, a.TargetID, d)
	case ActionSkip:
		return applySkip(s, st)
	case ActionDefer:
		return applyDefer(s, st)
	default:
		return nil, refuse(KindIllegalAction, "unknown action %q", a.Kind)
	}
}

func applyMove(s *State, st *Stack, target Cell) ([]Event, error) {
	if !s.InBounds(target) {
		return nil, refuse(KindIllegalAction, "(%d,%d) is off the field", target.X, target.Y)
	}
	if s.StackAt(target) != nil {
		return nil, refuse(KindIllegalAction, "(%d,%d) is occupied", target.X, target.Y)
	}
	if s.ObstacleAt(target) {
		return nil, refuse(KindIllegalAction, "(%d,%d) is an obstacle", target.X, target.Y)
	}
	if !s.CanReach(st, target) {
		return nil, refuse(KindIllegalAction, "%s cannot reach (%d,%d)", st.Unit.Name, target.X, target.Y)
	}

	from := st.Pos()
	st.X, st.Y = target.X, target.Y
	st.Acted = true

	var evs []Event
	evs = append(evs, s.emit(KindMove,
		fmt.Sprintf("%s moves to (%d,%d)", st.Unit.Name, target.X, target.Y),
		MovePayload{StackID: st.ID, FromX: from.X, FromY: from.Y, ToX: target.X, ToY: target.Y}))
	s.advance(&evs)
	return evs, nil
}

func applyAttack(s *State, st *Stack, targetID int64, d *Dice) ([]Event, error) {
	tgt := s.StackByID(targetID)
	if tgt == nil {
		return nil, refuse(KindNotFound, "target unit %d not found", targetID)
	}
	if tgt.PlayerID == st.PlayerID {
		return nil, refuse(KindIllegalAction, "cannot attack your own unit")
	}
	if !tgt.Alive() {
		return nil, refuse(KindIllegalAction, "target %s is already dead", tgt.Unit.Name)
	}
	if !InAttackRange(st, tgt) {
		return nil, refuse(KindIllegalAction, "%s is out of range", tgt.Unit.Name)
	}

	payload := resolveAttack(s, st, tgt, d)
	st.Acted = true

	summary := fmt.Sprintf("%s attacks %s for %d damage", st.Unit.Name, tgt.Unit.Name, payload.Damage)
	if payload.Dodge {
		summary = fmt.Sprintf("%s dodges the attack from %s", tgt.Unit.Name, st.Unit.Name)
	}

	var evs []Event
	evs = append(evs, s.emit(KindAttack, summary, payload))
	s.checkElimination(&evs)
	s.advance(&evs)
	return evs, nil
}

func applySkip(s *State, st *Stack) ([]Event, error) {
	st.Acted = true
	var evs []Event
	evs = append(evs, s.emit(KindSkip,
		fmt.Sprintf("%s skips its turn", st.Unit.Name),
		StackPayload{StackID: st.ID}))
	s.advance(&evs)
	return evs, nil
}

func applyDefer(s *State, st *Stack) ([]Event, error) {
	if st.Deferred {
		return nil, refuse(KindIllegalAction, "%s already deferred this round", st.Unit.Name)
	}
	st.Deferred = true
	var evs []Event
	evs = append(evs, s.emit(KindDefer,
		fmt.Sprintf("%s defers to the end of the round", st.Unit.Name),
		StackPayload{StackID: st.ID}))
	s.advance(&evs)
	return evs, nil
}

func applySurrender(s *State, a Action) ([]Event, error) {
	if !s.IsPlayer(a.PlayerID) {
		return nil, refuse(KindNotFound, "player %d is not in this match", a.PlayerID)
	}
	var evs []Event
	winner := s.Opponent(a.PlayerID)
	s.Status = StatusCompleted
	s.Winner = winner
	evs = append(evs, s.emit(KindMatchEnded, "match ended by surrender",
		EndPayload{WinnerID: winner, Loser: a.PlayerID, Reason: ReasonSurrender}))
	return evs, nil
}

// checkElimination ends the match when a side has no living stacks left.
// Both sides dying on the same attack (kamikaze) is a draw.
func (s *State) checkElimination(evs *[]Event) {
	if s.Status != StatusInProgress {
		return
	}
	alive1 := len(s.LivingOf(s.Player1)) > 0
	alive2 := len(s.LivingOf(s.Player2)) > 0
	switch {
	case alive1 && alive2:
	case alive1:
		s.finish(evs, s.Player1, false, ReasonElimination)
	case alive2:
		s.finish(evs, s.Player2, false, ReasonElimination)
	default:
		s.finish(evs, 0, true, ReasonElimination)
	}
}
