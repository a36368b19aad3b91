package arena

import (
	"encoding/json"
	"fmt"
)

// Replay re-applies a recorded event stream on top of the initial placement
// and returns the resulting state. Automatic events (turn and round advances,
// eliminations, the round cap) are regenerated by the engine itself; only the
// player actions embedded in the stream are replayed. Because the dice stream
// resumes from the initial state's draw count, the replayed match makes
// exactly the same rolls and its final snapshot equals the persisted one.
func Replay(initial *State, events []Event) (*State, error) {
	s := initial.Clone()
	d := NewDice(s.Seed, s.Rolls)

	for _, ev := range events {
		action, ok, err := actionFromEvent(s, ev)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if _, err := Apply(s, action, d); err != nil {
			return nil, fmt.Errorf("replay ordinal %d (%s): %w", ev.Ordinal, ev.Kind, err)
		}
		s.Rolls = d.Rolls()
	}
	return s, nil
}

// actionFromEvent reconstructs the player action behind an event, if any.
func actionFromEvent(s *State, ev Event) (Action, bool, error) {
	switch ev.Kind {
	case KindMove:
		var p MovePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return Action{}, false, fmt.Errorf("decode move payload: %w", err)
		}
		st := s.StackByID(p.StackID)
		if st == nil {
			return Action{}, false, fmt.Errorf("replay ordinal %d: unknown stack %d", ev.Ordinal, p.StackID)
		}
		return Action{PlayerID: st.PlayerID, StackID: p.StackID, Kind: ActionMove, TargetX: p.ToX, TargetY: p.ToY}, true, nil
	case KindAttack:
		var p AttackPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return Action{}, false, fmt.Errorf("decode attack payload: %w", err)
		}
		st := s.StackByID(p.AttackerID)
		if st == nil {
			return Action{}, false, fmt.Errorf("replay ordinal %d: unknown stack %d", ev.Ordinal, p.AttackerID)
		}
		return Action{PlayerID: st.PlayerID, StackID: p.AttackerID, Kind: ActionAttack, TargetID: p.TargetID}, true, nil
	case KindSkip, KindDefer:
		var p StackPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return Action{}, false, fmt.Errorf("decode %s payload: %w", ev.Kind, err)
		}
		st := s.StackByID(p.StackID)
		if st == nil {
			return Action{}, false, fmt.Errorf("replay ordinal %d: unknown stack %d", ev.Ordinal, p.StackID)
		}
		kind := ActionSkip
		if ev.Kind == KindDefer {
			kind = ActionDefer
		}
		return Action{PlayerID: st.PlayerID, StackID: p.StackID, Kind: kind}, true, nil
	case KindMatchEnded:
		var p EndPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return Action{}, false, fmt.Errorf("decode end payload: %w", err)
		}
		if p.Reason == ReasonSurrender {
			return Action{PlayerID: p.Loser, Kind: ActionSurrender}, true, nil
		}
		return Action{}, false, nil
	default:
		return Action{}, false, nil
	}
}
