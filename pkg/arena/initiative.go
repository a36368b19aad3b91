package arena

import "sort"

// TurnOrder returns the living stacks in activation order for the current
// round: initiative descending, then unit type ID ascending, then stack ID
// ascending. The order depends only on the catalog and stack identities, so
// the cursor is re-derivable from the has-acted and deferred flags alone.
func (s *State) TurnOrder() []*Stack {
	order := s.Living()
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.Unit.Initiative != b.Unit.Initiative {
			return a.Unit.Initiative > b.Unit.Initiative
		}
		if a.Unit.ID != b.Unit.ID {
			return a.Unit.ID < b.Unit.ID
		}
		return a.ID < b.ID
	})
	return order
}

// CurrentStack returns the stack whose activation is next: the first pending
// non-deferred stack in turn order, or, once only deferred stacks remain,
// the first pending deferred one. Deferred stacks therefore re-enter at the
// end of the round in their original order, and defer can never deadlock a
// round. Returns nil when every living stack has acted.
func (s *State) CurrentStack() *Stack {
	order := s.TurnOrder()
	for _, st := range order {
		if !st.Acted && !st.Deferred {
			return st
		}
	}
	for _, st := range order {
		if !st.Acted {
			return st
		}
	}
	return nil
}

// advance moves the scheduler after a completed action: starts a new round if
// every living stack has acted, applies the round cap, and repoints the
// current-actor cursor. Emitted events are appended to evs.
func (s *State) advance(evs *[]Event) {
	if s.Status != StatusInProgress {
		return
	}

	if s.CurrentStack() == nil {
		s.Round++
		for _, st := range s.Living() {
			st.Acted = false
			st.Deferred = false
			st.Countered = false
		}
		*evs = append(*evs, s.emit(KindRoundAdvanced, "round advanced",
			RoundPayload{Round: s.Round}))

		if s.Round > RoundCap {
			s.endByCap(evs)
			return
		}
	}

	cur := s.CurrentStack()
	if cur == nil {
		return
	}
	if cur.PlayerID != s.Current {
		s.Current = cur.PlayerID
		*evs = append(*evs, s.emit(KindTurnAdvanced, "turn advanced",
			TurnPayload{PlayerID: cur.PlayerID, StackID: cur.ID}))
	}
}

// endByCap terminates a match that hit the round cap: greater total remaining
// hit points wins, equal totals end in a draw.
func (s *State) endByCap(evs *[]Event) {
	hp1, hp2 := s.TotalHP(s.Player1), s.TotalHP(s.Player2)
	switch {
	case hp1 > hp2:
		s.finish(evs, s.Player1, false, ReasonRoundCap)
	case hp2 > hp1:
		s.finish(evs, s.Player2, false, ReasonRoundCap)
	default:
		s.finish(evs, 0, true, ReasonRoundCap)
	}
}
