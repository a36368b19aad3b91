package arena

import "testing"

func speedster(id int64, init int) UnitType {
	u := footman(id)
	u.Initiative = init
	return u
}

func TestTurnOrderSorting(t *testing.T) {
	s := testState(5, 5,
		&Stack{ID: 4, PlayerID: 2, Unit: speedster(2, 5), X: 4, Y: 3, Count: 1, HP: 20},
		&Stack{ID: 1, PlayerID: 1, Unit: speedster(1, 8), X: 0, Y: 0, Count: 1, HP: 20},
		&Stack{ID: 3, PlayerID: 1, Unit: speedster(2, 5), X: 0, Y: 2, Count: 1, HP: 20},
		&Stack{ID: 2, PlayerID: 2, Unit: speedster(3, 5), X: 4, Y: 1, Count: 1, HP: 20},
		&Stack{ID: 5, PlayerID: 1, Unit: speedster(1, 8), X: 0, Y: 4, Count: 0, HP: 0}, // dead
	)

	var got []int64
	for _, st := range s.TurnOrder() {
		got = append(got, st.ID)
	}
	// initiative desc, then unit type ID asc, then stack ID asc; dead excluded
	want := []int64{1, 3, 4, 2}
	if len(got) != len(want) {
		t.Fatalf("turn order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("turn order = %v, want %v", got, want)
		}
	}
}

func TestCurrentStackSkipsActed(t *testing.T) {
	a := &Stack{ID: 1, PlayerID: 1, Unit: speedster(1, 8), X: 0, Y: 0, Count: 1, HP: 20, Acted: true}
	b := &Stack{ID: 2, PlayerID: 2, Unit: speedster(2, 5), X: 4, Y: 0, Count: 1, HP: 20}
	s := testState(5, 5, a, b)

	if cur := s.CurrentStack(); cur == nil || cur.ID != 2 {
		t.Fatalf("expected stack 2 on the cursor, got %+v", cur)
	}
}

func TestCurrentStackPrefersNonDeferred(t *testing.T) {
	a := &Stack{ID: 1, PlayerID: 1, Unit: speedster(1, 8), X: 0, Y: 0, Count: 1, HP: 20, Deferred: true}
	b := &Stack{ID: 2, PlayerID: 2, Unit: speedster(2, 5), X: 4, Y: 0, Count: 1, HP: 20}
	s := testState(5, 5, a, b)

	if cur := s.CurrentStack(); cur == nil || cur.ID != 2 {
		t.Fatalf("expected the non-deferred stack first, got %+v", cur)
	}
	// Once only deferred stacks remain, the earliest in original order acts.
	b.Acted = true
	if cur := s.CurrentStack(); cur == nil || cur.ID != 1 {
		t.Fatalf("expected the deferred stack to come back, got %+v", cur)
	}
}

// Scenario: A (init 10), B (init 5), C (init 1) on one side, Z (init 8)
// opposing. Order A, Z, B, C. A defers; new order Z, B, C, A; after all four
// act the round advances.
func TestDeferMovesToEndOfRound(t *testing.T) {
	a := &Stack{ID: 1, PlayerID: 1, Unit: speedster(1, 10), X: 0, Y: 0, Count: 1, HP: 20}
	z := &Stack{ID: 4, PlayerID: 2, Unit: speedster(4, 8), X: 4, Y: 0, Count: 1, HP: 20}
	b := &Stack{ID: 2, PlayerID: 1, Unit: speedster(2, 5), X: 0, Y: 2, Count: 1, HP: 20}
	c := &Stack{ID: 3, PlayerID: 1, Unit: speedster(3, 1), X: 0, Y: 4, Count: 1, HP: 20}
	s := testState(5, 5, a, z, b, c)
	d := NewDice(1, 0)

	if s.Current != 1 {
		t.Fatalf("expected player 1 to open, got %d", s.Current)
	}

	evs, err := Apply(s, Action{PlayerID: 1, StackID: a.ID, Kind: ActionDefer}, d)
	if err != nil {
		t.Fatalf("defer: %v", err)
	}
	if evs[0].Kind != KindDefer {
		t.Fatalf("expected defer event, got %s", evs[0].Kind)
	}
	if cur := s.CurrentStack(); cur.ID != z.ID {
		t.Fatalf("after defer expected Z on the cursor, got stack %d", cur.ID)
	}

	// Deferring twice in one round is refused.
	if _, err := Apply(s, Action{PlayerID: 1, StackID: a.ID, Kind: ActionDefer}, d); err == nil {
		t.Fatal("second defer of the same stack should be refused")
	}

	for _, step := range []struct {
		player int64
		stack  *Stack
	}{{2, z}, {1, b}, {1, c}, {1, a}} {
		cur := s.CurrentStack()
		if cur.ID != step.stack.ID {
			t.Fatalf("expected stack %d on the cursor, got %d", step.stack.ID, cur.ID)
		}
		evs, err = Apply(s, Action{PlayerID: step.player, StackID: step.stack.ID, Kind: ActionSkip}, d)
		if err != nil {
			t.Fatalf("skip stack %d: %v", step.stack.ID, err)
		}
	}

	// The last skip closed the round.
	var sawRound bool
	for _, ev := range evs {
		if ev.Kind == KindRoundAdvanced {
			sawRound = true
		}
	}
	if !sawRound {
		t.Fatal("expected round_advanced after every stack acted")
	}
	if s.Round != 2 {
		t.Fatalf("expected round 2, got %d", s.Round)
	}
	for _, st := range s.Living() {
		if st.Acted || st.Deferred {
			t.Fatalf("flags must clear at the round boundary: %+v", st)
		}
	}
}

func TestOnlyPendingStackMayDeferOnce(t *testing.T) {
	a := &Stack{ID: 1, PlayerID: 1, Unit: speedster(1, 10), X: 0, Y: 0, Count: 1, HP: 20}
	z := &Stack{ID: 2, PlayerID: 2, Unit: speedster(2, 8), X: 4, Y: 0, Count: 1, HP: 20, Acted: true}
	s := testState(5, 5, a, z)
	d := NewDice(1, 0)

	if _, err := Apply(s, Action{PlayerID: 1, StackID: a.ID, Kind: ActionDefer}, d); err != nil {
		t.Fatalf("defer: %v", err)
	}
	// A is the only pending stack, so the cursor stays on it and it must act.
	if cur := s.CurrentStack(); cur.ID != a.ID {
		t.Fatalf("expected the deferred stack to stay current, got %d", cur.ID)
	}
	if _, err := Apply(s, Action{PlayerID: 1, StackID: a.ID, Kind: ActionSkip}, d); err != nil {
		t.Fatalf("skip after defer: %v", err)
	}
}

func TestRoundCapTiebreak(t *testing.T) {
	strong := &Stack{ID: 1, PlayerID: 1, Unit: speedster(1, 8), X: 0, Y: 0, Count: 2, HP: 20}
	weak := &Stack{ID: 2, PlayerID: 2, Unit: speedster(2, 5), X: 4, Y: 4, Count: 1, HP: 20}
	s := testState(5, 5, strong, weak)
	s.Round = RoundCap
	d := NewDice(1, 0)

	if _, err := Apply(s, Action{PlayerID: 1, StackID: strong.ID, Kind: ActionSkip}, d); err != nil {
		t.Fatalf("skip: %v", err)
	}
	evs, err := Apply(s, Action{PlayerID: 2, StackID: weak.ID, Kind: ActionSkip}, d)
	if err != nil {
		t.Fatalf("skip: %v", err)
	}

	if s.Status != StatusCompleted {
		t.Fatal("match should end at the round cap")
	}
	if s.Winner != 1 {
		t.Errorf("greater total hit points should win: winner = %d", s.Winner)
	}
	last := evs[len(evs)-1]
	if last.Kind != KindMatchEnded {
		t.Errorf("expected final event match_ended, got %s", last.Kind)
	}
}

func TestRoundCapDraw(t *testing.T) {
	one := &Stack{ID: 1, PlayerID: 1, Unit: speedster(1, 8), X: 0, Y: 0, Count: 1, HP: 20}
	two := &Stack{ID: 2, PlayerID: 2, Unit: speedster(2, 5), X: 4, Y: 4, Count: 1, HP: 20}
	s := testState(5, 5, one, two)
	s.Round = RoundCap
	d := NewDice(1, 0)

	if _, err := Apply(s, Action{PlayerID: 1, StackID: one.ID, Kind: ActionSkip}, d); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if _, err := Apply(s, Action{PlayerID: 2, StackID: two.ID, Kind: ActionSkip}, d); err != nil {
		t.Fatalf("skip: %v", err)
	}

	if s.Status != StatusCompleted || !s.Draw || s.Winner != 0 {
		t.Errorf("equal totals at the cap should draw: status=%s draw=%v winner=%d", s.Status, s.Draw, s.Winner)
	}
}
