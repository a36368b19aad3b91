package arena

// StackByID returns the stack with the given ID, or nil.
func (s *State) StackByID(id int64) *Stack {
	for _, st := range s.Stacks {
		if st.ID == id {
			return st
		}
	}
	return nil
}

// StackAt returns the living stack occupying the given cell, or nil.
func (s *State) StackAt(c Cell) *Stack {
	for _, st := range s.Stacks {
		if st.Alive() && st.X == c.X && st.Y == c.Y {
			return st
		}
	}
	return nil
}

// StacksOf returns every stack belonging to the given player, dead included.
func (s *State) StacksOf(player int64) []*Stack {
	var out []*Stack
	for _, st := range s.Stacks {
		if st.PlayerID == player {
			out = append(out, st)
		}
	}
	return out
}

// Living returns every stack with living creatures.
func (s *State) Living() []*Stack {
	var out []*Stack
	for _, st := range s.Stacks {
		if st.Alive() {
			out = append(out, st)
		}
	}
	return out
}

// LivingOf returns the living stacks of the given player.
func (s *State) LivingOf(player int64) []*Stack {
	var out []*Stack
	for _, st := range s.Stacks {
		if st.Alive() && st.PlayerID == player {
			out = append(out, st)
		}
	}
	return out
}

// Opponent returns the other player's ID, or 0 if the given ID is not a
// participant.
func (s *State) Opponent(player int64) int64 {
	switch player {
	case s.Player1:
		return s.Player2
	case s.Player2:
		return s.Player1
	}
	return 0
}

// IsPlayer reports whether the given ID is one of the match's two players.
func (s *State) IsPlayer(player int64) bool {
	return player == s.Player1 || player == s.Player2
}

// TotalHP sums the remaining hit points across all living stacks of a player.
func (s *State) TotalHP(player int64) int {
	total := 0
	for _, st := range s.LivingOf(player) {
		total += st.TotalHP()
	}
	return total
}

// ObstacleAt reports whether the given cell holds an obstacle.
func (s *State) ObstacleAt(c Cell) bool {
	for _, o := range s.Obstacles {
		if o == c {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the state. Stacks are copied so mutations on
// the clone never leak into the original.
func (s *State) Clone() *State {
	c := *s
	c.Stacks = make([]*Stack, len(s.Stacks))
	for i, st := range s.Stacks {
		cp := *st
		c.Stacks[i] = &cp
	}
	c.Obstacles = append([]Cell(nil), s.Obstacles...)
	return &c
}
