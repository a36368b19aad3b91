package arena

import "fmt"

// ArmyStack is one entry of the roster a player brings into battle.
type ArmyStack struct {
	Unit  UnitType
	Count int
}

// NewState creates the pending state for a freshly issued challenge. Stacks
// are placed by Activate once the opponent accepts.
func NewState(matchID, player1, player2 int64, width, height int, seed int64) *State {
	return &State{
		MatchID:     matchID,
		Player1:     player1,
		Player2:     player2,
		Width:       width,
		Height:      height,
		Status:      StatusWaiting,
		Seed:        seed,
		NextOrdinal: 1,
	}
}

// Activate places both armies and the obstacles, opens round one and points
// the cursor at the fastest stack. Player one spawns along the left column,
// player two along the right, rows spread evenly in roster order. Obstacles
// are drawn from the match dice so activation is reproducible from the seed;
// they never land on spawn columns or occupied cells.
func (s *State) Activate(army1, army2 []ArmyStack, d *Dice) ([]Event, error) {
	if s.Status != StatusWaiting {
		return nil, refuse(KindIllegalAction, "match is not awaiting acceptance")
	}
	if len(army1) == 0 || len(army2) == 0 {
		return nil, refuse(KindIllegalAction, "both players need at least one unit")
	}
	if len(army1) > s.Height || len(army2) > s.Height {
		return nil, refuse(KindIllegalAction, "army does not fit on a field of height %d", s.Height)
	}

	var nextID int64 = 1
	place := func(player int64, army []ArmyStack, x int) {
		n := len(army)
		for i, a := range army {
			s.Stacks = append(s.Stacks, &Stack{
				ID:       nextID,
				PlayerID: player,
				Unit:     a.Unit,
				X:        x,
				Y:        (i*2 + 1) * s.Height / (2 * n),
				Count:    a.Count,
				HP:       a.Unit.MaxHP,
			})
			nextID++
		}
	}
	place(s.Player1, army1, 0)
	place(s.Player2, army2, s.Width-1)

	s.placeObstacles(d)
	s.Rolls = d.Rolls()

	s.Status = StatusInProgress
	s.Round = 1
	cur := s.CurrentStack()
	if cur == nil {
		return nil, refuse(KindInternal, "no stack to activate")
	}
	s.Current = cur.PlayerID

	evs := []Event{s.emit(KindMatchStarted,
		fmt.Sprintf("battle begins on a %dx%d field", s.Width, s.Height),
		MatchStartedPayload{
			Player1: s.Player1,
			Player2: s.Player2,
			Width:   s.Width,
			Height:  s.Height,
			Stacks:  len(s.Stacks),
		})}
	return evs, nil
}

// placeObstacles scatters obstacles over the interior columns, one cell in
// ten, skipping anything occupied. Attempts are bounded so a crowded field
// just ends up with fewer obstacles.
func (s *State) placeObstacles(d *Dice) {
	if s.Width <= 2 {
		return
	}
	want := s.Width * s.Height / 10
	for attempts := 0; len(s.Obstacles) < want && attempts < want*20; attempts++ {
		c := Cell{X: 1 + d.Intn(s.Width-2), Y: d.Intn(s.Height)}
		if s.ObstacleAt(c) || s.StackAt(c) != nil {
			continue
		}
		s.Obstacles = append(s.Obstacles, c)
	}
}
