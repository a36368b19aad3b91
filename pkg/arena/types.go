// Package arena implements the battle engine: grid geometry, initiative
// scheduling, action legality, combat resolution and the event log for a
// single two-player match. The package is pure (no I/O, no globals), so a
// match can be loaded, advanced and replayed deterministically.
package arena

// UnitType is an immutable catalog entry describing one kind of creature.
type UnitType struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Damage           int     `json:"damage"`
	Defense          int     `json:"defense"`
	MaxHP            int     `json:"max_hp"`
	MoveRange        int     `json:"move_range"`
	AttackRange      int     `json:"attack_range"` // 1 = melee
	Initiative       int     `json:"initiative"`
	Flying           bool    `json:"flying"`
	Kamikaze         bool    `json:"kamikaze"`
	DodgeChance      float64 `json:"dodge_chance"`
	CritChance       float64 `json:"crit_chance"`
	Luck             float64 `json:"luck"`
	CounterChance    float64 `json:"counter_attack_chance"`
	EffectiveAgainst int64   `json:"effective_against,omitempty"` // unit type ID taking x1.5 damage, 0 = none
}

// Cell is a coordinate on the battle grid.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Stack is a group of creatures of one unit type belonging to one player,
// occupying a single cell. A stack with Count == 0 is dead; its row is kept
// for audit but it never occupies a cell or appears in the turn order.
type Stack struct {
	ID        int64    `json:"id"`
	PlayerID  int64    `json:"player_id"`
	Unit      UnitType `json:"unit_type"`
	X         int      `json:"x"`
	Y         int      `json:"y"`
	Count     int      `json:"count"`
	HP        int      `json:"hp"` // hit points of the front creature, 1..MaxHP while alive
	Acted     bool     `json:"has_acted"`
	Deferred  bool     `json:"deferred"`
	Countered bool     `json:"countered"` // counter-attacked this round
	Morale    int      `json:"morale"`    // reserved, carried but never read by combat
	Fatigue   int      `json:"fatigue"`   // reserved, carried but never read by combat
}

// Alive reports whether the stack still has living creatures.
func (st *Stack) Alive() bool { return st.Count > 0 }

// Pos returns the stack's cell.
func (st *Stack) Pos() Cell { return Cell{st.X, st.Y} }

// TotalHP is the summed hit points of every creature in the stack.
func (st *Stack) TotalHP() int {
	if st.Count <= 0 {
		return 0
	}
	return (st.Count-1)*st.Unit.MaxHP + st.HP
}

// Status is the overall match status.
type Status string

const (
	StatusWaiting    Status = "waiting"     // challenge issued, opponent has not accepted
	StatusInProgress Status = "in_progress" // stacks placed, actions accepted
	StatusCompleted  Status = "completed"
)

// RoundCap is the safety limit on rounds. When the round counter would pass
// it, the match ends: greater total remaining hit points wins, equal is a draw.
const RoundCap = 200

// State is the complete in-memory snapshot of one match. It is assembled from
// persisted rows, mutated only through Apply, and serializes to JSON for the
// live snapshot cache.
type State struct {
	MatchID     int64   `json:"match_id"`
	Player1     int64   `json:"player1_id"`
	Player2     int64   `json:"player2_id"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Status      Status  `json:"status"`
	Current     int64   `json:"current_player_id"`
	Winner      int64   `json:"winner_id,omitempty"`
	Draw        bool    `json:"draw,omitempty"`
	Round       int     `json:"round"`
	Seed        int64   `json:"rng_seed"`
	Rolls       int     `json:"rng_rolls"` // dice draws consumed so far
	NextOrdinal int64   `json:"next_ordinal"`
	Stacks      []*Stack `json:"stacks"`
	Obstacles   []Cell  `json:"obstacles"`
}
