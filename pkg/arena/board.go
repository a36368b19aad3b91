package arena

import "sort"

// Chebyshev returns max(|dx|, |dy|), the grid metric used for attack range
// and for flying movement.
func Chebyshev(a, b Cell) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// InBounds reports whether the cell lies on the grid.
func (s *State) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < s.Width && c.Y >= 0 && c.Y < s.Height
}

// blocked reports whether a cell is impassable for ground pathing: obstacle
// or any living stack.
func (s *State) blocked(c Cell) bool {
	return s.ObstacleAt(c) || s.StackAt(c) != nil
}

// free reports whether a cell can be occupied: in bounds, no obstacle, no
// living stack. Flying units ignore blockers along the path but land under
// the same rule.
func (s *State) free(c Cell) bool {
	return s.InBounds(c) && !s.ObstacleAt(c) && s.StackAt(c) == nil
}

// neighbors8 are the 8-connected step offsets. Diagonal steps are legal even
// when both orthogonal neighbors are blocked.
var neighbors8 = [8]Cell{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Reach returns the set of cells the stack can move to this activation,
// sorted by (y, x). The stack's own cell is never included.
//
// Ground units expand breadth-first over 8-connected neighbors with uniform
// step cost, never entering blocked cells. Flying units ignore everything in
// between, so their reach is the Chebyshev ball of radius MoveRange minus
// occupied cells.
func (s *State) Reach(st *Stack) []Cell {
	if st == nil || !st.Alive() || st.Unit.MoveRange <= 0 {
		return nil
	}
	from := st.Pos()

	var out []Cell
	if st.Unit.Flying {
		for y := 0; y < s.Height; y++ {
			for x := 0; x < s.Width; x++ {
				c := Cell{x, y}
				if c != from && Chebyshev(from, c) <= st.Unit.MoveRange && s.free(c) {
					out = append(out, c)
				}
			}
		}
		return out
	}

	type node struct {
		cell Cell
		cost int
	}
	visited := map[Cell]bool{from: true}
	queue := []node{{from, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.cost == st.Unit.MoveRange {
			continue
		}
		for _, d := range neighbors8 {
			next := Cell{cur.cell.X + d.X, cur.cell.Y + d.Y}
			if visited[next] || !s.InBounds(next) || s.blocked(next) {
				continue
			}
			visited[next] = true
			queue = append(queue, node{next, cur.cost + 1})
			out = append(out, next)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// CanReach reports whether the stack can move to the target cell this
// activation.
func (s *State) CanReach(st *Stack, target Cell) bool {
	for _, c := range s.Reach(st) {
		if c == target {
			return true
		}
	}
	return false
}

// InAttackRange reports whether the target stack is within the attacker's
// attack range. Range is pure Chebyshev distance: ranged attacks deliberately
// ignore intervening obstacles.
func InAttackRange(att, tgt *Stack) bool {
	return Chebyshev(att.Pos(), tgt.Pos()) <= att.Unit.AttackRange
}

// Attackable returns the living enemy stacks the given stack could attack
// right now, sorted by stack ID.
func (s *State) Attackable(st *Stack) []*Stack {
	var out []*Stack
	for _, other := range s.Living() {
		if other.PlayerID != st.PlayerID && InAttackRange(st, other) {
			out = append(out, other)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
