package arena

import "math/rand"

// Dice is the match's private random stream. It is seeded once per match from
// the persisted seed and counts every draw, so a reloaded match resumes the
// stream exactly where the previous action left it and a replay from draw
// zero reproduces every roll.
//
// Every draw consumes exactly one Float64 from the source, whatever its
// shape, which keeps the draw count sufficient to resume the stream.
type Dice struct {
	src   *rand.Rand
	rolls int
}

// NewDice creates a dice stream from the match seed, discarding the first
// skip draws (the number already consumed by earlier actions).
func NewDice(seed int64, skip int) *Dice {
	d := &Dice{src: rand.New(rand.NewSource(seed))}
	for i := 0; i < skip; i++ {
		d.src.Float64()
	}
	d.rolls = skip
	return d
}

// Roll draws a uniform number in [0, 1).
func (d *Dice) Roll() float64 {
	d.rolls++
	return d.src.Float64()
}

// Intn draws a uniform integer in [0, n).
func (d *Dice) Intn(n int) int {
	return int(d.Roll() * float64(n))
}

// Rolls returns the total number of draws consumed, including skipped ones.
func (d *Dice) Rolls() int {
	return d.rolls
}
