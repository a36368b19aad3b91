package arena

// strike holds the outcome of one damage pass from attacker to target.
type strike struct {
	Damage int
	Crit   bool
	Lucky  bool
	Dodge  bool
	Killed int
}

// rollStrike resolves one damage pass. Draw order is fixed: dodge, crit,
// luck. A dodged strike consumes only the dodge draw.
//
// Damage arithmetic is integer: base damage times attacker count, then x1.5
// when the attacker's type is effective against the target's, x2 on crit,
// x1.25 on luck, each applied in that order. Group defense (per-creature
// defense times target count) is subtracted last, floored at zero.
func rollStrike(att, tgt *Stack, d *Dice) strike {
	if d.Roll() < tgt.Unit.DodgeChance {
		return strike{Dodge: true}
	}

	dmg := att.Unit.Damage * att.Count
	if att.Unit.EffectiveAgainst != 0 && att.Unit.EffectiveAgainst == tgt.Unit.ID {
		dmg = dmg * 3 / 2
	}
	var res strike
	if d.Roll() < att.Unit.CritChance {
		dmg *= 2
		res.Crit = true
	}
	if d.Roll() < att.Unit.Luck {
		dmg += dmg / 4
		res.Lucky = true
	}

	dmg -= tgt.Unit.Defense * tgt.Count
	if dmg < 0 {
		dmg = 0
	}
	res.Damage = dmg
	res.Killed = applyDamage(tgt, dmg)
	return res
}

// applyDamage deals dmg hit points to the stack: the front creature absorbs
// first, the remainder spills into full-health creatures behind it. Returns
// the number of creatures killed.
func applyDamage(tgt *Stack, dmg int) int {
	if dmg <= 0 || !tgt.Alive() {
		return 0
	}
	if dmg >= tgt.TotalHP() {
		killed := tgt.Count
		tgt.Count = 0
		tgt.HP = 0
		return killed
	}
	if dmg < tgt.HP {
		tgt.HP -= dmg
		return 0
	}
	dmg -= tgt.HP
	killed := 1 + dmg/tgt.Unit.MaxHP
	tgt.Count -= killed
	tgt.HP = tgt.Unit.MaxHP - dmg%tgt.Unit.MaxHP
	return killed
}

// loseOne removes a single creature from the stack (kamikaze self-cost). The
// sacrificed creature is the front one, so a surviving stack presents a fresh
// creature at full health.
func loseOne(st *Stack) {
	if !st.Alive() {
		return
	}
	st.Count--
	if st.Count == 0 {
		st.HP = 0
	} else {
		st.HP = st.Unit.MaxHP
	}
}

// resolveAttack runs the full combat sequence for one attack action: strike,
// kamikaze self-cost, then the counter-attack gate. The kamikaze decrement
// happens before the counter gate, so a kamikaze attacker that destroys
// itself cannot be counter-attacked.
func resolveAttack(s *State, att, tgt *Stack, d *Dice) AttackPayload {
	res := rollStrike(att, tgt, d)

	if att.Unit.Kamikaze {
		loseOne(att)
	}

	payload := AttackPayload{
		AttackerID:  att.ID,
		TargetID:    tgt.ID,
		Damage:      res.Damage,
		Crit:        res.Crit,
		Lucky:       res.Lucky,
		Dodge:       res.Dodge,
		Killed:      res.Killed,
		TargetCount: tgt.Count,
		TargetHP:    tgt.HP,
	}

	melee := Chebyshev(att.Pos(), tgt.Pos()) == 1
	if !res.Dodge && melee && tgt.Alive() && att.Alive() && !tgt.Countered {
		if d.Roll() < tgt.Unit.CounterChance {
			cres := rollStrike(tgt, att, d)
			tgt.Countered = true
			payload.Counter = &CounterStrike{
				Damage:        cres.Damage,
				Crit:          cres.Crit,
				Lucky:         cres.Lucky,
				Dodge:         cres.Dodge,
				Killed:        cres.Killed,
				AttackerCount: att.Count,
				AttackerHP:    att.HP,
			}
		}
	}

	payload.AttackerCount = att.Count
	payload.AttackerHP = att.HP
	return payload
}
