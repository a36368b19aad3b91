package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gridarena/server/internal/model"
	"github.com/gridarena/server/internal/repository"
	"github.com/gridarena/server/pkg/arena"
)

// MatchRepo is the persistence gateway for matches: the games row, the
// battle_units stacks, obstacles and the append-only game_logs stream.
type MatchRepo struct {
	db *sql.DB
}

// NewMatchRepo creates a MatchRepo.
func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// Create inserts a pending challenge in "waiting" status.
func (r *MatchRepo) Create(ctx context.Context, p1, p2 int64, field *model.Field, seed int64) (*model.Match, error) {
	var m model.Match
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO games (player1_id, player2_id, field_name, width, height, rng_seed)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, player1_id, player2_id, field_name, width, height, status, round, created_at`,
		p1, p2, field.Name, field.Width, field.Height, seed,
	).Scan(&m.ID, &m.Player1ID, &m.Player2ID, &m.FieldName, &m.Width, &m.Height, &m.Status, &m.Round, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	return &m, nil
}

// FindByID returns a match row by ID, or nil when absent.
func (r *MatchRepo) FindByID(ctx context.Context, id int64) (*model.Match, error) {
	var m model.Match
	var current, winner sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, player1_id, player2_id, field_name, width, height, status,
		        current_player_id, winner_id, is_draw, round, created_at, started_at, finished_at
		 FROM games WHERE id = $1`, id,
	).Scan(&m.ID, &m.Player1ID, &m.Player2ID, &m.FieldName, &m.Width, &m.Height, &m.Status,
		&current, &winner, &m.Draw, &m.Round, &m.CreatedAt, &m.StartedAt, &m.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find match: %w", err)
	}
	m.CurrentID = current.Int64
	m.WinnerID = winner.Int64
	return &m, nil
}

// PendingFor returns the waiting challenges a player is part of, newest first.
func (r *MatchRepo) PendingFor(ctx context.Context, playerID int64) ([]model.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, player1_id, player2_id, field_name, width, height, status, round, created_at
		 FROM games
		 WHERE status = 'waiting' AND (player1_id = $1 OR player2_id = $1)
		 ORDER BY created_at DESC LIMIT 50`, playerID)
	if err != nil {
		return nil, fmt.Errorf("list pending matches: %w", err)
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		var m model.Match
		if err := rows.Scan(&m.ID, &m.Player1ID, &m.Player2ID, &m.FieldName, &m.Width, &m.Height,
			&m.Status, &m.Round, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Delete removes a match and all associated data (cascades to stacks,
// obstacles and the event log).
func (r *MatchRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	return nil
}

// LoadState assembles the full engine state from the games row, its stacks
// and obstacles, along with the row version the state was read at.
func (r *MatchRepo) LoadState(ctx context.Context, id int64) (*model.LoadedMatch, error) {
	s := &arena.State{}
	var current, winner sql.NullInt64
	var version int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, player1_id, player2_id, width, height, status, current_player_id,
		        winner_id, is_draw, round, rng_seed, rng_rolls, next_ordinal, version
		 FROM games WHERE id = $1`, id,
	).Scan(&s.MatchID, &s.Player1, &s.Player2, &s.Width, &s.Height, &s.Status,
		&current, &winner, &s.Draw, &s.Round, &s.Seed, &s.Rolls, &s.NextOrdinal, &version)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load match: %w", err)
	}
	s.Current = current.Int64
	s.Winner = winner.Int64

	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.player_id, b.x, b.y, b.count, b.hp,
		        b.has_acted, b.deferred, b.countered, b.morale, b.fatigue,
		        u.id, u.name, u.damage, u.defense, u.max_hp, u.move_range, u.attack_range,
		        u.initiative, u.flying, u.kamikaze, u.dodge_chance, u.crit_chance, u.luck,
		        u.counter_attack_chance, u.effective_against_unit_id
		 FROM battle_units b JOIN units u ON u.id = b.unit_id
		 WHERE b.game_id = $1 ORDER BY b.id`, id)
	if err != nil {
		return nil, fmt.Errorf("load stacks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st arena.Stack
		var eff sql.NullInt64
		if err := rows.Scan(&st.ID, &st.PlayerID, &st.X, &st.Y, &st.Count, &st.HP,
			&st.Acted, &st.Deferred, &st.Countered, &st.Morale, &st.Fatigue,
			&st.Unit.ID, &st.Unit.Name, &st.Unit.Damage, &st.Unit.Defense, &st.Unit.MaxHP,
			&st.Unit.MoveRange, &st.Unit.AttackRange, &st.Unit.Initiative, &st.Unit.Flying,
			&st.Unit.Kamikaze, &st.Unit.DodgeChance, &st.Unit.CritChance, &st.Unit.Luck,
			&st.Unit.CounterChance, &eff); err != nil {
			return nil, fmt.Errorf("scan stack: %w", err)
		}
		st.Unit.EffectiveAgainst = eff.Int64
		s.Stacks = append(s.Stacks, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load stacks: %w", err)
	}

	orows, err := r.db.QueryContext(ctx,
		`SELECT x, y FROM obstacles WHERE game_id = $1 ORDER BY y, x`, id)
	if err != nil {
		return nil, fmt.Errorf("load obstacles: %w", err)
	}
	defer orows.Close()

	for orows.Next() {
		var c arena.Cell
		if err := orows.Scan(&c.X, &c.Y); err != nil {
			return nil, fmt.Errorf("scan obstacle: %w", err)
		}
		s.Obstacles = append(s.Obstacles, c)
	}
	if err := orows.Err(); err != nil {
		return nil, fmt.Errorf("load obstacles: %w", err)
	}

	return &model.LoadedMatch{State: s, Version: version}, nil
}

// SaveState persists the state and appends the new events in one transaction.
// The games row is guarded by its version column; a stale version returns
// repository.ErrVersionConflict and nothing is written.
func (r *MatchRepo) SaveState(ctx context.Context, id int64, version int64, state *arena.State, events []arena.Event) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE games
		 SET status = $1, current_player_id = NULLIF($2, 0), winner_id = NULLIF($3, 0),
		     is_draw = $4, round = $5, rng_rolls = $6, next_ordinal = $7,
		     version = version + 1,
		     started_at = CASE WHEN $1 <> 'waiting' AND started_at IS NULL THEN now() ELSE started_at END,
		     finished_at = CASE WHEN $1 = 'completed' AND finished_at IS NULL THEN now() ELSE finished_at END
		 WHERE id = $8 AND version = $9`,
		string(state.Status), state.Current, state.Winner, state.Draw, state.Round,
		state.Rolls, state.NextOrdinal, id, version)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	if n == 0 {
		return repository.ErrVersionConflict
	}

	for _, st := range state.Stacks {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO battle_units (game_id, id, player_id, unit_id, x, y, count, hp,
			                           has_acted, deferred, countered, morale, fatigue)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			 ON CONFLICT (game_id, id) DO UPDATE
			 SET x = EXCLUDED.x, y = EXCLUDED.y, count = EXCLUDED.count, hp = EXCLUDED.hp,
			     has_acted = EXCLUDED.has_acted, deferred = EXCLUDED.deferred,
			     countered = EXCLUDED.countered, morale = EXCLUDED.morale, fatigue = EXCLUDED.fatigue`,
			id, st.ID, st.PlayerID, st.Unit.ID, st.X, st.Y, st.Count, st.HP,
			st.Acted, st.Deferred, st.Countered, st.Morale, st.Fatigue)
		if err != nil {
			return fmt.Errorf("save stack %d: %w", st.ID, err)
		}
	}

	for _, o := range state.Obstacles {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO obstacles (game_id, x, y) VALUES ($1, $2, $3)
			 ON CONFLICT DO NOTHING`, id, o.X, o.Y)
		if err != nil {
			return fmt.Errorf("save obstacle: %w", err)
		}
	}

	for _, ev := range events {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO game_logs (game_id, ordinal, kind, summary, payload, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id, ev.Ordinal, string(ev.Kind), ev.Summary, nullableJSON(ev.Payload), ev.At)
		if err != nil {
			return fmt.Errorf("append event %d: %w", ev.Ordinal, err)
		}
	}

	return tx.Commit()
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

// EventsSince returns the events with ordinal greater than afterOrdinal, in
// ordinal order.
func (r *MatchRepo) EventsSince(ctx context.Context, id int64, afterOrdinal int64) ([]arena.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT game_id, ordinal, kind, summary, payload, created_at
		 FROM game_logs WHERE game_id = $1 AND ordinal > $2 ORDER BY ordinal`, id, afterOrdinal)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []arena.Event
	for rows.Next() {
		var ev arena.Event
		var payload []byte
		if err := rows.Scan(&ev.MatchID, &ev.Ordinal, &ev.Kind, &ev.Summary, &payload, &ev.At); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if len(payload) > 0 {
			ev.Payload = payload
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
