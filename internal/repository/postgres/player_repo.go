package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gridarena/server/internal/model"
)

// PlayerRepo handles game_users and user_units database operations.
type PlayerRepo struct {
	db *sql.DB
}

// NewPlayerRepo creates a PlayerRepo.
func NewPlayerRepo(db *sql.DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

// List returns all registered players, oldest first.
func (r *PlayerRepo) List(ctx context.Context) ([]model.Player, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, display_name, created_at FROM game_users ORDER BY id LIMIT 100`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []model.Player
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.Username, &p.DisplayName, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// FindByID returns a player by ID, or nil when absent.
func (r *PlayerRepo) FindByID(ctx context.Context, id int64) (*model.Player, error) {
	var p model.Player
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, display_name, created_at FROM game_users WHERE id = $1`, id,
	).Scan(&p.ID, &p.Username, &p.DisplayName, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find player: %w", err)
	}
	return &p, nil
}

// FindByName returns a player by username, or nil when absent.
func (r *PlayerRepo) FindByName(ctx context.Context, username string) (*model.Player, error) {
	var p model.Player
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, display_name, created_at FROM game_users WHERE username = $1`, username,
	).Scan(&p.ID, &p.Username, &p.DisplayName, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find player by name: %w", err)
	}
	return &p, nil
}

// Army returns the roster a player brings into battle. Composition happens
// outside this service; the rows are read as-is.
func (r *PlayerRepo) Army(ctx context.Context, playerID int64) ([]model.ArmyUnit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT unit_id, count FROM user_units WHERE user_id = $1 ORDER BY unit_id`, playerID)
	if err != nil {
		return nil, fmt.Errorf("load army: %w", err)
	}
	defer rows.Close()

	var army []model.ArmyUnit
	for rows.Next() {
		var u model.ArmyUnit
		if err := rows.Scan(&u.UnitID, &u.Count); err != nil {
			return nil, fmt.Errorf("scan army unit: %w", err)
		}
		army = append(army, u)
	}
	return army, rows.Err()
}
