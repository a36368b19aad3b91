package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/gridarena/server/internal/model"
	"github.com/gridarena/server/pkg/arena"
)

// CatalogRepo reads the unit type catalog and field presets. Both are
// immutable at runtime, so the first successful load is cached process-wide.
type CatalogRepo struct {
	db *sql.DB

	mu     sync.RWMutex
	units  map[int64]arena.UnitType
	fields map[string]model.Field
}

// NewCatalogRepo creates a CatalogRepo.
func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) load(ctx context.Context) error {
	r.mu.RLock()
	loaded := r.units != nil
	r.mu.RUnlock()
	if loaded {
		return nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, damage, defense, max_hp, move_range, attack_range, initiative,
		        flying, kamikaze, dodge_chance, crit_chance, luck, counter_attack_chance,
		        effective_against_unit_id
		 FROM units ORDER BY id`)
	if err != nil {
		return fmt.Errorf("load units: %w", err)
	}
	defer rows.Close()

	units := make(map[int64]arena.UnitType)
	for rows.Next() {
		var u arena.UnitType
		var eff sql.NullInt64
		if err := rows.Scan(&u.ID, &u.Name, &u.Damage, &u.Defense, &u.MaxHP, &u.MoveRange,
			&u.AttackRange, &u.Initiative, &u.Flying, &u.Kamikaze, &u.DodgeChance,
			&u.CritChance, &u.Luck, &u.CounterChance, &eff); err != nil {
			return fmt.Errorf("scan unit: %w", err)
		}
		u.EffectiveAgainst = eff.Int64
		units[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load units: %w", err)
	}

	frows, err := r.db.QueryContext(ctx, `SELECT name, width, height FROM fields ORDER BY width`)
	if err != nil {
		return fmt.Errorf("load fields: %w", err)
	}
	defer frows.Close()

	fields := make(map[string]model.Field)
	for frows.Next() {
		var f model.Field
		if err := frows.Scan(&f.Name, &f.Width, &f.Height); err != nil {
			return fmt.Errorf("scan field: %w", err)
		}
		fields[f.Name] = f
	}
	if err := frows.Err(); err != nil {
		return fmt.Errorf("load fields: %w", err)
	}

	r.mu.Lock()
	r.units = units
	r.fields = fields
	r.mu.Unlock()
	return nil
}

// UnitType returns one catalog entry, or nil when the ID is unknown.
func (r *CatalogRepo) UnitType(ctx context.Context, id int64) (*arena.UnitType, error) {
	if err := r.load(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// UnitTypes returns the full catalog ordered by ID.
func (r *CatalogRepo) UnitTypes(ctx context.Context) ([]arena.UnitType, error) {
	if err := r.load(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]arena.UnitType, 0, len(r.units))
	for _, u := range r.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Field returns a field preset by name, or nil when absent.
func (r *CatalogRepo) Field(ctx context.Context, name string) (*model.Field, error) {
	if err := r.load(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fields[name]
	if !ok {
		return nil, nil
	}
	return &f, nil
}
