package repository

import (
	"context"

	"github.com/gridarena/server/internal/model"
	"github.com/gridarena/server/pkg/arena"
)

// PlayerRepository defines player data operations.
type PlayerRepository interface {
	List(ctx context.Context) ([]model.Player, error)
	FindByID(ctx context.Context, id int64) (*model.Player, error)
	FindByName(ctx context.Context, username string) (*model.Player, error)
	Army(ctx context.Context, playerID int64) ([]model.ArmyUnit, error)
}

// CatalogRepository defines read-only unit type and field lookups. Rows are
// immutable during a match, so implementations may cache process-wide.
type CatalogRepository interface {
	UnitType(ctx context.Context, id int64) (*arena.UnitType, error)
	UnitTypes(ctx context.Context) ([]arena.UnitType, error)
	Field(ctx context.Context, name string) (*model.Field, error)
}

// MatchRepository is the persistence gateway for matches: the match row, its
// stacks, obstacles and event log. SaveState is atomic and guarded by the
// optimistic version column.
type MatchRepository interface {
	Create(ctx context.Context, p1, p2 int64, field *model.Field, seed int64) (*model.Match, error)
	FindByID(ctx context.Context, id int64) (*model.Match, error)
	PendingFor(ctx context.Context, playerID int64) ([]model.Match, error)
	Delete(ctx context.Context, id int64) error
	LoadState(ctx context.Context, id int64) (*model.LoadedMatch, error)
	SaveState(ctx context.Context, id int64, version int64, state *arena.State, events []arena.Event) error
	EventsSince(ctx context.Context, id int64, afterOrdinal int64) ([]arena.Event, error)
}

// ErrVersionConflict is returned by SaveState when the match row moved on
// since it was loaded.
type versionConflict struct{}

func (versionConflict) Error() string { return "match version conflict" }

// ErrVersionConflict signals an optimistic concurrency failure.
var ErrVersionConflict error = versionConflict{}

// SnapshotCache defines live match snapshot operations (Redis).
type SnapshotCache interface {
	SetSnapshot(ctx context.Context, matchID int64, state *arena.State) error
	GetSnapshot(ctx context.Context, matchID int64) (*arena.State, error)
	DeleteSnapshot(ctx context.Context, matchID int64) error
}
