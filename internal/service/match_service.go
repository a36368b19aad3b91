package service

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gridarena/server/internal/model"
	"github.com/gridarena/server/internal/repository"
	"github.com/gridarena/server/pkg/arena"
)

var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrMatchNotFound    = errors.New("match not found")
	ErrFieldNotFound    = errors.New("unknown field size")
	ErrSelfChallenge    = errors.New("cannot challenge yourself")
	ErrMatchNotWaiting  = errors.New("match is not awaiting acceptance")
	ErrNotTheChallenged = errors.New("only the challenged player can respond")
	ErrEmptyArmy        = errors.New("player has no army")
)

// Broadcaster pushes committed events to connected clients. The websocket hub
// implements it; tests substitute a recorder.
type Broadcaster interface {
	BroadcastMatch(matchID int64, state *arena.State, events []arena.Event)
}

// MatchService handles the match lifecycle: roster, challenges, activation
// and state reads.
type MatchService struct {
	players  repository.PlayerRepository
	catalog  repository.CatalogRepository
	matches  repository.MatchRepository
	cache    repository.SnapshotCache
	registry *Registry
	hub      Broadcaster
}

// NewMatchService creates a MatchService.
func NewMatchService(players repository.PlayerRepository, catalog repository.CatalogRepository,
	matches repository.MatchRepository, cache repository.SnapshotCache, registry *Registry, hub Broadcaster) *MatchService {
	return &MatchService{players: players, catalog: catalog, matches: matches, cache: cache, registry: registry, hub: hub}
}

// Players returns the roster for the challenge UI.
func (s *MatchService) Players(ctx context.Context) ([]model.Player, error) {
	return s.players.List(ctx)
}

// UnitCatalog returns all unit types.
func (s *MatchService) UnitCatalog(ctx context.Context) ([]arena.UnitType, error) {
	return s.catalog.UnitTypes(ctx)
}

// CreateChallenge issues a challenge from player1 to the named opponent. The
// match starts in waiting status with a crypto-seeded dice stream and holds
// no stacks until the opponent accepts.
func (s *MatchService) CreateChallenge(ctx context.Context, player1ID int64, player2Name, fieldSize string) (*model.Match, error) {
	p1, err := s.players.FindByID(ctx, player1ID)
	if err != nil {
		return nil, err
	}
	if p1 == nil {
		return nil, ErrPlayerNotFound
	}
	p2, err := s.players.FindByName(ctx, player2Name)
	if err != nil {
		return nil, err
	}
	if p2 == nil {
		return nil, ErrPlayerNotFound
	}
	if p1.ID == p2.ID {
		return nil, ErrSelfChallenge
	}
	field, err := s.catalog.Field(ctx, fieldSize)
	if err != nil {
		return nil, err
	}
	if field == nil {
		return nil, ErrFieldNotFound
	}

	seed, err := newSeed()
	if err != nil {
		return nil, err
	}
	m, err := s.matches.Create(ctx, p1.ID, p2.ID, field, seed)
	if err != nil {
		return nil, err
	}
	log.Info().Int64("matchId", m.ID).Int64("playerId", p1.ID).
		Int64("opponentId", p2.ID).Str("field", field.Name).Msg("Challenge created")
	return m, nil
}

// Accept activates a waiting match: both armies are placed on their edge
// columns, obstacles are rolled from the match dice and the first cursor is
// derived. Only the challenged player can accept.
func (s *MatchService) Accept(ctx context.Context, matchID, playerID int64) (*arena.State, error) {
	release, err := s.registry.Acquire(ctx, matchID)
	if err != nil {
		return nil, err
	}
	defer release()

	lm, err := s.matches.LoadState(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if lm == nil {
		return nil, ErrMatchNotFound
	}
	state := lm.State
	if state.Status != arena.StatusWaiting {
		return nil, ErrMatchNotWaiting
	}
	if playerID != state.Player2 {
		return nil, ErrNotTheChallenged
	}

	army1, err := s.loadArmy(ctx, state.Player1)
	if err != nil {
		return nil, err
	}
	army2, err := s.loadArmy(ctx, state.Player2)
	if err != nil {
		return nil, err
	}

	d := arena.NewDice(state.Seed, state.Rolls)
	evs, err := state.Activate(army1, army2, d)
	if err != nil {
		return nil, err
	}

	if err := s.matches.SaveState(ctx, matchID, lm.Version, state, evs); err != nil {
		return nil, err
	}
	s.refreshSnapshot(ctx, state)
	if s.hub != nil {
		s.hub.BroadcastMatch(matchID, state, evs)
	}
	log.Info().Int64("matchId", matchID).Int64("playerId", playerID).
		Int("stacks", len(state.Stacks)).Msg("Match activated")
	return state, nil
}

// Decline deletes a waiting match. Only the challenged player can decline.
func (s *MatchService) Decline(ctx context.Context, matchID, playerID int64) error {
	release, err := s.registry.Acquire(ctx, matchID)
	if err != nil {
		return err
	}
	defer release()

	m, err := s.matches.FindByID(ctx, matchID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMatchNotFound
	}
	if m.Status != string(arena.StatusWaiting) {
		return ErrMatchNotWaiting
	}
	if playerID != m.Player2ID {
		return ErrNotTheChallenged
	}
	if err := s.matches.Delete(ctx, matchID); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.DeleteSnapshot(ctx, matchID); err != nil {
			log.Warn().Err(err).Int64("matchId", matchID).Msg("Failed to drop snapshot")
		}
	}
	log.Info().Int64("matchId", matchID).Int64("playerId", playerID).Msg("Challenge declined")
	return nil
}

// Pending lists the waiting challenges a player is part of.
func (s *MatchService) Pending(ctx context.Context, playerID int64) ([]model.Match, error) {
	return s.matches.PendingFor(ctx, playerID)
}

// State returns the current snapshot plus the event tail after the given
// ordinal (0 = full log). Reads prefer the cache and fall back to Postgres.
func (s *MatchService) State(ctx context.Context, matchID, sinceOrdinal int64) (*arena.State, []arena.Event, error) {
	state, err := s.snapshot(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	if state == nil {
		return nil, nil, ErrMatchNotFound
	}
	events, err := s.matches.EventsSince(ctx, matchID, sinceOrdinal)
	if err != nil {
		return nil, nil, err
	}
	return state, events, nil
}

// StackActions returns the legal destinations and attackable targets for one
// stack, for the client to highlight.
func (s *MatchService) StackActions(ctx context.Context, matchID, stackID int64) ([]arena.Cell, []*arena.Stack, error) {
	state, err := s.snapshot(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	if state == nil {
		return nil, nil, ErrMatchNotFound
	}
	st := state.StackByID(stackID)
	if st == nil {
		return nil, nil, &arena.Refusal{Kind: arena.KindNotFound, Msg: fmt.Sprintf("unit %d not found", stackID)}
	}
	if state.Status != arena.StatusInProgress || !st.Alive() || st.Acted {
		return nil, nil, nil
	}
	return state.Reach(st), state.Attackable(st), nil
}

func (s *MatchService) snapshot(ctx context.Context, matchID int64) (*arena.State, error) {
	if s.cache != nil {
		state, err := s.cache.GetSnapshot(ctx, matchID)
		if err != nil {
			log.Warn().Err(err).Int64("matchId", matchID).Msg("Snapshot cache read failed")
		} else if state != nil {
			return state, nil
		}
	}
	lm, err := s.matches.LoadState(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if lm == nil {
		return nil, nil
	}
	s.refreshSnapshot(ctx, lm.State)
	return lm.State, nil
}

func (s *MatchService) refreshSnapshot(ctx context.Context, state *arena.State) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetSnapshot(ctx, state.MatchID, state); err != nil {
		log.Warn().Err(err).Int64("matchId", state.MatchID).Msg("Snapshot cache write failed")
	}
}

func (s *MatchService) loadArmy(ctx context.Context, playerID int64) ([]arena.ArmyStack, error) {
	rows, err := s.players.Army(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyArmy
	}
	army := make([]arena.ArmyStack, 0, len(rows))
	for _, row := range rows {
		u, err := s.catalog.UnitType(ctx, row.UnitID)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, fmt.Errorf("army references unknown unit %d", row.UnitID)
		}
		army = append(army, arena.ArmyStack{Unit: *u, Count: row.Count})
	}
	return army, nil
}

func newSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("seed match rng: %w", err)
	}
	seed := int64(binary.LittleEndian.Uint64(b[:]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed, nil
}
