package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/gridarena/server/internal/repository"
	"github.com/gridarena/server/pkg/arena"
)

// ActionResult is the outcome of a committed action, shaped for the wire
// response.
type ActionResult struct {
	Message       string
	TurnSwitched  bool
	Status        arena.Status
	WinnerID      int64
	Draw          bool
	CurrentPlayer int64
	Events        []arena.Event
}

// ActionService orchestrates one action: serialize on the match lock, load
// the fresh state, run the engine, persist atomically and publish.
type ActionService struct {
	matches  repository.MatchRepository
	cache    repository.SnapshotCache
	registry *Registry
	hub      Broadcaster
}

// NewActionService creates an ActionService.
func NewActionService(matches repository.MatchRepository, cache repository.SnapshotCache,
	registry *Registry, hub Broadcaster) *ActionService {
	return &ActionService{matches: matches, cache: cache, registry: registry, hub: hub}
}

// Submit applies one action to a match. Preconditions are rechecked by the
// engine against the state loaded inside the lock, so a request valid at read
// time can still come back stale. A version conflict on save is retried once
// against a fresh load before surfacing as conflict.
func (s *ActionService) Submit(ctx context.Context, matchID int64, action arena.Action) (*ActionResult, error) {
	release, err := s.registry.Acquire(ctx, matchID)
	if err != nil {
		return nil, err
	}
	defer release()

	res, err := s.apply(ctx, matchID, action)
	if err == nil || !errors.Is(err, repository.ErrVersionConflict) {
		return res, err
	}

	log.Warn().Int64("matchId", matchID).Msg("Version conflict on save, retrying once")
	res, err = s.apply(ctx, matchID, action)
	if errors.Is(err, repository.ErrVersionConflict) {
		return nil, &arena.Refusal{Kind: arena.KindConflict, Msg: "match state changed concurrently, try again"}
	}
	return res, err
}

// Surrender concedes the match for the given player. Legal whenever the match
// is active, turn or not.
func (s *ActionService) Surrender(ctx context.Context, matchID, playerID int64) (*ActionResult, error) {
	return s.Submit(ctx, matchID, arena.Action{PlayerID: playerID, Kind: arena.ActionSurrender})
}

func (s *ActionService) apply(ctx context.Context, matchID int64, action arena.Action) (*ActionResult, error) {
	lm, err := s.matches.LoadState(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if lm == nil {
		return nil, ErrMatchNotFound
	}
	state := lm.State
	before := state.Current

	d := arena.NewDice(state.Seed, state.Rolls)
	evs, err := arena.Apply(state, action, d)
	if err != nil {
		return nil, err
	}
	state.Rolls = d.Rolls()

	if err := s.matches.SaveState(ctx, matchID, lm.Version, state, evs); err != nil {
		return nil, err
	}
	s.publish(ctx, state, evs)

	log.Info().Int64("matchId", matchID).Int64("playerId", action.PlayerID).
		Int64("stackId", action.StackID).Str("action", string(action.Kind)).
		Int("events", len(evs)).Msg("Action committed")

	res := &ActionResult{
		TurnSwitched:  state.Current != before || state.Status == arena.StatusCompleted,
		Status:        state.Status,
		WinnerID:      state.Winner,
		Draw:          state.Draw,
		CurrentPlayer: state.Current,
		Events:        evs,
	}
	if len(evs) > 0 {
		res.Message = evs[0].Summary
	}
	return res, nil
}

func (s *ActionService) publish(ctx context.Context, state *arena.State, evs []arena.Event) {
	if s.cache != nil {
		if err := s.cache.SetSnapshot(ctx, state.MatchID, state); err != nil {
			log.Warn().Err(err).Int64("matchId", state.MatchID).Msg("Snapshot cache write failed")
		}
	}
	if s.hub != nil {
		s.hub.BroadcastMatch(state.MatchID, state, evs)
	}
}
