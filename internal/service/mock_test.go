package service

import (
	"context"
	"sync"
	"time"

	"github.com/gridarena/server/internal/model"
	"github.com/gridarena/server/internal/repository"
	"github.com/gridarena/server/pkg/arena"
)

type mockPlayerRepo struct {
	players map[int64]*model.Player
	armies  map[int64][]model.ArmyUnit
}

func newMockPlayerRepo() *mockPlayerRepo {
	return &mockPlayerRepo{
		players: make(map[int64]*model.Player),
		armies:  make(map[int64][]model.ArmyUnit),
	}
}

func (m *mockPlayerRepo) add(id int64, username string, army ...model.ArmyUnit) {
	m.players[id] = &model.Player{ID: id, Username: username, DisplayName: username, CreatedAt: time.Now()}
	m.armies[id] = army
}

func (m *mockPlayerRepo) List(_ context.Context) ([]model.Player, error) {
	var out []model.Player
	for _, p := range m.players {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockPlayerRepo) FindByID(_ context.Context, id int64) (*model.Player, error) {
	p, ok := m.players[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockPlayerRepo) FindByName(_ context.Context, username string) (*model.Player, error) {
	for _, p := range m.players {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockPlayerRepo) Army(_ context.Context, playerID int64) ([]model.ArmyUnit, error) {
	return m.armies[playerID], nil
}

type mockCatalogRepo struct {
	units  map[int64]arena.UnitType
	fields map[string]model.Field
}

func newMockCatalogRepo(units ...arena.UnitType) *mockCatalogRepo {
	m := &mockCatalogRepo{
		units: make(map[int64]arena.UnitType),
		fields: map[string]model.Field{
			"5x5":   {Name: "5x5", Width: 5, Height: 5},
			"7x7":   {Name: "7x7", Width: 7, Height: 7},
			"10x10": {Name: "10x10", Width: 10, Height: 10},
		},
	}
	for _, u := range units {
		m.units[u.ID] = u
	}
	return m
}

func (m *mockCatalogRepo) UnitType(_ context.Context, id int64) (*arena.UnitType, error) {
	u, ok := m.units[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *mockCatalogRepo) UnitTypes(_ context.Context) ([]arena.UnitType, error) {
	var out []arena.UnitType
	for _, u := range m.units {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockCatalogRepo) Field(_ context.Context, name string) (*model.Field, error) {
	f, ok := m.fields[name]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

// mockMatchRepo keeps matches in memory with real optimistic-version
// semantics: loads hand out deep copies, saves check the version and bump it.
type mockMatchRepo struct {
	mu        sync.Mutex
	nextID    int64
	matches   map[int64]*model.Match
	states    map[int64]*arena.State
	versions  map[int64]int64
	events    map[int64][]arena.Event
	conflicts int // fail this many saves with a version conflict first
}

func newMockMatchRepo() *mockMatchRepo {
	return &mockMatchRepo{
		matches:  make(map[int64]*model.Match),
		states:   make(map[int64]*arena.State),
		versions: make(map[int64]int64),
		events:   make(map[int64][]arena.Event),
	}
}

func (m *mockMatchRepo) Create(_ context.Context, p1, p2 int64, field *model.Field, seed int64) (*model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.matches[id] = &model.Match{
		ID: id, Player1ID: p1, Player2ID: p2, FieldName: field.Name,
		Width: field.Width, Height: field.Height, Status: "waiting", CreatedAt: time.Now(),
	}
	m.states[id] = arena.NewState(id, p1, p2, field.Width, field.Height, seed)
	m.versions[id] = 1
	cp := *m.matches[id]
	return &cp, nil
}

func (m *mockMatchRepo) FindByID(_ context.Context, id int64) (*model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.matches[id]
	if !ok {
		return nil, nil
	}
	cp := *match
	return &cp, nil
}

func (m *mockMatchRepo) PendingFor(_ context.Context, playerID int64) ([]model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Match
	for _, match := range m.matches {
		if match.Status == "waiting" && (match.Player1ID == playerID || match.Player2ID == playerID) {
			out = append(out, *match)
		}
	}
	return out, nil
}

func (m *mockMatchRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.matches, id)
	delete(m.states, id)
	delete(m.versions, id)
	delete(m.events, id)
	return nil
}

func (m *mockMatchRepo) LoadState(_ context.Context, id int64) (*model.LoadedMatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[id]
	if !ok {
		return nil, nil
	}
	return &model.LoadedMatch{State: state.Clone(), Version: m.versions[id]}, nil
}

func (m *mockMatchRepo) SaveState(_ context.Context, id int64, version int64, state *arena.State, events []arena.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflicts > 0 {
		m.conflicts--
		return repository.ErrVersionConflict
	}
	if m.versions[id] != version {
		return repository.ErrVersionConflict
	}
	m.versions[id]++
	m.states[id] = state.Clone()
	m.events[id] = append(m.events[id], events...)
	if match, ok := m.matches[id]; ok {
		match.Status = string(state.Status)
		match.CurrentID = state.Current
		match.WinnerID = state.Winner
		match.Draw = state.Draw
		match.Round = state.Round
	}
	return nil
}

func (m *mockMatchRepo) EventsSince(_ context.Context, id int64, afterOrdinal int64) ([]arena.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []arena.Event
	for _, ev := range m.events[id] {
		if ev.Ordinal > afterOrdinal {
			out = append(out, ev)
		}
	}
	return out, nil
}

type mockSnapshotCache struct {
	mu        sync.Mutex
	snapshots map[int64]*arena.State
	sets      int
}

func newMockSnapshotCache() *mockSnapshotCache {
	return &mockSnapshotCache{snapshots: make(map[int64]*arena.State)}
}

func (m *mockSnapshotCache) SetSnapshot(_ context.Context, matchID int64, state *arena.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[matchID] = state.Clone()
	m.sets++
	return nil
}

func (m *mockSnapshotCache) GetSnapshot(_ context.Context, matchID int64) (*arena.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.snapshots[matchID]
	if !ok {
		return nil, nil
	}
	return state.Clone(), nil
}

func (m *mockSnapshotCache) DeleteSnapshot(_ context.Context, matchID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, matchID)
	return nil
}

type mockBroadcaster struct {
	mu     sync.Mutex
	calls  int
	events []arena.Event
}

func (m *mockBroadcaster) BroadcastMatch(_ int64, _ *arena.State, events []arena.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.events = append(m.events, events...)
}
