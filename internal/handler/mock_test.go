package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gridarena/server/internal/auth"
	"github.com/gridarena/server/internal/model"
	"github.com/gridarena/server/internal/repository"
	"github.com/gridarena/server/internal/service"
	"github.com/gridarena/server/pkg/arena"
)

// --- Mock repositories ---

type mockPlayerRepo struct {
	players map[int64]*model.Player
	armies  map[int64][]model.ArmyUnit
}

func newMockPlayerRepo() *mockPlayerRepo {
	m := &mockPlayerRepo{
		players: make(map[int64]*model.Player),
		armies:  make(map[int64][]model.ArmyUnit),
	}
	m.players[10] = &model.Player{ID: 10, Username: "alice", DisplayName: "Alice", CreatedAt: time.Now()}
	m.players[20] = &model.Player{ID: 20, Username: "bob", DisplayName: "Bob", CreatedAt: time.Now()}
	m.armies[10] = []model.ArmyUnit{{UnitID: 1, Count: 5}}
	m.armies[20] = []model.ArmyUnit{{UnitID: 1, Count: 5}}
	return m
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
	return p, nil
}

func (m *mockPlayerRepo) FindByName(_ context.Context, username string) (*model.Player, error) {
	for _, p := range m.players {
		if p.Username == username {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockPlayerRepo) Army(_ context.Context, playerID int64) ([]model.ArmyUnit, error) {
	return m.armies[playerID], nil
}

type mockCatalogRepo struct{}

func testUnit() arena.UnitType {
	return arena.UnitType{
		ID: 1, Name: "swordsman", Damage: 6, MaxHP: 30,
		MoveRange: 2, AttackRange: 1, Initiative: 8,
	}
}

func (mockCatalogRepo) UnitType(_ context.Context, id int64) (*arena.UnitType, error) {
	if id != 1 {
		return nil, nil
	}
	u := testUnit()
	return &u, nil
}

func (mockCatalogRepo) UnitTypes(_ context.Context) ([]arena.UnitType, error) {
	return []arena.UnitType{testUnit()}, nil
}

func (mockCatalogRepo) Field(_ context.Context, name string) (*model.Field, error) {
	if name != "7x7" {
		return nil, nil
	}
	return &model.Field{Name: "7x7", Width: 7, Height: 7}, nil
}

type mockMatchRepo struct {
	mu       sync.Mutex
	nextID   int64
	matches  map[int64]*model.Match
	states   map[int64]*arena.State
	versions map[int64]int64
	events   map[int64][]arena.Event
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
	if m.versions[id] != version {
		return repository.ErrVersionConflict
	}
	m.versions[id]++
	m.states[id] = state.Clone()
	m.events[id] = append(m.events[id], events...)
	if match, ok := m.matches[id]; ok {
		match.Status = string(state.Status)
		match.WinnerID = state.Winner
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

// apiMux wires real services over the mocks with the production route table.
func apiMux() (*http.ServeMux, *mockMatchRepo) {
	repo := newMockMatchRepo()
	registry := service.NewRegistry(0)
	hub := NewHub()
	matchSvc := service.NewMatchService(newMockPlayerRepo(), mockCatalogRepo{}, repo, nil, registry, hub)
	actionSvc := service.NewActionService(repo, nil, registry, hub)

	matchHandler := NewMatchHandler(matchSvc)
	actionHandler := NewActionHandler(actionSvc)

	api := http.NewServeMux()
	api.HandleFunc("GET /players", matchHandler.ListPlayers)
	api.HandleFunc("GET /units", matchHandler.ListUnits)
	api.HandleFunc("POST /games/create", matchHandler.CreateGame)
	api.HandleFunc("POST /games/{id}/accept", matchHandler.AcceptGame)
	api.HandleFunc("POST /games/{id}/decline", matchHandler.DeclineGame)
	api.HandleFunc("GET /games/pending", matchHandler.PendingGames)
	api.HandleFunc("GET /games/{id}/state", matchHandler.GetState)
	api.HandleFunc("GET /games/{id}/units/{stack_id}/actions", matchHandler.StackActions)
	api.HandleFunc("POST /games/{id}/move", actionHandler.SubmitAction)
	api.HandleFunc("POST /games/{id}/surrender", actionHandler.Surrender)
	return api, repo
}

// newTestRouter mounts the API without auth, as when JWT_SECRET is unset.
func newTestRouter() (http.Handler, *mockMatchRepo) {
	api, repo := apiMux()
	mux := http.NewServeMux()
	mux.Handle("/arena/api/", http.StripPrefix("/arena/api", api))
	return mux, repo
}

// newAuthedRouter mounts the API behind the bearer middleware.
func newAuthedRouter(jwtMgr *auth.JWTManager) (http.Handler, *mockMatchRepo) {
	api, repo := apiMux()
	mux := http.NewServeMux()
	mux.Handle("/arena/api/", http.StripPrefix("/arena/api", auth.Middleware(jwtMgr)(api)))
	return mux, repo
}
