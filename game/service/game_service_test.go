package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/towerdefense/game/advisor"
	"github.com/wricardo/mcp-training/towerdefense/game/engine"
	"github.com/wricardo/mcp-training/towerdefense/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	mu       sync.Mutex
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	session, err := service.NewSession(id, config)
	if err != nil {
		return nil, err
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, err := m.Get(id); err == nil {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	m.mu.Lock()
	session, exists := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !exists {
		return errors.New("session not found")
	}
	session.StopRunner()
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[id]
	if !exists {
		return errors.New("session not found")
	}
	session.Touch()
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func createTestConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:         "test",
		Description:  "Test configuration",
		GridSize:     5,
		InitialMoney: 100,
		InitialLives: 1,
		Path: []engine.Coordinate{
			{X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2}, {X: 3, Y: 2}, {X: 4, Y: 2},
		},
		Towers: map[string]engine.TowerConfig{
			"CHARMANDER": {Name: "Charmander", Type: engine.Fire, Cost: 50, Damage: 15, Range: 2.5, AttackSpeed: 1000},
			"SQUIRTLE":   {Name: "Squirtle", Type: engine.Water, Cost: 50, Damage: 10, Range: 3, AttackSpeed: 1000},
			"RATTATA":    {Name: "Rattata", Type: engine.Normal, Cost: 25, Damage: 10, Range: 2, AttackSpeed: 700},
		},
	}
}

func NewMockConfigManager() *MockConfigManager {
	defaultConfig := createTestConfig()
	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"test":    defaultConfig,
			"classic": engine.DefaultGameConfig(),
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, errors.New("configuration not found")
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, service.NewConfigInfo(name+".json", name, config))
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["test"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return err
	}
	m.configs[name] = config
	return nil
}

// recordingNotifier implements service.Notifier for testing
type recordingNotifier struct {
	mu     sync.Mutex
	states int
	events []string
}

func (n *recordingNotifier) BroadcastState(sessionID string, view engine.StateView) {
	n.mu.Lock()
	n.states++
	n.mu.Unlock()
}

func (n *recordingNotifier) BroadcastEvent(sessionID, event string, data interface{}) {
	n.mu.Lock()
	n.events = append(n.events, event)
	n.mu.Unlock()
}

func (n *recordingNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	count := 0
	for _, e := range n.events {
		if e == event {
			count++
		}
	}
	return count
}

func newTestService(opts service.Options) (service.GameService, *recordingNotifier) {
	notifier := &recordingNotifier{}
	opts.Notifier = notifier
	svc := service.NewGameServiceWithOptions(NewMockSessionManager(), NewMockConfigManager(), opts)
	return svc, notifier
}

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())

	tests := []struct {
		name       string
		configName string
		wantConfig string
		wantErr    bool
	}{
		{"create with default config", "", "test", false},
		{"create with specific config", "classic", "classic", false},
		{"create with json suffix", "classic.json", "classic", false},
		{"create with invalid config", "nonexistent", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.CreateSession(ctx, tt.configName)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if session.ConfigName != tt.wantConfig {
				t.Errorf("Expected config %s, got %s", tt.wantConfig, session.ConfigName)
			}
			if session.Advice != advisor.InitialAdvice {
				t.Errorf("Expected initial advice, got %q", session.Advice)
			}
			if session.Running {
				t.Error("Expected no loop without auto-run")
			}
		})
	}
}

func TestGameService_ConcurrentGetSession(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())
	created, _ := svc.CreateSession(ctx, "test")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				info, err := svc.GetSession(ctx, created.ID)
				if err != nil {
					t.Errorf("GetSession() error = %v", err)
					return
				}
				if info.LastAccessedAt.Before(info.CreatedAt) {
					t.Errorf("Expected last access after creation, got %v", info.LastAccessedAt)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestGameService_PlaceTower(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newTestService(service.Options{})

	sessionInfo, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	id := sessionInfo.ID

	result, err := svc.PlaceTower(ctx, id, 1, 1, "charmander")
	if err != nil {
		t.Fatalf("PlaceTower() error = %v", err)
	}
	if !result.Success || result.Tower == nil || result.Tower.Key != "CHARMANDER" {
		t.Fatalf("Expected CHARMANDER placed, got %+v", result)
	}
	if result.GameState.Money != 50 {
		t.Errorf("Expected money 50, got %d", result.GameState.Money)
	}
	if notifier.states != 1 {
		t.Errorf("Expected 1 state broadcast, got %d", notifier.states)
	}

	tests := []struct {
		name   string
		x, y   int
		key    string
		reason string
	}{
		{"unknown tower", 0, 0, "MEWTWO", "unknown_tower"},
		{"on path", 2, 2, "RATTATA", "on_path"},
		{"occupied", 1, 1, "RATTATA", "occupied"},
		{"off grid", 5, 0, "RATTATA", "off_grid"},
		{"insufficient money", 0, 0, "SQUIRTLE", "insufficient_money"},
	}

	// Spend down to 25 so SQUIRTLE is unaffordable
	if r, _ := svc.PlaceTower(ctx, id, 0, 4, "RATTATA"); !r.Success {
		t.Fatalf("Expected RATTATA placed, got %+v", r)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.PlaceTower(ctx, id, tt.x, tt.y, tt.key)
			if err != nil {
				t.Fatalf("PlaceTower() error = %v", err)
			}
			if result.Success {
				t.Fatal("Expected placement to be rejected")
			}
			if result.Reason != tt.reason {
				t.Errorf("Expected reason %s, got %s", tt.reason, result.Reason)
			}
			if result.GameState.Money != 25 {
				t.Errorf("Expected money untouched at 25, got %d", result.GameState.Money)
			}
		})
	}

	if _, err := svc.PlaceTower(ctx, "missing", 0, 0, "RATTATA"); err == nil {
		t.Error("Expected error for unknown session")
	}
}

func TestGameService_StartWave(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := service.NewGameServiceWithOptions(NewMockSessionManager(), NewMockConfigManager(), service.Options{
		Advisor:  advisor.Static("Use Fighting against Normal!"),
		Notifier: notifier,
	})

	sessionInfo, _ := svc.CreateSession(ctx, "test")

	result, err := svc.StartWave(ctx, sessionInfo.ID)
	if err != nil {
		t.Fatalf("StartWave() error = %v", err)
	}
	if !result.Started || result.Wave != 1 || result.Enemies != 6 || result.EnemyType != engine.Normal {
		t.Errorf("Unexpected wave result %+v", result)
	}
	if len(result.Counters) != 1 || result.Counters[0] != engine.Fighting {
		t.Errorf("Expected Fighting to counter Normal, got %v", result.Counters)
	}

	again, _ := svc.StartWave(ctx, sessionInfo.ID)
	if again.Started || again.Wave != 1 {
		t.Errorf("Expected second start to be refused while wave 1 runs, got %+v", again)
	}

	svc.Close()

	info, _ := svc.GetSession(ctx, sessionInfo.ID)
	if info.Advice != "Use Fighting against Normal!" {
		t.Errorf("Expected advice to be refreshed on wave start, got %q", info.Advice)
	}
	if notifier.count("advice") != 1 {
		t.Errorf("Expected 1 advice event, got %d", notifier.count("advice"))
	}
}

func TestGameService_Step(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newTestService(service.Options{})

	sessionInfo, _ := svc.CreateSession(ctx, "test")
	id := sessionInfo.ID

	t.Run("defaults", func(t *testing.T) {
		result, err := svc.Step(ctx, id, 0, 0)
		if err != nil {
			t.Fatalf("Step() error = %v", err)
		}
		if result.TicksRun != 1 || result.DeltaMs != service.DefaultStepDeltaMs {
			t.Errorf("Expected one default tick, got %+v", result)
		}
	})

	t.Run("delta too large", func(t *testing.T) {
		_, err := svc.Step(ctx, id, 5000, 1)
		if !errors.Is(err, service.ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("runs until game over", func(t *testing.T) {
		svc.StartWave(ctx, id)

		result, err := svc.Step(ctx, id, 16, 2000)
		if err != nil {
			t.Fatalf("Step() error = %v", err)
		}
		if !result.GameOver || result.StoppedReason != "game_over" {
			t.Fatalf("Expected the undefended wave to end the game, got %+v", result)
		}
		if result.TicksRun >= 2000 {
			t.Errorf("Expected stepping to stop early, ran %d ticks", result.TicksRun)
		}
		if result.LivesLost != 1 || result.GameState.Lives != 0 {
			t.Errorf("Expected one life lost, got %+v", result)
		}
		if result.LivesRisk != "CRITICAL" {
			t.Errorf("Expected CRITICAL risk, got %s", result.LivesRisk)
		}
		if notifier.count("game_over") != 1 {
			t.Errorf("Expected one game_over event, got %d", notifier.count("game_over"))
		}
	})

	t.Run("after game over", func(t *testing.T) {
		result, err := svc.Step(ctx, id, 16, 10)
		if err != nil {
			t.Fatalf("Step() error = %v", err)
		}
		if result.TicksRun != 0 || !result.GameOver {
			t.Errorf("Expected no ticks after game over, got %+v", result)
		}
		if notifier.count("game_over") != 1 {
			t.Errorf("Expected game_over to be announced once, got %d", notifier.count("game_over"))
		}
	})

	t.Run("truncated", func(t *testing.T) {
		other, _ := svc.CreateSession(ctx, "test")
		result, err := svc.Step(ctx, other.ID, 1, service.MaxStepTicks+5)
		if err != nil {
			t.Fatalf("Step() error = %v", err)
		}
		if !result.Truncated || result.TicksRun != service.MaxStepTicks || result.Limit != service.MaxStepTicks {
			t.Errorf("Expected truncation at %d ticks, got %+v", service.MaxStepTicks, result)
		}
	})
}

func TestGameService_AutoRun(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(service.Options{AutoRun: true, FrameRate: 200})
	defer svc.Close()

	sessionInfo, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if !sessionInfo.Running {
		t.Fatal("Expected the session loop to be running")
	}

	if _, err := svc.Step(ctx, sessionInfo.ID, 16, 1); !errors.Is(err, service.ErrLoopRunning) {
		t.Errorf("Expected ErrLoopRunning, got %v", err)
	}

	paused, err := svc.Pause(ctx, sessionInfo.ID)
	if err != nil || !paused.Paused {
		t.Fatalf("Expected paused session, got %+v (%v)", paused, err)
	}
	if _, err := svc.Step(ctx, sessionInfo.ID, 16, 1); err != nil {
		t.Errorf("Expected manual step while paused, got %v", err)
	}

	resumed, _ := svc.Resume(ctx, sessionInfo.ID)
	if resumed.Paused || !resumed.Running {
		t.Errorf("Expected running session after resume, got %+v", resumed)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		info, _ := svc.GetSession(ctx, sessionInfo.ID)
		if info.Ticks > 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Expected the loop to tick on its own")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := svc.DeleteSession(ctx, sessionInfo.ID); err != nil {
		t.Errorf("DeleteSession() error = %v", err)
	}
	if _, err := svc.GetSession(ctx, sessionInfo.ID); err == nil {
		t.Error("Expected session to be gone")
	}
}

func TestGameService_SetSpeed(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())
	sessionInfo, _ := svc.CreateSession(ctx, "test")

	state, err := svc.SetSpeed(ctx, sessionInfo.ID, 10)
	if err != nil {
		t.Fatalf("SetSpeed() error = %v", err)
	}
	if state.GameSpeed != engine.MaxGameSpeed {
		t.Errorf("Expected speed clamped to %v, got %v", engine.MaxGameSpeed, state.GameSpeed)
	}

	if _, err := svc.SetSpeed(ctx, sessionInfo.ID, 0); !errors.Is(err, service.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestGameService_GetGameState(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())
	sessionInfo, _ := svc.CreateSession(ctx, "test")

	view, err := svc.GetGameState(ctx, sessionInfo.ID)
	if err != nil {
		t.Fatalf("GetGameState() error = %v", err)
	}
	if !view.CanStartWave || view.LivesRisk != "SAFE" {
		t.Errorf("Expected a fresh game ready for wave 1, got %+v", view)
	}
	if len(view.Affordable) != 3 || view.Affordable[0] != "RATTATA" {
		t.Errorf("Expected all three towers affordable, got %v", view.Affordable)
	}
	if view.GridSize != 5 || len(view.Path) != 5 || view.ConfigName != "test" {
		t.Errorf("Unexpected map in view %+v", view.StateView)
	}
	if view.Enemies == nil || view.Towers == nil || view.Projectiles == nil {
		t.Error("Expected empty, non-nil entity lists")
	}

	if _, err := svc.GetGameState(ctx, "missing"); err == nil {
		t.Error("Expected error for unknown session")
	}
}

func TestGameService_Snapshot(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())

	source, _ := svc.CreateSession(ctx, "test")
	svc.PlaceTower(ctx, source.ID, 1, 1, "SQUIRTLE")
	svc.StartWave(ctx, source.ID)
	svc.Step(ctx, source.ID, 16, 100)

	snap, err := svc.GetSnapshot(ctx, source.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}

	target, _ := svc.CreateSession(ctx, "test")
	view, err := svc.RestoreSnapshot(ctx, target.ID, snap)
	if err != nil {
		t.Fatalf("RestoreSnapshot() error = %v", err)
	}
	if view.State.Wave != 1 || len(view.Towers) != 1 || view.ElapsedMs != snap.ElapsedMs {
		t.Errorf("Expected restored wave 1 with one tower, got %+v", view.StateView)
	}

	a, _ := svc.Step(ctx, source.ID, 16, 50)
	b, _ := svc.Step(ctx, target.ID, 16, 50)
	if a.GameState != b.GameState || a.Killed != b.Killed || a.Escaped != b.Escaped {
		t.Errorf("Expected identical trajectories, got %+v and %+v", a, b)
	}

	t.Run("invalid snapshot", func(t *testing.T) {
		bad := *snap
		bad.State.Money = -5
		if _, err := svc.RestoreSnapshot(ctx, target.ID, &bad); !errors.Is(err, engine.ErrInvalidSnapshot) {
			t.Errorf("Expected ErrInvalidSnapshot, got %v", err)
		}
		if _, err := svc.RestoreSnapshot(ctx, target.ID, nil); !errors.Is(err, engine.ErrInvalidSnapshot) {
			t.Errorf("Expected ErrInvalidSnapshot for nil, got %v", err)
		}
	})

	t.Run("finished game stays finished", func(t *testing.T) {
		over, _ := svc.CreateSession(ctx, "test")
		ended := *snap
		ended.State.Lives = 0
		ended.State.IsGameOver = true
		if _, err := svc.RestoreSnapshot(ctx, over.ID, &ended); err != nil {
			t.Fatalf("RestoreSnapshot() error = %v", err)
		}

		if _, err := svc.RestoreSnapshot(ctx, over.ID, snap); !errors.Is(err, engine.ErrInvalidSnapshot) {
			t.Errorf("Expected ErrInvalidSnapshot reviving a finished game, got %v", err)
		}
		view, err := svc.GetGameState(ctx, over.ID)
		if err != nil {
			t.Fatalf("GetGameState() error = %v", err)
		}
		if !view.State.IsGameOver {
			t.Error("Expected the session to stay over")
		}
	})

	t.Run("other map", func(t *testing.T) {
		classic, _ := svc.CreateSession(ctx, "classic")
		if _, err := svc.RestoreSnapshot(ctx, classic.ID, snap); !errors.Is(err, engine.ErrInvalidSnapshot) {
			t.Errorf("Expected ErrInvalidSnapshot across maps, got %v", err)
		}
	})
}

func TestGameService_RequestAdvice(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := service.NewGameServiceWithOptions(NewMockSessionManager(), NewMockConfigManager(), service.Options{
		Notifier: notifier,
	})
	sessionInfo, _ := svc.CreateSession(ctx, "test")

	result, err := svc.RequestAdvice(ctx, sessionInfo.ID)
	if err != nil {
		t.Fatalf("RequestAdvice() error = %v", err)
	}
	if !result.Requested || result.Advice != advisor.InitialAdvice {
		t.Errorf("Expected the current advice to be returned, got %+v", result)
	}

	svc.Close()

	info, _ := svc.GetSession(ctx, sessionInfo.ID)
	if info.Advice != advisor.OfflineAdvice {
		t.Errorf("Expected offline advice without an advisor, got %q", info.Advice)
	}
}

func TestGameService_ListTowers(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())

	towers, err := svc.ListTowers(ctx, "")
	if err != nil {
		t.Fatalf("ListTowers() error = %v", err)
	}
	if len(towers) != 3 {
		t.Fatalf("Expected 3 towers, got %d", len(towers))
	}
	if towers[0].Key != "RATTATA" || towers[1].Key != "CHARMANDER" || towers[2].Key != "SQUIRTLE" {
		t.Errorf("Expected towers sorted by cost then key, got %s %s %s", towers[0].Key, towers[1].Key, towers[2].Key)
	}
	if !towers[2].Slows || towers[1].Slows {
		t.Error("Expected only the Water tower to slow")
	}
	if len(towers[1].StrongAgainst) == 0 || towers[1].StrongAgainst[0] != engine.Grass {
		t.Errorf("Expected Fire strong against Grass, got %v", towers[1].StrongAgainst)
	}

	classic, err := svc.ListTowers(ctx, "classic")
	if err != nil || len(classic) != len(engine.DefaultTowers) {
		t.Errorf("Expected the full classic roster, got %d (%v)", len(classic), err)
	}

	if _, err := svc.ListTowers(ctx, "nope"); err == nil {
		t.Error("Expected error for unknown config")
	}
}

func TestGameService_ListAndDeleteSessions(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateSession(ctx, "test"); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
	}

	sessions, _ := svc.ListSessions(ctx)
	if len(sessions) != 3 {
		t.Fatalf("Expected 3 sessions, got %d", len(sessions))
	}

	if err := svc.DeleteSession(ctx, sessions[0].ID); err != nil {
		t.Errorf("DeleteSession() error = %v", err)
	}
	if err := svc.DeleteSession(ctx, sessions[0].ID); err == nil {
		t.Error("Expected error deleting twice")
	}

	sessions, _ = svc.ListSessions(ctx)
	if len(sessions) != 2 {
		t.Errorf("Expected 2 sessions, got %d", len(sessions))
	}
}
