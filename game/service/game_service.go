package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/towerdefense/game/advisor"
	"github.com/wricardo/mcp-training/towerdefense/game/engine"
	"github.com/wricardo/mcp-training/towerdefense/game/loop"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Player intents
	PlaceTower(ctx context.Context, sessionID string, x, y int, key string) (*PlaceResult, error)
	StartWave(ctx context.Context, sessionID string) (*WaveResult, error)

	// Simulation control
	Step(ctx context.Context, sessionID string, deltaMs float64, ticks int) (*StepResult, error)
	Pause(ctx context.Context, sessionID string) (*SessionInfo, error)
	Resume(ctx context.Context, sessionID string) (*SessionInfo, error)
	SetSpeed(ctx context.Context, sessionID string, speed float64) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*GameView, error)
	GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	RestoreSnapshot(ctx context.Context, sessionID string, snap *engine.Snapshot) (*GameView, error)
	RequestAdvice(ctx context.Context, sessionID string) (*AdviceResult, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
	ListTowers(ctx context.Context, configName string) ([]TowerInfo, error)

	// Close stops every session loop and waits for pending advice
	Close()
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Notifier pushes session updates to connected renderers
type Notifier interface {
	BroadcastState(sessionID string, view engine.StateView)
	BroadcastEvent(sessionID, event string, data interface{})
}

// Session represents an active game session. The engine is only touched with the
// session lock held, so loop ticks and player intents interleave at tick boundaries.
type Session struct {
	ID        string
	Engine    *engine.GameEngine
	Config    *engine.GameConfig
	ConfigID  string
	CreatedAt time.Time

	accessMu     sync.Mutex
	lastAccessed time.Time

	mu        sync.Mutex
	runner    *loop.Runner
	advice    string
	ticks     int
	announced bool
}

// NewSession builds a session with a fresh engine for config
func NewSession(id string, config *engine.GameConfig) (*Session, error) {
	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:           id,
		Engine:       eng,
		Config:       config,
		CreatedAt:    now,
		lastAccessed: now,
		advice:       advisor.InitialAdvice,
	}, nil
}

// Touch records an access now
func (s *Session) Touch() {
	s.TouchAt(time.Now())
}

// TouchAt records an access at t
func (s *Session) TouchAt(t time.Time) {
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	s.lastAccessed = t
}

// LastAccessed returns the time of the latest access
func (s *Session) LastAccessed() time.Time {
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	return s.lastAccessed
}

// Step runs one engine tick. It implements loop.Target.
func (s *Session) Step(deltaMs float64) engine.TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticks++
	return s.Engine.Tick(deltaMs)
}

// Speed returns the engine's game speed. It implements loop.Target.
func (s *Session) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Engine.State().GameSpeed
}

// WithEngine runs fn with the session lock held
func (s *Session) WithEngine(fn func(e *engine.GameEngine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.Engine)
}

// View returns the renderer export under the session lock
func (s *Session) View() engine.StateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Engine.View()
}

// Ticks returns how many ticks the session has run
func (s *Session) Ticks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

func (s *Session) Advice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advice
}

func (s *Session) SetAdvice(text string) {
	s.mu.Lock()
	s.advice = text
	s.mu.Unlock()
}

func (s *Session) Runner() *loop.Runner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner
}

func (s *Session) SetRunner(r *loop.Runner) {
	s.mu.Lock()
	s.runner = r
	s.mu.Unlock()
}

// StopRunner stops the session loop, if any, and waits for the running tick
func (s *Session) StopRunner() {
	if r := s.Runner(); r != nil {
		r.Stop()
	}
}

// announceGameOver reports true the first time it sees a finished game
func (s *Session) announceGameOver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Engine.IsGameOver() {
		s.announced = false
		return false
	}
	if s.announced {
		return false
	}
	s.announced = true
	return true
}
