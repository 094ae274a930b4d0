package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/towerdefense/game/advisor"
	"github.com/wricardo/mcp-training/towerdefense/game/engine"
	"github.com/wricardo/mcp-training/towerdefense/game/loop"
)

const (
	DefaultStepDeltaMs = 16
	MaxStepDeltaMs     = 1000
	MaxStepTicks       = 10000
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrLoopRunning     = errors.New("session loop is running, pause it before stepping")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Options tunes how sessions are driven and observed
type Options struct {
	// AutoRun starts a real-time loop for every new session
	AutoRun   bool
	FrameRate int

	// BroadcastEvery pushes a state update every N loop ticks. Ticks that kill,
	// leak or end the game always push.
	BroadcastEvery int

	Advisor       advisor.Advisor
	AdviceTimeout time.Duration
	Notifier      Notifier
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	opts     Options
	advice   *advisor.Dispatcher
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance with manually stepped sessions
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return NewGameServiceWithOptions(sessions, configs, Options{})
}

// NewGameServiceWithOptions creates a new game service instance
func NewGameServiceWithOptions(sessions SessionManager, configs ConfigManager, opts Options) GameService {
	if opts.BroadcastEvery <= 0 {
		opts.BroadcastEvery = 1
	}
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		opts:     opts,
		advice:   advisor.NewDispatcher(opts.Advisor, opts.AdviceTimeout),
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), ErrConfigNotFound.Error()) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, ErrConfigNotFound)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, ErrConfigNotFound)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := strings.TrimSuffix(configName, ".json")
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}
	sess.ConfigID = configID

	runner := loop.NewRunner(sess, loop.Options{
		FrameRate: s.opts.FrameRate,
		OnTick:    s.onTick(sess),
	})
	sess.SetRunner(runner)
	if s.opts.AutoRun {
		if err := runner.Start(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to start session loop: %w", err)
		}
	}

	log.Printf("[SESSION] created=%s config=%s autorun=%v", sess.ID, configID, s.opts.AutoRun)
	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession stops the session loop and removes the session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	log.Printf("[SESSION] deleted=%s", sessionID)
	return nil
}

// PlaceTower buys a tower for the session. Rejections are reported in the result,
// not as errors.
func (s *gameServiceImpl) PlaceTower(ctx context.Context, sessionID string, x, y int, key string) (*PlaceResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	key = strings.ToUpper(strings.TrimSpace(key))
	result := &PlaceResult{}

	sess.WithEngine(func(e *engine.GameEngine) {
		reason := placementReason(e, x, y, key)
		result.Success = e.PlaceTower(x, y, key)
		if result.Success {
			tower := *e.TowerAt(x, y)
			result.Tower = &tower
			result.Message = fmt.Sprintf("Placed %s (%s) at (%d,%d)", tower.Name, tower.Type, x, y)
		} else {
			if reason == "" {
				reason = "rejected"
			}
			result.Reason = reason
			result.Message = placementMessage(reason, key, x, y)
		}
		result.GameState = e.State()
	})

	status := "OK"
	if !result.Success {
		status = "FAIL:" + result.Reason
	}
	log.Printf("[PLACE] session=%s tower=%s at=(%d,%d) money=%d status=%s",
		sess.ID, key, x, y, result.GameState.Money, status)

	if result.Success {
		s.broadcastState(sess)
	}
	return result, nil
}

// placementReason explains in advance why PlaceTower would refuse the request
func placementReason(e *engine.GameEngine, x, y int, key string) string {
	config := e.Config()
	tower, ok := config.Towers[key]

	switch {
	case e.IsGameOver():
		return "game_over"
	case !ok:
		return "unknown_tower"
	case e.State().Money < tower.Cost:
		return "insufficient_money"
	case x < 0 || y < 0 || x >= config.GridSize || y >= config.GridSize:
		return "off_grid"
	case engine.Path(config.Path).Contains(x, y):
		return "on_path"
	case e.TowerAt(x, y) != nil:
		return "occupied"
	}
	return ""
}

func placementMessage(reason, key string, x, y int) string {
	switch reason {
	case "game_over":
		return "Game over - no more towers can be placed"
	case "unknown_tower":
		return fmt.Sprintf("Unknown tower '%s'. Use list_towers to see the catalog", key)
	case "insufficient_money":
		return fmt.Sprintf("Not enough money for %s", key)
	case "off_grid":
		return fmt.Sprintf("Cell (%d,%d) is outside the grid", x, y)
	case "on_path":
		return fmt.Sprintf("Cell (%d,%d) is on the enemy path", x, y)
	case "occupied":
		return fmt.Sprintf("Cell (%d,%d) already has a tower", x, y)
	}
	return "Placement rejected"
}

// StartWave queues the next wave and asks the advisor for fresh advice
func (s *gameServiceImpl) StartWave(ctx context.Context, sessionID string) (*WaveResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &WaveResult{}
	var towers []engine.Tower

	sess.WithEngine(func(e *engine.GameEngine) {
		result.Started = e.StartNextWave()
		result.GameState = e.State()
		result.Wave = result.GameState.Wave

		switch {
		case result.Started:
			result.Enemies = engine.WaveSize(result.Wave)
			result.EnemyType = engine.WaveType(result.Wave)
			result.Counters = engine.CountersFor(chartFor(e.Config()), result.EnemyType)
			result.Message = fmt.Sprintf("Wave %d started: %d %s enemies incoming", result.Wave, result.Enemies, result.EnemyType)
			towers = e.Towers()
		case result.GameState.IsGameOver:
			result.Message = "Game over - no more waves"
		default:
			result.Message = fmt.Sprintf("Wave %d is still in progress", result.Wave)
		}
	})

	log.Printf("[WAVE] session=%s wave=%d started=%v enemies=%d type=%s",
		sess.ID, result.Wave, result.Started, result.Enemies, result.EnemyType)

	if result.Started {
		s.requestAdvice(sess, result.GameState, towers)
		s.broadcastState(sess)
	}
	return result, nil
}

// Step runs ticks manual ticks of deltaMs each. The session loop must be paused
// or stopped.
func (s *gameServiceImpl) Step(ctx context.Context, sessionID string, deltaMs float64, ticks int) (*StepResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if math.IsNaN(deltaMs) || deltaMs <= 0 {
		deltaMs = DefaultStepDeltaMs
	}
	if deltaMs > MaxStepDeltaMs {
		return nil, fmt.Errorf("%w: delta_ms must be at most %d", ErrInvalidArgument, MaxStepDeltaMs)
	}
	if ticks <= 0 {
		ticks = 1
	}
	if r := sess.Runner(); r != nil && r.IsRunning() && !r.IsPaused() {
		return nil, ErrLoopRunning
	}

	result := &StepResult{TicksRequested: ticks, DeltaMs: deltaMs}
	if ticks > MaxStepTicks {
		ticks = MaxStepTicks
		result.Truncated = true
		result.Limit = MaxStepTicks
	}

	for i := 0; i < ticks; i++ {
		if ctx.Err() != nil {
			result.StoppedReason = "cancelled"
			break
		}
		tick := sess.Step(deltaMs)
		if tick.Skipped {
			result.GameOver = true
			result.StoppedReason = "game_over"
			break
		}
		result.add(tick)
		if tick.GameOver {
			result.StoppedReason = "game_over"
			break
		}
	}

	sess.WithEngine(func(e *engine.GameEngine) {
		view := e.View()
		result.GameState = view.State
		result.LivesRisk = riskCode(engine.AnalyzeLivesRisk(view.State, len(view.Enemies), view.PendingEnemies))
	})

	log.Printf("[STEP] session=%s ticks=%d/%d delta=%.0f killed=%d escaped=%d lives=%d money=%d",
		sess.ID, result.TicksRun, result.TicksRequested, deltaMs, result.Killed, result.Escaped,
		result.GameState.Lives, result.GameState.Money)

	s.broadcastState(sess)
	s.checkGameOver(sess)
	return result, nil
}

// Pause holds the session loop at the next tick boundary
func (s *gameServiceImpl) Pause(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if r := sess.Runner(); r != nil {
		r.Pause()
	}
	log.Printf("[LOOP] session=%s paused", sess.ID)
	return s.sessionInfo(sess), nil
}

// Resume lets the session loop tick again, starting it when auto-run is enabled
func (s *gameServiceImpl) Resume(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if r := sess.Runner(); r != nil {
		r.Resume()
		s.ensureRunning(sess)
	}
	log.Printf("[LOOP] session=%s resumed", sess.ID)
	return s.sessionInfo(sess), nil
}

// SetSpeed changes the session's game speed multiplier
func (s *gameServiceImpl) SetSpeed(ctx context.Context, sessionID string, speed float64) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(speed) || speed <= 0 {
		return nil, fmt.Errorf("%w: speed must be positive", ErrInvalidArgument)
	}

	var state engine.GameState
	sess.WithEngine(func(e *engine.GameEngine) {
		e.SetGameSpeed(speed)
		state = e.State()
	})

	log.Printf("[SPEED] session=%s speed=%.2f", sess.ID, state.GameSpeed)
	s.broadcastState(sess)
	return &state, nil
}

// GetGameState retrieves the current game view
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*GameView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.gameView(sess), nil
}

// GetSnapshot exports the full simulation state of a session
func (s *gameServiceImpl) GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	var snap engine.Snapshot
	sess.WithEngine(func(e *engine.GameEngine) {
		snap = e.Snapshot()
	})
	return &snap, nil
}

// RestoreSnapshot replaces the session's simulation state
func (s *gameServiceImpl) RestoreSnapshot(ctx context.Context, sessionID string, snap *engine.Snapshot) (*GameView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: snapshot is required", engine.ErrInvalidSnapshot)
	}

	sess.WithEngine(func(e *engine.GameEngine) {
		err = e.Restore(*snap)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to restore snapshot: %w", err)
	}

	log.Printf("[RESTORE] session=%s wave=%d elapsed=%.0f", sess.ID, snap.State.Wave, snap.ElapsedMs)

	s.checkGameOver(sess)
	s.ensureRunning(sess)
	s.broadcastState(sess)
	return s.gameView(sess), nil
}

// RequestAdvice asks the advisor for new text and returns the current text
func (s *gameServiceImpl) RequestAdvice(ctx context.Context, sessionID string) (*AdviceResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	var state engine.GameState
	var towers []engine.Tower
	sess.WithEngine(func(e *engine.GameEngine) {
		state = e.State()
		towers = e.Towers()
	})
	s.requestAdvice(sess, state, towers)

	return &AdviceResult{Advice: sess.Advice(), Requested: true}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// ListTowers returns the tower catalog of a configuration, or of the default one
func (s *gameServiceImpl) ListTowers(ctx context.Context, configName string) ([]TowerInfo, error) {
	config := s.configs.GetDefault()
	if configName != "" {
		var err error
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			return nil, err
		}
	}
	return NewTowerInfos(config), nil
}

// Close stops every session loop and waits for pending advice
func (s *gameServiceImpl) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions.List() {
		sess.StopRunner()
	}
	s.advice.Wait()
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	var state engine.GameState
	sess.WithEngine(func(e *engine.GameEngine) {
		state = e.State()
	})

	info := &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
		Ticks:          sess.Ticks(),
		Advice:         sess.Advice(),
		GameState:      &state,
	}
	if r := sess.Runner(); r != nil {
		info.Running = r.IsRunning()
		info.Paused = r.IsPaused()
	}
	return info
}

func (s *gameServiceImpl) gameView(sess *Session) *GameView {
	view := &GameView{}
	sess.WithEngine(func(e *engine.GameEngine) {
		config := e.Config()
		view.StateView = e.View()
		view.CanStartWave = e.CanStartWave()
		view.Affordable = engine.AffordableTowers(config.Towers, view.State.Money)
		view.Coverage = engine.PathCoverage(engine.Path(config.Path), view.Towers)
		view.LivesRisk = riskCode(engine.AnalyzeLivesRisk(view.State, len(view.Enemies), view.PendingEnemies))
	})
	view.Advice = sess.Advice()
	return view
}

// onTick is the loop callback for sess
func (s *gameServiceImpl) onTick(sess *Session) func(engine.TickResult) {
	return func(result engine.TickResult) {
		if result.Skipped {
			return
		}
		if result.GameOver || result.Killed > 0 || result.Escaped > 0 || sess.Ticks()%s.opts.BroadcastEvery == 0 {
			s.broadcastState(sess)
		}
		s.checkGameOver(sess)
	}
}

// ensureRunning restarts a stopped loop when auto-run is on and the game goes on
func (s *gameServiceImpl) ensureRunning(sess *Session) {
	r := sess.Runner()
	if !s.opts.AutoRun || r == nil || r.IsRunning() {
		return
	}

	over := false
	sess.WithEngine(func(e *engine.GameEngine) {
		over = e.IsGameOver()
	})
	if over {
		return
	}
	if err := r.Start(context.Background()); err != nil && !errors.Is(err, loop.ErrAlreadyRunning) {
		log.Printf("Warning: failed to restart loop for session %s: %v", sess.ID, err)
	}
}

func (s *gameServiceImpl) checkGameOver(sess *Session) {
	if !sess.announceGameOver() {
		return
	}

	var state engine.GameState
	sess.WithEngine(func(e *engine.GameEngine) {
		state = e.State()
	})
	log.Printf("[GAMEOVER] session=%s wave=%d money=%d", sess.ID, state.Wave, state.Money)
	s.notifyEvent(sess.ID, "game_over", state)
}

func (s *gameServiceImpl) requestAdvice(sess *Session, state engine.GameState, towers []engine.Tower) {
	s.advice.Request(state, towers, func(text string) {
		sess.SetAdvice(text)
		s.notifyEvent(sess.ID, "advice", map[string]string{"advice": text})
	})
}

func (s *gameServiceImpl) broadcastState(sess *Session) {
	if s.opts.Notifier == nil {
		return
	}
	s.opts.Notifier.BroadcastState(sess.ID, sess.View())
}

func (s *gameServiceImpl) notifyEvent(sessionID, event string, data interface{}) {
	if s.opts.Notifier == nil {
		return
	}
	s.opts.Notifier.BroadcastEvent(sessionID, event, data)
}

func chartFor(config *engine.GameConfig) engine.TypeChart {
	if len(config.TypeChart) > 0 {
		return engine.TypeChart(config.TypeChart)
	}
	return engine.DefaultTypeChart
}

func riskCode(text string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "critical"):
		return "CRITICAL"
	case strings.Contains(t, "danger"):
		return "DANGER"
	case strings.Contains(t, "caution"):
		return "CAUTION"
	case strings.HasPrefix(t, "low"):
		return "LOW"
	case strings.Contains(t, "safe"):
		return "SAFE"
	default:
		return "UNKNOWN"
	}
}
