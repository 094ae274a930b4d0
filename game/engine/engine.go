package engine

import (
	"math"

	"github.com/google/uuid"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Simulation
	Tick(deltaMs float64) TickResult
	ElapsedMs() float64

	// Player intents
	PlaceTower(x, y int, key string) bool
	StartNextWave() bool
	CanStartWave() bool
	SetGameSpeed(speed float64) float64

	// State export
	State() GameState
	View() StateView
	Enemies() []Enemy
	Towers() []Tower
	Projectiles() []Projectile
	IsGameOver() bool
	WaveActive() bool

	// Configuration
	Config() *GameConfig

	// Snapshots
	Snapshot() Snapshot
	Restore(snap Snapshot) error
}

// StateView is the read-only picture handed to renderers and agents
type StateView struct {
	State          GameState    `json:"state"`
	Enemies        []Enemy      `json:"enemies"`
	Towers         []Tower      `json:"towers"`
	Projectiles    []Projectile `json:"projectiles"`
	PendingEnemies int          `json:"pending_enemies"`
	WaveActive     bool         `json:"wave_active"`
	ElapsedMs      float64      `json:"elapsed_ms"`
	GridSize       int          `json:"grid_size"`
	Path           []Coordinate `json:"path"`
	ConfigName     string       `json:"config_name"`
}

// GameEngine implements the Engine interface. It owns every mutable piece of a
// single game; callers serialize access to it.
type GameEngine struct {
	config *GameConfig
	path   Path
	chart  TypeChart
	rules  Rules

	state       GameState
	elapsed     float64
	enemies     []Enemy
	spawner     Spawner
	towers      []Tower
	projectiles []Projectile
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	chart := DefaultTypeChart
	if len(config.TypeChart) > 0 {
		chart = TypeChart(config.TypeChart)
	}

	engine := &GameEngine{
		config: config,
		path:   Path(config.Path),
		chart:  chart,
		rules:  config.Rules.WithDefaults(),
		state:  InitGameStateFromConfig(config),
	}

	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with the built-in map
func NewEngineWithDefaults() *GameEngine {
	engine, err := NewEngine(DefaultGameConfig())
	if err != nil {
		panic("engine: built-in config is invalid: " + err.Error())
	}
	return engine
}

// Tick advances the simulation by deltaMs.
//
// Order within a tick: release one pending enemy, move every live enemy, partition
// into escaped/dead/surviving, apply lives and money, resolve combat on the
// survivors, advance projectiles, commit. A tick that ends the game stops after the
// economy step. Once the game is over further ticks do nothing.
func (e *GameEngine) Tick(deltaMs float64) TickResult {
	if e.state.IsGameOver {
		return TickResult{Skipped: true, GameOver: true}
	}
	if deltaMs < 0 || math.IsNaN(deltaMs) {
		deltaMs = 0
	}

	result := TickResult{DeltaMs: deltaMs}
	e.elapsed += deltaMs

	// 1. Spawn
	active := e.enemies
	if next, ok := e.spawner.Release(deltaMs, e.rules.SpawnIntervalMs); ok {
		active = append(active, next)
		result.Spawned = 1
	}

	// 2. Move
	for i := range active {
		MoveEnemy(&active[i], e.path, deltaMs, e.rules.FreezeSpeedFactor)
	}

	// 3. Partition. An enemy on the exit node is an escape even if its hp is gone.
	survivors := make([]Enemy, 0, len(active))
	for _, enemy := range active {
		switch {
		case HasEscaped(&enemy, e.path):
			result.Escaped++
			result.LivesLost++
		case enemy.HP <= 0:
			result.Killed++
			result.MoneyGained += enemy.Reward
		default:
			survivors = append(survivors, enemy)
		}
	}

	// 4. Economy
	if result.LivesLost > 0 || result.MoneyGained > 0 {
		e.state.Lives -= result.LivesLost
		e.state.Money += result.MoneyGained
		if e.state.Lives <= 0 {
			e.state.IsGameOver = true
			e.state.IsPlaying = false
			e.enemies = survivors
			result.GameOver = true
			return result
		}
	}

	// 5. Combat
	attacks, fired := ResolveCombat(e.towers, survivors, e.chart, e.rules, e.elapsed)
	result.Attacks = len(attacks)

	// 6. Projectiles
	projectiles := append(e.projectiles, fired...)
	e.projectiles = AdvanceProjectiles(projectiles, deltaMs, e.rules.ProjectileSpeed)

	// 7. Commit
	e.enemies = survivors
	return result
}

// ElapsedMs returns the simulation clock, the sum of all tick deltas
func (e *GameEngine) ElapsedMs() float64 {
	return e.elapsed
}

// PlaceTower buys the catalog tower key at cell (x, y). It reports false and leaves
// the game untouched when the key is unknown, money is short, the cell is off the
// grid, on the path or already occupied, or the game is over.
func (e *GameEngine) PlaceTower(x, y int, key string) bool {
	if e.state.IsGameOver {
		return false
	}

	cfg, ok := e.config.Towers[key]
	if !ok {
		return false
	}
	if e.state.Money < cfg.Cost {
		return false
	}
	if x < 0 || y < 0 || x >= e.config.GridSize || y >= e.config.GridSize {
		return false
	}
	if e.path.Contains(x, y) {
		return false
	}
	if e.TowerAt(x, y) != nil {
		return false
	}

	e.towers = append(e.towers, Tower{
		ID:             uuid.NewString(),
		Key:            key,
		Name:           cfg.Name,
		Type:           cfg.Type,
		X:              x,
		Y:              y,
		Damage:         cfg.Damage,
		Range:          cfg.Range,
		AttackSpeed:    cfg.AttackSpeed,
		LastAttackTime: 0,
		Level:          1,
		Cost:           cfg.Cost,
	})
	e.state.Money -= cfg.Cost
	return true
}

// TowerAt returns the tower occupying (x, y), or nil
func (e *GameEngine) TowerAt(x, y int) *Tower {
	for i := range e.towers {
		if e.towers[i].X == x && e.towers[i].Y == y {
			return &e.towers[i]
		}
	}
	return nil
}

// CanStartWave reports whether the next wave may be started now
func (e *GameEngine) CanStartWave() bool {
	return !e.state.IsGameOver && !e.spawner.Active && e.spawner.Remaining() == 0 && len(e.enemies) == 0
}

// StartNextWave queues wave Wave+1. It is a no-op while a wave is still releasing,
// while enemies are alive, or after game over.
func (e *GameEngine) StartNextWave() bool {
	if !e.CanStartWave() {
		return false
	}

	next := e.state.Wave + 1
	e.spawner.Load(BuildWave(next, e.path))
	e.state.Wave = next
	e.state.IsPlaying = true
	return true
}

// SetGameSpeed sets the loop's delta multiplier, clamped to the allowed range
func (e *GameEngine) SetGameSpeed(speed float64) float64 {
	if math.IsNaN(speed) {
		speed = 1
	}
	e.state.GameSpeed = math.Max(MinGameSpeed, math.Min(MaxGameSpeed, speed))
	return e.state.GameSpeed
}

// State returns a copy of the economy and session status
func (e *GameEngine) State() GameState {
	return e.state
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.IsGameOver
}

// WaveActive reports whether enemies of the current wave are still waiting to enter
func (e *GameEngine) WaveActive() bool {
	return e.spawner.Active
}

// Enemies returns a copy of the live enemy list in targeting order
func (e *GameEngine) Enemies() []Enemy {
	return append([]Enemy(nil), e.enemies...)
}

// Towers returns a copy of the placed towers in placement order
func (e *GameEngine) Towers() []Tower {
	return append([]Tower(nil), e.towers...)
}

// Projectiles returns a copy of the in-flight projectiles
func (e *GameEngine) Projectiles() []Projectile {
	return append([]Projectile(nil), e.projectiles...)
}

// Config returns the map configuration the engine was built from
func (e *GameEngine) Config() *GameConfig {
	return e.config
}

// View returns a read-only export for renderers
func (e *GameEngine) View() StateView {
	enemies := e.Enemies()
	if enemies == nil {
		enemies = []Enemy{}
	}
	towers := e.Towers()
	if towers == nil {
		towers = []Tower{}
	}
	projectiles := e.Projectiles()
	if projectiles == nil {
		projectiles = []Projectile{}
	}

	return StateView{
		State:          e.state,
		Enemies:        enemies,
		Towers:         towers,
		Projectiles:    projectiles,
		PendingEnemies: e.spawner.Remaining(),
		WaveActive:     e.spawner.Active,
		ElapsedMs:      e.elapsed,
		GridSize:       e.config.GridSize,
		Path:           e.config.Path,
		ConfigName:     e.config.Name,
	}
}
