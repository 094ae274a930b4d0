package service

import (
	"sort"
	"time"

	"github.com/wricardo/mcp-training/towerdefense/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	ConfigName     string            `json:"config_name"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	Running        bool              `json:"running"`
	Paused         bool              `json:"paused"`
	Ticks          int               `json:"ticks"`
	Advice         string            `json:"advice"`
	GameState      *engine.GameState `json:"game_state"`
}

// GameView is the renderer export enriched with decision aids for agents
type GameView struct {
	engine.StateView
	Advice       string   `json:"advice"`
	LivesRisk    string   `json:"lives_risk"`
	CanStartWave bool     `json:"can_start_wave"`
	Affordable   []string `json:"affordable,omitempty"`
	Coverage     float64  `json:"path_coverage"`
}

// PlaceResult contains the result of a tower placement
type PlaceResult struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	Reason    string           `json:"reason,omitempty"` // unknown_tower|insufficient_money|off_grid|on_path|occupied|game_over
	Tower     *engine.Tower    `json:"tower,omitempty"`
	GameState engine.GameState `json:"game_state"`
}

// WaveResult contains the result of a wave start
type WaveResult struct {
	Started   bool                 `json:"started"`
	Message   string               `json:"message"`
	Wave      int                  `json:"wave"`
	Enemies   int                  `json:"enemies"`
	EnemyType engine.ElementType   `json:"enemy_type,omitempty"`
	Counters  []engine.ElementType `json:"counters,omitempty"`
	GameState engine.GameState     `json:"game_state"`
}

// StepResult sums up a run of manual ticks
type StepResult struct {
	TicksRun       int              `json:"ticks_run"`
	TicksRequested int              `json:"ticks_requested"`
	DeltaMs        float64          `json:"delta_ms"`
	Spawned        int              `json:"spawned"`
	Escaped        int              `json:"escaped"`
	Killed         int              `json:"killed"`
	MoneyGained    int              `json:"money_gained"`
	LivesLost      int              `json:"lives_lost"`
	Attacks        int              `json:"attacks"`
	GameOver       bool             `json:"game_over"`
	Truncated      bool             `json:"truncated,omitempty"`
	Limit          int              `json:"limit,omitempty"`
	StoppedReason  string           `json:"stopped_reason,omitempty"`
	LivesRisk      string           `json:"lives_risk"`
	GameState      engine.GameState `json:"game_state"`
}

func (r *StepResult) add(t engine.TickResult) {
	r.TicksRun++
	r.Spawned += t.Spawned
	r.Escaped += t.Escaped
	r.Killed += t.Killed
	r.MoneyGained += t.MoneyGained
	r.LivesLost += t.LivesLost
	r.Attacks += t.Attacks
	r.GameOver = r.GameOver || t.GameOver
}

// AdviceResult carries the latest advisor text for a session
type AdviceResult struct {
	Advice    string `json:"advice"`
	Requested bool   `json:"requested"`
}

// TowerInfo describes one catalog entry
type TowerInfo struct {
	Key string `json:"key"`
	engine.TowerConfig
	StrongAgainst []engine.ElementType `json:"strong_against"`
	Slows         bool                 `json:"slows"`
}

// NewTowerInfos lists the catalog of config sorted by cost, then key
func NewTowerInfos(config *engine.GameConfig) []TowerInfo {
	chart := chartFor(config)

	towers := make([]TowerInfo, 0, len(config.Towers))
	for key, tc := range config.Towers {
		strong := append([]engine.ElementType(nil), chart[tc.Type]...)
		if strong == nil {
			strong = []engine.ElementType{}
		}
		towers = append(towers, TowerInfo{
			Key:           key,
			TowerConfig:   tc,
			StrongAgainst: strong,
			Slows:         engine.IsSlowing(tc.Type),
		})
	}

	sort.Slice(towers, func(i, j int) bool {
		if towers[i].Cost != towers[j].Cost {
			return towers[i].Cost < towers[j].Cost
		}
		return towers[i].Key < towers[j].Key
	})
	return towers
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename     string `json:"filename"`
	ConfigID     string `json:"config_id"` // The identifier to use for session creation
	Name         string `json:"name"`      // Display name
	Description  string `json:"description"`
	GridSize     int    `json:"grid_size"`
	InitialMoney int    `json:"initial_money"`
	InitialLives int    `json:"initial_lives"`
	TowerCount   int    `json:"tower_count"`
	PathLength   int    `json:"path_length"`
}

// NewConfigInfo summarizes config stored as filename
func NewConfigInfo(filename, configID string, config *engine.GameConfig) *ConfigInfo {
	return &ConfigInfo{
		Filename:     filename,
		ConfigID:     configID,
		Name:         config.Name,
		Description:  config.Description,
		GridSize:     config.GridSize,
		InitialMoney: config.InitialMoney,
		InitialLives: config.InitialLives,
		TowerCount:   len(config.Towers),
		PathLength:   len(config.Path),
	}
}
