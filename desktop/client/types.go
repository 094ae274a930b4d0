package client

import "time"

// Coordinate is a point in grid space
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GameState is the economy and status of a game
type GameState struct {
	Money      int     `json:"money"`
	Lives      int     `json:"lives"`
	Wave       int     `json:"wave"`
	IsPlaying  bool    `json:"is_playing"`
	IsGameOver bool    `json:"is_game_over"`
	GameSpeed  float64 `json:"game_speed"`
}

// Enemy is an attacker on the path
type Enemy struct {
	ID       string     `json:"id"`
	Type     string     `json:"type"`
	Name     string     `json:"name"`
	HP       float64    `json:"hp"`
	MaxHP    float64    `json:"max_hp"`
	Position Coordinate `json:"position"`
	Frozen   float64    `json:"frozen"`
}

// Tower is a placed defender
type Tower struct {
	ID    string  `json:"id"`
	Key   string  `json:"key"`
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Range float64 `json:"range"`
}

// Projectile is an in-flight shot, drawn between start and target by progress
type Projectile struct {
	ID       string  `json:"id"`
	StartX   float64 `json:"start_x"`
	StartY   float64 `json:"start_y"`
	TargetX  float64 `json:"target_x"`
	TargetY  float64 `json:"target_y"`
	Element  string  `json:"element"`
	Progress float64 `json:"progress"`
}

// StateView is the picture pushed by the server on every update
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

// GameView is the state endpoint response
type GameView struct {
	StateView
	Advice       string   `json:"advice"`
	LivesRisk    string   `json:"lives_risk"`
	CanStartWave bool     `json:"can_start_wave"`
	Affordable   []string `json:"affordable,omitempty"`
	Coverage     float64  `json:"path_coverage"`
}

// Message is one WebSocket push
type Message struct {
	SessionID string     `json:"session_id"`
	State     *StateView `json:"state,omitempty"`
	Event     string     `json:"event,omitempty"`
	Data      any        `json:"data,omitempty"`
}

// SessionInfo is a session as listed by the server
type SessionInfo struct {
	ID         string     `json:"id"`
	ConfigName string     `json:"config_name"`
	CreatedAt  time.Time  `json:"created_at"`
	Running    bool       `json:"running"`
	Paused     bool       `json:"paused"`
	Advice     string     `json:"advice"`
	GameState  *GameState `json:"game_state"`
}

// ConfigInfo is a map available for new sessions
type ConfigInfo struct {
	ConfigID    string `json:"config_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TowerInfo is one catalog entry
type TowerInfo struct {
	Key           string   `json:"key"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Cost          int      `json:"cost"`
	Damage        float64  `json:"damage"`
	Range         float64  `json:"range"`
	AttackSpeed   float64  `json:"attack_speed"`
	Color         string   `json:"color,omitempty"`
	StrongAgainst []string `json:"strong_against"`
}

// PlaceResult is the outcome of a placement
type PlaceResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

// WaveResult is the outcome of a wave start
type WaveResult struct {
	Started   bool   `json:"started"`
	Message   string `json:"message"`
	Wave      int    `json:"wave"`
	Enemies   int    `json:"enemies"`
	EnemyType string `json:"enemy_type,omitempty"`
}
