package engine

// ElementType is the elemental tag carried by towers and enemies
type ElementType string

const (
	Normal   ElementType = "Normal"
	Fire     ElementType = "Fire"
	Water    ElementType = "Water"
	Grass    ElementType = "Grass"
	Electric ElementType = "Electric"
	Ice      ElementType = "Ice"
	Fighting ElementType = "Fighting"
	Psychic  ElementType = "Psychic"
	Rock     ElementType = "Rock"
	Ghost    ElementType = "Ghost"
	Dragon   ElementType = "Dragon"
)

// AllElementTypes lists every element in enumeration order. Wave typing indexes into it.
var AllElementTypes = []ElementType{
	Normal, Fire, Water, Grass, Electric, Ice, Fighting, Psychic, Rock, Ghost, Dragon,
}

// Valid reports whether t is one of the enumerated element types
func (t ElementType) Valid() bool {
	for _, known := range AllElementTypes {
		if t == known {
			return true
		}
	}
	return false
}

const (
	// Validation constants
	MinGridSize     = 5
	MaxGridSize     = 50
	MinPathLength   = 2
	MaxInitialLives = 1000
	MinGameSpeed    = 0.25
	MaxGameSpeed    = 4.0

	// Economy defaults
	DefaultInitialMoney = 150
	DefaultInitialLives = 20

	// Simulation defaults (milliseconds unless noted)
	DefaultSpawnIntervalMs   = 1000.0
	DefaultFreezeDurationMs  = 2000.0
	DefaultFreezeSpeedFactor = 0.5
	DefaultProjectileSpeed   = 0.005 // progress per ms

	// Wave formula constants
	WaveBaseCount    = 5
	WaveCountPerWave = 1.5
	WaveBaseHP       = 20.0
	WaveHPGrowth     = 0.4
	WaveBaseSpeed    = 1.5
	WaveSpeedPerWave = 0.05
	WaveBaseReward   = 10
)

// Coordinate is a point in grid space. Path nodes are integral, moving entities are not.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Enemy is a live or pending attacker walking the path
type Enemy struct {
	ID        string      `json:"id"`
	Type      ElementType `json:"type"`
	Name      string      `json:"name"`
	HP        float64     `json:"hp"`
	MaxHP     float64     `json:"max_hp"`
	Speed     float64     `json:"speed"` // grid cells per second
	Position  Coordinate  `json:"position"`
	PathIndex int         `json:"path_index"`
	Frozen    float64     `json:"frozen"` // remaining slow in ms
	Reward    int         `json:"reward"`
}

// Tower is a placed defender. Only LastAttackTime and Fired change after placement.
// A tower that has never fired is ready at once.
type Tower struct {
	ID             string      `json:"id"`
	Key            string      `json:"key"`
	Name           string      `json:"name"`
	Type           ElementType `json:"type"`
	X              int         `json:"x"`
	Y              int         `json:"y"`
	Damage         float64     `json:"damage"`
	Range          float64     `json:"range"`
	AttackSpeed    float64     `json:"attack_speed"` // cooldown in ms
	LastAttackTime float64     `json:"last_attack_time"`
	Fired          bool        `json:"fired"`
	Level          int         `json:"level"`
	Cost           int         `json:"cost"`
}

// Projectile is presentation only; damage lands when it is created
type Projectile struct {
	ID       string      `json:"id"`
	StartX   float64     `json:"start_x"`
	StartY   float64     `json:"start_y"`
	TargetX  float64     `json:"target_x"`
	TargetY  float64     `json:"target_y"`
	Element  ElementType `json:"element"`
	Progress float64     `json:"progress"`
}

// GameState is the economy and session status of one game
type GameState struct {
	Money      int     `json:"money"`
	Lives      int     `json:"lives"`
	Wave       int     `json:"wave"`
	IsPlaying  bool    `json:"is_playing"`
	IsGameOver bool    `json:"is_game_over"`
	GameSpeed  float64 `json:"game_speed"`
}

// TowerConfig is one entry of the tower catalog
type TowerConfig struct {
	Name        string      `json:"name"`
	Type        ElementType `json:"type"`
	Cost        int         `json:"cost"`
	Damage      float64     `json:"damage"`
	Range       float64     `json:"range"`
	AttackSpeed float64     `json:"attack_speed"`
	Color       string      `json:"color,omitempty"`
	Description string      `json:"description,omitempty"`
}

// Rules tunes the simulation. Zero values fall back to the defaults above.
type Rules struct {
	SpawnIntervalMs   float64 `json:"spawn_interval_ms,omitempty"`
	FreezeDurationMs  float64 `json:"freeze_duration_ms,omitempty"`
	FreezeSpeedFactor float64 `json:"freeze_speed_factor,omitempty"`
	ProjectileSpeed   float64 `json:"projectile_speed,omitempty"`

	// TargetDeadInTick lets later towers keep hitting an enemy that an earlier
	// tower already dropped to hp <= 0 in the same tick.
	TargetDeadInTick bool `json:"target_dead_in_tick,omitempty"`
}

// GameConfig is the static content of a map: path, catalog, chart and economy
type GameConfig struct {
	Name         string                        `json:"name"`
	Description  string                        `json:"description"`
	GridSize     int                           `json:"grid_size"`
	InitialMoney int                           `json:"initial_money"`
	InitialLives int                           `json:"initial_lives"`
	Path         []Coordinate                  `json:"path"`
	Towers       map[string]TowerConfig        `json:"towers"`
	TypeChart    map[ElementType][]ElementType `json:"type_chart,omitempty"`
	Rules        Rules                         `json:"rules,omitempty"`
}

// TickResult summarizes what one tick did
type TickResult struct {
	DeltaMs     float64 `json:"delta_ms"`
	Spawned     int     `json:"spawned"`
	Escaped     int     `json:"escaped"`
	Killed      int     `json:"killed"`
	MoneyGained int     `json:"money_gained"`
	LivesLost   int     `json:"lives_lost"`
	Attacks     int     `json:"attacks"`
	GameOver    bool    `json:"game_over"`
	Skipped     bool    `json:"skipped,omitempty"` // game already over, nothing ran
}
