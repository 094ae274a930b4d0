package engine

import (
	"fmt"
	"math"
)

// WaveSize returns how many enemies wave n releases
func WaveSize(n int) int {
	return int(math.Floor(WaveBaseCount + float64(n)*WaveCountPerWave))
}

// WaveType returns the element shared by every enemy of wave n.
// Wave 1 is always Normal; later waves cycle through AllElementTypes.
func WaveType(n int) ElementType {
	if n <= 1 {
		return Normal
	}
	return AllElementTypes[n%len(AllElementTypes)]
}

// WaveHP returns the starting health of an enemy in wave n
func WaveHP(n int) float64 {
	return WaveBaseHP * (1 + float64(n)*WaveHPGrowth)
}

// WaveSpeed returns the base speed of an enemy in wave n
func WaveSpeed(n int) float64 {
	return WaveBaseSpeed + float64(n)*WaveSpeedPerWave
}

// WaveReward returns the money paid for killing an enemy of wave n
func WaveReward(n int) int {
	return WaveBaseReward + n
}

// BuildWave creates the ordered enemy queue for wave n, all standing on the path entry
func BuildWave(n int, path Path) []Enemy {
	count := WaveSize(n)
	waveType := WaveType(n)
	hp := WaveHP(n)

	var start Coordinate
	if len(path) > 0 {
		start = path[0]
	}

	enemies := make([]Enemy, 0, count)
	for i := 0; i < count; i++ {
		enemies = append(enemies, Enemy{
			ID:        fmt.Sprintf("e-%d-%d", n, i),
			Type:      waveType,
			Name:      fmt.Sprintf("Shadow %s", waveType),
			HP:        hp,
			MaxHP:     hp,
			Speed:     WaveSpeed(n),
			Position:  start,
			PathIndex: 0,
			Frozen:    0,
			Reward:    WaveReward(n),
		})
	}
	return enemies
}

// Spawner staggers a wave's pending enemies into the live simulation
type Spawner struct {
	Pending []Enemy `json:"pending"`
	Timer   float64 `json:"timer"`
	Active  bool    `json:"active"`
}

// Load queues a new wave and marks it active
func (s *Spawner) Load(enemies []Enemy) {
	s.Pending = enemies
	s.Timer = 0
	s.Active = len(enemies) > 0
}

// Release advances the spawn timer and pops at most one enemy once more than
// interval ms have accumulated. Leftover time is dropped when an enemy is released.
func (s *Spawner) Release(deltaMs, interval float64) (Enemy, bool) {
	if !s.Active || len(s.Pending) == 0 {
		s.Active = false
		return Enemy{}, false
	}

	s.Timer += deltaMs
	if s.Timer <= interval {
		return Enemy{}, false
	}

	next := s.Pending[0]
	s.Pending = s.Pending[1:]
	s.Timer = 0

	if len(s.Pending) == 0 {
		s.Active = false
	}
	return next, true
}

// Remaining returns the number of enemies still waiting to enter
func (s *Spawner) Remaining() int {
	return len(s.Pending)
}
