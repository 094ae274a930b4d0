package main

import (
	"math"
	"sort"
)

// elements mirrors the server's element enumeration; wave typing indexes into it
var elements = []string{
	"Normal", "Fire", "Water", "Grass", "Electric", "Ice",
	"Fighting", "Psychic", "Rock", "Ghost", "Dragon",
}

// waveType returns the element of wave n
func waveType(n int) string {
	if n <= 1 {
		return "Normal"
	}
	return elements[n%len(elements)]
}

// Placement is one tower purchase decided by the strategy
type Placement struct {
	X, Y  int
	Key   string
	Nodes int // path nodes in range
}

// GreedyStrategy buys counters for the next wave and places each tower on the
// free cell that sees the most path nodes.
type GreedyStrategy struct {
	catalog []TowerInfo

	// Reserve is money kept back after each purchase
	Reserve int

	// MaxTowers stops buying once this many towers stand (0 = no limit)
	MaxTowers int
}

// NewGreedyStrategy creates a strategy over a tower catalog
func NewGreedyStrategy(catalog []TowerInfo) *GreedyStrategy {
	return &GreedyStrategy{catalog: catalog}
}

// NextPlacement picks the next tower to buy, or false when nothing useful is affordable
func (s *GreedyStrategy) NextPlacement(view *StateView) (Placement, bool) {
	if view.State.IsGameOver {
		return Placement{}, false
	}
	if s.MaxTowers > 0 && len(view.Towers) >= s.MaxTowers {
		return Placement{}, false
	}

	tower, ok := s.pickTower(view.State.Money-s.Reserve, waveType(view.State.Wave+1))
	if !ok {
		return Placement{}, false
	}

	x, y, nodes, ok := bestCell(view, tower.Range)
	if !ok || nodes == 0 {
		return Placement{}, false
	}
	return Placement{X: x, Y: y, Key: tower.Key, Nodes: nodes}, true
}

// pickTower prefers an affordable tower strong against enemy, then the best
// damage per second per coin
func (s *GreedyStrategy) pickTower(budget int, enemy string) (TowerInfo, bool) {
	var candidates []TowerInfo
	for _, t := range s.catalog {
		if t.Cost <= budget {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return TowerInfo{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := strongAgainst(candidates[i], enemy), strongAgainst(candidates[j], enemy)
		if ci != cj {
			return ci
		}
		ei, ej := efficiency(candidates[i]), efficiency(candidates[j])
		if ei != ej {
			return ei > ej
		}
		return candidates[i].Key < candidates[j].Key
	})
	return candidates[0], true
}

func strongAgainst(t TowerInfo, enemy string) bool {
	for _, e := range t.StrongAgainst {
		if e == enemy {
			return true
		}
	}
	return false
}

// efficiency is neutral damage per second per coin
func efficiency(t TowerInfo) float64 {
	if t.AttackSpeed <= 0 || t.Cost <= 0 {
		return 0
	}
	return t.Damage * 1000 / t.AttackSpeed / float64(t.Cost)
}

// bestCell finds the free, off-path cell whose range covers the most path nodes.
// Ties go to the lowest row, then the lowest column.
func bestCell(view *StateView, rng float64) (int, int, int, bool) {
	occupied := make(map[[2]int]bool, len(view.Towers))
	for _, t := range view.Towers {
		occupied[[2]int{t.X, t.Y}] = true
	}
	onPath := make(map[[2]int]bool, len(view.Path))
	for _, c := range view.Path {
		onPath[[2]int{int(c.X), int(c.Y)}] = true
	}

	bestX, bestY, best := 0, 0, -1
	for y := 0; y < view.GridSize; y++ {
		for x := 0; x < view.GridSize; x++ {
			cell := [2]int{x, y}
			if occupied[cell] || onPath[cell] {
				continue
			}
			nodes := 0
			for _, c := range view.Path {
				if math.Hypot(c.X-float64(x), c.Y-float64(y)) <= rng {
					nodes++
				}
			}
			if nodes > best {
				bestX, bestY, best = x, y, nodes
			}
		}
	}
	if best < 0 {
		return 0, 0, 0, false
	}
	return bestX, bestY, best, true
}
