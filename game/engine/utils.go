package engine

import "sort"

// CountTowersByType counts placed towers per element
func CountTowersByType(towers []Tower) map[ElementType]int {
	counts := make(map[ElementType]int)
	for _, t := range towers {
		counts[t.Type]++
	}
	return counts
}

// TowersInRange returns the towers whose range covers pos
func TowersInRange(towers []Tower, pos Coordinate) []Tower {
	var covering []Tower
	for _, t := range towers {
		if Distance(CellCoordinate(t.X, t.Y), pos) <= t.Range {
			covering = append(covering, t)
		}
	}
	return covering
}

// PathCoverage returns the fraction of path nodes inside at least one tower's range
func PathCoverage(path Path, towers []Tower) float64 {
	if len(path) == 0 {
		return 0
	}
	covered := 0
	for _, node := range path {
		if len(TowersInRange(towers, node)) > 0 {
			covered++
		}
	}
	return float64(covered) / float64(len(path))
}

// FindLeadingEnemy returns the live enemy closest to the exit and its path progress
func FindLeadingEnemy(enemies []Enemy, path Path) (Enemy, float64, bool) {
	best := -1.0
	var leader Enemy
	found := false

	for _, e := range enemies {
		progress := path.Progress(e.PathIndex, e.Position)
		if progress > best {
			best = progress
			leader = e
			found = true
		}
	}

	return leader, best, found
}

// CountersFor lists the elements strong against defender, in enumeration order
func CountersFor(chart TypeChart, defender ElementType) []ElementType {
	var counters []ElementType
	for _, attacker := range AllElementTypes {
		if chart.StrongAgainst(attacker, defender) {
			counters = append(counters, attacker)
		}
	}
	return counters
}

// AffordableTowers returns the catalog keys the player can buy with money, cheapest first
func AffordableTowers(catalog map[string]TowerConfig, money int) []string {
	var keys []string
	for key, cfg := range catalog {
		if cfg.Cost <= money {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := catalog[keys[i]].Cost, catalog[keys[j]].Cost
		if ci != cj {
			return ci < cj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// AnalyzeLivesRisk assesses how close the player is to losing, based on lives left
// and how many enemies are still in play
func AnalyzeLivesRisk(state GameState, liveEnemies, pendingEnemies int) string {
	if state.IsGameOver || state.Lives <= 0 {
		return "CRITICAL: No lives left!"
	}

	threat := liveEnemies + pendingEnemies
	if threat == 0 {
		return "SAFE: No enemies on the field"
	}

	if state.Lives <= threat/2 {
		return "DANGER: Half of the remaining wave escaping would end the game"
	} else if state.Lives <= threat {
		return "CAUTION: Lives do not cover the whole wave"
	} else if state.Lives <= DefaultInitialLives/4 {
		return "LOW: Few lives left, reinforce the path"
	}

	return "SAFE: Lives sufficient"
}
