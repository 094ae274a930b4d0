package engine

import "github.com/google/uuid"

// Attack records one tower hit resolved during a tick
type Attack struct {
	TowerIndex int
	EnemyIndex int
	Damage     float64
	Multiplier float64
}

// SelectTarget returns the index of the first enemy, in list order, within the
// tower's range. It is deliberately first-match, not nearest or weakest.
// Enemies with hp <= 0 are skipped unless includeDead is set.
func SelectTarget(t *Tower, enemies []Enemy, includeDead bool) int {
	origin := CellCoordinate(t.X, t.Y)
	for i := range enemies {
		if !includeDead && enemies[i].HP <= 0 {
			continue
		}
		if Distance(enemies[i].Position, origin) <= t.Range {
			return i
		}
	}
	return -1
}

// ResolveCombat lets every tower whose cooldown has elapsed hit one enemy. The
// cooldown runs on the simulation clock from the tower's last attack; a tower
// that has not fired yet is ready.
//
// Towers are processed in placement order and each hit is applied before the next
// tower selects, so several towers may stack damage on the same enemy within a
// tick. Enemies are addressed by index into the survivor slice; the slice itself
// is never reordered here. The returned projectiles start at progress 0.
func ResolveCombat(towers []Tower, enemies []Enemy, chart TypeChart, rules Rules, now float64) ([]Attack, []Projectile) {
	var attacks []Attack
	var projectiles []Projectile

	for ti := range towers {
		tower := &towers[ti]
		if tower.Fired && now-tower.LastAttackTime < tower.AttackSpeed {
			continue
		}

		ei := SelectTarget(tower, enemies, rules.TargetDeadInTick)
		if ei < 0 {
			continue
		}
		target := &enemies[ei]
		aim := target.Position

		tower.LastAttackTime = now
		tower.Fired = true
		multiplier := chart.Multiplier(tower.Type, target.Type)
		damage := tower.Damage * multiplier
		target.HP -= damage

		if IsSlowing(tower.Type) {
			target.Frozen = rules.FreezeDurationMs
		}

		attacks = append(attacks, Attack{
			TowerIndex: ti,
			EnemyIndex: ei,
			Damage:     damage,
			Multiplier: multiplier,
		})
		projectiles = append(projectiles, Projectile{
			ID:       uuid.NewString(),
			StartX:   float64(tower.X),
			StartY:   float64(tower.Y),
			TargetX:  aim.X,
			TargetY:  aim.Y,
			Element:  tower.Type,
			Progress: 0,
		})
	}

	return attacks, projectiles
}

// AdvanceProjectiles moves every projectile's animation forward and drops finished ones
func AdvanceProjectiles(projectiles []Projectile, deltaMs, speed float64) []Projectile {
	active := projectiles[:0]
	for _, p := range projectiles {
		p.Progress += deltaMs * speed
		if p.Progress < 1 {
			active = append(active, p)
		}
	}
	return active
}
