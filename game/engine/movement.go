package engine

import "math"

// EffectiveSpeed returns the enemy's speed this tick, slowed while frozen
func EffectiveSpeed(e *Enemy, freezeFactor float64) float64 {
	if e.Frozen > 0 {
		return e.Speed * freezeFactor
	}
	return e.Speed
}

// MoveEnemy advances e toward its next path node by deltaMs of travel.
//
// Reaching the node snaps the enemy onto it and bumps PathIndex; whatever distance
// was left over is discarded rather than carried into the next segment. An enemy
// already on the exit node does not move.
func MoveEnemy(e *Enemy, path Path, deltaMs, freezeFactor float64) {
	target, ok := path.Next(e.PathIndex)
	if !ok {
		return
	}

	speed := EffectiveSpeed(e, freezeFactor)
	moveAmt := speed * deltaMs / 1000
	e.Frozen = math.Max(0, e.Frozen-deltaMs)

	dx := target.X - e.Position.X
	dy := target.Y - e.Position.Y
	dist := math.Sqrt(dx*dx + dy*dy)

	if dist <= moveAmt {
		e.Position = target
		e.PathIndex++
		return
	}

	angle := math.Atan2(dy, dx)
	e.Position.X += math.Cos(angle) * moveAmt
	e.Position.Y += math.Sin(angle) * moveAmt
}

// HasEscaped reports whether e stands on the exit node
func HasEscaped(e *Enemy, path Path) bool {
	return e.PathIndex >= path.LastIndex()
}
