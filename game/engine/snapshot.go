package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidSnapshot is returned when a snapshot cannot be restored onto an engine
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is the full serializable state of one engine. Restoring it onto an
// engine built from the same config and feeding the same deltas reproduces the
// same trajectory.
type Snapshot struct {
	ConfigName  string       `json:"config_name"`
	State       GameState    `json:"state"`
	ElapsedMs   float64      `json:"elapsed_ms"`
	Enemies     []Enemy      `json:"enemies"`
	Spawner     Spawner      `json:"spawner"`
	Towers      []Tower      `json:"towers"`
	Projectiles []Projectile `json:"projectiles"`
}

// Snapshot captures the engine state. The returned value shares nothing with the engine.
func (e *GameEngine) Snapshot() Snapshot {
	return Snapshot{
		ConfigName: e.config.Name,
		State:      e.state,
		ElapsedMs:  e.elapsed,
		Enemies:    e.Enemies(),
		Spawner: Spawner{
			Pending: append([]Enemy(nil), e.spawner.Pending...),
			Timer:   e.spawner.Timer,
			Active:  e.spawner.Active,
		},
		Towers:      e.Towers(),
		Projectiles: e.Projectiles(),
	}
}

// Restore replaces the engine state with snap. A finished game only accepts
// snapshots that are finished too.
func (e *GameEngine) Restore(snap Snapshot) error {
	if err := e.validateSnapshot(snap); err != nil {
		return err
	}

	e.state = snap.State
	if e.state.GameSpeed == 0 {
		e.state.GameSpeed = 1
	}
	e.elapsed = snap.ElapsedMs
	e.enemies = append([]Enemy(nil), snap.Enemies...)
	e.spawner = Spawner{
		Pending: append([]Enemy(nil), snap.Spawner.Pending...),
		Timer:   snap.Spawner.Timer,
		Active:  snap.Spawner.Active,
	}
	e.towers = append([]Tower(nil), snap.Towers...)
	e.projectiles = append([]Projectile(nil), snap.Projectiles...)
	return nil
}

func (e *GameEngine) validateSnapshot(snap Snapshot) error {
	if e.state.IsGameOver && !snap.State.IsGameOver {
		return fmt.Errorf("%w: the game is over", ErrInvalidSnapshot)
	}
	if snap.ConfigName != "" && snap.ConfigName != e.config.Name {
		return fmt.Errorf("%w: taken on config %q, engine runs %q", ErrInvalidSnapshot, snap.ConfigName, e.config.Name)
	}
	if snap.State.Money < 0 {
		return fmt.Errorf("%w: negative money %d", ErrInvalidSnapshot, snap.State.Money)
	}
	if snap.State.Wave < 0 {
		return fmt.Errorf("%w: negative wave %d", ErrInvalidSnapshot, snap.State.Wave)
	}
	if snap.ElapsedMs < 0 {
		return fmt.Errorf("%w: negative elapsed time", ErrInvalidSnapshot)
	}

	last := e.path.LastIndex()
	for _, enemy := range append(append([]Enemy(nil), snap.Enemies...), snap.Spawner.Pending...) {
		if enemy.PathIndex < 0 || enemy.PathIndex > last {
			return fmt.Errorf("%w: enemy %s has path index %d outside 0..%d", ErrInvalidSnapshot, enemy.ID, enemy.PathIndex, last)
		}
		if enemy.Frozen < 0 {
			return fmt.Errorf("%w: enemy %s has negative freeze", ErrInvalidSnapshot, enemy.ID)
		}
		if !enemy.Type.Valid() {
			return fmt.Errorf("%w: enemy %s has unknown type %q", ErrInvalidSnapshot, enemy.ID, enemy.Type)
		}
	}

	occupied := make(map[[2]int]bool, len(snap.Towers))
	for _, tower := range snap.Towers {
		cell := [2]int{tower.X, tower.Y}
		if occupied[cell] {
			return fmt.Errorf("%w: two towers at (%d, %d)", ErrInvalidSnapshot, tower.X, tower.Y)
		}
		occupied[cell] = true
		if e.path.Contains(tower.X, tower.Y) {
			return fmt.Errorf("%w: tower %s sits on the path", ErrInvalidSnapshot, tower.ID)
		}
	}
	return nil
}
