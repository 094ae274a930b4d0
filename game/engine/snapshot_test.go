package engine

import (
	"encoding/json"
	"reflect"
	"testing"
)

func deltaAt(i int) float64 {
	return float64(10 + (i%7)*3)
}

func TestSnapshot_RoundTripDeterminism(t *testing.T) {
	original := NewEngineWithDefaults()
	original.PlaceTower(2, 2, "CHARMANDER")
	original.PlaceTower(4, 5, "SQUIRTLE")
	if !original.StartNextWave() {
		t.Fatal("Expected wave 1 to start")
	}

	for i := 0; i < 300; i++ {
		original.Tick(deltaAt(i))
	}
	if len(original.Enemies()) == 0 {
		t.Fatal("Expected live enemies at the snapshot point")
	}

	data, err := json.Marshal(original.Snapshot())
	if err != nil {
		t.Fatalf("Failed to marshal snapshot: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("Failed to unmarshal snapshot: %v", err)
	}

	restored := NewEngineWithDefaults()
	if err := restored.Restore(snap); err != nil {
		t.Fatalf("Failed to restore snapshot: %v", err)
	}

	for i := 300; i < 1800; i++ {
		a := original.Tick(deltaAt(i))
		b := restored.Tick(deltaAt(i))

		if a.Spawned != b.Spawned || a.Escaped != b.Escaped || a.Killed != b.Killed || a.Attacks != b.Attacks {
			t.Fatalf("Tick %d diverged: %+v vs %+v", i, a, b)
		}
	}

	if !reflect.DeepEqual(original.State(), restored.State()) {
		t.Errorf("State diverged: %+v vs %+v", original.State(), restored.State())
	}
	if !reflect.DeepEqual(original.Enemies(), restored.Enemies()) {
		t.Errorf("Enemies diverged:\n%+v\n%+v", original.Enemies(), restored.Enemies())
	}
	if !reflect.DeepEqual(original.Towers(), restored.Towers()) {
		t.Errorf("Towers diverged:\n%+v\n%+v", original.Towers(), restored.Towers())
	}
	if original.ElapsedMs() != restored.ElapsedMs() {
		t.Errorf("Clock diverged: %v vs %v", original.ElapsedMs(), restored.ElapsedMs())
	}
	if len(original.Projectiles()) != len(restored.Projectiles()) {
		t.Errorf("Projectile count diverged: %d vs %d", len(original.Projectiles()), len(restored.Projectiles()))
	}
}

func TestSnapshot_IsDetached(t *testing.T) {
	engine := NewEngineWithDefaults()
	engine.StartNextWave()
	engine.Tick(1001)

	snap := engine.Snapshot()
	snap.Enemies[0].HP = -100
	snap.Spawner.Pending[0].HP = -100

	if engine.Enemies()[0].HP <= 0 {
		t.Error("Expected editing a snapshot to leave live enemies alone")
	}
	if engine.spawner.Pending[0].HP <= 0 {
		t.Error("Expected editing a snapshot to leave pending enemies alone")
	}
}

func TestSnapshot_RestoreDefaultsGameSpeed(t *testing.T) {
	engine := NewEngineWithDefaults()
	snap := engine.Snapshot()
	snap.State.GameSpeed = 0

	if err := engine.Restore(snap); err != nil {
		t.Fatalf("Failed to restore snapshot: %v", err)
	}
	if engine.State().GameSpeed != 1 {
		t.Errorf("Expected game speed to default to 1, got %v", engine.State().GameSpeed)
	}
}
