package engine

import "testing"

func straightPath() Path {
	return Path{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}}
}

func TestMoveEnemy_PartialStep(t *testing.T) {
	path := straightPath()
	e := Enemy{Speed: 1, Position: path[0]}

	MoveEnemy(&e, path, 500, DefaultFreezeSpeedFactor)

	if !approxEqual(e.Position.X, 0.5) || !approxEqual(e.Position.Y, 0) {
		t.Errorf("Expected position (0.5, 0), got (%v, %v)", e.Position.X, e.Position.Y)
	}
	if e.PathIndex != 0 {
		t.Errorf("Expected path index 0, got %d", e.PathIndex)
	}
}

func TestMoveEnemy_SnapDiscardsRemainder(t *testing.T) {
	path := straightPath()
	e := Enemy{Speed: 1, Position: Coordinate{X: 0.5, Y: 0}}

	// 0.9 cells of travel with only 0.5 left on the segment
	MoveEnemy(&e, path, 900, DefaultFreezeSpeedFactor)

	if e.Position != path[1] {
		t.Errorf("Expected to snap onto %v, got %v", path[1], e.Position)
	}
	if e.PathIndex != 1 {
		t.Errorf("Expected path index 1, got %d", e.PathIndex)
	}
}

func TestMoveEnemy_ExactReachSnaps(t *testing.T) {
	path := straightPath()
	e := Enemy{Speed: 2, Position: path[0]}

	MoveEnemy(&e, path, 500, DefaultFreezeSpeedFactor)

	if e.Position != path[1] || e.PathIndex != 1 {
		t.Errorf("Expected to land on node 1, got %v index %d", e.Position, e.PathIndex)
	}
}

func TestMoveEnemy_FollowsBearing(t *testing.T) {
	path := Path{{X: 0, Y: 0}, {X: 0, Y: 3}}
	e := Enemy{Speed: 1, Position: path[0]}

	MoveEnemy(&e, path, 1000, DefaultFreezeSpeedFactor)

	if !approxEqual(e.Position.X, 0) || !approxEqual(e.Position.Y, 1) {
		t.Errorf("Expected position (0, 1), got (%v, %v)", e.Position.X, e.Position.Y)
	}
}

func TestMoveEnemy_FrozenHalvesSpeed(t *testing.T) {
	path := straightPath()
	e := Enemy{Speed: 2, Position: path[0], Frozen: 1000}

	MoveEnemy(&e, path, 250, DefaultFreezeSpeedFactor)

	if !approxEqual(e.Position.X, 0.25) {
		t.Errorf("Expected frozen enemy to move 0.25, got %v", e.Position.X)
	}
	if e.Frozen != 750 {
		t.Errorf("Expected frozen 750, got %v", e.Frozen)
	}
}

func TestMoveEnemy_FrozenFloorsAtZero(t *testing.T) {
	path := straightPath()
	e := Enemy{Speed: 2, Position: path[0], Frozen: 100}

	MoveEnemy(&e, path, 250, DefaultFreezeSpeedFactor)

	if e.Frozen != 0 {
		t.Errorf("Expected frozen to floor at 0, got %v", e.Frozen)
	}
	// still slowed for the tick in which the freeze runs out
	if !approxEqual(e.Position.X, 0.25) {
		t.Errorf("Expected slowed movement of 0.25, got %v", e.Position.X)
	}

	MoveEnemy(&e, path, 250, DefaultFreezeSpeedFactor)
	if !approxEqual(e.Position.X, 0.75) {
		t.Errorf("Expected full speed after the freeze ended, got %v", e.Position.X)
	}
}

func TestMoveEnemy_AtExitIsStationary(t *testing.T) {
	path := straightPath()
	e := Enemy{Speed: 5, Position: path[3], PathIndex: path.LastIndex(), Frozen: 500}

	MoveEnemy(&e, path, 1000, DefaultFreezeSpeedFactor)

	if e.Position != path[3] || e.PathIndex != 3 {
		t.Errorf("Expected enemy on the exit to stay put, got %v index %d", e.Position, e.PathIndex)
	}
	if e.Frozen != 500 {
		t.Errorf("Expected untouched freeze on a stationary enemy, got %v", e.Frozen)
	}
	if !HasEscaped(&e, path) {
		t.Error("Expected enemy on the exit node to count as escaped")
	}
}

func TestMoveEnemy_PathIndexMonotonic(t *testing.T) {
	path := Path(DefaultPath)
	e := BuildWave(5, path)[0]

	prev := e.PathIndex
	for i := 0; i < 5000; i++ {
		MoveEnemy(&e, path, 16, DefaultFreezeSpeedFactor)
		if e.PathIndex < prev {
			t.Fatalf("Path index went backwards from %d to %d", prev, e.PathIndex)
		}
		if e.PathIndex > path.LastIndex() {
			t.Fatalf("Path index %d exceeds last index %d", e.PathIndex, path.LastIndex())
		}
		prev = e.PathIndex
	}

	if !HasEscaped(&e, path) {
		t.Errorf("Expected the enemy to reach the exit after 80s, got index %d", e.PathIndex)
	}
}

func TestPathHelpers(t *testing.T) {
	path := straightPath()

	if !path.Contains(2, 0) || path.Contains(2, 1) {
		t.Error("Contains reported the wrong cells")
	}
	if next, ok := path.Next(1); !ok || next != path[2] {
		t.Errorf("Expected next node %v, got %v", path[2], next)
	}
	if _, ok := path.Next(3); ok {
		t.Error("Expected no next node from the exit")
	}
	if path.Length() != 3 {
		t.Errorf("Expected length 3, got %v", path.Length())
	}
	if got := path.Progress(1, Coordinate{X: 1.5, Y: 0}); !approxEqual(got, 0.5) {
		t.Errorf("Expected progress 0.5, got %v", got)
	}
	if got := path.NearestNode(Coordinate{X: 2.2, Y: 0.4}); got != 2 {
		t.Errorf("Expected nearest node 2, got %d", got)
	}
}
