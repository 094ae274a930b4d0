package main

import (
	"context"
	"os"
	"testing"
)

func testView() *StateView {
	// 5x5 grid, straight path along row 2
	path := make([]Coordinate, 5)
	for x := range path {
		path[x] = Coordinate{X: float64(x), Y: 2}
	}
	return &StateView{
		State:    GameState{Money: 100, Lives: 10},
		GridSize: 5,
		Path:     path,
	}
}

func testCatalog() []TowerInfo {
	return []TowerInfo{
		{Key: "FIRE", Type: "Fire", Cost: 50, Damage: 20, Range: 1.5, AttackSpeed: 1000, StrongAgainst: []string{"Grass", "Ice"}},
		{Key: "WATER", Type: "Water", Cost: 40, Damage: 10, Range: 1.5, AttackSpeed: 500, StrongAgainst: []string{"Fire", "Rock"}},
		{Key: "ROCK", Type: "Rock", Cost: 200, Damage: 80, Range: 3, AttackSpeed: 1000, StrongAgainst: []string{"Fire", "Ice"}},
	}
}

func TestWaveType(t *testing.T) {
	tests := []struct {
		wave int
		want string
	}{
		{0, "Normal"},
		{1, "Normal"},
		{2, "Water"},
		{3, "Grass"},
		{10, "Dragon"},
		{11, "Normal"},
		{12, "Fire"},
	}
	for _, tt := range tests {
		if got := waveType(tt.wave); got != tt.want {
			t.Errorf("waveType(%d): expected %s, got %s", tt.wave, tt.want, got)
		}
	}
}

func TestPickTower(t *testing.T) {
	s := NewGreedyStrategy(testCatalog())

	t.Run("prefers counter", func(t *testing.T) {
		// Wave 3 is Grass; FIRE counters it even though WATER is more efficient
		tower, ok := s.pickTower(100, "Grass")
		if !ok || tower.Key != "FIRE" {
			t.Errorf("Expected FIRE, got %+v", tower)
		}
	})

	t.Run("falls back to efficiency", func(t *testing.T) {
		tower, ok := s.pickTower(100, "Normal")
		if !ok || tower.Key != "WATER" {
			t.Errorf("Expected WATER, got %+v", tower)
		}
	})

	t.Run("ignores unaffordable counters", func(t *testing.T) {
		// ROCK counters Fire but costs 200; WATER also counters it
		tower, ok := s.pickTower(100, "Fire")
		if !ok || tower.Key != "WATER" {
			t.Errorf("Expected WATER, got %+v", tower)
		}
	})

	t.Run("nothing affordable", func(t *testing.T) {
		if _, ok := s.pickTower(30, "Normal"); ok {
			t.Error("Expected no tower for budget 30")
		}
	})
}

func TestBestCell(t *testing.T) {
	view := testView()

	x, y, nodes, ok := bestCell(view, 1.5)
	if !ok {
		t.Fatal("Expected a cell")
	}
	// (1,1) is the first cell in row order that sees three path nodes
	if x != 1 || y != 1 || nodes != 3 {
		t.Errorf("Expected (1,1) covering 3, got (%d,%d) covering %d", x, y, nodes)
	}

	view.Towers = []Tower{{Key: "WATER", X: 1, Y: 1}}
	x, y, _, _ = bestCell(view, 1.5)
	if x != 2 || y != 1 {
		t.Errorf("Expected occupied cell to be skipped, got (%d,%d)", x, y)
	}
}

func TestBestCell_NoFreeCell(t *testing.T) {
	view := &StateView{
		GridSize: 1,
		Path:     []Coordinate{{X: 0, Y: 0}},
	}
	if _, _, _, ok := bestCell(view, 2); ok {
		t.Error("Expected no cell when the path covers the grid")
	}
}

func TestNextPlacement(t *testing.T) {
	s := NewGreedyStrategy(testCatalog())
	view := testView()

	p, ok := s.NextPlacement(view)
	if !ok {
		t.Fatal("Expected a placement")
	}
	// Next wave is 1 (Normal): no counter, WATER is the most efficient
	if p.Key != "WATER" || p.X != 1 || p.Y != 1 || p.Nodes != 3 {
		t.Errorf("Unexpected placement %+v", p)
	}

	t.Run("reserve", func(t *testing.T) {
		s := NewGreedyStrategy(testCatalog())
		s.Reserve = 70
		if _, ok := s.NextPlacement(view); ok {
			t.Error("Expected reserve to block spending")
		}
	})

	t.Run("max towers", func(t *testing.T) {
		s := NewGreedyStrategy(testCatalog())
		s.MaxTowers = 1
		v := testView()
		v.Towers = []Tower{{Key: "WATER", X: 0, Y: 0}}
		if _, ok := s.NextPlacement(v); ok {
			t.Error("Expected tower cap to stop buying")
		}
	})

	t.Run("game over", func(t *testing.T) {
		v := testView()
		v.State.IsGameOver = true
		if _, ok := s.NextPlacement(v); ok {
			t.Error("Expected no placement after game over")
		}
	})
}

func TestCommandFlags(t *testing.T) {
	var got options
	cmd := newCommand(func(ctx context.Context, opts options) error {
		got = opts
		return nil
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("GAME_SERVER_URL", "")
		os.Unsetenv("GAME_SERVER_URL")
		if err := cmd.Run(context.Background(), []string{"bruteforcer"}); err != nil {
			t.Fatalf("Command failed: %v", err)
		}
		if got.ServerURL != "http://localhost:8080" || got.MaxWaves != 30 || got.StepTicks != 250 {
			t.Errorf("Unexpected defaults %+v", got)
		}
		if got.Verbose || got.Reserve != 0 || got.MaxTowers != 0 {
			t.Errorf("Unexpected defaults %+v", got)
		}
	})

	t.Run("parsed", func(t *testing.T) {
		cmd := newCommand(func(ctx context.Context, opts options) error {
			got = opts
			return nil
		})
		args := []string{"bruteforcer", "--url", "http://game:9090", "--config", "gauntlet",
			"--max-waves", "5", "--reserve", "40", "--max-towers", "3", "--step-ticks", "60", "-v"}
		if err := cmd.Run(context.Background(), args); err != nil {
			t.Fatalf("Command failed: %v", err)
		}
		want := options{ServerURL: "http://game:9090", ConfigID: "gauntlet", MaxWaves: 5, Reserve: 40, MaxTowers: 3, StepTicks: 60, Verbose: true}
		if got != want {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})
}
