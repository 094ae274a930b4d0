package main

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/towerdefense/game/engine"
)

func testConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:         "Test",
		Description:  "Test configuration",
		GridSize:     5,
		InitialMoney: 100,
		InitialLives: 10,
		Path: []engine.Coordinate{
			{X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2}, {X: 3, Y: 2}, {X: 4, Y: 2},
		},
		Towers: map[string]engine.TowerConfig{
			"FIRE":  {Name: "Fire", Type: engine.Fire, Cost: 50, Damage: 20, Range: 2.5, AttackSpeed: 1000},
			"WATER": {Name: "Water", Type: engine.Water, Cost: 40, Damage: 10, Range: 1, AttackSpeed: 500},
		},
	}
}

func TestTowerRows(t *testing.T) {
	rows := towerRows(testConfig())

	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	if rows[0].Key != "WATER" {
		t.Errorf("Expected WATER to rank first by dps per coin, got %s", rows[0].Key)
	}
	if rows[0].DPS != 20 || rows[0].DPSPerCost != 0.5 {
		t.Errorf("Expected WATER dps 20 and 0.5 per coin, got %v and %v", rows[0].DPS, rows[0].DPSPerCost)
	}
	if rows[0].PathNodes != 1 {
		t.Errorf("Expected range 1 to reach 1 path node, got %d", rows[0].PathNodes)
	}

	if rows[1].Key != "FIRE" {
		t.Errorf("Expected FIRE second, got %s", rows[1].Key)
	}
	if rows[1].PathNodes != 5 {
		t.Errorf("Expected range 2.5 to reach all 5 path nodes, got %d", rows[1].PathNodes)
	}
}

func TestWaveRows(t *testing.T) {
	rows := waveRows(testConfig(), 3)

	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}

	tests := []struct {
		wave      int
		waveType  engine.ElementType
		bestTower string
		bestDPS   float64
		shots     int
	}{
		{1, engine.Normal, "FIRE", 20, 2},
		{2, engine.Water, "WATER", 20, 4},
		{3, engine.Grass, "FIRE", 40, 2},
	}

	for i, tt := range tests {
		row := rows[i]
		if row.Wave != tt.wave {
			t.Errorf("Expected wave %d, got %d", tt.wave, row.Wave)
		}
		if row.Type != tt.waveType {
			t.Errorf("Wave %d: expected type %s, got %s", tt.wave, tt.waveType, row.Type)
		}
		if row.BestTower != tt.bestTower {
			t.Errorf("Wave %d: expected best tower %s, got %s", tt.wave, tt.bestTower, row.BestTower)
		}
		if row.BestDPS != tt.bestDPS {
			t.Errorf("Wave %d: expected best dps %v, got %v", tt.wave, tt.bestDPS, row.BestDPS)
		}
		if row.ShotsToKill != tt.shots {
			t.Errorf("Wave %d: expected %d shots, got %d", tt.wave, tt.shots, row.ShotsToKill)
		}
	}

	first := rows[0]
	if first.Size != engine.WaveSize(1) || first.Bounty != engine.WaveSize(1)*engine.WaveReward(1) {
		t.Errorf("Unexpected wave 1 size %d or bounty %d", first.Size, first.Bounty)
	}
	if math.Abs(first.ExitSeconds-4/engine.WaveSpeed(1)) > 1e-9 {
		t.Errorf("Expected exit time %v, got %v", 4/engine.WaveSpeed(1), first.ExitSeconds)
	}
}

func TestPrintAnalysis(t *testing.T) {
	var buf bytes.Buffer
	printAnalysis(&buf, testConfig(), 3)
	output := buf.String()

	for _, expected := range []string{
		"Name: Test",
		"Path: 5 nodes, length 4",
		"✅ 2 towers affordable at start",
		"Top towers by DPS per coin:",
		"#1 ",
		"No super-effective tower against: Normal, Water",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("Expected output to contain %q, got:\n%s", expected, output)
		}
	}
}

func TestPrintAnalysis_Unaffordable(t *testing.T) {
	cfg := testConfig()
	cfg.InitialMoney = 10

	var buf bytes.Buffer
	printAnalysis(&buf, cfg, 1)

	if !strings.Contains(buf.String(), "WARNING: no tower is affordable") {
		t.Errorf("Expected affordability warning, got:\n%s", buf.String())
	}
}

func TestHasCounter(t *testing.T) {
	cfg := testConfig()

	if !hasCounter(cfg, engine.Grass) {
		t.Error("Expected Fire tower to counter Grass")
	}
	if hasCounter(cfg, engine.Dragon) {
		t.Error("Expected no counter for Dragon")
	}

	cfg.TypeChart = map[engine.ElementType][]engine.ElementType{
		engine.Water: {engine.Dragon},
	}
	if !hasCounter(cfg, engine.Dragon) {
		t.Error("Expected custom chart to make Water counter Dragon")
	}
}
