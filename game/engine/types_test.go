package engine

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestElementTypeConstants(t *testing.T) {
	expected := []string{"Normal", "Fire", "Water", "Grass", "Electric", "Ice", "Fighting", "Psychic", "Rock", "Ghost", "Dragon"}

	if len(AllElementTypes) != len(expected) {
		t.Fatalf("Expected %d element types, got %d", len(expected), len(AllElementTypes))
	}
	for i, name := range expected {
		if string(AllElementTypes[i]) != name {
			t.Errorf("Expected element %d to be %s, got %s", i, name, AllElementTypes[i])
		}
	}
}

func TestElementTypeValid(t *testing.T) {
	for _, et := range AllElementTypes {
		if !et.Valid() {
			t.Errorf("Expected %s to be valid", et)
		}
	}

	for _, bad := range []ElementType{"", "fire", "Steel", "Fairy"} {
		if bad.Valid() {
			t.Errorf("Expected %q to be invalid", bad)
		}
	}
}

func TestValidationConstants(t *testing.T) {
	tests := []struct {
		name     string
		actual   int
		expected int
	}{
		{"MinGridSize", MinGridSize, 5},
		{"MaxGridSize", MaxGridSize, 50},
		{"MinPathLength", MinPathLength, 2},
		{"MaxInitialLives", MaxInitialLives, 1000},
		{"DefaultInitialMoney", DefaultInitialMoney, 150},
		{"DefaultInitialLives", DefaultInitialLives, 20},
	}

	for _, test := range tests {
		if test.actual != test.expected {
			t.Errorf("%s: expected %d, got %d", test.name, test.expected, test.actual)
		}
	}
}

func TestEnemyJSONMarshaling(t *testing.T) {
	enemy := Enemy{
		ID:        "e-2-0",
		Type:      Water,
		Name:      "Shadow Water",
		HP:        36,
		MaxHP:     36,
		Speed:     1.6,
		Position:  Coordinate{X: 1.5, Y: 1},
		PathIndex: 1,
		Frozen:    250,
		Reward:    12,
	}

	data, err := json.Marshal(enemy)
	if err != nil {
		t.Fatalf("Failed to marshal enemy: %v", err)
	}

	for _, field := range []string{`"max_hp":36`, `"path_index":1`, `"frozen":250`, `"position":{"x":1.5,"y":1}`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("Expected JSON to contain %s, got %s", field, data)
		}
	}

	var decoded Enemy
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal enemy: %v", err)
	}
	if decoded != enemy {
		t.Errorf("Expected %+v after round trip, got %+v", enemy, decoded)
	}
}

func TestGameConfigJSONTypeChartKeys(t *testing.T) {
	raw := `{"name":"x","type_chart":{"Fire":["Grass"]},"rules":{"target_dead_in_tick":true}}`

	var cfg GameConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatalf("Failed to unmarshal config: %v", err)
	}

	if got := cfg.TypeChart[Fire]; len(got) != 1 || got[0] != Grass {
		t.Errorf("Expected Fire to be strong against [Grass], got %v", got)
	}
	if !cfg.Rules.TargetDeadInTick {
		t.Error("Expected target_dead_in_tick to decode as true")
	}
}
