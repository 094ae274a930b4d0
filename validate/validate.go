// Command validate provides a small CLI that validates map configuration JSON
// files in the ../configs directory (or --config-dir, or the first argument).
// It checks:
//   - JSON structure, rejecting unknown fields
//   - Engine rules: grid size, economy, path adjacency, tower catalog, type chart
//   - Buildability: at least one cell off the path
//   - Affordability: the cheapest tower fits the starting money
//   - Counters: which wave elements have no strong tower in the catalog (warning only)
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/towerdefense/game/engine"
)

// wavesChecked is how many waves the counter check looks ahead
const wavesChecked = 20

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single configuration JSON file.
// It performs structural checks, engine validation and playability analysis.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var config engine.GameConfig
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	playability := validatePlayability(&config)
	result.Valid = playability.Valid
	result.Errors = append(result.Errors, playability.Errors...)

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d", config.GridSize, config.GridSize))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Path: %d nodes, length %.0f", len(config.Path), engine.Path(config.Path).Length()))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Towers: %d", len(config.Towers)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Economy: %d money, %d lives", config.InitialMoney, config.InitialLives))
	}

	return result
}

// validatePlayability checks that a structurally valid map can actually be played:
// there is somewhere to build, something to buy, and counters for upcoming waves.
func validatePlayability(config *engine.GameConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	path := engine.Path(config.Path)
	buildable := config.GridSize*config.GridSize - len(path)
	if buildable <= 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "No buildable cells: the path covers the whole grid")
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Buildable cells: %d", buildable))
	}

	affordable := engine.AffordableTowers(config.Towers, config.InitialMoney)
	if len(affordable) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("No tower affordable with initial_money %d (cheapest costs %d)", config.InitialMoney, cheapestCost(config.Towers)))
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Affordable at start: %s", strings.Join(affordable, ", ")))
	}

	missing := uncounteredWaveTypes(config)
	if len(missing) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("⚠ No strong tower against: %s", joinTypes(missing)))
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Counters: every element in the first %d waves", wavesChecked))
	}

	if buildable > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Best single-tower coverage: %.0f%%", bestSingleTowerCoverage(config)*100))
	}

	return result
}

// chartFor returns the type chart the engine would use for config
func chartFor(config *engine.GameConfig) engine.TypeChart {
	if len(config.TypeChart) > 0 {
		return engine.TypeChart(config.TypeChart)
	}
	return engine.DefaultTypeChart
}

// uncounteredWaveTypes lists the elements of upcoming waves that no catalog
// tower is strong against, in enumeration order
func uncounteredWaveTypes(config *engine.GameConfig) []engine.ElementType {
	chart := chartFor(config)
	owned := make(map[engine.ElementType]bool)
	for _, tower := range config.Towers {
		owned[tower.Type] = true
	}

	needed := make(map[engine.ElementType]bool)
	for wave := 1; wave <= wavesChecked; wave++ {
		needed[engine.WaveType(wave)] = true
	}

	var missing []engine.ElementType
	for _, element := range engine.AllElementTypes {
		if !needed[element] {
			continue
		}
		countered := false
		for _, attacker := range engine.CountersFor(chart, element) {
			if owned[attacker] {
				countered = true
				break
			}
		}
		if !countered {
			missing = append(missing, element)
		}
	}
	return missing
}

// bestSingleTowerCoverage finds the largest path fraction one tower of the
// longest range can cover from any buildable cell
func bestSingleTowerCoverage(config *engine.GameConfig) float64 {
	maxRange := 0.0
	for _, tower := range config.Towers {
		if tower.Range > maxRange {
			maxRange = tower.Range
		}
	}

	path := engine.Path(config.Path)
	best := 0.0
	for y := 0; y < config.GridSize; y++ {
		for x := 0; x < config.GridSize; x++ {
			if path.Contains(x, y) {
				continue
			}
			candidate := []engine.Tower{{X: x, Y: y, Range: maxRange}}
			if coverage := engine.PathCoverage(path, candidate); coverage > best {
				best = coverage
			}
		}
	}
	return best
}

func cheapestCost(towers map[string]engine.TowerConfig) int {
	cheapest := -1
	for _, tower := range towers {
		if cheapest < 0 || tower.Cost < cheapest {
			cheapest = tower.Cost
		}
	}
	return cheapest
}

func joinTypes(types []engine.ElementType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// errInvalidConfigs is returned when at least one file fails validation
var errInvalidConfigs = errors.New("some configurations have errors")

// newCommand builds the validate CLI
func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate map configuration files",
		ArgsUsage: "[config dir]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "../configs",
				Usage:   "Directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			configDir := cmd.String("config-dir")
			if cmd.Args().Present() {
				configDir = cmd.Args().First()
			}
			return validateDir(out, configDir)
		},
	}
}

// validateDir validates every *.json file in configDir and writes a report to out
func validateDir(out io.Writer, configDir string) error {
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		return fmt.Errorf("error finding config files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no config files found in %s", configDir)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Fprintf(out, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(out, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(out, "  "+info)
			}
		} else {
			fmt.Fprintln(out, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Fprintln(out, "  ❌ "+err)
				}
			}
		}
	}

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		fmt.Fprintln(out, "❌ Some configurations have errors")
		return errInvalidConfigs
	}
	fmt.Fprintln(out, "✅ All configurations are valid!")
	return nil
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
