// Command analyze prints quick, human-readable heuristics about map
// configurations in the project's configs directory. For each map it
// summarizes the economy, ranks the tower catalog by damage per second and
// per coin, and tabulates upcoming waves with the best available counter.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/towerdefense/game/config"
	"github.com/wricardo/mcp-training/towerdefense/game/engine"
)

// TowerRow is one catalog entry with derived combat numbers
type TowerRow struct {
	Key        string
	Name       string
	Type       engine.ElementType
	Cost       int
	DPS        float64
	DPSPerCost float64
	PathNodes  int // most path nodes in range from any buildable cell
}

// WaveRow summarizes one wave against the catalog
type WaveRow struct {
	Wave        int
	Type        engine.ElementType
	Size        int
	HP          float64
	Speed       float64
	Bounty      int
	ExitSeconds float64
	BestTower   string
	BestDPS     float64
	ShotsToKill int
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "Print wave and tower heuristics for map configurations",
		ArgsUsage: "[config names...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.IntFlag{
				Name:  "waves",
				Value: 12,
				Usage: "Number of waves to tabulate",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			manager, err := config.NewManager(cmd.String("config-dir"))
			if err != nil {
				return err
			}

			names := cmd.Args().Slice()
			if len(names) == 0 {
				infos, err := manager.ListConfigs()
				if err != nil {
					return err
				}
				for _, info := range infos {
					names = append(names, info.ConfigID)
				}
			}

			for _, name := range names {
				cfg, err := manager.LoadConfig(name)
				if err != nil {
					fmt.Printf("\n=== %s ===\nError loading config: %v\n", name, err)
					continue
				}
				fmt.Printf("\n=== Analyzing %s ===\n", name)
				printAnalysis(os.Stdout, cfg, int(cmd.Int("waves")))
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// chartFor returns the type chart the engine would use for cfg
func chartFor(cfg *engine.GameConfig) engine.TypeChart {
	if len(cfg.TypeChart) > 0 {
		return engine.TypeChart(cfg.TypeChart)
	}
	return engine.DefaultTypeChart
}

// dps returns damage per second of a tower against defender
func dps(tower engine.TowerConfig, chart engine.TypeChart, defender engine.ElementType) float64 {
	if tower.AttackSpeed <= 0 {
		return 0
	}
	return chart.CalculateDamage(tower.Type, defender, tower.Damage) * 1000 / tower.AttackSpeed
}

// towerRows ranks the catalog by neutral DPS per coin, best first
func towerRows(cfg *engine.GameConfig) []TowerRow {
	path := engine.Path(cfg.Path)
	rows := make([]TowerRow, 0, len(cfg.Towers))
	for key, tower := range cfg.Towers {
		neutral := 0.0
		if tower.AttackSpeed > 0 {
			neutral = tower.Damage * 1000 / tower.AttackSpeed
		}
		row := TowerRow{
			Key:       key,
			Name:      tower.Name,
			Type:      tower.Type,
			Cost:      tower.Cost,
			DPS:       neutral,
			PathNodes: bestPathNodes(cfg.GridSize, path, tower.Range),
		}
		if tower.Cost > 0 {
			row.DPSPerCost = neutral / float64(tower.Cost)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DPSPerCost != rows[j].DPSPerCost {
			return rows[i].DPSPerCost > rows[j].DPSPerCost
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

// bestPathNodes returns the most path nodes a tower of rng covers from any
// cell off the path
func bestPathNodes(gridSize int, path engine.Path, rng float64) int {
	best := 0
	for y := 0; y < gridSize; y++ {
		for x := 0; x < gridSize; x++ {
			if path.Contains(x, y) {
				continue
			}
			candidate := []engine.Tower{{X: x, Y: y, Range: rng}}
			covered := int(engine.PathCoverage(path, candidate)*float64(len(path)) + 0.5)
			if covered > best {
				best = covered
			}
		}
	}
	return best
}

// waveRows tabulates waves 1..count with the strongest catalog answer to each
func waveRows(cfg *engine.GameConfig, count int) []WaveRow {
	chart := chartFor(cfg)
	length := engine.Path(cfg.Path).Length()

	// Iterate keys in order so ties resolve the same way every run
	keys := make([]string, 0, len(cfg.Towers))
	for key := range cfg.Towers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([]WaveRow, 0, count)
	for n := 1; n <= count; n++ {
		row := WaveRow{
			Wave:   n,
			Type:   engine.WaveType(n),
			Size:   engine.WaveSize(n),
			HP:     engine.WaveHP(n),
			Speed:  engine.WaveSpeed(n),
			Bounty: engine.WaveSize(n) * engine.WaveReward(n),
		}
		if row.Speed > 0 {
			row.ExitSeconds = length / row.Speed
		}

		bestHit := 0.0
		for _, key := range keys {
			tower := cfg.Towers[key]
			if d := dps(tower, chart, row.Type); d > row.BestDPS {
				row.BestDPS = d
				row.BestTower = key
				bestHit = chart.CalculateDamage(tower.Type, row.Type, tower.Damage)
			}
		}
		if bestHit > 0 {
			row.ShotsToKill = int(math.Ceil(row.HP / bestHit))
		}
		rows = append(rows, row)
	}
	return rows
}

// printAnalysis writes the full report for one map
func printAnalysis(w io.Writer, cfg *engine.GameConfig, waves int) {
	path := engine.Path(cfg.Path)

	fmt.Fprintf(w, "Name: %s\n", cfg.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", cfg.GridSize, cfg.GridSize)
	fmt.Fprintf(w, "Path: %d nodes, length %.0f\n", len(path), path.Length())
	fmt.Fprintf(w, "Starting Money: %d\n", cfg.InitialMoney)
	fmt.Fprintf(w, "Starting Lives: %d\n", cfg.InitialLives)

	affordable := engine.AffordableTowers(cfg.Towers, cfg.InitialMoney)
	if len(affordable) == 0 {
		fmt.Fprintf(w, "⚠️  WARNING: no tower is affordable with the starting money\n")
	} else {
		fmt.Fprintf(w, "✅ %d towers affordable at start\n", len(affordable))
	}

	rows := towerRows(cfg)
	fmt.Fprintf(w, "\nTop towers by DPS per coin:\n")
	for i, row := range rows {
		if i == 5 {
			fmt.Fprintf(w, "   ... and %d more\n", len(rows)-5)
			break
		}
		fmt.Fprintf(w, "   %-12s %-9s cost %3d  dps %6.1f  dps/coin %.3f  path nodes %d\n",
			row.Key, row.Type, row.Cost, row.DPS, row.DPSPerCost, row.PathNodes)
	}

	fmt.Fprintf(w, "\nWaves:\n")
	var uncountered []string
	for _, row := range waveRows(cfg, waves) {
		fmt.Fprintf(w, "   #%-3d %-9s x%-3d hp %6.1f  speed %.2f  bounty %4d  exit %5.1fs  best %s (%.1f dps, %d shots)\n",
			row.Wave, row.Type, row.Size, row.HP, row.Speed, row.Bounty, row.ExitSeconds, row.BestTower, row.BestDPS, row.ShotsToKill)
		if len(engine.CountersFor(chartFor(cfg), row.Type)) > 0 && !hasCounter(cfg, row.Type) {
			uncountered = appendUnique(uncountered, string(row.Type))
		}
	}

	if len(uncountered) > 0 {
		fmt.Fprintf(w, "⚠️  No super-effective tower against: %s\n", strings.Join(uncountered, ", "))
	} else {
		fmt.Fprintf(w, "✅ Every counterable wave has a super-effective tower\n")
	}
}

// hasCounter reports whether the catalog holds a tower strong against defender
func hasCounter(cfg *engine.GameConfig, defender engine.ElementType) bool {
	chart := chartFor(cfg)
	for _, tower := range cfg.Towers {
		if chart.StrongAgainst(tower.Type, defender) {
			return true
		}
	}
	return false
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
