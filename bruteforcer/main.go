package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v3"
)

type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type GameState struct {
	Money      int     `json:"money"`
	Lives      int     `json:"lives"`
	Wave       int     `json:"wave"`
	IsPlaying  bool    `json:"is_playing"`
	IsGameOver bool    `json:"is_game_over"`
	GameSpeed  float64 `json:"game_speed"`
}

type Tower struct {
	Key  string `json:"key"`
	Type string `json:"type"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

type StateView struct {
	State          GameState    `json:"state"`
	Towers         []Tower      `json:"towers"`
	PendingEnemies int          `json:"pending_enemies"`
	WaveActive     bool         `json:"wave_active"`
	GridSize       int          `json:"grid_size"`
	Path           []Coordinate `json:"path"`
	ConfigName     string       `json:"config_name"`
}

type TowerInfo struct {
	Key           string   `json:"key"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Cost          int      `json:"cost"`
	Damage        float64  `json:"damage"`
	Range         float64  `json:"range"`
	AttackSpeed   float64  `json:"attack_speed"`
	StrongAgainst []string `json:"strong_against"`
}

type SessionResponse struct {
	ID         string     `json:"id"`
	ConfigName string     `json:"config_name"`
	GameState  *GameState `json:"game_state"`
}

type PlaceResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

type WaveResponse struct {
	Started   bool   `json:"started"`
	Message   string `json:"message"`
	Wave      int    `json:"wave"`
	Enemies   int    `json:"enemies"`
	EnemyType string `json:"enemy_type"`
}

type StepResponse struct {
	TicksRun  int       `json:"ticks_run"`
	Killed    int       `json:"killed"`
	Escaped   int       `json:"escaped"`
	GameOver  bool      `json:"game_over"`
	GameState GameState `json:"game_state"`
}

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// do sends a JSON request and decodes the response into out
func (c *Client) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, string(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

func (c *Client) sessionPath(action string) string {
	return fmt.Sprintf("/api/sessions/%s/%s", c.sessionID, action)
}

func (c *Client) CreateSession(configID string) (*SessionResponse, error) {
	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}
	var session SessionResponse
	if err := c.do(http.MethodPost, "/api/sessions", body, &session); err != nil {
		return nil, err
	}
	c.sessionID = session.ID
	return &session, nil
}

func (c *Client) Pause() error {
	return c.do(http.MethodPost, c.sessionPath("pause"), nil, nil)
}

func (c *Client) GetState() (*StateView, error) {
	var view StateView
	if err := c.do(http.MethodGet, c.sessionPath("state"), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) Towers(configID string) ([]TowerInfo, error) {
	if configID == "" {
		configID = "default"
	}
	var resp struct {
		Towers []TowerInfo `json:"towers"`
	}
	if err := c.do(http.MethodGet, "/api/configs/"+configID+"/towers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Towers, nil
}

func (c *Client) PlaceTower(p Placement) (*PlaceResponse, error) {
	var result PlaceResponse
	body := map[string]interface{}{"x": p.X, "y": p.Y, "tower": p.Key}
	if err := c.do(http.MethodPost, c.sessionPath("towers"), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) StartWave() (*WaveResponse, error) {
	var result WaveResponse
	if err := c.do(http.MethodPost, c.sessionPath("waves"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Step(deltaMs float64, ticks int) (*StepResponse, error) {
	var result StepResponse
	body := map[string]interface{}{"delta_ms": deltaMs, "ticks": ticks}
	if err := c.do(http.MethodPost, c.sessionPath("step"), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// options are the bruteforcer's command-line settings
type options struct {
	ServerURL string
	ConfigID  string
	MaxWaves  int
	Reserve   int
	MaxTowers int
	StepTicks int
	Verbose   bool
}

func newCommand(action func(ctx context.Context, opts options) error) *cli.Command {
	return &cli.Command{
		Name:  "bruteforcer",
		Usage: "Play a session with a greedy tower strategy",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL", Sources: cli.EnvVars("GAME_SERVER_URL")},
			&cli.StringFlag{Name: "config", Usage: "Map configuration (classic, gauntlet)"},
			&cli.IntFlag{Name: "max-waves", Value: 30, Usage: "Stop after this many waves"},
			&cli.IntFlag{Name: "reserve", Usage: "Money to keep back after each purchase"},
			&cli.IntFlag{Name: "max-towers", Usage: "Maximum towers to place (0 = no limit)"},
			&cli.IntFlag{Name: "step-ticks", Value: 250, Usage: "Ticks per step request"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return action(ctx, options{
				ServerURL: cmd.String("url"),
				ConfigID:  cmd.String("config"),
				MaxWaves:  int(cmd.Int("max-waves")),
				Reserve:   int(cmd.Int("reserve")),
				MaxTowers: int(cmd.Int("max-towers")),
				StepTicks: int(cmd.Int("step-ticks")),
				Verbose:   cmd.Bool("verbose"),
			})
		},
	}
}

func main() {
	if err := newCommand(play).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// play runs waves until the game ends or MaxWaves is reached
func play(ctx context.Context, opts options) error {
	log.Printf("Connecting to game server at %s", opts.ServerURL)
	client := NewClient(opts.ServerURL)

	session, err := client.CreateSession(opts.ConfigID)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	log.Printf("✨ Session created: %s (%s)", session.ID, session.ConfigName)

	// Manual stepping needs the real-time loop out of the way
	if err := client.Pause(); err != nil {
		return fmt.Errorf("failed to pause session: %w", err)
	}

	view, err := client.GetState()
	if err != nil {
		return fmt.Errorf("failed to get state: %w", err)
	}

	catalog, err := client.Towers(opts.ConfigID)
	if err != nil {
		return fmt.Errorf("failed to load tower catalog: %w", err)
	}

	strategy := NewGreedyStrategy(catalog)
	strategy.Reserve = opts.Reserve
	strategy.MaxTowers = opts.MaxTowers

	for !view.State.IsGameOver && view.State.Wave < opts.MaxWaves {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Spend before the wave
		for {
			placement, ok := strategy.NextPlacement(view)
			if !ok {
				break
			}
			result, err := client.PlaceTower(placement)
			if err != nil {
				return fmt.Errorf("failed to place tower: %w", err)
			}
			if !result.Success {
				if opts.Verbose {
					log.Printf("Placement rejected: %s", result.Message)
				}
				break
			}
			if opts.Verbose {
				log.Printf("🏰 Placed %s at (%d,%d) covering %d path nodes", placement.Key, placement.X, placement.Y, placement.Nodes)
			}
			if view, err = client.GetState(); err != nil {
				return fmt.Errorf("failed to get state: %w", err)
			}
		}

		wave, err := client.StartWave()
		if err != nil {
			return fmt.Errorf("failed to start wave: %w", err)
		}
		if !wave.Started {
			log.Printf("⚠️  Wave not started: %s", wave.Message)
			break
		}
		log.Printf("=== 🌊 Wave %d: %d %s enemies ===", wave.Wave, wave.Enemies, wave.EnemyType)

		// Run the wave to completion
		for {
			step, err := client.Step(0, opts.StepTicks)
			if err != nil {
				return fmt.Errorf("failed to step: %w", err)
			}
			if opts.Verbose && (step.Killed > 0 || step.Escaped > 0) {
				log.Printf("   killed=%d escaped=%d lives=%d money=%d",
					step.Killed, step.Escaped, step.GameState.Lives, step.GameState.Money)
			}
			if view, err = client.GetState(); err != nil {
				return fmt.Errorf("failed to get state: %w", err)
			}
			if step.GameOver || view.State.IsGameOver || (!view.WaveActive && view.PendingEnemies == 0) {
				break
			}
		}

		log.Printf("Wave %d done: lives=%d money=%d towers=%d",
			view.State.Wave, view.State.Lives, view.State.Money, len(view.Towers))
	}

	log.Printf("Session: %s", client.sessionID)
	if view.State.IsGameOver {
		return fmt.Errorf("game over at wave %d with %d towers", view.State.Wave, len(view.Towers))
	}
	log.Printf("\n🎉 Survived %d waves with %d lives left", view.State.Wave, view.State.Lives)
	return nil
}
