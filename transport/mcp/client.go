package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/towerdefense/game/engine"
	"github.com/wricardo/mcp-training/towerdefense/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Elemental Tower Defense",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Elemental Tower Defense - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Enemies walk a fixed path. Place elemental towers next to it so they die before
reaching the end. Every escaped enemy costs one life; the game ends at 0 lives.

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: Manage game sessions
- list_configs: List available maps
- game_state: Current money, lives, wave, enemies and towers
- list_towers: Tower catalog with costs and type matchups
- type_chart: Which element is strong against which
- place_tower: Buy a tower at a grid cell - requires intent explanation
- start_wave: Release the next wave
- step: Advance a paused session by a number of ticks
- pause / resume / set_speed: Control the real-time loop
- get_advice: Ask Professor Oak for a tip
- game_instructions: Full rules and strategy notes

NOTE: The 'intent' parameter on place_tower serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func sessionOnlySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"session_id": sessionIDProperty(),
		},
		Required: []string{"session_id"},
	}
}

func emptySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: map[string]interface{}{},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional map selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Map to play, e.g. 'classic' or 'gauntlet' (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: emptySchema(),
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session, including loop status and latest advice",
		InputSchema: sessionOnlySchema(),
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available maps",
		InputSchema: emptySchema(),
	}, c.handleListConfigs)

	// Game state
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state: money, lives, wave, map, enemies, towers and lives risk",
		InputSchema: sessionOnlySchema(),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_towers",
		Description: "List the tower catalog of a map with cost, damage, range, cooldown and type matchups",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Map whose catalog to list (default map if omitted)",
				},
			},
		},
	}, c.handleListTowers)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "type_chart",
		Description: "Show which element is strong against which, and which elements slow enemies",
		InputSchema: emptySchema(),
	}, c.handleTypeChart)

	// Player intents
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_tower",
		Description: "Buy a tower and place it on an empty cell that is not on the path",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based)",
				},
				"tower": map[string]interface{}{
					"type":        "string",
					"description": "Tower key from list_towers, e.g. SQUIRTLE",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of why this tower goes here (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "x", "y", "tower"},
		},
	}, c.handlePlaceTower)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_wave",
		Description: "Start the next wave. Only allowed when no wave is in progress",
		InputSchema: sessionOnlySchema(),
	}, c.handleStartWave)

	// Simulation control
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step",
		Description: "Advance a paused session by a number of fixed ticks and report what happened",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"ticks": map[string]interface{}{
					"type":        "integer",
					"description": "Number of ticks to run (default 1)",
				},
				"delta_ms": map[string]interface{}{
					"type":        "number",
					"description": "Milliseconds per tick (default 16, max 1000)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "pause",
		Description: "Pause the real-time loop of a session so it can be stepped manually",
		InputSchema: sessionOnlySchema(),
	}, c.handlePause)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "resume",
		Description: "Resume the real-time loop of a session",
		InputSchema: sessionOnlySchema(),
	}, c.handleResume)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_speed",
		Description: "Set the game speed multiplier (clamped to 0.25-4)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"speed": map[string]interface{}{
					"type":        "number",
					"description": "Speed multiplier, e.g. 2 for double speed",
				},
			},
			Required: []string{"session_id", "speed"},
		},
	}, c.handleSetSpeed)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_advice",
		Description: "Ask Professor Oak for a strategy tip. Returns the latest advice; a fresh tip is requested in the background",
		InputSchema: sessionOnlySchema(),
	}, c.handleGetAdvice)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: emptySchema(),
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	endpoint := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, endpoint, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Argument helpers. JSON numbers arrive as float64.

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func argString(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func argNumber(args map[string]interface{}, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func requireSession(args map[string]interface{}) (string, *mcp.CallToolResult) {
	sessionID := argString(args, "session_id")
	if sessionID == "" {
		return "", mcp.NewToolResultError("session_id is required")
	}
	return sessionID, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID := argString(args, "config_id")

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.GameState != nil {
		result += fmt.Sprintf("Money: %d | Lives: %d\n", session.GameState.Money, session.GameState.Lives)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		wave := 0
		if s.GameState != nil {
			wave = s.GameState.Wave
		}
		result += fmt.Sprintf("- %s (Config: %s, Wave: %d, Created: %s)\n",
			s.ID, s.ConfigName, wave, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var session service.SessionInfo
	if err := c.apiCall("GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall("GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, config := range configs {
		result += fmt.Sprintf("• %s (config_id: %s)\n  %s\n  Grid: %dx%d, Money: %d, Lives: %d, Towers: %d, Path: %d cells\n\n",
			config.Name, config.ConfigID, config.Description, config.GridSize, config.GridSize,
			config.InitialMoney, config.InitialLives, config.TowerCount, config.PathLength)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var view service.GameView
	if err := c.apiCall("GET", sessionPath(sessionID, "/state"), nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameView(&view)), nil
}

func (c *Client) handleListTowers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configID := argString(arguments(request), "config_id")
	if configID == "" {
		configID = "default"
	}

	var response struct {
		Towers []service.TowerInfo `json:"towers"`
	}
	path := "/api/configs/" + url.PathEscape(configID) + "/towers"
	if err := c.apiCall("GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatTowers(response.Towers)), nil
}

func (c *Client) handleTypeChart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatTypeChart(engine.DefaultTypeChart)), nil
}

func (c *Client) handlePlaceTower(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	x, okX := argNumber(args, "x")
	y, okY := argNumber(args, "y")
	tower := argString(args, "tower")
	if !okX || !okY || tower == "" {
		return mcp.NewToolResultError("x, y and tower are required"), nil
	}

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = argString(args, "intent")

	body := map[string]interface{}{
		"x":     int(x),
		"y":     int(y),
		"tower": tower,
	}

	var result service.PlaceResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/towers"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPlaceResult(&result)), nil
}

func (c *Client) handleStartWave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var result service.WaveResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/waves"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatWaveResult(&result)), nil
}

func (c *Client) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	body := map[string]interface{}{}
	if ticks, ok := argNumber(args, "ticks"); ok {
		body["ticks"] = int(ticks)
	}
	if delta, ok := argNumber(args, "delta_ms"); ok {
		body["delta_ms"] = delta
	}

	var result service.StepResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/step"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStepResult(&result)), nil
}

func (c *Client) handlePause(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.loopControl(request, "/pause")
}

func (c *Client) handleResume(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.loopControl(request, "/resume")
}

func (c *Client) loopControl(request mcp.CallToolRequest, suffix string) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", sessionPath(sessionID, suffix), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Session %s: %s", session.ID, loopStatus(&session))), nil
}

func (c *Client) handleSetSpeed(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	speed, ok := argNumber(args, "speed")
	if !ok {
		return mcp.NewToolResultError("speed is required"), nil
	}

	var state engine.GameState
	if err := c.apiCall("POST", sessionPath(sessionID, "/speed"), map[string]float64{"speed": speed}, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Game speed set to %gx", state.GameSpeed)), nil
}

func (c *Client) handleGetAdvice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var result service.AdviceResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/advice"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Professor Oak says: %s", result.Advice)
	if result.Requested {
		text += "\n(A fresh tip was requested; call get_advice again in a few seconds.)"
	}
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Elemental Tower Defense - Complete Instructions

GAME OBJECTIVE:
Survive as many waves as possible. Enemies follow a fixed path from its first
cell to its last. Each enemy that reaches the end costs one life; at 0 lives the
game is over.

GAME MECHANICS:
• Money: Start with the map's initial money. Kills pay the enemy's reward.
• Towers: Bought with money, placed on empty grid cells that are not on the path.
• Attacks: A tower fires at the first enemy in range once its cooldown has elapsed.
• Projectiles: Hits land when the projectile arrives, not when it is fired.
• Slowing: Water and Ice hits halve the target's speed for 2 seconds.

WAVES:
• Wave n has floor(5 + 1.5n) enemies, all of one element.
• Wave 1 is Normal; later waves cycle through the elements.
• Enemy health and speed grow every wave.
• A new wave can only start once the previous one has finished spawning.

TYPE EFFECTIVENESS:
• Strong matchup: 2x damage (see type_chart)
• Weak matchup (defender is strong against attacker): 0.5x damage
• Anything else: 1x damage

STRATEGY NOTES:
1. Call game_state and list_towers before spending money.
2. start_wave reports the element of the incoming wave and its counters.
3. Place towers where they cover the most path cells (path_coverage).
4. Mix in a Water or Ice tower to slow fast waves.
5. Watch lives_risk: CAUTION or worse means more towers are needed now.

SIMULATION CONTROL:
• Sessions run in real time by default.
• pause, then step, to advance deterministically one batch of ticks at a time.
• set_speed changes how fast the real-time loop plays (0.25x to 4x).

Good luck, trainer!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func loopStatus(session *service.SessionInfo) string {
	switch {
	case session.Paused:
		return "paused"
	case session.Running:
		return "running"
	default:
		return "stopped"
	}
}

func formatSessionInfo(session *service.SessionInfo) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nLoop: %s | Ticks: %d\n",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		loopStatus(session), session.Ticks))

	if session.GameState != nil {
		result.WriteString(formatGameStateLine(session.GameState) + "\n")
	}
	if session.Advice != "" {
		result.WriteString(fmt.Sprintf("Advice: %s\n", session.Advice))
	}
	return result.String()
}

func formatGameStateLine(state *engine.GameState) string {
	line := fmt.Sprintf("Money: %d | Lives: %d | Wave: %d | Speed: %gx",
		state.Money, state.Lives, state.Wave, state.GameSpeed)
	if state.IsGameOver {
		line += " | GAME OVER"
	}
	return line
}

func formatGameView(view *service.GameView) string {
	if view == nil {
		return "No game state available"
	}

	var result strings.Builder
	result.WriteString(formatGameStateLine(&view.State) + "\n")
	if view.LivesRisk != "" {
		result.WriteString(fmt.Sprintf("Lives risk: %s\n", view.LivesRisk))
	}
	result.WriteString(fmt.Sprintf("Wave active: %t | Pending spawns: %d | Can start wave: %t\n",
		view.WaveActive, view.PendingEnemies, view.CanStartWave))
	result.WriteString(fmt.Sprintf("Path coverage: %.0f%%\n", view.Coverage*100))
	if len(view.Affordable) > 0 {
		result.WriteString(fmt.Sprintf("Affordable towers: %s\n", strings.Join(view.Affordable, ", ")))
	}

	if grid := formatGrid(&view.StateView); grid != "" {
		result.WriteString("\nMap (. empty, # path, S start, E end, lowercase letter = tower element, * enemy):\n")
		result.WriteString(grid)
	}

	if len(view.Towers) > 0 {
		result.WriteString("\nTowers:\n")
		for _, t := range view.Towers {
			result.WriteString(fmt.Sprintf("  %s (%s) at (%d,%d) dmg=%.0f range=%.1f\n",
				t.Key, t.Type, t.X, t.Y, t.Damage, t.Range))
		}
		counts := engine.CountTowersByType(view.Towers)
		var byElement []string
		for _, el := range engine.AllElementTypes {
			if n := counts[el]; n > 0 {
				byElement = append(byElement, fmt.Sprintf("%s %d", el, n))
			}
		}
		result.WriteString(fmt.Sprintf("  By element: %s\n", strings.Join(byElement, ", ")))
	}

	if len(view.Enemies) > 0 {
		result.WriteString(fmt.Sprintf("\nEnemies (%d):\n", len(view.Enemies)))
		for _, e := range view.Enemies {
			frozen := ""
			if e.Frozen > 0 {
				frozen = " slowed"
			}
			result.WriteString(fmt.Sprintf("  %s %s hp=%.0f/%.0f at (%.1f,%.1f)%s\n",
				e.ID, e.Type, e.HP, e.MaxHP, e.Position.X, e.Position.Y, frozen))
		}
		if leader, progress, ok := engine.FindLeadingEnemy(view.Enemies, engine.Path(view.Path)); ok {
			result.WriteString(fmt.Sprintf("  Leading: %s at %.0f%% of path\n", leader.ID, progress*100))
		}
	}

	if view.State.IsGameOver {
		result.WriteString(fmt.Sprintf("\n💀 GAME OVER - survived until wave %d", view.State.Wave))
	}

	return result.String()
}

// formatGrid draws the map with the path, towers and enemies snapped to their nearest path node
func formatGrid(view *engine.StateView) string {
	size := view.GridSize
	if size <= 0 || size > 64 {
		return ""
	}

	grid := make([][]rune, size)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(".", size))
	}
	put := func(x, y int, r rune) {
		if x >= 0 && y >= 0 && x < size && y < size {
			grid[y][x] = r
		}
	}

	for i, p := range view.Path {
		r := '#'
		switch i {
		case 0:
			r = 'S'
		case len(view.Path) - 1:
			r = 'E'
		}
		put(int(p.X), int(p.Y), r)
	}
	for _, t := range view.Towers {
		r := '?'
		if len(t.Type) > 0 {
			r = unicode.ToLower(rune(t.Type[0]))
		}
		put(t.X, t.Y, r)
	}
	path := engine.Path(view.Path)
	for _, e := range view.Enemies {
		if node := path.NearestNode(e.Position); node >= 0 {
			put(int(path[node].X), int(path[node].Y), '*')
		}
	}

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	return b.String()
}

func formatTowers(towers []service.TowerInfo) string {
	if len(towers) == 0 {
		return "No towers available"
	}

	var result strings.Builder
	result.WriteString("Tower Catalog:\n\n")
	for _, t := range towers {
		strong := "nothing"
		if len(t.StrongAgainst) > 0 {
			names := make([]string, len(t.StrongAgainst))
			for i, s := range t.StrongAgainst {
				names[i] = string(s)
			}
			strong = strings.Join(names, ", ")
		}
		slows := ""
		if t.Slows {
			slows = " | slows"
		}
		result.WriteString(fmt.Sprintf("• %s - %s (%s) cost=%d dmg=%.0f range=%.1f cooldown=%.0fms%s\n  Strong against: %s\n",
			t.Key, t.Name, t.Type, t.Cost, t.Damage, t.Range, t.AttackSpeed, slows, strong))
	}
	return result.String()
}

func formatTypeChart(chart engine.TypeChart) string {
	var result strings.Builder
	result.WriteString("Type Chart (attacker -> strong against):\n\n")
	for _, attacker := range engine.AllElementTypes {
		targets := chart[attacker]
		names := make([]string, len(targets))
		for i, t := range targets {
			names[i] = string(t)
		}
		sort.Strings(names)
		if len(names) == 0 {
			names = []string{"-"}
		}
		result.WriteString(fmt.Sprintf("  %-9s -> %s\n", attacker, strings.Join(names, ", ")))
	}

	result.WriteString("\nCounters by enemy element:\n")
	for _, defender := range engine.AllElementTypes {
		counters := engine.CountersFor(chart, defender)
		names := make([]string, len(counters))
		for i, t := range counters {
			names[i] = string(t)
		}
		if len(names) == 0 {
			names = []string{"-"}
		}
		result.WriteString(fmt.Sprintf("  %-9s <- %s\n", defender, strings.Join(names, ", ")))
	}

	result.WriteString(fmt.Sprintf("\nStrong: %gx | Weak: %gx | Neutral: %gx\n",
		engine.SuperEffective, engine.NotVeryEffective, engine.NeutralEffective))
	result.WriteString("Water and Ice hits slow the target.\n")
	return result.String()
}

func formatPlaceResult(result *service.PlaceResult) string {
	if !result.Success {
		return fmt.Sprintf("❌ Placement rejected (%s): %s\nMoney: %d", result.Reason, result.Message, result.GameState.Money)
	}
	text := fmt.Sprintf("✅ %s", result.Message)
	if result.Tower != nil {
		text = fmt.Sprintf("✅ Placed %s (%s) at (%d,%d)", result.Tower.Name, result.Tower.Type, result.Tower.X, result.Tower.Y)
	}
	return text + fmt.Sprintf("\nMoney left: %d", result.GameState.Money)
}

func formatWaveResult(result *service.WaveResult) string {
	if !result.Started {
		return fmt.Sprintf("Wave not started: %s", result.Message)
	}

	text := fmt.Sprintf("🌊 Wave %d started: %d %s enemies", result.Wave, result.Enemies, result.EnemyType)
	if len(result.Counters) > 0 {
		names := make([]string, len(result.Counters))
		for i, t := range result.Counters {
			names[i] = string(t)
		}
		text += fmt.Sprintf("\nStrong against them: %s", strings.Join(names, ", "))
	}
	return text
}

func formatStepResult(result *service.StepResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Ran %d/%d ticks of %.0fms\n", result.TicksRun, result.TicksRequested, result.DeltaMs))
	b.WriteString(fmt.Sprintf("Spawned: %d | Killed: %d | Escaped: %d | Attacks: %d\n",
		result.Spawned, result.Killed, result.Escaped, result.Attacks))
	b.WriteString(fmt.Sprintf("Money +%d | Lives -%d\n", result.MoneyGained, result.LivesLost))
	b.WriteString(formatGameStateLine(&result.GameState) + "\n")
	if result.LivesRisk != "" {
		b.WriteString(fmt.Sprintf("Lives risk: %s\n", result.LivesRisk))
	}
	if result.Truncated {
		b.WriteString(fmt.Sprintf("Truncated to %d ticks\n", result.Limit))
	}
	if result.StoppedReason != "" {
		b.WriteString(fmt.Sprintf("Stopped: %s\n", result.StoppedReason))
	}
	return b.String()
}
