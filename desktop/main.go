// Command desktop is an ebiten renderer for tower defense sessions. It draws the
// state pushed over WebSocket and sends player intents through the REST API.
package main

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"sync"
	"time"

	"desktop/client"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	boardSize      = 640
	headerHeight   = 60
	sidebarWidth   = 260
	screenWidth    = boardSize + sidebarWidth
	screenHeight   = boardSize + headerHeight + 20
	defaultServer  = "http://localhost:8080"
	requestTimeout = 5 * time.Second
)

// ScreenType represents different screens in the app
type ScreenType int

const (
	ScreenWelcome ScreenType = iota
	ScreenGame
)

var speedSteps = []float64{0.25, 0.5, 1, 2, 4}

var (
	backgroundColor = color.RGBA{20, 20, 30, 255}
	grassColor      = color.RGBA{34, 60, 40, 255}
	pathColor       = color.RGBA{140, 110, 70, 255}
	entryColor      = color.RGBA{60, 160, 60, 255}
	exitColor       = color.RGBA{180, 50, 50, 255}
	hpBackColor     = color.RGBA{60, 0, 0, 255}
	hpColor         = color.RGBA{80, 220, 80, 255}
	frozenColor     = color.RGBA{180, 240, 255, 255}
	hoverColor      = color.RGBA{255, 255, 255, 60}
)

// Game represents the desktop client
type Game struct {
	api           *client.Client
	currentScreen ScreenType
	welcome       *WelcomeScreen

	mu        sync.RWMutex
	sessionID string
	view      *client.StateView
	advice    string
	status    string
	connected bool
	cancel    context.CancelFunc

	towers        []client.TowerInfo
	selectedTower int
	paused        bool
}

// WelcomeScreen manages the session selection screen
type WelcomeScreen struct {
	sessions  []client.SessionInfo
	configs   []client.ConfigInfo
	cursorPos int
	configIdx int
	errorMsg  string
}

// NewGame creates the client. With a session ID it skips the welcome screen.
func NewGame(api *client.Client, sessionID string) *Game {
	g := &Game{
		api:           api,
		currentScreen: ScreenWelcome,
		welcome:       &WelcomeScreen{},
	}

	if sessionID != "" {
		g.watch(sessionID)
	} else {
		g.loadWelcomeData()
	}
	return g
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// loadWelcomeData fetches sessions and configs for the welcome screen
func (g *Game) loadWelcomeData() {
	ws := g.welcome
	ws.errorMsg = ""

	ctx, cancel := requestContext()
	defer cancel()

	sessions, err := g.api.ListSessions(ctx)
	if err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading sessions: %v", err)
		return
	}
	ws.sessions = sessions

	configs, err := g.api.ListConfigs(ctx)
	if err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading configs: %v", err)
		return
	}
	ws.configs = configs

	if ws.cursorPos >= len(ws.sessions) {
		ws.cursorPos = 0
	}
}

// watch switches to the game screen for sessionID and subscribes to its pushes
func (g *Game) watch(sessionID string) {
	g.stopWatching()

	ctx, cancel := context.WithCancel(context.Background())

	g.mu.Lock()
	g.sessionID = sessionID
	g.view = nil
	g.advice = ""
	g.status = ""
	g.cancel = cancel
	g.mu.Unlock()

	// Initial state so the board shows even if the socket is slow
	reqCtx, reqCancel := requestContext()
	defer reqCancel()
	if view, err := g.api.State(reqCtx, sessionID); err == nil {
		g.mu.Lock()
		g.view = &view.StateView
		g.advice = view.Advice
		g.mu.Unlock()

		if towers, err := g.api.Towers(reqCtx, view.ConfigName); err == nil {
			g.towers = towers
		} else if towers, err := g.api.Towers(reqCtx, ""); err == nil {
			g.towers = towers
		}
	} else {
		g.setStatus(fmt.Sprintf("Failed to load session: %v", err))
	}
	g.selectedTower = 0

	go g.listen(ctx, sessionID)
	g.currentScreen = ScreenGame
}

func (g *Game) stopWatching() {
	g.mu.Lock()
	cancel := g.cancel
	g.cancel = nil
	g.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// listen keeps a WebSocket subscription alive until ctx is cancelled
func (g *Game) listen(ctx context.Context, sessionID string) {
	for ctx.Err() == nil {
		g.mu.Lock()
		g.connected = true
		g.mu.Unlock()

		err := g.api.Subscribe(ctx, sessionID, g.handleMessage)

		g.mu.Lock()
		g.connected = false
		g.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		log.Printf("WebSocket for %s closed: %v (retrying)", sessionID, err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

// handleMessage applies one push to the local view
func (g *Game) handleMessage(msg client.Message) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if msg.State != nil {
		g.view = msg.State
	}
	switch msg.Event {
	case "advice":
		if data, ok := msg.Data.(map[string]interface{}); ok {
			if text, ok := data["advice"].(string); ok {
				g.advice = text
			}
		}
	case "game_over":
		g.status = "GAME OVER"
	}
}

func (g *Game) setStatus(status string) {
	g.mu.Lock()
	g.status = status
	g.mu.Unlock()
}

// Update updates game logic
func (g *Game) Update() error {
	switch g.currentScreen {
	case ScreenWelcome:
		return g.updateWelcomeScreen()
	case ScreenGame:
		return g.updateGameScreen()
	}
	return nil
}

// updateWelcomeScreen handles welcome screen input
func (g *Game) updateWelcomeScreen() error {
	ws := g.welcome

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.loadWelcomeData()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && ws.cursorPos < len(ws.sessions)-1 {
		ws.cursorPos++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && ws.cursorPos > 0 {
		ws.cursorPos--
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && len(ws.configs) > 0 {
		ws.configIdx = (ws.configIdx + 1) % len(ws.configs)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) && ws.cursorPos < len(ws.sessions) {
		g.watch(ws.sessions[ws.cursorPos].ID)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		configID := ""
		if ws.configIdx < len(ws.configs) {
			configID = ws.configs[ws.configIdx].ConfigID
		}
		ctx, cancel := requestContext()
		info, err := g.api.CreateSession(ctx, configID)
		cancel()
		if err != nil {
			ws.errorMsg = fmt.Sprintf("Failed to create session: %v", err)
		} else {
			log.Printf("Created new session: %s (config: %s)", info.ID, configID)
			g.watch(info.ID)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && g.sessionID != "" {
		g.watch(g.sessionID)
	}

	return nil
}

// updateGameScreen handles game screen input
func (g *Game) updateGameScreen() error {
	g.mu.RLock()
	sessionID := g.sessionID
	view := g.view
	g.mu.RUnlock()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.stopWatching()
		g.currentScreen = ScreenWelcome
		g.loadWelcomeData()
		return nil
	}
	if view == nil {
		return nil
	}

	ctx, cancel := requestContext()
	defer cancel()

	// Tower selection
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && len(g.towers) > 0 {
		g.selectedTower = (g.selectedTower + 1) % len(g.towers)
	}
	for i := ebiten.Key1; i <= ebiten.Key9; i++ {
		if inpututil.IsKeyJustPressed(i) {
			if idx := int(i - ebiten.Key1); idx < len(g.towers) {
				g.selectedTower = idx
			}
		}
	}

	// Placement
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && g.selectedTower < len(g.towers) {
		if x, y, ok := g.cellAt(ebiten.CursorPosition()); ok {
			key := g.towers[g.selectedTower].Key
			result, err := g.api.PlaceTower(ctx, sessionID, x, y, key)
			switch {
			case err != nil:
				g.setStatus(err.Error())
			case !result.Success:
				g.setStatus(result.Message)
			default:
				g.setStatus(fmt.Sprintf("Placed %s at (%d, %d)", key, x, y))
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if result, err := g.api.StartWave(ctx, sessionID); err != nil {
			g.setStatus(err.Error())
		} else {
			g.setStatus(result.Message)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		var err error
		if g.paused {
			err = g.api.Resume(ctx, sessionID)
		} else {
			err = g.api.Pause(ctx, sessionID)
		}
		if err != nil {
			g.setStatus(err.Error())
		} else {
			g.paused = !g.paused
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		step := 1
		if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
			step = -1
		}
		speed := nextSpeed(view.State.GameSpeed, step)
		if err := g.api.SetSpeed(ctx, sessionID, speed); err != nil {
			g.setStatus(err.Error())
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		if err := g.api.RequestAdvice(ctx, sessionID); err != nil {
			g.setStatus(err.Error())
		} else {
			g.setStatus("Asked the advisor...")
		}
	}

	return nil
}

// nextSpeed moves one step along speedSteps from current
func nextSpeed(current float64, step int) float64 {
	idx := 2
	for i, s := range speedSteps {
		if math.Abs(s-current) < 1e-9 {
			idx = i
			break
		}
	}
	idx += step
	if idx < 0 {
		idx = 0
	} else if idx >= len(speedSteps) {
		idx = len(speedSteps) - 1
	}
	return speedSteps[idx]
}

// cellAt maps a screen position to a grid cell of the current view
func (g *Game) cellAt(px, py int) (int, int, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.view == nil {
		return 0, 0, false
	}
	return cellFor(g.view.GridSize, px, py)
}

// Draw renders the current screen
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	switch g.currentScreen {
	case ScreenWelcome:
		g.drawWelcomeScreen(screen)
	case ScreenGame:
		g.drawGameScreen(screen)
	}
}

// drawWelcomeScreen renders the session selection screen
func (g *Game) drawWelcomeScreen(screen *ebiten.Image) {
	ws := g.welcome

	y := 20
	ebitenutil.DebugPrintAt(screen, "=== ELEMENTAL TOWER DEFENSE - SESSION SELECT ===", 200, y)
	y += 30

	if ws.errorMsg != "" {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("ERROR: %s", ws.errorMsg), 20, y)
		y += 20
	}

	ebitenutil.DebugPrintAt(screen, "Sessions:", 20, y)
	y += 20
	if len(ws.sessions) == 0 {
		ebitenutil.DebugPrintAt(screen, "  No sessions found. Press N to create one.", 20, y)
		y += 20
	}
	for i, s := range ws.sessions {
		cursor := "  "
		if i == ws.cursorPos {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s | %s", cursor, s.ID, s.ConfigName)
		if s.GameState != nil {
			line += fmt.Sprintf(" | wave %d money %d lives %d", s.GameState.Wave, s.GameState.Money, s.GameState.Lives)
			if s.GameState.IsGameOver {
				line += " GAME OVER"
			}
		}
		ebitenutil.DebugPrintAt(screen, line, 20, y)
		y += 15
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, "Maps for new sessions:", 20, y)
	y += 20
	for i, cfg := range ws.configs {
		marker := "  "
		if i == ws.configIdx {
			marker = "→ "
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("  %s%s - %s", marker, cfg.ConfigID, cfg.Description), 20, y)
		y += 15
	}

	y += 30
	for _, line := range []string{
		"CONTROLS:",
		"  ↑/↓    - Navigate sessions",
		"  ENTER  - Watch selected session",
		"  TAB    - Cycle map for new session",
		"  N      - Create session on selected map",
		"  F5     - Refresh",
	} {
		ebitenutil.DebugPrintAt(screen, line, 20, y)
		y += 15
	}
}

// drawGameScreen renders the board, entities and sidebar
func (g *Game) drawGameScreen(screen *ebiten.Image) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	view := g.view
	if view == nil || view.GridSize <= 0 {
		msg := "Loading..."
		if g.status != "" {
			msg = g.status
		}
		ebitenutil.DebugPrint(screen, msg+"\nESC: Menu")
		return
	}

	size := float64(boardSize) / float64(view.GridSize)
	top := float64(headerHeight)

	g.drawHeader(screen, view)

	// Grid and path
	for y := 0; y < view.GridSize; y++ {
		for x := 0; x < view.GridSize; x++ {
			c := grassColor
			if client.OnPath(view.Path, x, y) {
				c = pathColor
			}
			ebitenutil.DrawRect(screen, float64(x)*size, top+float64(y)*size, size-1, size-1, c)
		}
	}
	if n := len(view.Path); n > 0 {
		entry, exit := view.Path[0], view.Path[n-1]
		ebitenutil.DrawRect(screen, entry.X*size, top+entry.Y*size, size-1, size-1, entryColor)
		ebitenutil.DrawRect(screen, exit.X*size, top+exit.Y*size, size-1, size-1, exitColor)
	}

	// Hover highlight
	px, py := ebiten.CursorPosition()
	if x, y, ok := cellFor(view.GridSize, px, py); ok {
		ebitenutil.DrawRect(screen, float64(x)*size, top+float64(y)*size, size-1, size-1, hoverColor)
	}

	// Towers with their range
	for _, t := range view.Towers {
		cx := (float64(t.X) + 0.5) * size
		cy := top + (float64(t.Y)+0.5)*size
		rangeColor := client.ElementColor(t.Type)
		rangeColor.A = 30
		ebitenutil.DrawCircle(screen, cx, cy, t.Range*size, rangeColor)
		ebitenutil.DrawRect(screen, float64(t.X)*size+4, top+float64(t.Y)*size+4, size-9, size-9, client.ElementColor(t.Type))
	}

	// Enemies with hp bars
	for _, e := range view.Enemies {
		cx := (e.Position.X + 0.5) * size
		cy := top + (e.Position.Y+0.5)*size
		radius := size * 0.3
		ebitenutil.DrawCircle(screen, cx, cy, radius, client.ElementColor(e.Type))
		if e.Frozen > 0 {
			ebitenutil.DrawCircle(screen, cx, cy, radius*0.4, frozenColor)
		}
		if e.MaxHP > 0 {
			frac := math.Max(0, e.HP/e.MaxHP)
			ebitenutil.DrawRect(screen, cx-radius, cy-radius-5, 2*radius, 3, hpBackColor)
			ebitenutil.DrawRect(screen, cx-radius, cy-radius-5, 2*radius*frac, 3, hpColor)
		}
	}

	// Projectiles
	for _, p := range view.Projectiles {
		x, y := client.ProjectilePosition(p)
		ebitenutil.DrawCircle(screen, (x+0.5)*size, top+(y+0.5)*size, 3, client.ElementColor(p.Element))
	}

	g.drawSidebar(screen, view)

	if view.State.IsGameOver {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("GAME OVER - reached wave %d", view.State.Wave), boardSize/2-80, headerHeight+boardSize/2)
	}

	ebitenutil.DebugPrintAt(screen, "Click: Place | 1-9/TAB: Tower | SPACE: Wave | P: Pause | +/-: Speed | H: Advice | ESC: Menu", 10, screenHeight-16)
}

// cellFor maps a screen position to a grid cell for a known grid size
func cellFor(gridSize, px, py int) (int, int, bool) {
	if gridSize <= 0 || px < 0 || px >= boardSize || py < headerHeight || py >= headerHeight+boardSize {
		return 0, 0, false
	}
	size := float64(boardSize) / float64(gridSize)
	return int(float64(px) / size), int(float64(py-headerHeight) / size), true
}

func (g *Game) drawHeader(screen *ebiten.Image, view *client.StateView) {
	conn := "POLL"
	if g.connected {
		conn = "WS"
	}
	state := view.State
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Session %s [%s] map %s", g.sessionID, conn, view.ConfigName), 10, 5)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Money: %d   Lives: %d   Wave: %d   Speed: %gx   Enemies: %d (+%d pending)",
		state.Money, state.Lives, state.Wave, state.GameSpeed, len(view.Enemies), view.PendingEnemies), 10, 22)
	if g.status != "" {
		ebitenutil.DebugPrintAt(screen, g.status, 10, 39)
	}
}

func (g *Game) drawSidebar(screen *ebiten.Image, view *client.StateView) {
	x := boardSize + 10
	y := headerHeight

	ebitenutil.DebugPrintAt(screen, "Towers:", x, y)
	y += 18
	for i, t := range g.towers {
		if y > headerHeight+boardSize-120 {
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("  ... %d more (TAB)", len(g.towers)-i), x, y)
			y += 15
			break
		}
		marker := "  "
		if i == g.selectedTower {
			marker = "> "
		}
		ebitenutil.DrawRect(screen, float64(x), float64(y+3), 8, 8, client.ElementColor(t.Type))
		line := fmt.Sprintf("%s %s %d", marker, t.Key, t.Cost)
		if t.Cost > view.State.Money {
			line += " $"
		}
		ebitenutil.DebugPrintAt(screen, line, x+10, y)
		y += 15
	}

	if g.selectedTower < len(g.towers) {
		t := g.towers[g.selectedTower]
		y += 10
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s (%s)", t.Name, t.Type), x, y)
		y += 15
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("dmg %.0f  rng %.1f  cd %.0fms", t.Damage, t.Range, t.AttackSpeed), x, y)
		y += 15
		if len(t.StrongAgainst) > 0 {
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("strong vs %v", t.StrongAgainst), x, y)
			y += 15
		}
	}

	if g.advice != "" {
		y += 10
		ebitenutil.DebugPrintAt(screen, "Advisor:", x, y)
		y += 15
		for _, line := range wrap(g.advice, 38) {
			ebitenutil.DebugPrintAt(screen, line, x, y)
			y += 15
		}
	}
}

// wrap splits text into lines of at most width runes on word boundaries
func wrap(text string, width int) []string {
	var lines []string
	line := ""
	word := ""
	flush := func() {
		if word == "" {
			return
		}
		if line != "" && len([]rune(line))+1+len([]rune(word)) > width {
			lines = append(lines, line)
			line = ""
		}
		if line == "" {
			line = word
		} else {
			line += " " + word
		}
		word = ""
	}
	for _, r := range text {
		if r == ' ' || r == '\n' {
			flush()
			continue
		}
		word += string(r)
	}
	flush()
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// Layout returns the game screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	server := defaultServer
	if env := os.Getenv("TD_SERVER"); env != "" {
		server = env
	}

	sessionID := ""
	if len(os.Args) > 1 {
		sessionID = os.Args[1]
	}

	game := NewGame(client.New(server), sessionID)

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Elemental Tower Defense - Desktop Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
