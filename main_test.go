package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/towerdefense/game/engine"
	"github.com/wricardo/mcp-training/towerdefense/game/loop"
	"github.com/wricardo/mcp-training/towerdefense/transport/mcp"
)

type nopNotifier struct{}

func (nopNotifier) BroadcastState(string, engine.StateView)     {}
func (nopNotifier) BroadcastEvent(string, string, interface{}) {}

var envKeys = []string{
	"PORT", "HOST", "CONFIG_DIR", "DEFAULT_CONFIG", "DEBUG", "TICK_RATE", "BROADCAST_EVERY", "AUTORUN",
	"NGROK_ENABLED", "NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN", "NGROK_DOMAIN",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func parseArgs(t *testing.T, args ...string) (options, string) {
	t.Helper()
	var gotOpts options
	var gotMode string
	cmd := newCommand(func(ctx context.Context, opts options, mode string) error {
		gotOpts = opts
		gotMode = mode
		return nil
	})
	if err := cmd.Run(context.Background(), append([]string{"towerdefense"}, args...)); err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	return gotOpts, gotMode
}

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}

	expectedAppName := "Elemental Tower Defense Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestFlagDefaults(t *testing.T) {
	clearEnv(t)

	opts, mode := parseArgs(t)

	if mode != "server" {
		t.Errorf("Expected default mode server, got %s", mode)
	}
	if opts.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", opts.Port)
	}
	if opts.Host != "localhost" {
		t.Errorf("Expected default host localhost, got %s", opts.Host)
	}
	if opts.ConfigDir != "configs" {
		t.Errorf("Expected default config dir configs, got %s", opts.ConfigDir)
	}
	if opts.TickRate != loop.DefaultFrameRate {
		t.Errorf("Expected default tick rate %d, got %d", loop.DefaultFrameRate, opts.TickRate)
	}
	if opts.BroadcastEvery != 1 {
		t.Errorf("Expected broadcast every 1, got %d", opts.BroadcastEvery)
	}
	if !opts.AutoRun {
		t.Error("Expected autorun to default to true")
	}
	if opts.NgrokEnabled || opts.Debug {
		t.Error("Expected ngrok and debug to be off by default")
	}
}

func TestFlagParsing(t *testing.T) {
	clearEnv(t)

	opts, mode := parseArgs(t,
		"--port", "9090",
		"--host", "0.0.0.0",
		"--tick-rate", "30",
		"--broadcast-every", "4",
		"--autorun=false",
		"--debug",
		"stdio-mcp",
	)

	if mode != "stdio-mcp" {
		t.Errorf("Expected mode stdio-mcp, got %s", mode)
	}
	if opts.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", opts.Port)
	}
	if opts.Host != "0.0.0.0" {
		t.Errorf("Expected host 0.0.0.0, got %s", opts.Host)
	}
	if opts.TickRate != 30 {
		t.Errorf("Expected tick rate 30, got %d", opts.TickRate)
	}
	if opts.BroadcastEvery != 4 {
		t.Errorf("Expected broadcast every 4, got %d", opts.BroadcastEvery)
	}
	if opts.AutoRun {
		t.Error("Expected autorun to be disabled")
	}
	if !opts.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestFlagEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("TICK_RATE", "20")
	t.Setenv("CONFIG_DIR", "/tmp/maps")
	t.Setenv("DEFAULT_CONFIG", "gauntlet")
	t.Setenv("NGROK_ENABLED", "true")
	t.Setenv("NGROK_AUTH_TOKEN", "secret")

	opts, _ := parseArgs(t)

	if opts.TickRate != 20 {
		t.Errorf("Expected tick rate 20 from env, got %d", opts.TickRate)
	}
	if opts.ConfigDir != "/tmp/maps" {
		t.Errorf("Expected config dir from env, got %s", opts.ConfigDir)
	}
	if opts.DefaultConfig != "gauntlet" {
		t.Errorf("Expected default config from env, got %s", opts.DefaultConfig)
	}
	if !opts.NgrokEnabled {
		t.Error("Expected ngrok enabled from env")
	}
	if opts.NgrokAuth != "secret" {
		t.Errorf("Expected ngrok auth from NGROK_AUTH_TOKEN, got %q", opts.NgrokAuth)
	}
}

func TestRun_UnknownMode(t *testing.T) {
	err := run(context.Background(), options{ConfigDir: "configs"}, "bogus")
	if err == nil {
		t.Fatal("Expected error for unknown mode")
	}
	if !strings.Contains(err.Error(), "unknown mode") {
		t.Errorf("Expected unknown mode error, got %v", err)
	}
}

func TestInitializeServices(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	gameService, manager, err := initializeServices(options{ConfigDir: "configs", TickRate: 60}, nopNotifier{})
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer gameService.Close()

	if gameService == nil || manager == nil {
		t.Fatal("Expected game service and session manager to be initialized")
	}

	info, err := gameService.CreateSession(context.Background(), "classic")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session in manager, got %d", manager.Count())
	}
	if info.Running {
		t.Error("Expected session without autorun to be stopped")
	}
}

func TestInitializeServices_DefaultConfig(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	gameService, _, err := initializeServices(options{ConfigDir: "configs", DefaultConfig: "gauntlet"}, nopNotifier{})
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer gameService.Close()

	info, err := gameService.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if info.ConfigName != "gauntlet" {
		t.Errorf("Expected gauntlet default, got %s", info.ConfigName)
	}

	if _, _, err := initializeServices(options{ConfigDir: "configs", DefaultConfig: "missing"}, nopNotifier{}); err == nil {
		t.Error("Expected error for unknown default config")
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	_, _, err := initializeServices(options{ConfigDir: "/non/existent/path"}, nopNotifier{})
	if err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestMCPHandler(t *testing.T) {
	handler := mcpHandler(mcp.NewClient("http://localhost:0"))

	t.Run("rejects GET", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/mcp", nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected status 405, got %d", rr.Code)
		}
	})

	t.Run("lists tools", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body)))

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %s", ct)
		}
		if !strings.Contains(rr.Body.String(), `"name":"place_tower"`) {
			t.Errorf("Expected place_tower in tool list, got %s", rr.Body.String())
		}
	})
}
