package advisor

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/wricardo/mcp-training/towerdefense/game/engine"
)

const (
	InitialAdvice = "Welcome to the world of Pokemon Defense! Prepare your defenses!"
	OfflineAdvice = "Professor Oak is currently offline (Check API Key)."
	ErrorAdvice   = "Study your type matchups closely!"
	EmptyAdvice   = "Keep going, trainer!"

	DefaultModel = "gemini-2.5-flash"
)

// Advisor produces a short piece of tactical text for the current game.
// Implementations never fail: problems are reported through fallback text.
type Advisor interface {
	Advise(ctx context.Context, state engine.GameState, towers []engine.Tower) string
}

// Static always returns the same text
type Static string

func (s Static) Advise(ctx context.Context, state engine.GameState, towers []engine.Tower) string {
	return string(s)
}

// GeminiAdvisor asks a Gemini model for advice through the genai SDK
type GeminiAdvisor struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client

	once      sync.Once
	client    *genai.Client
	clientErr error
}

// Option customizes a GeminiAdvisor
type Option func(*GeminiAdvisor)

func WithModel(model string) Option {
	return func(g *GeminiAdvisor) { g.model = model }
}

// WithBaseURL points the SDK at another endpoint
func WithBaseURL(baseURL string) Option {
	return func(g *GeminiAdvisor) { g.baseURL = baseURL }
}

func WithHTTPClient(client *http.Client) Option {
	return func(g *GeminiAdvisor) { g.httpClient = client }
}

// NewGeminiAdvisor creates an advisor for apiKey. An empty key yields an advisor
// that only answers with OfflineAdvice.
func NewGeminiAdvisor(apiKey string, opts ...Option) *GeminiAdvisor {
	g := &GeminiAdvisor{
		apiKey: apiKey,
		model:  DefaultModel,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewGeminiAdvisorFromEnv reads the key from API_KEY, falling back to GEMINI_API_KEY
func NewGeminiAdvisorFromEnv(opts ...Option) *GeminiAdvisor {
	key := os.Getenv("API_KEY")
	if key == "" {
		key = os.Getenv("GEMINI_API_KEY")
	}
	return NewGeminiAdvisor(key, opts...)
}

// Online reports whether an API key is configured
func (g *GeminiAdvisor) Online() bool {
	return g.apiKey != ""
}

// Advise implements Advisor
func (g *GeminiAdvisor) Advise(ctx context.Context, state engine.GameState, towers []engine.Tower) string {
	if !g.Online() {
		return OfflineAdvice
	}

	text, err := g.generate(ctx, BuildPrompt(state, towers))
	if err != nil {
		log.Printf("Advisor error: %v", err)
		return ErrorAdvice
	}
	if strings.TrimSpace(text) == "" {
		return EmptyAdvice
	}
	return strings.TrimSpace(text)
}

// genaiClient builds the SDK client on first use
func (g *GeminiAdvisor) genaiClient() (*genai.Client, error) {
	g.once.Do(func() {
		cfg := &genai.ClientConfig{
			APIKey:     g.apiKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: g.httpClient,
		}
		if g.baseURL != "" {
			cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
		}
		g.client, g.clientErr = genai.NewClient(context.Background(), cfg)
	})
	return g.client, g.clientErr
}

func (g *GeminiAdvisor) generate(ctx context.Context, prompt string) (string, error) {
	client, err := g.genaiClient()
	if err != nil {
		return "", fmt.Errorf("failed to create genai client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// BuildPrompt renders the game situation into the advisor prompt
func BuildPrompt(state engine.GameState, towers []engine.Tower) string {
	names := make([]string, 0, len(towers))
	for _, t := range towers {
		names = append(names, t.Name)
	}
	summary := strings.Join(names, ", ")
	if summary == "" {
		summary = "None yet"
	}

	return fmt.Sprintf(`You are Professor Oak from Pokemon. The player is playing a Tower Defense game.

Current Game State:
- Wave: %d
- Money: %d
- Lives Left: %d
- Player's Pokemon (Towers): %s

Give a short, helpful, and encouraging piece of tactical advice (max 2 sentences) in Korean (Hangul).
Focus on type matchups (Fire > Grass, Water > Fire, Grass > Water, Electric is fast) or resource management.
Be characteristically enthusiastic like Professor Oak.`, state.Wave, state.Money, state.Lives, summary)
}
