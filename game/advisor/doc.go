// Package advisor produces the short tactical hints shown next to the board.
//
// GeminiAdvisor calls a Gemini model through google.golang.org/genai and falls back to fixed text
// when no key is configured, the call fails, or the model returns nothing.
// Dispatcher runs requests in the background; callers receive the text through a
// callback and the simulation never waits on it.
package advisor
