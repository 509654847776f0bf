// Command bruteforcer plays Tile Kingdoms through the REST API. It takes
// every human seat in the session, places tiles with a systematic strategy
// and replays matches until its seat wins or attempts run out.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/wricardo/mcp-training/tilekingdoms/game/engine"
	"github.com/wricardo/mcp-training/tilekingdoms/game/service"
)

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// do sends a JSON request and decodes the JSON response into out
func (c *Client) do(method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
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
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return fmt.Sprintf("/api/sessions/%s%s", c.sessionID, suffix)
}

func (c *Client) CreateSession(configID string) (*engine.GameState, error) {
	req := map[string]string{}
	if configID != "" {
		req["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.do("POST", "/api/sessions", req, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = session.ID
	return session.GameState, nil
}

func (c *Client) GetState() (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do("GET", c.sessionPath("/state"), nil, &state); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &state, nil
}

func (c *Client) Placements(rotation int) (*service.PlacementsResult, error) {
	var result service.PlacementsResult
	if err := c.do("GET", c.sessionPath(fmt.Sprintf("/placements?rotation=%d", rotation)), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Place(rotation, x, y int) (*service.ActionResult, error) {
	var result service.ActionResult
	req := map[string]int{"rotation": rotation, "x": x, "y": y}
	if err := c.do("POST", c.sessionPath("/place"), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Marker(featureIndex int) (*service.ActionResult, error) {
	var result service.ActionResult
	req := map[string]int{"feature_index": featureIndex}
	if err := c.do("POST", c.sessionPath("/marker"), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SkipMarker() (*service.ActionResult, error) {
	var result service.ActionResult
	if err := c.do("POST", c.sessionPath("/skip-marker"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) AITurn() (*service.ActionResult, error) {
	var result service.ActionResult
	if err := c.do("POST", c.sessionPath("/ai-turn"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type ResetResponse struct {
	Message string            `json:"message"`
	State   *engine.GameState `json:"state"`
}

func (c *Client) Reset() (*engine.GameState, error) {
	var resetResp ResetResponse
	if err := c.do("POST", c.sessionPath("/reset"), nil, &resetResp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resetResp.State, nil
}

// playTurn plays one action for the seat to move: a placement in the place
// phase, a marker decision in the marker phase, or an AI turn for bots.
func playTurn(c *Client, strategy *SystematicStrategy, state *engine.GameState) (*engine.GameState, error) {
	if state.Players[state.CurrentPlayer].AI {
		result, err := c.AITurn()
		if err != nil {
			return nil, err
		}
		return result.GameState, nil
	}

	if state.Phase == engine.PhaseMarker {
		var (
			result *service.ActionResult
			err    error
		)
		if opt, ok := strategy.ChooseMarker(state); ok {
			result, err = c.Marker(opt.FeatureIndex)
		} else {
			result, err = c.SkipMarker()
		}
		if err != nil {
			return nil, err
		}
		return result.GameState, nil
	}

	var options []*service.PlacementsResult
	for r := 0; r < 4; r++ {
		p, err := c.Placements(r)
		if err != nil {
			return nil, err
		}
		options = append(options, p)
	}

	move, ok := strategy.ChoosePlacement(state, options)
	if !ok {
		return nil, fmt.Errorf("no legal placement offered for %s", state.CurrentTile.Archetype)
	}
	result, err := c.Place(move.Rotation, move.Position.X, move.Position.Y)
	if err != nil {
		return nil, err
	}
	return result.GameState, nil
}

// playMatch plays until the game is over or maxActions is reached
func playMatch(c *Client, strategy *SystematicStrategy, state *engine.GameState, maxActions int, verbose bool, delay time.Duration) (*engine.GameState, int, error) {
	actions := 0
	for !state.GameOver && actions < maxActions {
		if verbose && actions%20 == 0 {
			log.Printf("Turn %d, pool %d, scores %v", state.Turn, state.PoolRemaining, scores(state))
		}

		next, err := playTurn(c, strategy, state)
		if err != nil {
			return state, actions, err
		}
		state = next
		actions++

		if delay > 0 {
			time.Sleep(delay)
		}
	}
	return state, actions, nil
}

func scores(state *engine.GameState) []int {
	out := make([]int, len(state.Players))
	for i, p := range state.Players {
		out[i] = p.Score
	}
	return out
}

// humanWon reports whether a human seat is among the winners
func humanWon(state *engine.GameState) bool {
	for _, w := range state.Winners {
		if w >= 0 && w < len(state.Players) && !state.Players[w].AI {
			return true
		}
	}
	return false
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	configID := flag.String("config", "", "Game configuration id (classic, duel, party)")
	continueSession := flag.String("continue", "", "Resume playing an existing session by ID")
	maxActions := flag.Int("max-actions", 500, "Maximum actions per attempt")
	maxAttempts := flag.Int("max-attempts", 20, "Maximum attempts before giving up")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between actions in milliseconds (0 = no delay)")
	flag.Parse()

	log.Printf("Connecting to game server at %s", *serverURL)
	client := NewClient(*serverURL)

	var state *engine.GameState
	var err error

	// Check for saved session ID
	sessionFile := ".session"
	savedSessionID := *continueSession
	if savedSessionID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	if savedSessionID != "" {
		client.sessionID = savedSessionID
		log.Printf("🔄 Resuming session: %s", client.sessionID)
		if state, err = client.GetState(); err != nil {
			log.Printf("⚠️  Failed to resume session (may be expired): %v", err)
			savedSessionID = ""
		}
	}

	if savedSessionID == "" {
		state, err = client.CreateSession(*configID)
		if err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		log.Printf("✨ Session created: %s (%s, %d players)", client.sessionID, state.ConfigName, len(state.Players))

		if err := os.WriteFile(sessionFile, []byte(client.sessionID), 0644); err != nil {
			log.Printf("Warning: Failed to save session ID: %v", err)
		}
	}

	strategy := NewSystematicStrategy()

	for attempt := 1; attempt <= *maxAttempts; attempt++ {
		if attempt > 1 || state.GameOver {
			if state, err = client.Reset(); err != nil {
				log.Fatalf("Failed to reset game: %v", err)
			}
		}

		log.Printf("\n=== 🎮 Attempt %d/%d ===", attempt, *maxAttempts)

		var actions int
		state, actions, err = playMatch(client, strategy, state, *maxActions, *verbose, time.Duration(*delayMs)*time.Millisecond)
		if err != nil {
			log.Printf("Attempt %d aborted after %d actions: %v", attempt, actions, err)
			continue
		}

		log.Printf("Attempt %d: actions=%d, scores=%v, discarded=%d", attempt, actions, scores(state), state.Discarded)
		if state.GameOver && humanWon(state) {
			log.Printf("\n🎉 VICTORY! %s", state.Message)
			log.Printf("Session: %s", client.sessionID)
			os.Exit(0)
		}
	}

	log.Printf("\n❌ No win after %d attempts", *maxAttempts)
	log.Printf("Session: %s", client.sessionID)
	os.Exit(1)
}
