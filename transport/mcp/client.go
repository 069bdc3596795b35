package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/scrabble-duel/game/engine"
	"github.com/wricardo/scrabble-duel/game/history"
)

// Client is a thin MCP client that proxies to the REST API. It plays as
// one registered player.
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer

	mu       sync.Mutex
	playerID string
	token    string
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Scrabble Duel",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Scrabble Duel - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Start with register_player, then create_solo_game to play against a virtual
player. The board is 15x15; rows are letters a-o, columns 1-15. The first
word must cover h8.

AVAILABLE TOOLS:
- register_player: Pick a display name (required once)
- create_solo_game: Start a game against a virtual player
- game_state: Board, easel, scores and whose turn it is
- place: Lay letters from your easel
- exchange: Trade letters with the reserve (needs 7+ tiles left)
- pass: End your turn
- hints: Up to 3 suggested placements
- list_rooms: Multiplayer rooms waiting for an opponent
- best_scores: Best scores of a mode
- list_dictionaries: Dictionaries a game can use

In place, upper case letters are regular tiles and lower case letters are
blanks playing that letter. Occupied cells along the line are skipped.`),
	)

	c.registerTools()
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func objectSchema(props map[string]any, required ...string) mcp.ToolInputSchema {
	return mcp.ToolInputSchema{Type: "object", Properties: props, Required: required}
}

var gameIDProp = stringProp("Game id (defaults to the game you are seated in)")

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "register_player",
		Description: "Register the display name this client plays under",
		InputSchema: objectSchema(map[string]any{"name": stringProp("Display name")}, "name"),
	}, c.handleRegister)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_solo_game",
		Description: "Start a game against a virtual player",
		InputSchema: objectSchema(map[string]any{
			"mode":          map[string]any{"type": "string", "enum": []string{"classic", "log2990"}, "description": "Rule set, log2990 adds bonus objectives"},
			"level":         map[string]any{"type": "string", "enum": []string{"beginner", "expert"}, "description": "Virtual player level"},
			"timer_seconds": map[string]any{"type": "number", "description": "Turn timer, 30 to 300 by steps of 30"},
			"dictionary_id": stringProp("Dictionary id from list_dictionaries"),
		}),
	}, c.handleCreateSolo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the board, your easel, the scores and whose turn it is",
		InputSchema: objectSchema(map[string]any{"game_id": gameIDProp}),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place",
		Description: "Place letters from your easel",
		InputSchema: objectSchema(map[string]any{
			"game_id":  gameIDProp,
			"position": stringProp("Start cell, row letter then column, e.g. h8"),
			"axis":     map[string]any{"type": "string", "enum": []string{"h", "v"}, "description": "h for horizontal, v for vertical"},
			"letters":  stringProp("Letters from your easel; lower case for a blank"),
		}, "position", "axis", "letters"),
	}, c.handlePlace)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "exchange",
		Description: "Exchange letters from your easel with the reserve",
		InputSchema: objectSchema(map[string]any{
			"game_id": gameIDProp,
			"letters": stringProp("Letters to trade, * for a blank"),
		}, "letters"),
	}, c.handleExchange)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "pass",
		Description: "Pass your turn",
		InputSchema: objectSchema(map[string]any{"game_id": gameIDProp}),
	}, c.handlePass)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "hints",
		Description: "Suggest up to 3 placements for your easel",
		InputSchema: objectSchema(map[string]any{"game_id": gameIDProp}),
	}, c.handleHints)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List multiplayer rooms waiting for an opponent",
		InputSchema: objectSchema(map[string]any{
			"mode": map[string]any{"type": "string", "enum": []string{"classic", "log2990"}},
		}),
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "best_scores",
		Description: "Best scores recorded for a mode",
		InputSchema: objectSchema(map[string]any{
			"mode": map[string]any{"type": "string", "enum": []string{"classic", "log2990"}},
		}),
	}, c.handleBestScores)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_dictionaries",
		Description: "List the dictionaries a game can use",
		InputSchema: objectSchema(map[string]any{}),
	}, c.handleListDictionaries)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.Lock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.Unlock()

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

func (c *Client) registered() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID, c.token != ""
}

// gameID returns the game_id argument or the player's own game, which
// shares the host's id
func (c *Client) gameID(request mcp.CallToolRequest) (string, error) {
	if id := request.GetString("game_id", ""); id != "" {
		return id, nil
	}
	playerID, ok := c.registered()
	if !ok {
		return "", fmt.Errorf("call register_player first")
	}
	return playerID, nil
}

// Tool handlers

func (c *Client) handleRegister(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var resp struct {
		PlayerID string `json:"player_id"`
		Name     string `json:"name"`
		Token    string `json:"token"`
	}
	if err := c.apiCall(ctx, "POST", "/api/players", map[string]string{"name": name}, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c.mu.Lock()
	c.playerID, c.token = resp.PlayerID, resp.Token
	c.mu.Unlock()
	return mcp.NewToolResultText(fmt.Sprintf("Registered %s (player %s)", resp.Name, resp.PlayerID)), nil
}

func (c *Client) handleCreateSolo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, ok := c.registered(); !ok {
		return mcp.NewToolResultError("call register_player first"), nil
	}
	params := engine.Parameters{
		TimerSeconds: request.GetInt("timer_seconds", 0),
		DictionaryID: request.GetString("dictionary_id", ""),
		Mode:         engine.Mode(request.GetString("mode", "")),
		Level:        engine.Level(request.GetString("level", "")),
	}
	var view gameView
	if err := c.apiCall(ctx, "POST", "/api/games/solo", params, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created game %s\n\n%s", view.ID, formatGameState(&view))), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := c.gameID(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var view gameView
	if err := c.apiCall(ctx, "GET", "/api/games/"+url.PathEscape(id), nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(&view)), nil
}

// parsePosition reads "h8" into a zero-based position
func parsePosition(s string) (engine.Position, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 2 || s[0] < 'a' || s[0] > 'o' {
		return engine.Position{}, fmt.Errorf("invalid position %q", s)
	}
	col, err := strconv.Atoi(s[1:])
	if err != nil || col < 1 || col > engine.GridSize {
		return engine.Position{}, fmt.Errorf("invalid column in %q", s)
	}
	return engine.Position{Row: int(s[0] - 'a'), Col: col - 1}, nil
}

func (c *Client) handlePlace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := c.gameID(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pos, err := parsePosition(request.GetString("position", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p := engine.Placement{
		Position: pos,
		Axis:     engine.Axis(request.GetString("axis", "h")),
		Letters:  request.GetString("letters", ""),
	}
	return c.action(ctx, id, "place", p, "Placed "+p.Notation())
}

func (c *Client) handleExchange(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := c.gameID(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	letters := strings.ToUpper(request.GetString("letters", ""))
	return c.action(ctx, id, "exchange", map[string]string{"letters": letters}, "Exchanged "+letters)
}

func (c *Client) handlePass(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := c.gameID(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return c.action(ctx, id, "pass", nil, "Passed")
}

// action posts a turn action and reports the board after the opponent
// answered
func (c *Client) action(ctx context.Context, gameID, verb string, body any, done string) (*mcp.CallToolResult, error) {
	var resp struct {
		Accepted bool `json:"accepted"`
	}
	path := "/api/games/" + url.PathEscape(gameID)
	if err := c.apiCall(ctx, "POST", path+"/"+verb, body, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !resp.Accepted {
		return mcp.NewToolResultError(verb + " refused: not your turn, letters not on your easel, or an invalid word"), nil
	}

	var view gameView
	if err := c.apiCall(ctx, "GET", path, nil, &view); err != nil {
		// the game ends with the last move and leaves the directory
		return mcp.NewToolResultText(done + "\nThe game is over."), nil
	}
	return mcp.NewToolResultText(done + "\n\n" + formatGameState(&view)), nil
}

func (c *Client) handleHints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := c.gameID(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var resp struct {
		Accepted bool     `json:"accepted"`
		Hints    []string `json:"hints"`
	}
	if err := c.apiCall(ctx, "GET", "/api/games/"+url.PathEscape(id)+"/hints", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !resp.Accepted {
		return mcp.NewToolResultError("hints are only available on your turn"), nil
	}
	if len(resp.Hints) == 0 {
		return mcp.NewToolResultText("No placement found"), nil
	}
	return mcp.NewToolResultText(strings.Join(resp.Hints, "\n")), nil
}

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Mode  string `json:"mode"`
		Rooms []struct {
			ID         string `json:"id"`
			PlayerName string `json:"player_name"`
			Parameters struct {
				Dictionary string `json:"dictionary"`
				Timer      int    `json:"timer"`
			} `json:"parameters"`
		} `json:"rooms"`
	}
	path := "/api/rooms?mode=" + url.QueryEscape(request.GetString("mode", "classic"))
	if err := c.apiCall(ctx, "GET", path, nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(resp.Rooms) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No %s room is waiting", resp.Mode)), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s room(s):\n", len(resp.Rooms), resp.Mode)
	for _, r := range resp.Rooms {
		fmt.Fprintf(&b, "- %s hosted by %s (%s, %ds turns)\n", r.ID, r.PlayerName, r.Parameters.Dictionary, r.Parameters.Timer)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleBestScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode := request.GetString("mode", "classic")
	var scores []history.BestScore
	if err := c.apiCall(ctx, "GET", "/api/scores?mode="+url.QueryEscape(mode), nil, &scores); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatBestScores(mode, scores)), nil
}

func (c *Client) handleListDictionaries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var dicts []struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.apiCall(ctx, "GET", "/api/dictionaries", nil, &dicts); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var b strings.Builder
	for _, d := range dicts {
		fmt.Fprintf(&b, "- %s: %s", d.ID, d.Title)
		if d.Description != "" {
			fmt.Fprintf(&b, " (%s)", d.Description)
		}
		b.WriteByte('\n')
	}
	return mcp.NewToolResultText(b.String()), nil
}

// gameView is the part of the REST game state the tools render
type gameView struct {
	ID              string `json:"id"`
	Mode            string `json:"mode"`
	Status          string `json:"status"`
	CurrentPlayerID string `json:"current_player_id"`
	YourTurn        bool   `json:"your_turn"`
	ReserveSize     int    `json:"reserve_size"`
	Grid            struct {
		Rows []string `json:"rows"`
	} `json:"grid"`
	Easel []struct {
		Symbol string `json:"symbol"`
		Value  int    `json:"value"`
	} `json:"easel"`
	Players []struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Score   int    `json:"score"`
		Virtual bool   `json:"virtual"`
	} `json:"players"`
	Objectives []struct {
		Description string `json:"description"`
		Type        string `json:"type"`
		Points      int    `json:"points"`
		Done        bool   `json:"done"`
	} `json:"objectives"`
}

func formatGameState(v *gameView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Game %s (%s) - %s\n", v.ID, v.Mode, v.Status)
	if v.YourTurn {
		b.WriteString("Your turn\n")
	} else {
		b.WriteString("Waiting for the opponent\n")
	}
	for _, p := range v.Players {
		marker := " "
		if p.ID == v.CurrentPlayerID {
			marker = "*"
		}
		kind := ""
		if p.Virtual {
			kind = " (virtual)"
		}
		fmt.Fprintf(&b, "%s %s%s: %d\n", marker, p.Name, kind, p.Score)
	}

	b.WriteString("\n    ")
	for col := 1; col <= engine.GridSize; col++ {
		fmt.Fprintf(&b, "%-2d", col%100)
	}
	b.WriteByte('\n')
	for i, row := range v.Grid.Rows {
		fmt.Fprintf(&b, " %c  ", 'a'+i)
		for _, cell := range row {
			fmt.Fprintf(&b, "%c ", cell)
		}
		b.WriteByte('\n')
	}

	letters := make([]string, 0, len(v.Easel))
	for _, l := range v.Easel {
		letters = append(letters, fmt.Sprintf("%s(%d)", l.Symbol, l.Value))
	}
	fmt.Fprintf(&b, "\nEasel: %s\nReserve: %d tiles\n", strings.Join(letters, " "), v.ReserveSize)

	if len(v.Objectives) > 0 {
		b.WriteString("\nObjectives:\n")
		for _, o := range v.Objectives {
			state := ""
			if o.Done {
				state = " [done]"
			}
			fmt.Fprintf(&b, "- (%s, %d pts) %s%s\n", o.Type, o.Points, o.Description, state)
		}
	}
	return b.String()
}

func formatBestScores(mode string, scores []history.BestScore) string {
	if len(scores) == 0 {
		return fmt.Sprintf("No %s score recorded yet", mode)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Best %s scores:\n", mode)
	for i, s := range scores {
		fmt.Fprintf(&b, "%d. %d - %s\n", i+1, s.Score, strings.Join(s.Names, ", "))
	}
	return b.String()
}
