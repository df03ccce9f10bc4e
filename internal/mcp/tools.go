// internal/mcp/tools.go
//
// MCP tools for playing the memory game from an agent over stdio.
// Tools:
//   - new_game {seed?}   deal a fresh board (replaces any running game)
//   - reveal_card {index} reveal one card, same rules as a click
//   - get_board          read-only view of the current board
//
// One game runs per process. Every result is JSON carrying the session view
// and a plain-text rendering of the board.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/robalobadob/memory/internal/game"
	"github.com/robalobadob/memory/internal/render"
	"github.com/robalobadob/memory/internal/session"
)

// Tools holds the single game session driven by the MCP tools.
type Tools struct {
	ctx      context.Context
	settings game.Settings
	log      zerolog.Logger

	mu     sync.Mutex
	active *session.Session
}

// NewTools returns tools that deal boards from settings. Sessions stop when
// ctx is cancelled.
func NewTools(ctx context.Context, settings game.Settings, logger zerolog.Logger) *Tools {
	return &Tools{ctx: ctx, settings: settings, log: logger}
}

// Register adds all game tools to the MCP server.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(newGameTool(), t.handleNewGame)
	s.AddTool(revealCardTool(), t.handleRevealCard)
	s.AddTool(getBoardTool(), t.handleGetBoard)
}

// Close stops the running game, if any.
func (t *Tools) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active != nil {
		t.active.Stop()
		t.active = nil
	}
}

// --- Tool definitions ---

func newGameTool() mcp.Tool {
	return mcp.NewTool("new_game",
		mcp.WithDescription("Deal a new memory board and return it. Any running game is discarded. "+
			"Cards are shown as [n] while face down; reveal two cards per turn to find pairs."),
		mcp.WithNumber("seed", mcp.Description("Optional shuffle seed; the same seed deals the same board")),
	)
}

func revealCardTool() mcp.Tool {
	return mcp.NewTool("reveal_card",
		mcp.WithDescription("Reveal the card at index. A mismatched pair stays visible briefly and then turns back down; "+
			"call get_board to see it hidden again."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based board position")),
	)
}

func getBoardTool() mcp.Tool {
	return mcp.NewTool("get_board",
		mcp.WithDescription("Get the current board, message and score without changing anything. Read-only."),
	)
}

// --- Tool handlers ---

func (t *Tools) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var opts []game.Option
	if _, ok := request.GetArguments()["seed"]; ok {
		opts = append(opts, game.WithSeed(int64(request.GetInt("seed", 0))))
	}
	g, err := game.New(t.settings, opts...)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to create game: %v", err), nil
	}
	sess := session.New(g, t.log)
	if err := sess.Start(t.ctx); err != nil {
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}

	t.mu.Lock()
	if t.active != nil {
		t.active.Stop()
	}
	t.active = sess
	t.mu.Unlock()
	t.log.Info().Str("gameId", sess.ID()).Msg("game started")

	v, err := sess.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to read board: %v", err), nil
	}
	return respond(v)
}

func (t *Tools) handleRevealCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := t.current()
	if sess == nil {
		return mcp.NewToolResultError("No game is running. Use new_game first."), nil
	}
	if _, ok := request.GetArguments()["index"]; !ok {
		return mcp.NewToolResultError("index is required"), nil
	}

	v, err := sess.Reveal(ctx, request.GetInt("index", -1))
	if errors.Is(err, game.ErrInvalidArgument) {
		return mcp.NewToolResultErrorf("Invalid reveal: %v", err), nil
	}
	if err != nil {
		return mcp.NewToolResultErrorf("Reveal failed: %v", err), nil
	}
	return respond(v)
}

func (t *Tools) handleGetBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := t.current()
	if sess == nil {
		return mcp.NewToolResultError("No game is running. Use new_game first."), nil
	}
	v, err := sess.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to read board: %v", err), nil
	}
	return respond(v)
}

func (t *Tools) current() *session.Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// boardResponse is the JSON body of every successful tool call.
type boardResponse struct {
	View  session.View `json:"view"`
	Board string       `json:"board"`
}

func respond(v session.View) (*mcp.CallToolResult, error) {
	var sb strings.Builder
	if err := render.NewText(&sb).Print(v.Frame); err != nil {
		return mcp.NewToolResultErrorf("Failed to render board: %v", err), nil
	}
	data, err := json.Marshal(boardResponse{View: v, Board: sb.String()})
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf(`{"error": "marshal error: %v"}`, err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
