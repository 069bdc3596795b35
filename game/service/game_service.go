package service

import (
	"context"
	"errors"

	"github.com/wricardo/scrabble-duel/game/dictionary"
	"github.com/wricardo/scrabble-duel/game/engine"
	"github.com/wricardo/scrabble-duel/game/history"
	"github.com/wricardo/scrabble-duel/game/room"
)

var (
	ErrAlreadyPlaying = errors.New("player already seated in a game")
	ErrGameNotFound   = errors.New("game not found")
	// ErrGameStillOpen is returned when the game a player opened earlier
	// is still running under their id, with a virtual player in their seat
	ErrGameStillOpen  = errors.New("a game opened by this player is still running")
)

// GameService defines all game-related operations. Actions a player may
// not take right now report false without an error; errors are reserved
// for collaborator failures.
type GameService interface {
	// Rooms
	CreateRoom(ctx context.Context, host engine.Identity, params engine.Parameters) (*room.Room, error)
	DeleteRoom(ctx context.Context, hostID string) bool
	JoinRequest(ctx context.Context, roomID string, guest engine.Identity) bool
	CancelJoinRequest(ctx context.Context, roomID, guestID string) bool
	AcceptJoinRequest(ctx context.Context, hostID string) (bool, error)
	RejectJoinRequest(ctx context.Context, hostID string) bool
	AvailableRooms(ctx context.Context, mode engine.Mode) []room.Listing

	// Games
	CreateSoloGame(ctx context.Context, host engine.Identity, params engine.Parameters) (*GameView, error)
	GameState(ctx context.Context, gameID, playerID string) (*GameView, error)
	GameOf(playerID string) (string, bool)
	ListGames(ctx context.Context) []GameSummary

	// Turn actions
	Place(ctx context.Context, gameID, playerID string, p engine.Placement) (bool, error)
	Exchange(ctx context.Context, gameID, playerID, letters string) (bool, error)
	Pass(ctx context.Context, gameID, playerID string) (bool, error)
	Hints(ctx context.Context, gameID, playerID string) ([]string, error)
	Reserve(ctx context.Context, gameID string) (string, error)
	SendMessage(ctx context.Context, gameID, playerID, content string) error

	// Presence
	Surrender(ctx context.Context, gameID, playerID string) bool
	PlayerDisconnected(playerID string)
	PlayerReconnected(playerID string)

	// History and catalogue
	RecentGames(ctx context.Context, limit int) ([]history.GameRecord, error)
	BestScores(ctx context.Context, mode engine.Mode) ([]history.BestScore, error)
	ListDictionaries(ctx context.Context) ([]dictionary.Info, error)
}

// Dictionaries reserves dictionaries for games and lists them
type Dictionaries interface {
	Acquire(sessionID, dictionaryID string) error
	Release(sessionID, dictionaryID string)
	Title(dictionaryID string) string
	List() ([]dictionary.Info, error)
}

// Recorder stores finished games and high scores
type Recorder interface {
	RecordCompletedGame(ctx context.Context, record history.GameRecord) error
	RecordHighScore(ctx context.Context, score history.HighScore) error
}

// HistoryReader reads back what the Recorder stored
type HistoryReader interface {
	RecentGames(ctx context.Context, limit int) ([]history.GameRecord, error)
	BestScores(ctx context.Context, mode engine.Mode) ([]history.BestScore, error)
}

// Notifier pushes events to connected players
type Notifier interface {
	EmitToPlayer(playerID, event string, data any)
	EmitToRoom(roomID, event string, data any)
	EmitToRoomExcept(roomID, exceptPlayerID, event string, data any)
	EmitToIdle(event string, data any)
	JoinRoom(roomID string, playerIDs ...string)
	LeaveRoom(roomID string, playerIDs ...string)
}
