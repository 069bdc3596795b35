package service

import (
	"time"

	"github.com/wricardo/scrabble-duel/game/engine"
	"github.com/wricardo/scrabble-duel/game/objectives"
)

// Events pushed to clients
const (
	EventGridUpdated             = "grid:updated"
	EventEaselUpdated            = "easel:updated"
	EventSidebarUpdated          = "sidebar:updated"
	EventPublicObjectivesUpdated = "objectives:public-updated"
	EventPrivateObjectiveUpdated = "objectives:private-updated"
	EventGameEnded               = "game:ended"
	EventChatMessage             = "chatbox:message"
)

// Server messages are sent under this identity
const (
	ServerID   = "SERVER"
	ServerName = "Serveur"
)

const (
	SurrenderMessage  = "The other player has left the game. Luckily a virtual player took their seat!"
	InvalidCommand    = "Commande invalide"
	ImpossibleCommand = "Commande impossible à réaliser"
	NoHints           = "Aucun placement trouvé"
	HintsLimit        = 3
)

// ChatMessage is the payload of EventChatMessage
type ChatMessage struct {
	GameID     string `json:"game_id"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Content    string `json:"content"`
}

// PlayerView is a seat as every player may see it
type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	EaselSize int    `json:"easel_size"`
	Virtual   bool   `json:"virtual"`
}

// GameView is the state of a game seen by one player
type GameView struct {
	ID              string                 `json:"id"`
	Type            engine.SessionType     `json:"type"`
	Mode            engine.Mode            `json:"mode"`
	Status          engine.Status          `json:"status"`
	TimerSeconds    int                    `json:"timer"`
	Dictionary      string                 `json:"dictionary"`
	Grid            *engine.Grid           `json:"grid"`
	ReserveSize     int                    `json:"reserve_size"`
	CurrentPlayerID string                 `json:"current_player_id"`
	YourTurn        bool                   `json:"your_turn"`
	Easel           []engine.Letter        `json:"easel,omitempty"`
	Players         []PlayerView           `json:"players"`
	Objectives      []objectives.Objective `json:"objectives,omitempty"`
	TurnStartedAt   time.Time              `json:"turn_started_at"`
}

// GameSummary lists a running game
type GameSummary struct {
	ID        string             `json:"id"`
	Type      engine.SessionType `json:"type"`
	Mode      engine.Mode        `json:"mode"`
	Players   []PlayerView       `json:"players"`
	CreatedAt time.Time          `json:"created_at"`
}
