package engine

import (
	"fmt"
	"strings"
)

const (
	// Board and rack limits
	GridSize             = 15
	EaselMaxSize         = 7
	ReserveMinSize       = 7
	EndGamePassThreshold = 3
	BingoBonus           = 50

	// Wildcard is the blank tile symbol
	Wildcard byte = '*'
)

// Mode selects the rule set of a game
type Mode string

const (
	ModeClassic Mode = "classic"
	ModeLog2990 Mode = "log2990"
)

// SessionType tells whether both seats are humans
type SessionType string

const (
	SessionSolo        SessionType = "solo"
	SessionMultiplayer SessionType = "multiplayer"
)

// Level is the skill of a virtual player
type Level string

const (
	LevelBeginner Level = "beginner"
	LevelExpert   Level = "expert"
)

// Axis is the direction a placement is laid in
type Axis string

const (
	Horizontal Axis = "h"
	Vertical   Axis = "v"
)

// Status is the lifecycle state of a game
type Status string

const (
	StatusAwaitingStart Status = "awaiting_start"
	StatusInProgress    Status = "in_progress"
	StatusEnded         Status = "ended"
)

// Position is a zero-based cell coordinate
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Valid reports whether the position is on the board
func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < GridSize && p.Col >= 0 && p.Col < GridSize
}

// Next returns the neighbouring position along the axis
func (p Position) Next(axis Axis) Position {
	if axis == Vertical {
		return Position{Row: p.Row + 1, Col: p.Col}
	}
	return Position{Row: p.Row, Col: p.Col + 1}
}

// Prev returns the previous position along the axis
func (p Position) Prev(axis Axis) Position {
	if axis == Vertical {
		return Position{Row: p.Row - 1, Col: p.Col}
	}
	return Position{Row: p.Row, Col: p.Col - 1}
}

// String renders the position in command notation, e.g. "h8"
func (p Position) String() string {
	return fmt.Sprintf("%c%d", 'a'+p.Row, p.Col+1)
}

// Center is the star square the first word must cover
var Center = Position{Row: 7, Col: 7}

// Placement is a candidate word laid from a player's easel.
// Letters holds only the tiles coming from the easel, in order along the
// axis; occupied cells are skipped. Upper case is a regular tile, lower
// case is a wildcard playing that letter.
type Placement struct {
	Position Position `json:"position"`
	Axis     Axis     `json:"axis"`
	Letters  string   `json:"letters"`
}

// RequiredSymbols returns the easel symbols the placement consumes
func (p Placement) RequiredSymbols() []byte {
	symbols := make([]byte, 0, len(p.Letters))
	for i := 0; i < len(p.Letters); i++ {
		c := p.Letters[i]
		if c >= 'a' && c <= 'z' {
			symbols = append(symbols, Wildcard)
			continue
		}
		symbols = append(symbols, c)
	}
	return symbols
}

// Notation renders the placement the way players type it: regular tiles in
// lower case and wildcards in upper case, e.g. "h8h bonjouR".
func (p Placement) Notation() string {
	var b strings.Builder
	for i := 0; i < len(p.Letters); i++ {
		c := p.Letters[i]
		switch {
		case c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c - 'A' + 'a')
		default:
			b.WriteByte(c)
		}
	}
	return fmt.Sprintf("%s%s %s", p.Position, p.Axis, b.String())
}

// PlacementResult is what a validator reports for a placement
type PlacementResult struct {
	Valid bool     `json:"valid"`
	Score int      `json:"score"`
	Words []string `json:"words"`
}

// ScoreConstraint bounds the score of generated placements (inclusive)
type ScoreConstraint struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Allows reports whether score falls inside the constraint
func (c ScoreConstraint) Allows(score int) bool {
	return score >= c.Min && score <= c.Max
}

// Identity names a participant before it becomes a Player
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Duration is the elapsed time of a finished game
type Duration struct {
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// SidebarPlayer is one player's line in the sidebar
type SidebarPlayer struct {
	ID        string `json:"player_id"`
	Name      string `json:"player_name"`
	Score     int    `json:"score"`
	EaselSize int    `json:"easel_size"`
}

// Sidebar is the public scoreboard snapshot
type Sidebar struct {
	ReserveSize     int             `json:"reserve_size"`
	CurrentPlayerID string          `json:"current_player_id"`
	Players         []SidebarPlayer `json:"players"`
}

// PlayerScore is a final score line
type PlayerScore struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}
