package engine

import (
	"encoding/json"
	"strings"
)

// Multiplier is the premium printed on a cell
type Multiplier string

const (
	Basic    Multiplier = ""
	LetterX2 Multiplier = "letter_x2"
	LetterX3 Multiplier = "letter_x3"
	WordX2   Multiplier = "word_x2"
	WordX3   Multiplier = "word_x3"
)

// premiumLayout: T word x3, D word x2, t letter x3, d letter x2
var premiumLayout = [GridSize]string{
	"T..d...T...d..T",
	".D...t...t...D.",
	"..D...d.d...D..",
	"d..D...d...D..d",
	"....D.....D....",
	".t...t...t...t.",
	"..d...d.d...d..",
	"T..d...D...d..T",
	"..d...d.d...d..",
	".t...t...t...t.",
	"....D.....D....",
	"d..D...d...D..d",
	"..D...d.d...D..",
	".D...t...t...D.",
	"T..d...T...d..T",
}

// Tile is a letter committed to the board. Blank tiles keep their chosen
// letter in lower case and score 0.
type Tile struct {
	Letter byte `json:"letter"`
	Points int  `json:"points"`
	Blank  bool `json:"blank,omitempty"`
}

// Upper returns the letter the tile plays, upper case
func (t Tile) Upper() byte {
	if t.Letter >= 'a' && t.Letter <= 'z' {
		return t.Letter - 'a' + 'A'
	}
	return t.Letter
}

// Cell is one board square
type Cell struct {
	Position   Position   `json:"position"`
	Multiplier Multiplier `json:"multiplier,omitempty"`
	Tile       *Tile      `json:"tile,omitempty"`
}

// Grid is the shared board. A committed tile is never overwritten.
type Grid struct {
	cells [GridSize][GridSize]Cell
	tiles int
}

// NewGrid returns an empty board with the premium squares set
func NewGrid() *Grid {
	g := &Grid{}
	for r := 0; r < GridSize; r++ {
		for c := 0; c < GridSize; c++ {
			g.cells[r][c] = Cell{Position: Position{Row: r, Col: c}, Multiplier: premiumAt(r, c)}
		}
	}
	return g
}

func premiumAt(r, c int) Multiplier {
	switch premiumLayout[r][c] {
	case 'T':
		return WordX3
	case 'D':
		return WordX2
	case 't':
		return LetterX3
	case 'd':
		return LetterX2
	}
	return Basic
}

// MultiplierAt returns the premium of a cell
func (g *Grid) MultiplierAt(p Position) Multiplier {
	if !p.Valid() {
		return Basic
	}
	return g.cells[p.Row][p.Col].Multiplier
}

// TileAt returns the tile on a cell, if any
func (g *Grid) TileAt(p Position) (Tile, bool) {
	if !p.Valid() || g.cells[p.Row][p.Col].Tile == nil {
		return Tile{}, false
	}
	return *g.cells[p.Row][p.Col].Tile, true
}

// Occupied reports whether a cell holds a tile
func (g *Grid) Occupied(p Position) bool {
	_, ok := g.TileAt(p)
	return ok
}

// IsEmpty reports whether no tile was committed yet
func (g *Grid) IsEmpty() bool {
	return g.tiles == 0
}

// TileCount returns the number of committed tiles
func (g *Grid) TileCount() int {
	return g.tiles
}

// Lay computes the cells the placement letters land on, skipping occupied
// cells. It fails when the start is occupied or a letter falls off the board.
func (g *Grid) Lay(p Placement) ([]Position, bool) {
	if len(p.Letters) == 0 || !p.Position.Valid() || g.Occupied(p.Position) {
		return nil, false
	}
	if p.Axis != Horizontal && p.Axis != Vertical {
		return nil, false
	}

	positions := make([]Position, 0, len(p.Letters))
	pos := p.Position
	for i := 0; i < len(p.Letters); i++ {
		for pos.Valid() && g.Occupied(pos) {
			pos = pos.Next(p.Axis)
		}
		if !pos.Valid() {
			return nil, false
		}
		positions = append(positions, pos)
		pos = pos.Next(p.Axis)
	}
	return positions, true
}

// TilesFor converts placement letters to tiles
func TilesFor(p Placement) []Tile {
	tiles := make([]Tile, len(p.Letters))
	for i := 0; i < len(p.Letters); i++ {
		c := p.Letters[i]
		if c >= 'a' && c <= 'z' {
			tiles[i] = Tile{Letter: c, Points: 0, Blank: true}
			continue
		}
		tiles[i] = Tile{Letter: c, Points: LetterValue(c)}
	}
	return tiles
}

// Commit writes the placement to the board. Nothing is written if the
// placement cannot be laid.
func (g *Grid) Commit(p Placement) ([]Position, bool) {
	positions, ok := g.Lay(p)
	if !ok {
		return nil, false
	}
	tiles := TilesFor(p)
	for i, pos := range positions {
		tile := tiles[i]
		g.cells[pos.Row][pos.Col].Tile = &tile
	}
	g.tiles += len(positions)
	return positions, true
}

// Clone returns a deep copy of the board
func (g *Grid) Clone() *Grid {
	clone := &Grid{tiles: g.tiles}
	for r := 0; r < GridSize; r++ {
		for c := 0; c < GridSize; c++ {
			cell := g.cells[r][c]
			if cell.Tile != nil {
				tile := *cell.Tile
				cell.Tile = &tile
			}
			clone.cells[r][c] = cell
		}
	}
	return clone
}

// Rows renders the board one string per row, '.' for empty cells
func (g *Grid) Rows() []string {
	rows := make([]string, GridSize)
	for r := 0; r < GridSize; r++ {
		var b strings.Builder
		for c := 0; c < GridSize; c++ {
			if t := g.cells[r][c].Tile; t != nil {
				b.WriteByte(t.Letter)
			} else {
				b.WriteByte('.')
			}
		}
		rows[r] = b.String()
	}
	return rows
}

// Cells returns a copy of the board cells, row major
func (g *Grid) Cells() [][]Cell {
	out := make([][]Cell, GridSize)
	for r := 0; r < GridSize; r++ {
		out[r] = make([]Cell, GridSize)
		for c := 0; c < GridSize; c++ {
			cell := g.cells[r][c]
			if cell.Tile != nil {
				tile := *cell.Tile
				cell.Tile = &tile
			}
			out[r][c] = cell
		}
	}
	return out
}

// MarshalJSON encodes the board as rows of cells
func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Rows  []string `json:"rows"`
		Cells [][]Cell `json:"cells"`
	}{Rows: g.Rows(), Cells: g.Cells()})
}

// MarshalJSON encodes the letter as a string
func (t Tile) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Letter string `json:"letter"`
		Points int    `json:"points"`
		Blank  bool   `json:"blank,omitempty"`
	}{Letter: string(t.Letter), Points: t.Points, Blank: t.Blank})
}
