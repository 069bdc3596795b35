package placement

import (
	"context"
	"errors"
	"fmt"

	"github.com/wricardo/scrabble-duel/game/dictionary"
	"github.com/wricardo/scrabble-duel/game/engine"
)

var ErrNoDictionary = errors.New("no dictionary for session")

// Dictionaries resolves the dictionary a session plays with
type Dictionaries interface {
	ForSession(sessionID string) (*dictionary.Dictionary, error)
}

// Validator is the reference engine.Validator
type Validator struct {
	dictionaries Dictionaries
}

// NewValidator creates a validator backed by dictionaries
func NewValidator(dictionaries Dictionaries) *Validator {
	return &Validator{dictionaries: dictionaries}
}

// Validate checks p on grid. An invalid placement is a result with Valid
// false; errors are reserved for dictionary lookups and cancellation.
func (v *Validator) Validate(ctx context.Context, sessionID string, grid *engine.Grid, p engine.Placement, isGridEmpty bool) (engine.PlacementResult, error) {
	if err := ctx.Err(); err != nil {
		return engine.PlacementResult{}, err
	}
	dict, err := v.dictionaries.ForSession(sessionID)
	if err != nil {
		return engine.PlacementResult{}, fmt.Errorf("%w: %v", ErrNoDictionary, err)
	}
	return evaluate(dict, grid, p, isGridEmpty), nil
}

// board overlays the tiles of a placement on the grid without writing them
type board struct {
	grid  *engine.Grid
	fresh map[engine.Position]engine.Tile
}

func (b board) tile(pos engine.Position) (engine.Tile, bool, bool) {
	if t, ok := b.fresh[pos]; ok {
		return t, true, true
	}
	t, ok := b.grid.TileAt(pos)
	return t, ok, false
}

type word struct {
	text  string
	score int
}

func evaluate(dict *dictionary.Dictionary, grid *engine.Grid, p engine.Placement, isGridEmpty bool) engine.PlacementResult {
	invalid := engine.PlacementResult{}
	for i := 0; i < len(p.Letters); i++ {
		if !engine.IsKnownSymbol(p.Letters[i]) || p.Letters[i] == engine.Wildcard {
			return invalid
		}
	}
	positions, ok := grid.Lay(p)
	if !ok {
		return invalid
	}

	tiles := engine.TilesFor(p)
	b := board{grid: grid, fresh: make(map[engine.Position]engine.Tile, len(positions))}
	coversCenter := false
	for i, pos := range positions {
		b.fresh[pos] = tiles[i]
		if pos == engine.Center {
			coversCenter = true
		}
	}
	if isGridEmpty && !coversCenter {
		return invalid
	}

	cross := engine.Vertical
	if p.Axis == engine.Vertical {
		cross = engine.Horizontal
	}

	var words []word
	touches := false
	main, mainLen := b.wordAt(positions[0], p.Axis)
	if mainLen > len(positions) {
		touches = true
	}
	if mainLen >= 2 {
		words = append(words, main)
	}
	for _, pos := range positions {
		w, n := b.wordAt(pos, cross)
		if n >= 2 {
			words = append(words, w)
			touches = true
		}
	}
	if len(words) == 0 || (!isGridEmpty && !touches) {
		return invalid
	}

	result := engine.PlacementResult{Valid: true}
	for _, w := range words {
		if !dict.Contains(w.text) {
			return invalid
		}
		result.Score += w.score
		result.Words = append(result.Words, w.text)
	}
	if len(positions) == engine.EaselMaxSize {
		result.Score += engine.BingoBonus
	}
	return result
}

// wordAt reads the run of tiles through pos along axis and scores it.
// Premiums apply only under fresh tiles.
func (b board) wordAt(pos engine.Position, axis engine.Axis) (word, int) {
	start := pos
	for {
		prev := start.Prev(axis)
		if _, ok, _ := b.tile(prev); !prev.Valid() || !ok {
			break
		}
		start = prev
	}

	var text []byte
	sum, factor := 0, 1
	for cur := start; cur.Valid(); cur = cur.Next(axis) {
		t, ok, fresh := b.tile(cur)
		if !ok {
			break
		}
		text = append(text, t.Upper())
		points := t.Points
		if fresh {
			switch b.grid.MultiplierAt(cur) {
			case engine.LetterX2:
				points *= 2
			case engine.LetterX3:
				points *= 3
			case engine.WordX2:
				factor *= 2
			case engine.WordX3:
				factor *= 3
			}
		}
		sum += points
	}
	return word{text: string(text), score: sum * factor}, len(text)
}
