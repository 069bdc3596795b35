package placement

import (
	"context"
	"fmt"
	"sort"

	"github.com/wricardo/scrabble-duel/game/engine"
)

// DefaultLimit caps the placements returned by one generation
const DefaultLimit = 100

// Generator is the reference engine.Generator. It tries every dictionary
// word at every position of every line and keeps what validates.
type Generator struct {
	dictionaries Dictionaries
	limit        int
}

// NewGenerator creates a generator returning at most limit placements;
// limit <= 0 uses DefaultLimit
func NewGenerator(dictionaries Dictionaries, limit int) *Generator {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Generator{dictionaries: dictionaries, limit: limit}
}

type scored struct {
	placement engine.Placement
	score     int
}

// Generate returns placements for req.Easel, best score first. With a
// constraint only placements scoring inside it are kept.
func (g *Generator) Generate(ctx context.Context, sessionID string, req engine.GenerateRequest) ([]engine.Placement, error) {
	dict, err := g.dictionaries.ForSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDictionary, err)
	}
	rack := newRack(req.Easel)
	if rack.size == 0 {
		return []engine.Placement{}, nil
	}

	seen := make(map[engine.Placement]bool)
	var found []scored
	for i, w := range dict.Words() {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if len(w) < 2 || len(w) > engine.GridSize {
			continue
		}
		for _, axis := range []engine.Axis{engine.Horizontal, engine.Vertical} {
			for line := 0; line < engine.GridSize; line++ {
				for offset := 0; offset+len(w) <= engine.GridSize; offset++ {
					p, ok := fit(req.Grid, rack, w, axis, line, offset, req.IsGridEmpty)
					if !ok || seen[p] {
						continue
					}
					seen[p] = true
					result := evaluate(dict, req.Grid, p, req.IsGridEmpty)
					if !result.Valid {
						continue
					}
					if req.Constraint != nil && !req.Constraint.Allows(result.Score) {
						continue
					}
					found = append(found, scored{placement: p, score: result.Score})
				}
			}
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].score > found[j].score })
	if len(found) > g.limit {
		found = found[:g.limit]
	}
	placements := make([]engine.Placement, len(found))
	for i, s := range found {
		placements[i] = s.placement
	}
	return placements, nil
}

// rack counts the easel symbols
type rack struct {
	counts map[byte]int
	size   int
}

func newRack(easel string) rack {
	r := rack{counts: make(map[byte]int)}
	for i := 0; i < len(easel); i++ {
		r.counts[engine.NewLetter(easel[i]).Symbol]++
		r.size++
	}
	return r
}

// fit lays word along axis starting at (line, offset). The cells around the
// word must be empty, board tiles must match, and the rest must come from
// the rack, using a wildcard when a letter is missing.
func fit(grid *engine.Grid, r rack, w string, axis engine.Axis, line, offset int, isGridEmpty bool) (engine.Placement, bool) {
	at := func(i int) engine.Position {
		if axis == engine.Vertical {
			return engine.Position{Row: i, Col: line}
		}
		return engine.Position{Row: line, Col: i}
	}
	if grid.Occupied(at(offset-1)) || grid.Occupied(at(offset+len(w))) {
		return engine.Placement{}, false
	}

	remaining := make(map[byte]int, len(r.counts))
	for k, v := range r.counts {
		remaining[k] = v
	}
	letters := make([]byte, 0, len(w))
	start := engine.Position{Row: -1, Col: -1}
	coversCenter := false
	for i := 0; i < len(w); i++ {
		pos := at(offset + i)
		c := w[i]
		if c < 'A' || c > 'Z' {
			return engine.Placement{}, false
		}
		if t, ok := grid.TileAt(pos); ok {
			if t.Upper() != c {
				return engine.Placement{}, false
			}
			continue
		}
		switch {
		case remaining[c] > 0:
			remaining[c]--
			letters = append(letters, c)
		case remaining[engine.Wildcard] > 0:
			remaining[engine.Wildcard]--
			letters = append(letters, c-'A'+'a')
		default:
			return engine.Placement{}, false
		}
		if !start.Valid() {
			start = pos
		}
		if pos == engine.Center {
			coversCenter = true
		}
	}
	if len(letters) == 0 || (isGridEmpty && !coversCenter) {
		return engine.Placement{}, false
	}
	return engine.Placement{Position: start, Axis: axis, Letters: string(letters)}, true
}
