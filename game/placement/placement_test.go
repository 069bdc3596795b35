package placement

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/wricardo/scrabble-duel/game/dictionary"
	"github.com/wricardo/scrabble-duel/game/engine"
)

type staticDictionaries struct {
	dict *dictionary.Dictionary
	err  error
}

func (s staticDictionaries) ForSession(sessionID string) (*dictionary.Dictionary, error) {
	return s.dict, s.err
}

func testDictionaries() staticDictionaries {
	return staticDictionaries{dict: dictionary.New("test", "Test", []string{"chat", "chats", "ta", "as", "bonjour"})}
}

func at(row, col int) engine.Position {
	return engine.Position{Row: row, Col: col}
}

func TestValidateFirstMove(t *testing.T) {
	v := NewValidator(testDictionaries())
	ctx := context.Background()

	tests := []struct {
		name      string
		placement engine.Placement
		valid     bool
		score     int
		words     []string
	}{
		{"covers the centre", engine.Placement{Position: at(7, 4), Axis: engine.Horizontal, Letters: "CHAT"}, true, 18, []string{"CHAT"}},
		{"wildcard scores zero", engine.Placement{Position: at(7, 4), Axis: engine.Horizontal, Letters: "cHAT"}, true, 12, []string{"CHAT"}},
		{"bingo", engine.Placement{Position: at(7, 1), Axis: engine.Horizontal, Letters: "BONJOUR"}, true, 84, []string{"BONJOUR"}},
		{"misses the centre", engine.Placement{Position: at(0, 0), Axis: engine.Horizontal, Letters: "CHAT"}, false, 0, nil},
		{"unknown word", engine.Placement{Position: at(7, 4), Axis: engine.Horizontal, Letters: "TACH"}, false, 0, nil},
		{"single tile", engine.Placement{Position: at(7, 7), Axis: engine.Horizontal, Letters: "A"}, false, 0, nil},
		{"off the board", engine.Placement{Position: at(7, 13), Axis: engine.Horizontal, Letters: "CHAT"}, false, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(ctx, "s", engine.NewGrid(), tt.placement, true)
			if err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if got.Valid != tt.valid {
				t.Fatalf("Expected valid=%v, got %+v", tt.valid, got)
			}
			if got.Score != tt.score {
				t.Errorf("Expected score %d, got %d", tt.score, got.Score)
			}
			if !reflect.DeepEqual(got.Words, tt.words) {
				t.Errorf("Expected words %v, got %v", tt.words, got.Words)
			}
		})
	}
}

func TestValidateLaterMoves(t *testing.T) {
	v := NewValidator(testDictionaries())
	ctx := context.Background()
	grid := engine.NewGrid()
	grid.Commit(engine.Placement{Position: at(7, 4), Axis: engine.Horizontal, Letters: "CHAT"})

	t.Run("extends a word without its premiums", func(t *testing.T) {
		got, _ := v.Validate(ctx, "s", grid, engine.Placement{Position: at(7, 8), Axis: engine.Horizontal, Letters: "S"}, false)
		if !got.Valid || got.Score != 10 || got.Words[0] != "CHATS" {
			t.Errorf("Unexpected result %+v", got)
		}
	})

	t.Run("hooks across", func(t *testing.T) {
		got, _ := v.Validate(ctx, "s", grid, engine.Placement{Position: at(8, 7), Axis: engine.Vertical, Letters: "A"}, false)
		if !got.Valid || got.Score != 2 || !reflect.DeepEqual(got.Words, []string{"TA"}) {
			t.Errorf("Unexpected result %+v", got)
		}
	})

	t.Run("must touch the board", func(t *testing.T) {
		got, _ := v.Validate(ctx, "s", grid, engine.Placement{Position: at(0, 0), Axis: engine.Horizontal, Letters: "AS"}, false)
		if got.Valid {
			t.Error("Disconnected word accepted")
		}
	})

	t.Run("cross word must exist", func(t *testing.T) {
		got, _ := v.Validate(ctx, "s", grid, engine.Placement{Position: at(8, 6), Axis: engine.Horizontal, Letters: "AS"}, false)
		if got.Valid {
			t.Errorf("Placement forming AA and TS accepted: %+v", got)
		}
	})

	t.Run("grid untouched", func(t *testing.T) {
		if grid.TileCount() != 4 {
			t.Errorf("Validation wrote to the grid: %d tiles", grid.TileCount())
		}
	})
}

func TestValidateDictionaryError(t *testing.T) {
	v := NewValidator(staticDictionaries{err: errors.New("gone")})
	_, err := v.Validate(context.Background(), "s", engine.NewGrid(), engine.Placement{Position: at(7, 7), Axis: engine.Horizontal, Letters: "TA"}, true)
	if !errors.Is(err, ErrNoDictionary) {
		t.Errorf("Expected ErrNoDictionary, got %v", err)
	}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	dicts := testDictionaries()
	v := NewValidator(dicts)

	t.Run("every placement validates", func(t *testing.T) {
		g := NewGenerator(dicts, 0)
		grid := engine.NewGrid()
		got, err := g.Generate(ctx, "s", engine.GenerateRequest{Grid: grid, Easel: "TACHXYZ", IsGridEmpty: true})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		// CHAT and TA in both directions, each shifted across the centre
		if len(got) != 12 {
			t.Fatalf("Expected 12 placements, got %d: %v", len(got), got)
		}
		last := 1 << 30
		for _, p := range got {
			res, _ := v.Validate(ctx, "s", grid, p, true)
			if !res.Valid {
				t.Errorf("Generated invalid placement %s", p.Notation())
			}
			if res.Score > last {
				t.Errorf("Placements are not sorted by score")
			}
			last = res.Score
		}
	})

	t.Run("constraint", func(t *testing.T) {
		g := NewGenerator(dicts, 0)
		got, _ := g.Generate(ctx, "s", engine.GenerateRequest{
			Grid: engine.NewGrid(), Easel: "TACHXYZ", IsGridEmpty: true,
			Constraint: &engine.ScoreConstraint{Min: 0, Max: 6},
		})
		if len(got) == 0 {
			t.Fatal("Expected TA placements")
		}
		for _, p := range got {
			if p.Letters != "TA" {
				t.Errorf("Placement %s is outside the constraint", p.Notation())
			}
		}
	})

	t.Run("wildcard fills a missing letter", func(t *testing.T) {
		g := NewGenerator(dicts, 0)
		got, _ := g.Generate(ctx, "s", engine.GenerateRequest{Grid: engine.NewGrid(), Easel: "*HAT", IsGridEmpty: true})
		found := false
		for _, p := range got {
			if p.Letters == "cHAT" {
				found = true
			}
			if strings.ContainsRune(p.Letters, '*') {
				t.Errorf("Wildcard symbol leaked into %s", p.Letters)
			}
		}
		if !found {
			t.Errorf("Expected cHAT among %v", got)
		}
	})

	t.Run("uses board tiles", func(t *testing.T) {
		g := NewGenerator(dicts, 0)
		grid := engine.NewGrid()
		grid.Commit(engine.Placement{Position: at(7, 4), Axis: engine.Horizontal, Letters: "CHAT"})
		got, _ := g.Generate(ctx, "s", engine.GenerateRequest{Grid: grid, Easel: "S"})
		// CHATS along the row scores 10, AS down from the A scores 3
		want := engine.Placement{Position: at(7, 8), Axis: engine.Horizontal, Letters: "S"}
		if len(got) != 2 || got[0] != want {
			t.Errorf("Expected %s first of 2, got %v", want.Notation(), got)
		}
	})

	t.Run("limit", func(t *testing.T) {
		g := NewGenerator(dicts, 2)
		got, _ := g.Generate(ctx, "s", engine.GenerateRequest{Grid: engine.NewGrid(), Easel: "TACHXYZ", IsGridEmpty: true})
		if len(got) != 2 {
			t.Errorf("Expected 2 placements, got %d", len(got))
		}
	})

	t.Run("empty easel", func(t *testing.T) {
		g := NewGenerator(dicts, 0)
		got, err := g.Generate(ctx, "s", engine.GenerateRequest{Grid: engine.NewGrid(), IsGridEmpty: true})
		if err != nil || len(got) != 0 {
			t.Errorf("Expected nothing, got %v (%v)", got, err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		g := NewGenerator(dicts, 0)
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := g.Generate(canceled, "s", engine.GenerateRequest{Grid: engine.NewGrid(), Easel: "TA", IsGridEmpty: true}); !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})
}
