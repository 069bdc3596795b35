package objectives

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/wricardo/scrabble-duel/game/engine"
)

func TestCatalogueChecks(t *testing.T) {
	player := &engine.Player{ID: "p1"}
	corner := engine.NewGrid()
	corner.Commit(engine.Placement{Position: engine.Position{Row: 14, Col: 14}, Axis: engine.Horizontal, Letters: "A"})

	tests := []struct {
		name string
		code int
		turn engine.Turn
		want bool
	}{
		{"four vowels", 1, engine.Turn{Player: player, Words: []string{"OISEAU"}}, true},
		{"three vowels", 1, engine.Turn{Player: player, Words: []string{"MAISON"}}, false},
		{"hundred points clean", 2, engine.Turn{Player: &engine.Player{Score: 104}}, true},
		{"hundred points after exchange", 2, engine.Turn{Player: &engine.Player{Score: 120, UsedExchange: true}}, false},
		{"hundred points after hint", 2, engine.Turn{Player: &engine.Player{Score: 120, UsedHint: true}}, false},
		{"fast turn", 3, engine.Turn{Player: player, Elapsed: 3 * time.Second}, true},
		{"slow turn", 3, engine.Turn{Player: player, Elapsed: 6 * time.Second}, false},
		{"palindrome", 4, engine.Turn{Player: player, Words: []string{"KAYAK"}}, true},
		{"short palindrome", 4, engine.Turn{Player: player, Words: []string{"AA"}}, false},
		{"only vowels", 5, engine.Turn{Player: player, Words: []string{"EAU"}}, true},
		{"consonant present", 5, engine.Turn{Player: player, Words: []string{"EAUX"}}, false},
		{"vowel bounds", 6, engine.Turn{Player: player, Words: []string{"ORANGE"}}, true},
		{"consonant end", 6, engine.Turn{Player: player, Words: []string{"ARBRES"}}, false},
		{"corner filled", 7, engine.Turn{Player: player, Grid: corner}, true},
		{"corner empty", 7, engine.Turn{Player: player, Grid: engine.NewGrid()}, false},
		{"anagram", 8, engine.Turn{Player: player, Words: []string{"CHIEN"}, PreviousWords: []string{"NICHE"}}, true},
		{"same word is no anagram", 8, engine.Turn{Player: player, Words: []string{"NICHE"}, PreviousWords: []string{"NICHE"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := definition(tt.code)
			if !ok {
				t.Fatalf("Objective %d missing from the catalogue", tt.code)
			}
			if got := d.Check(tt.turn); got != tt.want {
				t.Errorf("Check() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDraw(t *testing.T) {
	drawn := Draw(rand.New(rand.NewPCG(5, 6)))

	if len(drawn) != Count {
		t.Fatalf("Expected %d objectives, got %d", Count, len(drawn))
	}
	seen := map[int]bool{}
	private := 0
	for _, o := range drawn {
		if seen[o.Code] {
			t.Errorf("Objective %d drawn twice", o.Code)
		}
		seen[o.Code] = true
		if o.Type == Private {
			private++
		}
	}
	if private != PrivateCount {
		t.Errorf("Expected %d private objectives, got %d", PrivateCount, private)
	}
}

func TestNewTrackerAssignsPrivateObjectives(t *testing.T) {
	tracker := NewTracker([]*Objective{
		{Code: 1, Type: Private},
		{Code: 2, Type: Public},
		{Code: 3, Type: Private},
	}, []string{"host", "guest"})

	if o, ok := tracker.PrivateFor("host"); !ok || o.Code != 1 {
		t.Errorf("Expected host to own objective 1, got %+v", o)
	}
	if o, ok := tracker.PrivateFor("guest"); !ok || o.Code != 3 {
		t.Errorf("Expected guest to own objective 3, got %+v", o)
	}
	if len(tracker.Public()) != 1 {
		t.Errorf("Expected 1 public objective, got %d", len(tracker.Public()))
	}
}

func TestTrackerEvaluate(t *testing.T) {
	host := &engine.Player{ID: "host"}
	guest := &engine.Player{ID: "guest"}

	t.Run("points are awarded once", func(t *testing.T) {
		tracker := NewTracker([]*Objective{{Code: 3, Type: Public, Points: 20}}, nil)

		if got := tracker.Evaluate(engine.Turn{Player: host, Elapsed: time.Second}); got != 20 {
			t.Errorf("Expected 20 points, got %d", got)
		}
		if got := tracker.Evaluate(engine.Turn{Player: guest, Elapsed: time.Second}); got != 0 {
			t.Errorf("Expected no points the second time, got %d", got)
		}
	})

	t.Run("done survives checked flipping back", func(t *testing.T) {
		tracker := NewTracker([]*Objective{{Code: 3, Type: Public, Points: 20}}, nil)
		tracker.Evaluate(engine.Turn{Player: host, Elapsed: time.Second})
		tracker.Evaluate(engine.Turn{Player: host, Elapsed: time.Minute})

		o := tracker.All()[0]
		if o.Checked {
			t.Error("Checked should follow the latest turn")
		}
		if !o.Done {
			t.Error("Done must never revert")
		}
	})

	t.Run("private objectives only count for their owner", func(t *testing.T) {
		tracker := NewTracker([]*Objective{{Code: 3, Type: Private, Points: 20}}, []string{"host"})

		if got := tracker.Evaluate(engine.Turn{Player: guest, Elapsed: time.Second}); got != 0 {
			t.Errorf("Guest earned %d points from the host's objective", got)
		}
		if got := tracker.Evaluate(engine.Turn{Player: host, Elapsed: time.Second}); got != 20 {
			t.Errorf("Expected the owner to earn 20 points, got %d", got)
		}
	})
}

func TestTrackerReassign(t *testing.T) {
	tracker := NewTracker([]*Objective{{Code: 7, Type: Private}}, []string{"host"})
	tracker.Reassign("host", "vp")

	if _, ok := tracker.PrivateFor("host"); ok {
		t.Error("Host should no longer own the objective")
	}
	if _, ok := tracker.PrivateFor("vp"); !ok {
		t.Error("Virtual player should own the objective")
	}
}
