package objectives

import (
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/wricardo/scrabble-duel/game/engine"
)

const (
	// Count objectives are drawn per game, PrivateCount of them private
	Count        = 4
	PrivateCount = 2

	fastPlacement = 5 * time.Second
)

// Type tells who can see and earn an objective
type Type string

const (
	Public  Type = "public"
	Private Type = "private"
)

// Objective is a bonus condition of one game
type Objective struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
	Type        Type   `json:"type"`
	Points      int    `json:"points"`
	Checked     bool   `json:"checked"`
	Done        bool   `json:"done"`
	OwnerID     string `json:"owner_id,omitempty"`
}

// Definition is a catalogue entry
type Definition struct {
	Code        int
	Description string
	Points      int
	Check       func(turn engine.Turn) bool
}

// Catalogue lists every objective a game can draw
var Catalogue = []Definition{
	{1, "Form a word containing at least four vowels", 30, fourVowels},
	{2, "Reach 100 points without exchanging or asking for a hint", 50, hundredWithoutHelp},
	{3, "Place a word less than 5 seconds into your turn", 20, fastTurn},
	{4, "Form a palindrome of at least three letters", 40, palindrome},
	{5, "Form a word made only of vowels", 30, onlyVowels},
	{6, "Form a word that starts and ends with a vowel", 20, vowelBounds},
	{7, "Occupy the O15 square", 25, cornerO15},
	{8, "Form an anagram of a word played earlier", 35, anagramOfPrevious},
}

func definition(code int) (Definition, bool) {
	for _, d := range Catalogue {
		if d.Code == code {
			return d, true
		}
	}
	return Definition{}, false
}

// Draw picks Count distinct objectives and promotes PrivateCount of them
func Draw(rng *rand.Rand) []*Objective {
	order := rng.Perm(len(Catalogue))
	drawn := make([]*Objective, 0, Count)
	for i := 0; i < Count && i < len(order); i++ {
		d := Catalogue[order[i]]
		kind := Public
		if i < PrivateCount {
			kind = Private
		}
		drawn = append(drawn, &Objective{Code: d.Code, Description: d.Description, Type: kind, Points: d.Points})
	}
	return drawn
}

// Tracker holds the objectives of one game. It is guarded by the game's lock.
type Tracker struct {
	objectives []*Objective
}

// NewTracker assigns each private objective to the next player id in order
func NewTracker(objectives []*Objective, playerIDs []string) *Tracker {
	next := 0
	for _, o := range objectives {
		if o.Type != Private || o.OwnerID != "" {
			continue
		}
		if next < len(playerIDs) {
			o.OwnerID = playerIDs[next]
			next++
		}
	}
	return &Tracker{objectives: objectives}
}

// Evaluate rechecks the public objectives and the mover's private ones.
// Points are awarded once, the first time an objective is met.
func (t *Tracker) Evaluate(turn engine.Turn) int {
	earned := 0
	for _, o := range t.objectives {
		if o.Type == Private && o.OwnerID != turn.Player.ID {
			continue
		}
		d, ok := definition(o.Code)
		if !ok {
			continue
		}
		o.Checked = d.Check(turn)
		if o.Checked && !o.Done {
			o.Done = true
			earned += o.Points
		}
	}
	return earned
}

// Reassign moves private objectives owned by fromID to toID
func (t *Tracker) Reassign(fromID, toID string) {
	for _, o := range t.objectives {
		if o.Type == Private && o.OwnerID == fromID {
			o.OwnerID = toID
		}
	}
}

// All returns a copy of every objective
func (t *Tracker) All() []Objective {
	out := make([]Objective, 0, len(t.objectives))
	for _, o := range t.objectives {
		out = append(out, *o)
	}
	return out
}

// Public returns the objectives both players see
func (t *Tracker) Public() []Objective {
	out := make([]Objective, 0, len(t.objectives))
	for _, o := range t.objectives {
		if o.Type == Public {
			out = append(out, *o)
		}
	}
	return out
}

// PrivateFor returns the private objective owned by playerID
func (t *Tracker) PrivateFor(playerID string) (Objective, bool) {
	for _, o := range t.objectives {
		if o.Type == Private && o.OwnerID == playerID {
			return *o, true
		}
	}
	return Objective{}, false
}

func countVowels(word string) int {
	n := 0
	for i := 0; i < len(word); i++ {
		if engine.IsVowel(word[i]) {
			n++
		}
	}
	return n
}

func anyWord(words []string, match func(string) bool) bool {
	for _, w := range words {
		if match(strings.ToUpper(w)) {
			return true
		}
	}
	return false
}

func fourVowels(turn engine.Turn) bool {
	return anyWord(turn.Words, func(w string) bool { return countVowels(w) >= 4 })
}

func hundredWithoutHelp(turn engine.Turn) bool {
	p := turn.Player
	return p.Score >= 100 && !p.UsedExchange && !p.UsedHint
}

func fastTurn(turn engine.Turn) bool {
	return turn.Elapsed < fastPlacement
}

func palindrome(turn engine.Turn) bool {
	return anyWord(turn.Words, func(w string) bool {
		if len(w) < 3 {
			return false
		}
		for i, j := 0, len(w)-1; i < j; i, j = i+1, j-1 {
			if w[i] != w[j] {
				return false
			}
		}
		return true
	})
}

func onlyVowels(turn engine.Turn) bool {
	return anyWord(turn.Words, func(w string) bool {
		return len(w) >= 2 && countVowels(w) == len(w)
	})
}

func vowelBounds(turn engine.Turn) bool {
	return anyWord(turn.Words, func(w string) bool {
		return len(w) >= 2 && engine.IsVowel(w[0]) && engine.IsVowel(w[len(w)-1])
	})
}

func cornerO15(turn engine.Turn) bool {
	return turn.Grid != nil && turn.Grid.Occupied(engine.Position{Row: 14, Col: 14})
}

func sortedLetters(w string) string {
	b := []byte(strings.ToUpper(w))
	sort.Slice(b, func(i, j int) bool { return b[i] < b[j] })
	return string(b)
}

func anagramOfPrevious(turn engine.Turn) bool {
	for _, w := range turn.Words {
		key := sortedLetters(w)
		for _, prev := range turn.PreviousWords {
			if len(prev) == len(w) && !strings.EqualFold(prev, w) && sortedLetters(prev) == key {
				return true
			}
		}
	}
	return false
}
