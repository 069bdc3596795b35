package virtual

import (
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/wricardo/scrabble-duel/game/engine"
)

var names = map[engine.Level][]string{
	engine.LevelBeginner: {"Elon Musk", "Bill Gates", "Vitalik Buterin"},
	engine.LevelExpert:   {"Mark Zuckerberg", "Jeff Bezos", "Satoshi Nakamoto"},
}

// RandomName picks a name for level that differs from opponent
func RandomName(rng *rand.Rand, level engine.Level, opponent string) string {
	pool := names[level]
	if len(pool) == 0 {
		pool = names[engine.LevelBeginner]
	}
	candidates := make([]string, 0, len(pool))
	for _, n := range pool {
		if n != opponent {
			candidates = append(candidates, n)
		}
	}
	return candidates[rng.IntN(len(candidates))]
}

// NewIdentity creates a fresh virtual player identity
func NewIdentity(rng *rand.Rand, level engine.Level, opponent string) engine.Identity {
	return engine.Identity{ID: "vp-" + uuid.NewString(), Name: RandomName(rng, level, opponent)}
}
