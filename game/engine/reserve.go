package engine

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"
)

// Reserve is the bag of undrawn tiles
type Reserve struct {
	letters []Letter
	rng     *rand.Rand
}

// NewReserve fills a reserve with the full tile distribution
func NewReserve(rng *rand.Rand) *Reserve {
	letters := make([]Letter, 0, 102)
	for symbol, count := range distribution {
		for i := 0; i < count; i++ {
			letters = append(letters, NewLetter(symbol))
		}
	}
	return NewReserveFrom(letters, rng)
}

// NewReserveFrom builds a reserve holding exactly letters
func NewReserveFrom(letters []Letter, rng *rand.Rand) *Reserve {
	if rng == nil {
		rng = NewRand()
	}
	own := make([]Letter, len(letters))
	copy(own, letters)
	return &Reserve{letters: own, rng: rng}
}

// NewRand returns a time-seeded generator
func NewRand() *rand.Rand {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>32|1))
}

// RemoveRandomLetters draws up to n tiles uniformly without replacement.
// Fewer than n tiles are returned when the reserve runs short.
func (r *Reserve) RemoveRandomLetters(n int) []Letter {
	if n > len(r.letters) {
		n = len(r.letters)
	}
	if n <= 0 {
		return []Letter{}
	}
	drawn := make([]Letter, 0, n)
	for i := 0; i < n; i++ {
		idx := r.rng.IntN(len(r.letters))
		drawn = append(drawn, r.letters[idx])
		last := len(r.letters) - 1
		r.letters[idx] = r.letters[last]
		r.letters = r.letters[:last]
	}
	return drawn
}

// AddLetters returns tiles to the reserve
func (r *Reserve) AddLetters(letters []Letter) {
	r.letters = append(r.letters, letters...)
}

// Size returns the number of tiles left
func (r *Reserve) Size() int {
	return len(r.letters)
}

// IsEmpty reports whether no tile is left
func (r *Reserve) IsEmpty() bool {
	return len(r.letters) == 0
}

// Content counts the remaining tiles per symbol
func (r *Reserve) Content() map[byte]int {
	content := make(map[byte]int)
	for _, l := range r.letters {
		content[l.Symbol]++
	}
	return content
}

// FormattedContent renders the content one "X: n" line per symbol in
// alphabetical order, wildcard last
func (r *Reserve) FormattedContent() string {
	content := r.Content()
	symbols := make([]byte, 0, len(distribution))
	for symbol := range distribution {
		symbols = append(symbols, symbol)
	}
	sort.Slice(symbols, func(i, j int) bool {
		if symbols[i] == Wildcard {
			return false
		}
		if symbols[j] == Wildcard {
			return true
		}
		return symbols[i] < symbols[j]
	})

	lines := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		lines = append(lines, fmt.Sprintf("%c: %d", symbol, content[symbol]))
	}
	return strings.Join(lines, "\n")
}
