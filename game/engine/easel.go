package engine

// Easel is a player's rack of at most EaselMaxSize tiles
type Easel struct {
	letters []Letter
}

// NewEasel builds an easel, keeping at most EaselMaxSize tiles
func NewEasel(letters []Letter) *Easel {
	e := &Easel{}
	e.Add(letters)
	return e
}

// Letters returns a copy of the tiles
func (e *Easel) Letters() []Letter {
	out := make([]Letter, len(e.letters))
	copy(out, e.letters)
	return out
}

// Size returns the number of tiles
func (e *Easel) Size() int {
	return len(e.letters)
}

// IsEmpty reports whether the easel holds no tile
func (e *Easel) IsEmpty() bool {
	return len(e.letters) == 0
}

// Contains reports whether every symbol is on the easel, counting duplicates
func (e *Easel) Contains(symbols []byte) bool {
	counts := make(map[byte]int, len(e.letters))
	for _, l := range e.letters {
		counts[l.Symbol]++
	}
	for _, s := range symbols {
		s = NewLetter(s).Symbol
		if counts[s] == 0 {
			return false
		}
		counts[s]--
	}
	return true
}

// Remove takes the tiles for symbols off the easel. Nothing is removed unless
// all of them are present.
func (e *Easel) Remove(symbols []byte) ([]Letter, bool) {
	if !e.Contains(symbols) {
		return nil, false
	}
	removed := make([]Letter, 0, len(symbols))
	for _, s := range symbols {
		s = NewLetter(s).Symbol
		for i, l := range e.letters {
			if l.Symbol == s {
				removed = append(removed, l)
				e.letters = append(e.letters[:i], e.letters[i+1:]...)
				break
			}
		}
	}
	return removed, true
}

// Add puts tiles on the easel up to its capacity and returns what did not fit
func (e *Easel) Add(letters []Letter) []Letter {
	room := EaselMaxSize - len(e.letters)
	if room >= len(letters) {
		e.letters = append(e.letters, letters...)
		return nil
	}
	if room < 0 {
		room = 0
	}
	e.letters = append(e.letters, letters[:room]...)
	return letters[room:]
}

// Score is the point value of the remaining tiles
func (e *Easel) Score() int {
	return SumValues(e.letters)
}

// String returns the symbols on the easel, e.g. "ABE*RST"
func (e *Easel) String() string {
	return LettersToString(e.letters)
}
