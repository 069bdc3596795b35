package engine

import "fmt"

// Letter is a tile in the reserve or on an easel
type Letter struct {
	Symbol byte `json:"symbol"`
	Value  int  `json:"value"`
}

// String returns the tile symbol
func (l Letter) String() string {
	return string(l.Symbol)
}

var letterValues = map[byte]int{
	'A': 1, 'B': 3, 'C': 3, 'D': 2, 'E': 1, 'F': 4, 'G': 2, 'H': 4, 'I': 1,
	'J': 8, 'K': 10, 'L': 1, 'M': 2, 'N': 1, 'O': 1, 'P': 3, 'Q': 8, 'R': 1,
	'S': 1, 'T': 1, 'U': 1, 'V': 4, 'W': 10, 'X': 10, 'Y': 10, 'Z': 10,
	Wildcard: 0,
}

// distribution is the initial tile count per symbol (102 tiles)
var distribution = map[byte]int{
	'A': 9, 'B': 2, 'C': 2, 'D': 3, 'E': 15, 'F': 2, 'G': 2, 'H': 2, 'I': 8,
	'J': 1, 'K': 1, 'L': 5, 'M': 3, 'N': 6, 'O': 6, 'P': 2, 'Q': 1, 'R': 6,
	'S': 6, 'T': 6, 'U': 6, 'V': 2, 'W': 1, 'X': 1, 'Y': 1, 'Z': 1,
	Wildcard: 2,
}

// InitialCount returns how many tiles of symbol a full reserve holds
func InitialCount(symbol byte) int {
	return distribution[NewLetter(symbol).Symbol]
}

// NewLetter builds a tile for symbol. Lower case input is folded to upper case.
func NewLetter(symbol byte) Letter {
	if symbol >= 'a' && symbol <= 'z' {
		symbol = symbol - 'a' + 'A'
	}
	return Letter{Symbol: symbol, Value: letterValues[symbol]}
}

// LetterValue returns the points of a symbol, 0 for unknown symbols
func LetterValue(symbol byte) int {
	return NewLetter(symbol).Value
}

// IsKnownSymbol reports whether symbol is a tile of the game
func IsKnownSymbol(symbol byte) bool {
	if symbol >= 'a' && symbol <= 'z' {
		symbol = symbol - 'a' + 'A'
	}
	_, ok := letterValues[symbol]
	return ok
}

// IsVowel reports whether c is a vowel, either case
func IsVowel(c byte) bool {
	switch c {
	case 'A', 'E', 'I', 'O', 'U', 'Y', 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

// LettersToString joins tile symbols
func LettersToString(letters []Letter) string {
	b := make([]byte, len(letters))
	for i, l := range letters {
		b[i] = l.Symbol
	}
	return string(b)
}

// Symbols returns the symbols of letters
func Symbols(letters []Letter) []byte {
	return []byte(LettersToString(letters))
}

// SumValues adds up the points of letters
func SumValues(letters []Letter) int {
	total := 0
	for _, l := range letters {
		total += l.Value
	}
	return total
}

// MarshalJSON encodes the symbol as a string
func (l Letter) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"symbol":%q,"value":%d}`, string(l.Symbol), l.Value)), nil
}
