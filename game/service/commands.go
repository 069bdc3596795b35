package service

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/wricardo/scrabble-duel/game/engine"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CommandKind names a chat command
type CommandKind string

const (
	CommandPlace    CommandKind = "placer"
	CommandExchange CommandKind = "echanger"
	CommandPass     CommandKind = "passer"
	CommandHint     CommandKind = "indice"
	CommandReserve  CommandKind = "reserve"
)

// Command is a parsed chat command
type Command struct {
	Kind      CommandKind
	Placement engine.Placement
	Letters   string // exchange symbols, upper case, '*' for a blank
}

// IsCommand reports whether a chat line is meant as a command
func IsCommand(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), "!")
}

// foldAccents strips diacritics so "!échanger" and "!echanger" match
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ParseCommand reads a chat command such as "!placer h8h bonjouR" or
// "!échanger ab*". Regular tiles are typed in lower case and blanks in upper
// case, the reverse of engine.Placement.
func ParseCommand(content string) (Command, error) {
	fields := strings.Fields(foldAccents(strings.TrimSpace(content)))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "!") {
		return Command{}, fmt.Errorf("not a command: %q", content)
	}
	kind := CommandKind(strings.ToLower(strings.TrimPrefix(fields[0], "!")))
	args := fields[1:]

	switch kind {
	case CommandPass, CommandHint, CommandReserve:
		if len(args) != 0 {
			return Command{}, fmt.Errorf("%s takes no argument", kind)
		}
		return Command{Kind: kind}, nil

	case CommandExchange:
		if len(args) != 1 {
			return Command{}, fmt.Errorf("usage: !échanger <lettres>")
		}
		letters, err := parseExchangeLetters(args[0])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: kind, Letters: letters}, nil

	case CommandPlace:
		if len(args) != 2 {
			return Command{}, fmt.Errorf("usage: !placer <ligne><colonne>[h|v] <lettres>")
		}
		p, err := parsePlacement(args[0], args[1])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: kind, Placement: p}, nil
	}
	return Command{}, fmt.Errorf("unknown command %q", fields[0])
}

func parseExchangeLetters(arg string) (string, error) {
	var b strings.Builder
	for _, r := range arg {
		switch {
		case r == rune(engine.Wildcard):
			b.WriteByte(engine.Wildcard)
		case r >= 'a' && r <= 'z':
			b.WriteByte(byte(r - 'a' + 'A'))
		default:
			return "", fmt.Errorf("invalid letter %q", r)
		}
	}
	if b.Len() == 0 || b.Len() > engine.EaselMaxSize {
		return "", fmt.Errorf("between 1 and %d letters", engine.EaselMaxSize)
	}
	return b.String(), nil
}

// parsePlacement reads "h8h" and the typed letters. The axis may be left
// out for a single letter.
func parsePlacement(where, typed string) (engine.Placement, error) {
	where = strings.ToLower(where)
	if len(where) < 2 || where[0] < 'a' || where[0] > 'o' {
		return engine.Placement{}, fmt.Errorf("invalid position %q", where)
	}
	row := int(where[0] - 'a')
	rest := where[1:]

	axis := engine.Horizontal
	switch rest[len(rest)-1] {
	case 'h':
		rest = rest[:len(rest)-1]
	case 'v':
		axis = engine.Vertical
		rest = rest[:len(rest)-1]
	default:
		if len(typed) != 1 {
			return engine.Placement{}, fmt.Errorf("missing axis in %q", where)
		}
	}
	col, err := strconv.Atoi(rest)
	if err != nil || col < 1 || col > engine.GridSize {
		return engine.Placement{}, fmt.Errorf("invalid column in %q", where)
	}

	var letters strings.Builder
	for _, r := range typed {
		switch {
		case r >= 'a' && r <= 'z':
			letters.WriteByte(byte(r - 'a' + 'A'))
		case r >= 'A' && r <= 'Z':
			letters.WriteByte(byte(r - 'A' + 'a'))
		default:
			return engine.Placement{}, fmt.Errorf("invalid letter %q", r)
		}
	}
	if letters.Len() == 0 || letters.Len() > engine.EaselMaxSize {
		return engine.Placement{}, fmt.Errorf("between 1 and %d letters", engine.EaselMaxSize)
	}
	return engine.Placement{
		Position: engine.Position{Row: row, Col: col - 1},
		Axis:     axis,
		Letters:  letters.String(),
	}, nil
}
