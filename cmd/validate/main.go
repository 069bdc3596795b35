// Command validate checks the dictionary JSON files of a directory before
// the server loads them. It checks:
//   - JSON structure, title and word list
//   - Word characters: A to Z only once upper cased
//   - Word length: 2 to 15 letters
//   - Playability: no word needs more tiles of a letter than the reserve
//     and the two blanks can supply
//
// Duplicates and lower case words are reported as warnings since the
// server normalizes them.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/urfave/cli/v3"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/wricardo/scrabble-duel/game/dictionary"
	"github.com/wricardo/scrabble-duel/game/engine"
)

const (
	minWordLength = 2
	maxWordLength = engine.GridSize

	// at most this many offending words are listed per check
	maxListed = 5
)

// ValidationResult is the outcome for one dictionary file
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// listed joins the first offenders and counts the rest
func listed(words []string) string {
	if len(words) <= maxListed {
		return strings.Join(words, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(words[:maxListed], ", "), len(words)-maxListed)
}

// playable reports whether the tile distribution can spell word
func playable(word string) bool {
	counts := map[byte]int{}
	for i := 0; i < len(word); i++ {
		counts[word[i]]++
	}
	blanks := engine.InitialCount(engine.Wildcard)
	for symbol, n := range counts {
		if missing := n - engine.InitialCount(symbol); missing > 0 {
			blanks -= missing
		}
	}
	return blanks >= 0
}

// validateDictionary loads and checks a single dictionary file
func validateDictionary(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var file dictionary.File
	if err := json.Unmarshal(data, &file); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if strings.TrimSpace(file.Title) == "" {
		result.fail("Missing title")
	}
	if len(file.Words) == 0 {
		result.fail("Word list is empty")
		return result
	}

	var badChars, badLength, unplayable, lowered, duplicates []string
	seen := make(map[string]bool, len(file.Words))
	lengths := map[int]int{}

	for _, raw := range file.Words {
		word := strings.ToUpper(strings.TrimSpace(raw))
		if word == "" {
			continue
		}
		if word != strings.TrimSpace(raw) {
			lowered = append(lowered, raw)
		}
		if seen[word] {
			duplicates = append(duplicates, word)
			continue
		}
		seen[word] = true

		if strings.IndexFunc(word, func(r rune) bool { return r < 'A' || r > 'Z' }) >= 0 {
			if folded := foldAccents(word); folded != word {
				badChars = append(badChars, fmt.Sprintf("%s (use %s)", word, folded))
			} else {
				badChars = append(badChars, word)
			}
			continue
		}
		if len(word) < minWordLength || len(word) > maxWordLength {
			badLength = append(badLength, word)
			continue
		}
		if !playable(word) {
			unplayable = append(unplayable, word)
			continue
		}
		lengths[len(word)]++
	}

	if len(badChars) > 0 {
		result.fail("%d word(s) with characters outside A-Z: %s", len(badChars), listed(badChars))
	}
	if len(badLength) > 0 {
		result.fail("%d word(s) outside %d-%d letters: %s", len(badLength), minWordLength, maxWordLength, listed(badLength))
	}
	if len(unplayable) > 0 {
		result.fail("%d word(s) need more tiles than the reserve holds: %s", len(unplayable), listed(unplayable))
	}
	if len(duplicates) > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%d duplicate word(s): %s", len(duplicates), listed(duplicates)))
	}
	if len(lowered) > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%d word(s) not upper case: %s", len(lowered), listed(lowered)))
	}

	if result.Valid {
		total := 0
		sizes := make([]int, 0, len(lengths))
		for size, n := range lengths {
			sizes = append(sizes, size)
			total += n
		}
		sort.Ints(sizes)
		result.Info = append(result.Info, fmt.Sprintf("✓ Title: %s", file.Title))
		result.Info = append(result.Info, fmt.Sprintf("✓ Words: %d", total))
		if len(sizes) > 0 {
			result.Info = append(result.Info, fmt.Sprintf("✓ Lengths: %d to %d letters", sizes[0], sizes[len(sizes)-1]))
		}
		if lengths[2] == 0 {
			result.Warnings = append(result.Warnings, "No two-letter words; the virtual player will rarely find short plays")
		}
	}

	return result
}

// validateDir validates every *.json file of dir and prints a report. It
// returns false when any file is invalid.
func validateDir(dir string) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("error finding dictionary files: %w", err)
	}
	if len(files) == 0 {
		fmt.Printf("No dictionary found in %s\n", dir)
		return true, nil
	}

	allValid := true
	for _, file := range files {
		result := validateDictionary(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)
		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, e := range result.Errors {
				fmt.Println("  ❌ " + e)
			}
		}
		for _, w := range result.Warnings {
			fmt.Println("  ⚠️  " + w)
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All dictionaries are valid!")
	} else {
		fmt.Println("❌ Some dictionaries have errors")
	}
	return allValid, nil
}

func main() {
	cmd := &cli.Command{
		Name:      "validate",
		Usage:     "Check dictionary files before the server loads them",
		ArgsUsage: "[directory]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "dictionaries"
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}
			ok, err := validateDir(dir)
			if err != nil {
				return err
			}
			if !ok {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
