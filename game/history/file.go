package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/scrabble-duel/game/engine"
)

const scoresFile = "scores.json"

// FileRecorder keeps the history as JSON files: games/<id>.json for each
// finished game and one scores.json for the high scores
type FileRecorder struct {
	dir string
	mu  sync.Mutex
}

// NewFileRecorder creates the directory layout under dir
func NewFileRecorder(dir string) (*FileRecorder, error) {
	if err := os.MkdirAll(filepath.Join(dir, "games"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &FileRecorder{dir: dir}, nil
}

// Close is a no-op
func (f *FileRecorder) Close() error {
	return nil
}

// RecordCompletedGame writes the record to its own file
func (f *FileRecorder) RecordCompletedGame(ctx context.Context, r GameRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateRecord(r); err != nil {
		return err
	}
	if strings.ContainsAny(r.ID, `/\`) {
		return fmt.Errorf("%w: bad record id %q", ErrInvalidRecord, r.ID)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal game record: %w", err)
	}
	if err := os.WriteFile(f.gamePath(r.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write game record: %w", err)
	}
	return nil
}

// RecordHighScore appends to the scores file
func (f *FileRecorder) RecordHighScore(ctx context.Context, hs HighScore) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateScore(hs); err != nil {
		return err
	}
	if hs.RecordedAt.IsZero() {
		hs.RecordedAt = time.Now()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	scores, err := f.readScores()
	if err != nil {
		return err
	}
	scores = append(scores, hs)
	data, err := json.MarshalIndent(scores, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}
	tmp := filepath.Join(f.dir, scoresFile+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write scores: %w", err)
	}
	return os.Rename(tmp, filepath.Join(f.dir, scoresFile))
}

// RecentGames reads every record and returns the latest first
func (f *FileRecorder) RecentGames(ctx context.Context, limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	entries, err := os.ReadDir(filepath.Join(f.dir, "games"))
	if err != nil {
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	records := []GameRecord{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(f.dir, "games", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read game record: %w", err)
		}
		var r GameRecord
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game record %s: %w", entry.Name(), err)
		}
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].StartedAt.Equal(records[j].StartedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].StartedAt.After(records[j].StartedAt)
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// BestScores groups the scores of mode, best first
func (f *FileRecorder) BestScores(ctx context.Context, mode engine.Mode) ([]BestScore, error) {
	f.mu.Lock()
	scores, err := f.readScores()
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	filtered := scores[:0]
	for _, s := range scores {
		if s.Mode == mode {
			filtered = append(filtered, s)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Score == filtered[j].Score {
			return filtered[i].RecordedAt.Before(filtered[j].RecordedAt)
		}
		return filtered[i].Score > filtered[j].Score
	})
	return groupBest(filtered), nil
}

func (f *FileRecorder) readScores() ([]HighScore, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, scoresFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read scores: %w", err)
	}
	var scores []HighScore
	if err := json.Unmarshal(data, &scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scores: %w", err)
	}
	return scores, nil
}

func (f *FileRecorder) gamePath(id string) string {
	return filepath.Join(f.dir, "games", fmt.Sprintf("%s.json", id))
}
