package history

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/scrabble-duel/game/engine"
)

// BestScoresLimit is the number of distinct scores kept per mode
const BestScoresLimit = 5

var ErrInvalidRecord = errors.New("invalid history record")

// GameRecord is a finished game
type GameRecord struct {
	ID         string               `json:"id"`
	GameID     string               `json:"game_id"`
	Mode       engine.Mode          `json:"mode"`
	Type       engine.SessionType   `json:"type"`
	Dictionary string               `json:"dictionary"`
	StartedAt  time.Time            `json:"started_at"`
	Duration   engine.Duration      `json:"duration"`
	Players    []engine.PlayerScore `json:"players"`
	Abandoned  bool                 `json:"abandoned"`
}

// HighScore is one human player's final score
type HighScore struct {
	Mode       engine.Mode `json:"mode"`
	Name       string      `json:"name"`
	Score      int         `json:"score"`
	RecordedAt time.Time   `json:"recorded_at"`
}

// BestScore groups the names that reached the same score
type BestScore struct {
	Score int      `json:"score"`
	Names []string `json:"names"`
}

// Store records and reads the history
type Store interface {
	RecordCompletedGame(ctx context.Context, record GameRecord) error
	RecordHighScore(ctx context.Context, score HighScore) error
	RecentGames(ctx context.Context, limit int) ([]GameRecord, error)
	BestScores(ctx context.Context, mode engine.Mode) ([]BestScore, error)
	Close() error
}

func validateRecord(r GameRecord) error {
	if r.ID == "" || r.GameID == "" {
		return errors.Join(ErrInvalidRecord, errors.New("record and game ids are required"))
	}
	if len(r.Players) == 0 {
		return errors.Join(ErrInvalidRecord, errors.New("players are required"))
	}
	return nil
}

func validateScore(s HighScore) error {
	if s.Name == "" || s.Mode == "" {
		return errors.Join(ErrInvalidRecord, errors.New("name and mode are required"))
	}
	return nil
}

// groupBest folds scores sorted best first into at most BestScoresLimit
// distinct scores
func groupBest(scores []HighScore) []BestScore {
	best := []BestScore{}
	for _, s := range scores {
		n := len(best)
		if n > 0 && best[n-1].Score == s.Score {
			best[n-1].Names = appendUnique(best[n-1].Names, s.Name)
			continue
		}
		if n == BestScoresLimit {
			break
		}
		best = append(best, BestScore{Score: s.Score, Names: []string{s.Name}})
	}
	return best
}

func appendUnique(names []string, name string) []string {
	for _, n := range names {
		if n == name {
			return names
		}
	}
	return append(names, name)
}
