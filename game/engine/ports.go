package engine

import (
	"context"
	"time"
)

// Validator judges a placement against the board and scores it
type Validator interface {
	Validate(ctx context.Context, sessionID string, grid *Grid, p Placement, isGridEmpty bool) (PlacementResult, error)
}

// GenerateRequest is the input of a placement generator
type GenerateRequest struct {
	Grid        *Grid
	Easel       string
	Constraint  *ScoreConstraint
	IsGridEmpty bool
}

// Generator lists legal placements for an easel
type Generator interface {
	Generate(ctx context.Context, sessionID string, req GenerateRequest) ([]Placement, error)
}

// Turn is what objectives are evaluated against after a placement
type Turn struct {
	Player        *Player
	Words         []string
	PreviousWords []string
	Grid          *Grid
	Elapsed       time.Duration
}

// ObjectiveTracker evaluates the side objectives of a game
type ObjectiveTracker interface {
	// Evaluate rechecks the objectives visible to the mover and returns the
	// points newly earned.
	Evaluate(turn Turn) int
	// Reassign hands private objectives from one owner to another
	Reassign(fromID, toID string)
}
