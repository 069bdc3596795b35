package virtual

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/wricardo/scrabble-duel/game/engine"
)

const (
	CommandPlace    = "!placer"
	CommandExchange = "!échanger"
	CommandPass     = "!passer"
)

var ErrNotVirtualTurn = errors.New("current player is not a virtual player")

// Action is what a virtual player decides to do
type Action string

const (
	ActionPlace    Action = "place"
	ActionExchange Action = "exchange"
	ActionPass     Action = "pass"
)

type weighted[T any] struct {
	value       T
	probability float64
}

var actionTable = []weighted[Action]{
	{ActionPlace, 0.8},
	{ActionExchange, 0.1},
	{ActionPass, 0.1},
}

var bracketTable = []weighted[engine.ScoreConstraint]{
	{engine.ScoreConstraint{Min: 0, Max: 6}, 0.4},
	{engine.ScoreConstraint{Min: 7, Max: 12}, 0.3},
	{engine.ScoreConstraint{Min: 13, Max: 18}, 0.3},
}

func pick[T any](rng *rand.Rand, table []weighted[T]) T {
	roll := rng.Float64()
	acc := 0.0
	for _, w := range table {
		acc += w.probability
		if roll < acc {
			return w.value
		}
	}
	return table[len(table)-1].value
}

// Result describes the move a virtual player ended up making. MoverMessage
// is meant for the virtual player's own seat, RoomMessage for the opponent.
type Result struct {
	PlayerID     string            `json:"player_id"`
	PlayerName   string            `json:"player_name"`
	Action       Action            `json:"action"`
	Placement    *engine.Placement `json:"placement,omitempty"`
	Exchanged    string            `json:"exchanged,omitempty"`
	MoverMessage string            `json:"mover_message"`
	RoomMessage  string            `json:"room_message"`
}

// Controller plays the virtual player's turns
type Controller struct {
	validator engine.Validator
	generator engine.Generator

	pickAction  func(*rand.Rand) Action
	pickBracket func(*rand.Rand) engine.ScoreConstraint
}

// NewController creates a controller using the given collaborators
func NewController(validator engine.Validator, generator engine.Generator) *Controller {
	return &Controller{
		validator:   validator,
		generator:   generator,
		pickAction:  func(rng *rand.Rand) Action { return pick(rng, actionTable) },
		pickBracket: func(rng *rand.Rand) engine.ScoreConstraint { return pick(rng, bracketTable) },
	}
}

// Play makes one move for the virtual player to move. The game always ends
// up settled: any failure falls back to a pass. A collaborator error is
// returned alongside the fallback result.
func (c *Controller) Play(ctx context.Context, game *engine.Game) (Result, error) {
	if !game.IsVirtualTurn() {
		return Result{}, ErrNotVirtualTurn
	}
	vp := game.CurrentPlayer()

	switch c.pickAction(game.Rand()) {
	case ActionPlace:
		return c.place(ctx, game, vp)
	case ActionExchange:
		return c.exchange(ctx, game, vp)
	default:
		game.Pass(vp.ID, true)
		return c.passResult(vp), nil
	}
}

func (c *Controller) candidates(ctx context.Context, game *engine.Game, vp *engine.Player) ([]engine.Placement, error) {
	bracket := c.pickBracket(game.Rand())
	return c.generator.Generate(ctx, game.ID, engine.GenerateRequest{
		Grid:        game.Grid,
		Easel:       vp.Easel.String(),
		Constraint:  &bracket,
		IsGridEmpty: game.IsGridEmpty,
	})
}

func (c *Controller) place(ctx context.Context, game *engine.Game, vp *engine.Player) (Result, error) {
	candidates, err := c.candidates(ctx, game, vp)
	if err != nil {
		return c.fallbackPass(game, vp), fmt.Errorf("generate placements: %w", err)
	}
	if len(candidates) == 0 {
		if vp.Virtual.Level == engine.LevelExpert {
			return c.exchange(ctx, game, vp)
		}
		return c.fallbackPass(game, vp), nil
	}

	chosen := candidates[game.Rand().IntN(len(candidates))]
	ok, err := game.Place(ctx, c.validator, vp.ID, chosen)
	if err != nil {
		return c.fallbackPass(game, vp), err
	}
	if !ok {
		return c.fallbackPass(game, vp), nil
	}

	message := CommandPlace + " " + chosen.Notation()
	return Result{
		PlayerID:     vp.ID,
		PlayerName:   vp.Name,
		Action:       ActionPlace,
		Placement:    &chosen,
		MoverMessage: message,
		RoomMessage:  message,
	}, nil
}

func (c *Controller) exchange(ctx context.Context, game *engine.Game, vp *engine.Player) (Result, error) {
	// a generator failure only means no candidate guides the choice
	candidates, _ := c.candidates(ctx, game, vp)
	letters := chooseExchange(game.Rand(), vp.Virtual.Level, vp.Easel.String(), candidates)

	if !game.Exchange(vp.ID, letters) {
		return c.fallbackPass(game, vp), nil
	}
	return Result{
		PlayerID:     vp.ID,
		PlayerName:   vp.Name,
		Action:       ActionExchange,
		Exchanged:    string(letters),
		MoverMessage: fmt.Sprintf("%s %s", CommandExchange, string(letters)),
		RoomMessage:  fmt.Sprintf("%s %d", CommandExchange, len(letters)),
	}, nil
}

// fallbackPass ends the turn without counting toward the pass threshold
func (c *Controller) fallbackPass(game *engine.Game, vp *engine.Player) Result {
	game.Pass(vp.ID, false)
	return c.passResult(vp)
}

func (c *Controller) passResult(vp *engine.Player) Result {
	return Result{
		PlayerID:     vp.ID,
		PlayerName:   vp.Name,
		Action:       ActionPass,
		MoverMessage: CommandPass,
		RoomMessage:  CommandPass,
	}
}

// chooseExchange keeps the tiles of one candidate placement and trades the
// rest. Without a useful candidate a beginner trades a random subset and an
// expert trades the whole easel.
func chooseExchange(rng *rand.Rand, level engine.Level, easel string, candidates []engine.Placement) []byte {
	if easel == "" {
		return nil
	}
	if len(candidates) > 0 {
		keep := candidates[rng.IntN(len(candidates))].RequiredSymbols()
		if rest := without([]byte(easel), keep); len(rest) > 0 {
			return rest
		}
	}
	if level == engine.LevelExpert {
		return []byte(easel)
	}
	symbols := []byte(easel)
	rng.Shuffle(len(symbols), func(i, j int) { symbols[i], symbols[j] = symbols[j], symbols[i] })
	return symbols[:1+rng.IntN(len(symbols))]
}

// without removes each symbol of remove from from, once per occurrence
func without(from, remove []byte) []byte {
	counts := make(map[byte]int, len(remove))
	for _, s := range remove {
		counts[s]++
	}
	out := make([]byte, 0, len(from))
	for _, s := range from {
		if counts[s] > 0 {
			counts[s]--
			continue
		}
		out = append(out, s)
	}
	return out
}
