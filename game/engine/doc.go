// Package engine provides the core game logic for Scrabble Duel.
//
// The engine package implements the match rules:
//   - The letter reserve and its random draws
//   - Player easels and their point values
//   - The 15x15 board with premium squares and immutable tiles
//   - Turn order, exchanges, passes and end-of-game scoring
//
// Core Types:
//
// Game is the state machine of one match. It holds two seats and a toMove
// index; every operation checks that the caller is the seat to move and
// returns false, without changing anything, when it is not. Placement legality
// and scoring come from a Validator; side objectives from an
// ObjectiveTracker. Both are supplied by the caller.
//
// Usage:
//
//	game := engine.NewSoloGame(hostID, params, host, bot, engine.LevelBeginner)
//
//	ok, err := game.Place(ctx, validator, hostID, engine.Placement{
//		Position: engine.Center,
//		Axis:     engine.Horizontal,
//		Letters:  "MOT",
//	})
//	if err != nil {
//		return err
//	}
//	if game.IsEnded() {
//		fmt.Println(game.EndMessage())
//	}
//
// Game Rules:
//
// The reserve holds 102 tiles including two wildcards. A game ends when a
// player empties their easel while the reserve is empty (the opponent's
// leftover points move to that player), or when both players passed three
// times in a row (each loses their leftover points).
package engine
