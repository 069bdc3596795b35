// Package virtual drives the computer-controlled player.
//
// On its turn a virtual player draws an action (place 80%, exchange 10%,
// pass 10%) and a score bracket (0-6, 7-12 or 13-18), asks the placement
// generator for candidates in that bracket and plays one at random. When no
// candidate exists a beginner passes and an expert exchanges. An exchange or
// placement the game refuses becomes a pass that does not count toward the
// end-of-game pass limit.
package virtual
