// Package placement holds the reference placement validator and generator.
//
// The Validator checks a placement against the board and the session's
// dictionary and scores it. The Generator enumerates the dictionary to find
// every placement a rack can make, scored by the Validator. Both look the
// dictionary up per session, so they can serve every game at once.
//
// Rules applied:
//   - the first word covers the centre square
//   - later words touch at least one tile already on the board
//   - every word formed, along the axis and across it, is in the dictionary
//   - premium squares count only under newly laid tiles
//   - laying all seven tiles earns a 50 point bonus
package placement
