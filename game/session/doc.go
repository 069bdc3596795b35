// Package session is the directory of running games.
//
// The Manager maps game ids to sessions and player ids to the game they sit
// in. Insert and Remove are serialized by the directory lock; lookups run
// in parallel.
//
// Each Session carries its own mutex. Every operation on a game, including
// the virtual player's follow-up moves and the collaborator calls they make,
// runs between Lock and Unlock, so one game never sees two operations at
// once while different games proceed in parallel.
//
// Removing a session marks it closed. A caller that fetched the session
// before the removal gets ErrSessionClosed from Lock and treats the game as
// gone:
//
//	sess, ok := manager.Get(id)
//	if !ok {
//		return false
//	}
//	if err := sess.Lock(); err != nil {
//		return false
//	}
//	defer sess.Unlock()
package session
