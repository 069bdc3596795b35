// Package history records finished games and the best scores.
//
// Two backends implement the same Store interface:
//   - SQLiteStore keeps everything in a SQLite database (modernc.org/sqlite,
//     no cgo) and applies its embedded migrations on open
//   - FileRecorder writes one JSON file per game plus a scores file, for
//     deployments without a database
//
// Only human players get high scores; the caller filters virtual players.
package history
