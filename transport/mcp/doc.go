// Package mcp exposes the Scrabble duel to AI agents over the Model
// Context Protocol.
//
// The client is a thin proxy: every tool calls the REST API of a running
// server, so an agent plays exactly like a browser player would. The
// client registers one player with register_player and sends that
// player's token on every later call.
//
// Tools:
//   - register_player, create_solo_game, game_state
//   - place, exchange, pass, hints
//   - list_rooms, best_scores, list_dictionaries
//
// Game tools take an optional game_id. Without it they target the game
// the registered player hosts, whose id is the player id.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
