// Package api provides the HTTP REST API of the game server.
//
// Players register with a display name and receive a signed token; every
// endpoint acting for a player expects it as "Authorization: Bearer <token>".
// The same token resumes the player on the websocket (/ws?token=).
//
// Endpoints:
//
//   - POST /api/players - Register a player name, returns id and token
//   - GET /api/dictionaries - List dictionaries
//   - GET /api/history?limit= - Recently completed games
//   - GET /api/scores?mode= - Best scores of a mode
//   - GET /api/rooms?mode= - Rooms waiting for an opponent
//   - POST /api/rooms, DELETE /api/rooms - Open or close your room
//   - POST /api/rooms/{id}/join, DELETE /api/rooms/{id}/join - Ask to join, or withdraw
//   - POST /api/rooms/accept, POST /api/rooms/reject - Answer the pending guest
//   - GET /api/games - Running games
//   - POST /api/games/solo - Play against a virtual player
//   - GET /api/games/{id} - Game state as the caller sees it
//   - POST /api/games/{id}/place, exchange, pass, chat, surrender - Turn actions
//   - GET /api/games/{id}/hints, reserve - Help commands
//
// Actions a player may not take right now answer 200 {"accepted": false};
// error statuses are reserved for bad requests and server failures.
package api
