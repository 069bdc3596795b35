// Package websocket provides the real-time transport of the game server.
//
// The Hub keeps one connection per player and the rooms players are joined
// to. It implements the service notifier: every event the game service
// emits is marshaled once and queued on the connections it addresses.
//
// Message Protocol:
//
// Every frame, in both directions, is a JSON envelope:
//
//	{"event": "game:place", "data": {"position": {"row": 7, "col": 7}, "axis": "h", "letters": "CHAT"}}
//
// On connect the server sends session:welcome with the player id and a
// signed token. Passing that token back as ?token= on a later connection
// resumes the same player and cancels a pending surrender.
//
// Usage:
//
//	hub := websocket.NewHub(tokens)
//	svc := service.NewGameService(service.Dependencies{Notifier: hub, ...})
//	websocket.NewDispatcher(hub, svc)
//	router.HandleFunc("/ws", hub.ServeWS)
//
// Connection Lifecycle:
//
// 1. Client connects, optionally with a token
// 2. Connection registered with the hub, replacing an older one
// 3. session:welcome sent to the client
// 4. Client sends events, the dispatcher calls the service
// 5. Disconnection starts the surrender grace period
package websocket
