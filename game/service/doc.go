// Package service is the business layer between the transports and the
// game engine.
//
// It owns the room negotiation, the directory of running games and the
// virtual player loop. Every action on a game runs with the game's session
// locked: the engine call, the client updates, the virtual player's answer
// and, when the game ends, the recording of scores and the release of the
// dictionary.
//
// Usage:
//
//	svc := service.NewGameService(service.Dependencies{
//		Sessions:     session.NewManager(),
//		Dictionaries: dictionaries,
//		Validator:    placement.NewValidator(dictionaries),
//		Generator:    placement.NewGenerator(dictionaries, placement.DefaultLimit),
//		Recorder:     store,
//		History:      store,
//		Notifier:     hub,
//	})
//
//	view, err := svc.CreateSoloGame(ctx, engine.Identity{ID: id, Name: "Alice"}, engine.Parameters{})
//	ok, err := svc.Place(ctx, view.ID, id, placement)
//
// Chat lines starting with '!' are commands (!placer, !échanger, !passer,
// !indice, !réserve); SendMessage parses and dispatches them.
package service
