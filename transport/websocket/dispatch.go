package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/scrabble-duel/game/engine"
	"github.com/wricardo/scrabble-duel/game/room"
	"github.com/wricardo/scrabble-duel/game/service"
)

// Inbound events
const (
	EventCreateRoom        = "room:create"
	EventDeleteRoom        = "room:delete"
	EventJoinRequest       = "room:join_request"
	EventCancelJoinRequest = "room:cancel_join_request"
	EventAccept            = "room:accept"
	EventReject            = "room:reject"
	EventAvailableRooms    = "room:available_rooms"
	EventCreateSolo        = "game:create_solo"
	EventPlace             = "game:place"
	EventExchange          = "game:exchange"
	EventPass              = "game:pass"
	EventHint              = "game:hint"
	EventSurrender         = "game:surrender"
	EventChat              = service.EventChatMessage

	// EventError reports a request that failed for a reason other than an
	// illegal move
	EventError = "error"
)

var (
	errNotPlaying = errors.New("not in a game")
	errNoName     = errors.New("a name is required")
)

// ErrorPayload is the payload of EventError
type ErrorPayload struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

type createRequest struct {
	Name       string            `json:"name"`
	Parameters engine.Parameters `json:"parameters"`
}

type joinRequest struct {
	RoomID string `json:"room_id"`
	Name   string `json:"name"`
}

type modeRequest struct {
	Mode engine.Mode `json:"mode"`
}

type exchangeRequest struct {
	Letters string `json:"letters"`
}

type chatRequest struct {
	Content string `json:"content"`
}

// Dispatcher turns inbound events into service calls
type Dispatcher struct {
	hub     *Hub
	service service.GameService
}

// NewDispatcher binds a dispatcher to hub
func NewDispatcher(hub *Hub, svc service.GameService) *Dispatcher {
	d := &Dispatcher{hub: hub, service: svc}
	hub.Bind(d)
	return d
}

// Disconnected starts the surrender grace period
func (d *Dispatcher) Disconnected(playerID string) {
	d.service.PlayerDisconnected(playerID)
}

// Reconnected cancels a pending surrender
func (d *Dispatcher) Reconnected(playerID string) {
	d.service.PlayerReconnected(playerID)
}

// Dispatch handles one inbound message. Refused actions produce no event.
func (d *Dispatcher) Dispatch(c *Client, msg Message) {
	ctx := context.Background()
	if err := d.handle(ctx, c, msg); err != nil {
		log.Debug().Err(err).Str("player_id", c.playerID).Str("event", msg.Event).Msg("request failed")
		d.hub.EmitToPlayer(c.playerID, EventError, ErrorPayload{Event: msg.Event, Message: err.Error()})
	}
}

func decode(msg Message, into any) error {
	if len(msg.Data) == 0 {
		return nil
	}
	return json.Unmarshal(msg.Data, into)
}

func (d *Dispatcher) identity(c *Client, name string) (engine.Identity, error) {
	c.setName(strings.TrimSpace(name))
	if c.Name() == "" {
		return engine.Identity{}, errNoName
	}
	return engine.Identity{ID: c.playerID, Name: c.Name()}, nil
}

func (d *Dispatcher) gameOf(c *Client) (string, error) {
	id, ok := d.service.GameOf(c.playerID)
	if !ok {
		return "", errNotPlaying
	}
	return id, nil
}

func (d *Dispatcher) handle(ctx context.Context, c *Client, msg Message) error {
	switch msg.Event {
	case EventCreateRoom:
		var req createRequest
		if err := decode(msg, &req); err != nil {
			return err
		}
		host, err := d.identity(c, req.Name)
		if err != nil {
			return err
		}
		_, err = d.service.CreateRoom(ctx, host, req.Parameters)
		return err

	case EventDeleteRoom:
		d.service.DeleteRoom(ctx, c.playerID)

	case EventJoinRequest:
		var req joinRequest
		if err := decode(msg, &req); err != nil {
			return err
		}
		guest, err := d.identity(c, req.Name)
		if err != nil {
			return err
		}
		d.service.JoinRequest(ctx, req.RoomID, guest)

	case EventCancelJoinRequest:
		var req joinRequest
		if err := decode(msg, &req); err != nil {
			return err
		}
		d.service.CancelJoinRequest(ctx, req.RoomID, c.playerID)

	case EventAccept:
		_, err := d.service.AcceptJoinRequest(ctx, c.playerID)
		return err

	case EventReject:
		d.service.RejectJoinRequest(ctx, c.playerID)

	case EventAvailableRooms:
		var req modeRequest
		if err := decode(msg, &req); err != nil {
			return err
		}
		if req.Mode == "" {
			req.Mode = engine.ModeClassic
		}
		d.hub.EmitToPlayer(c.playerID, room.EventAvailableRoomsUpdated, room.AvailableRooms{
			Mode:  req.Mode,
			Rooms: d.service.AvailableRooms(ctx, req.Mode),
		})

	case EventCreateSolo:
		var req createRequest
		if err := decode(msg, &req); err != nil {
			return err
		}
		host, err := d.identity(c, req.Name)
		if err != nil {
			return err
		}
		_, err = d.service.CreateSoloGame(ctx, host, req.Parameters)
		return err

	case EventPlace:
		var p engine.Placement
		if err := decode(msg, &p); err != nil {
			return err
		}
		gameID, err := d.gameOf(c)
		if err != nil {
			return err
		}
		_, err = d.service.Place(ctx, gameID, c.playerID, p)
		return err

	case EventExchange:
		var req exchangeRequest
		if err := decode(msg, &req); err != nil {
			return err
		}
		gameID, err := d.gameOf(c)
		if err != nil {
			return err
		}
		_, err = d.service.Exchange(ctx, gameID, c.playerID, req.Letters)
		return err

	case EventPass:
		gameID, err := d.gameOf(c)
		if err != nil {
			return err
		}
		_, err = d.service.Pass(ctx, gameID, c.playerID)
		return err

	case EventHint:
		gameID, err := d.gameOf(c)
		if err != nil {
			return err
		}
		return d.service.SendMessage(ctx, gameID, c.playerID, "!indice")

	case EventSurrender:
		gameID, err := d.gameOf(c)
		if err != nil {
			return err
		}
		d.service.Surrender(ctx, gameID, c.playerID)

	case EventChat:
		var req chatRequest
		if err := decode(msg, &req); err != nil {
			return err
		}
		gameID, err := d.gameOf(c)
		if err != nil {
			return err
		}
		return d.service.SendMessage(ctx, gameID, c.playerID, req.Content)

	default:
		log.Debug().Str("player_id", c.playerID).Str("event", msg.Event).Msg("unknown event")
	}
	return nil
}
