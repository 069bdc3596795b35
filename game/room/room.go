package room

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/scrabble-duel/game/engine"
)

// Events pushed to clients
const (
	EventJoinRequested         = "room:join_requested"
	EventJoinRequestRejected   = "room:join_request_rejected"
	EventJoinRequestCanceled   = "room:join_request_canceled"
	EventJoinRequestAborted    = "room:join_request_aborted"
	EventAvailableRoomsUpdated = "room:available_rooms_updated"
	EventGameStarted           = "room:game_started"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("host already has a room")
)

// Notifier delivers room events
type Notifier interface {
	EmitToPlayer(playerID, event string, data any)
	EmitToRoom(roomID, event string, data any)
	EmitToIdle(event string, data any)
	JoinRoom(roomID string, playerIDs ...string)
}

// Dictionaries reserves the dictionary a room will play with
type Dictionaries interface {
	Acquire(sessionID, dictionaryID string) error
	Release(sessionID, dictionaryID string)
	Title(dictionaryID string) string
}

// Room is a host waiting for an opponent
type Room struct {
	ID         string            `json:"id"`
	Host       engine.Identity   `json:"host"`
	Guest      *engine.Identity  `json:"guest,omitempty"`
	Parameters engine.Parameters `json:"parameters"`
	CreatedAt  time.Time         `json:"created_at"`
}

// IsFull reports whether a guest is pending
func (r Room) IsFull() bool {
	return r.Guest != nil
}

// Listing is the public view of an available room
type Listing struct {
	ID         string         `json:"id"`
	HostName   string         `json:"player_name"`
	Parameters ListingOptions `json:"parameters"`
}

// ListingOptions shows the dictionary by title
type ListingOptions struct {
	Dictionary   string      `json:"dictionary"`
	Mode         engine.Mode `json:"mode"`
	TimerSeconds int         `json:"timer"`
}

// AvailableRooms is the payload of EventAvailableRoomsUpdated
type AvailableRooms struct {
	Mode  engine.Mode `json:"mode"`
	Rooms []Listing   `json:"rooms"`
}

// GameStarted is the payload of EventGameStarted
type GameStarted struct {
	GameID       string `json:"game_id"`
	TimerSeconds int    `json:"timer"`
}

// Negotiator owns the waiting rooms
type Negotiator struct {
	mu           sync.Mutex
	rooms        map[string]*Room
	notifier     Notifier
	dictionaries Dictionaries
	now          func() time.Time
}

// NewNegotiator creates an empty negotiator
func NewNegotiator(notifier Notifier, dictionaries Dictionaries) *Negotiator {
	return &Negotiator{
		rooms:        make(map[string]*Room),
		notifier:     notifier,
		dictionaries: dictionaries,
		now:          time.Now,
	}
}

// Create opens a room for host. The parameters are validated and the
// dictionary is reserved under the room id.
func (n *Negotiator) Create(host engine.Identity, params engine.Parameters) (Room, error) {
	if err := engine.ValidateParameters(params); err != nil {
		return Room{}, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.rooms[host.ID]; exists {
		return Room{}, ErrRoomExists
	}
	if err := n.dictionaries.Acquire(host.ID, params.DictionaryID); err != nil {
		return Room{}, fmt.Errorf("reserve dictionary: %w", err)
	}

	r := &Room{ID: host.ID, Host: host, Parameters: params, CreatedAt: n.now()}
	n.rooms[r.ID] = r
	log.Info().Str("room_id", r.ID).Str("host", host.Name).Str("mode", string(params.Mode)).Msg("room created")

	n.broadcastLocked()
	return *r, nil
}

// Delete closes a room. A pending guest is told the request was rejected.
func (n *Negotiator) Delete(roomID string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	r, ok := n.rooms[roomID]
	if !ok {
		return false
	}
	if r.Guest != nil {
		n.notifier.EmitToPlayer(r.Guest.ID, EventJoinRequestRejected, nil)
	}
	n.dictionaries.Release(roomID, r.Parameters.DictionaryID)
	delete(n.rooms, roomID)
	log.Info().Str("room_id", roomID).Msg("room deleted")

	n.broadcastLocked()
	return true
}

// JoinRequest asks to join roomID. When the room is gone or already has a
// guest, the guest gets EventJoinRequestAborted and false is returned.
func (n *Negotiator) JoinRequest(roomID string, guest engine.Identity) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	r, ok := n.rooms[roomID]
	if !ok || r.IsFull() || guest.ID == r.Host.ID {
		n.notifier.EmitToPlayer(guest.ID, EventJoinRequestAborted, guest)
		n.broadcastLocked()
		return false
	}
	g := guest
	r.Guest = &g
	n.notifier.EmitToPlayer(r.Host.ID, EventJoinRequested, guest)
	n.broadcastLocked()
	return true
}

// CancelJoinRequest withdraws guestID's pending request on roomID
func (n *Negotiator) CancelJoinRequest(roomID, guestID string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	r, ok := n.rooms[roomID]
	if !ok || r.Guest == nil || r.Guest.ID != guestID {
		return false
	}
	r.Guest = nil
	n.notifier.EmitToPlayer(r.Host.ID, EventJoinRequestCanceled, nil)
	n.broadcastLocked()
	return true
}

// AcceptJoinRequest matches the host with the pending guest. The room is
// removed and returned so the caller can start the game; both players are
// joined to the room channel and told the game started.
func (n *Negotiator) AcceptJoinRequest(roomID string) (Room, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	r, ok := n.rooms[roomID]
	if !ok || !r.IsFull() {
		n.notifier.EmitToPlayer(roomID, EventJoinRequestCanceled, nil)
		return Room{}, false
	}
	delete(n.rooms, roomID)

	n.notifier.JoinRoom(roomID, r.Host.ID, r.Guest.ID)
	n.notifier.EmitToRoom(roomID, EventGameStarted, GameStarted{GameID: roomID, TimerSeconds: r.Parameters.TimerSeconds})
	log.Info().Str("room_id", roomID).Str("guest", r.Guest.Name).Msg("join request accepted")

	n.broadcastLocked()
	return *r, true
}

// RejectJoinRequest turns the pending guest away
func (n *Negotiator) RejectJoinRequest(roomID string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	r, ok := n.rooms[roomID]
	if !ok || r.Guest == nil {
		return false
	}
	n.notifier.EmitToPlayer(r.Guest.ID, EventJoinRequestRejected, nil)
	r.Guest = nil
	n.broadcastLocked()
	return true
}

// DropPlayer cleans up after a player who left or started a game: their
// room is deleted and every request they had pending is canceled
func (n *Negotiator) DropPlayer(playerID string) {
	n.Delete(playerID)

	n.mu.Lock()
	var pending []string
	for id, r := range n.rooms {
		if r.Guest != nil && r.Guest.ID == playerID {
			pending = append(pending, id)
		}
	}
	n.mu.Unlock()
	for _, id := range pending {
		n.CancelJoinRequest(id, playerID)
	}
}

// Get returns a copy of a room
func (n *Negotiator) Get(roomID string) (Room, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	r, ok := n.rooms[roomID]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	return *r, nil
}

// AvailableRooms lists the rooms of mode that have no pending guest, oldest first
func (n *Negotiator) AvailableRooms(mode engine.Mode) []Listing {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.availableLocked(mode)
}

func (n *Negotiator) availableLocked(mode engine.Mode) []Listing {
	open := make([]*Room, 0, len(n.rooms))
	for _, r := range n.rooms {
		if !r.IsFull() && r.Parameters.Mode == mode {
			open = append(open, r)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		if open[i].CreatedAt.Equal(open[j].CreatedAt) {
			return open[i].ID < open[j].ID
		}
		return open[i].CreatedAt.Before(open[j].CreatedAt)
	})

	listings := make([]Listing, 0, len(open))
	for _, r := range open {
		listings = append(listings, Listing{
			ID:       r.ID,
			HostName: r.Host.Name,
			Parameters: ListingOptions{
				Dictionary:   n.dictionaries.Title(r.Parameters.DictionaryID),
				Mode:         r.Parameters.Mode,
				TimerSeconds: r.Parameters.TimerSeconds,
			},
		})
	}
	return listings
}

// broadcastLocked pushes both mode listings to idle clients
func (n *Negotiator) broadcastLocked() {
	for _, mode := range []engine.Mode{engine.ModeClassic, engine.ModeLog2990} {
		n.notifier.EmitToIdle(EventAvailableRoomsUpdated, AvailableRooms{Mode: mode, Rooms: n.availableLocked(mode)})
	}
}
