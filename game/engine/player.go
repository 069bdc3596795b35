package engine

// PlayerKind tags the Player variant
type PlayerKind string

const (
	KindHuman   PlayerKind = "human"
	KindVirtual PlayerKind = "virtual"
)

// VirtualProfile carries what only a virtual player has
type VirtualProfile struct {
	Level Level `json:"level"`
}

// Player is a seat in a game. Virtual is set only for KindVirtual.
type Player struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Kind              PlayerKind      `json:"kind"`
	Virtual           *VirtualProfile `json:"virtual,omitempty"`
	Easel             *Easel          `json:"-"`
	Score             int             `json:"score"`
	ConsecutivePasses int             `json:"consecutive_passes"`
	UsedExchange      bool            `json:"used_exchange"`
	UsedHint          bool            `json:"used_hint"`
}

// NewHuman creates a human seat
func NewHuman(id, name string, letters []Letter) *Player {
	return &Player{ID: id, Name: name, Kind: KindHuman, Easel: NewEasel(letters)}
}

// NewVirtual creates a virtual player seat
func NewVirtual(id, name string, level Level, letters []Letter) *Player {
	return &Player{
		ID:      id,
		Name:    name,
		Kind:    KindVirtual,
		Virtual: &VirtualProfile{Level: level},
		Easel:   NewEasel(letters),
	}
}

// IsVirtual reports whether the seat is computer controlled
func (p *Player) IsVirtual() bool {
	return p.Kind == KindVirtual && p.Virtual != nil
}

// AddScore adds points to the seat
func (p *Player) AddScore(points int) {
	p.Score += points
}

// RemoveScore takes points off the seat; the score never drops below zero
func (p *Player) RemoveScore(points int) {
	p.Score -= points
	if p.Score < 0 {
		p.Score = 0
	}
}
