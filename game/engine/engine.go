package engine

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"
)

// Game is the authoritative state of one match. It is not safe for
// concurrent use; the session directory serializes access.
type Game struct {
	ID          string
	Parameters  Parameters
	Type        SessionType
	Grid        *Grid
	Reserve     *Reserve
	Objectives  ObjectiveTracker
	IsGridEmpty bool
	PlacedWords []string

	StartedAt     time.Time
	TurnStartedAt time.Time

	seats       [2]*Player
	toMove      int
	status      Status
	duration    Duration
	sidebarFlip bool
	rng         *rand.Rand
	now         func() time.Time
}

// Option customizes a Game
type Option func(*Game)

// WithRand makes draws and the first-player coin flip reproducible
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) { g.rng = rng }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

// WithReserve replaces the full tile bag, mostly for tests
func WithReserve(r *Reserve) Option {
	return func(g *Game) { g.Reserve = r }
}

func newGame(id string, params Parameters, kind SessionType, opts []Option) *Game {
	g := &Game{
		ID:          id,
		Parameters:  params,
		Type:        kind,
		Grid:        NewGrid(),
		IsGridEmpty: true,
		status:      StatusAwaitingStart,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = NewRand()
	}
	if g.Reserve == nil {
		g.Reserve = NewReserve(g.rng)
	}
	return g
}

// NewMultiplayerGame deals both easels and flips a coin for the first turn
func NewMultiplayerGame(id string, params Parameters, host, guest Identity, opts ...Option) *Game {
	g := newGame(id, params, SessionMultiplayer, opts)
	g.seats[0] = NewHuman(host.ID, host.Name, g.Reserve.RemoveRandomLetters(EaselMaxSize))
	g.seats[1] = NewHuman(guest.ID, guest.Name, g.Reserve.RemoveRandomLetters(EaselMaxSize))
	g.toMove = g.rng.IntN(2)
	g.start()
	return g
}

// NewSoloGame seats a human against a virtual player; the human starts
func NewSoloGame(id string, params Parameters, host, virtual Identity, level Level, opts ...Option) *Game {
	g := newGame(id, params, SessionSolo, opts)
	g.seats[0] = NewHuman(host.ID, host.Name, g.Reserve.RemoveRandomLetters(EaselMaxSize))
	g.seats[1] = NewVirtual(virtual.ID, virtual.Name, level, g.Reserve.RemoveRandomLetters(EaselMaxSize))
	g.toMove = 0
	g.start()
	return g
}

func (g *Game) start() {
	g.StartedAt = g.now()
	g.TurnStartedAt = g.StartedAt
	g.status = StatusInProgress
}

// Status returns the lifecycle state
func (g *Game) Status() Status {
	return g.status
}

// IsEnded reports whether the game reached its terminal state
func (g *Game) IsEnded() bool {
	return g.status == StatusEnded
}

// CurrentPlayer is the seat to move
func (g *Game) CurrentPlayer() *Player {
	return g.seats[g.toMove]
}

// OtherPlayer is the seat waiting
func (g *Game) OtherPlayer() *Player {
	return g.seats[1-g.toMove]
}

// Players returns both seats in seat order
func (g *Game) Players() []*Player {
	return []*Player{g.seats[0], g.seats[1]}
}

// Player finds a seat by player id
func (g *Game) Player(id string) (*Player, bool) {
	for _, p := range g.seats {
		if p != nil && p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Opponent returns the seat facing id
func (g *Game) Opponent(id string) (*Player, bool) {
	for i, p := range g.seats {
		if p != nil && p.ID == id {
			return g.seats[1-i], true
		}
	}
	return nil, false
}

// IsTurnOf reports whether playerID may act now
func (g *Game) IsTurnOf(playerID string) bool {
	return g.status == StatusInProgress && g.CurrentPlayer().ID == playerID
}

// IsVirtualTurn reports whether the seat to move is computer controlled
func (g *Game) IsVirtualTurn() bool {
	return g.status == StatusInProgress && g.CurrentPlayer().IsVirtual()
}

// Place validates the placement with v and commits it. It returns false
// without touching the game when the caller may not play it. An error means
// the validator failed; the game is left unchanged.
func (g *Game) Place(ctx context.Context, v Validator, playerID string, p Placement) (bool, error) {
	if !g.IsTurnOf(playerID) {
		return false, nil
	}
	player := g.CurrentPlayer()
	required := p.RequiredSymbols()
	if len(required) == 0 || !player.Easel.Contains(required) {
		return false, nil
	}
	if _, ok := g.Grid.Lay(p); !ok {
		return false, nil
	}

	result, err := v.Validate(ctx, g.ID, g.Grid, p, g.IsGridEmpty)
	if err != nil {
		return false, fmt.Errorf("validate placement: %w", err)
	}
	if !result.Valid {
		return false, nil
	}

	if _, ok := g.Grid.Commit(p); !ok {
		return false, nil
	}
	player.Easel.Remove(required)
	player.AddScore(result.Score)
	g.IsGridEmpty = false

	previous := make([]string, len(g.PlacedWords))
	copy(previous, g.PlacedWords)
	g.PlacedWords = append(g.PlacedWords, result.Words...)

	if g.Objectives != nil {
		player.AddScore(g.Objectives.Evaluate(Turn{
			Player:        player,
			Words:         result.Words,
			PreviousWords: previous,
			Grid:          g.Grid,
			Elapsed:       g.now().Sub(g.TurnStartedAt),
		}))
	}

	player.Easel.Add(g.Reserve.RemoveRandomLetters(len(required)))

	if g.CheckForEmptyReserveAndEasel() {
		g.end()
		return true, nil
	}
	g.swap(false)
	return true, nil
}

// Exchange returns symbols to the reserve and draws as many back
func (g *Game) Exchange(playerID string, symbols []byte) bool {
	if !g.IsTurnOf(playerID) || len(symbols) == 0 {
		return false
	}
	if g.Reserve.Size() < ReserveMinSize {
		return false
	}
	player := g.CurrentPlayer()
	removed, ok := player.Easel.Remove(symbols)
	if !ok {
		return false
	}
	// draw before returning so the same tiles never come straight back
	player.Easel.Add(g.Reserve.RemoveRandomLetters(len(removed)))
	g.Reserve.AddLetters(removed)
	player.UsedExchange = true
	g.swap(false)
	return true
}

// Pass hands the turn over. Only a pass typed by the player counts toward
// the end-of-game pass threshold.
func (g *Game) Pass(playerID string, byCommand bool) bool {
	if !g.IsTurnOf(playerID) {
		return false
	}
	g.swap(byCommand)
	if g.CheckForEndAfterPasses() {
		g.end()
	}
	return true
}

// swap moves the turn to the other seat. The mover's pass counter grows on
// a commanded pass and resets otherwise.
func (g *Game) swap(byCommand bool) {
	mover := g.CurrentPlayer()
	if byCommand {
		mover.ConsecutivePasses++
	} else {
		mover.ConsecutivePasses = 0
	}
	g.toMove = 1 - g.toMove
	g.TurnStartedAt = g.now()
}

// CheckForEmptyReserveAndEasel applies the out bonus when the mover used
// their last tile with an empty reserve
func (g *Game) CheckForEmptyReserveAndEasel() bool {
	if !g.Reserve.IsEmpty() || !g.CurrentPlayer().Easel.IsEmpty() {
		return false
	}
	remaining := g.OtherPlayer().Easel.Score()
	g.CurrentPlayer().AddScore(remaining)
	g.OtherPlayer().RemoveScore(remaining)
	return true
}

// CheckForEndAfterPasses applies the hand penalty when both seats passed
// EndGamePassThreshold times in a row
func (g *Game) CheckForEndAfterPasses() bool {
	if g.seats[0].ConsecutivePasses < EndGamePassThreshold || g.seats[1].ConsecutivePasses < EndGamePassThreshold {
		return false
	}
	for _, p := range g.seats {
		p.RemoveScore(p.Easel.Score())
	}
	return true
}

// end moves the game to its terminal state and freezes its duration
func (g *Game) end() {
	if g.status == StatusEnded {
		return
	}
	g.status = StatusEnded
	elapsed := g.now().Sub(g.StartedAt)
	total := int(math.Ceil(elapsed.Seconds()))
	g.duration = Duration{Minutes: total / 60, Seconds: total % 60}
}

// Abort ends the game without any score adjustment
func (g *Game) Abort() {
	g.end()
}

// Duration is the elapsed time, set when the game ended
func (g *Game) Duration() Duration {
	return g.duration
}

// ReplaceWithVirtual gives the seat of playerID to a beginner virtual
// player that keeps the easel and score. The remaining human gets the turn
// and the game becomes solo.
func (g *Game) ReplaceWithVirtual(playerID string, virtual Identity) bool {
	if g.status != StatusInProgress || g.Type != SessionMultiplayer {
		return false
	}
	seat := -1
	for i, p := range g.seats {
		if p.ID == playerID {
			seat = i
		}
	}
	if seat < 0 {
		return false
	}
	departing := g.seats[seat]
	vp := &Player{
		ID:                virtual.ID,
		Name:              virtual.Name,
		Kind:              KindVirtual,
		Virtual:           &VirtualProfile{Level: LevelBeginner},
		Easel:             departing.Easel,
		Score:             departing.Score,
		ConsecutivePasses: departing.ConsecutivePasses,
		UsedExchange:      departing.UsedExchange,
		UsedHint:          departing.UsedHint,
	}
	g.seats[seat] = vp
	g.toMove = 1 - seat
	g.TurnStartedAt = g.now()
	g.Type = SessionSolo
	if g.Objectives != nil {
		g.Objectives.Reassign(playerID, virtual.ID)
	}
	return true
}

// Sidebar returns the scoreboard. The player order alternates on every
// call, starting with the current player.
func (g *Game) Sidebar() Sidebar {
	first, second := g.CurrentPlayer(), g.OtherPlayer()
	if g.sidebarFlip {
		first, second = second, first
	}
	g.sidebarFlip = !g.sidebarFlip
	return Sidebar{
		ReserveSize:     g.Reserve.Size(),
		CurrentPlayerID: g.CurrentPlayer().ID,
		Players: []SidebarPlayer{
			{ID: first.ID, Name: first.Name, Score: first.Score, EaselSize: first.Easel.Size()},
			{ID: second.ID, Name: second.Name, Score: second.Score, EaselSize: second.Easel.Size()},
		},
	}
}

// EndMessage summarises the leftover tiles
func (g *Game) EndMessage() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fin de partie - %d lettres restantes", g.Reserve.Size())
	for _, p := range []*Player{g.CurrentPlayer(), g.OtherPlayer()} {
		fmt.Fprintf(&b, "\n%s: %s", p.Name, p.Easel.String())
	}
	return b.String()
}

// Scores returns the final score lines, current player first
func (g *Game) Scores() []PlayerScore {
	cp, op := g.CurrentPlayer(), g.OtherPlayer()
	return []PlayerScore{
		{ID: cp.ID, Name: cp.Name, Score: cp.Score},
		{ID: op.ID, Name: op.Name, Score: op.Score},
	}
}

// Rand exposes the game's generator to the virtual player controller
func (g *Game) Rand() *rand.Rand {
	return g.rng
}

// Now returns the game's clock reading
func (g *Game) Now() time.Time {
	return g.now()
}
