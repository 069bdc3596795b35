package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wricardo/scrabble-duel/game/dictionary"
	"github.com/wricardo/scrabble-duel/game/engine"
	"github.com/wricardo/scrabble-duel/game/history"
	"github.com/wricardo/scrabble-duel/game/objectives"
	"github.com/wricardo/scrabble-duel/game/room"
	"github.com/wricardo/scrabble-duel/game/session"
	"github.com/wricardo/scrabble-duel/game/virtual"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultDisconnectGrace is how long a dropped player may take to come back
const DefaultDisconnectGrace = 5 * time.Second

var tracer = otel.Tracer("github.com/wricardo/scrabble-duel/game/service")

// Dependencies wires the service to its collaborators
type Dependencies struct {
	Sessions     *session.Manager
	Dictionaries Dictionaries
	Validator    engine.Validator
	Generator    engine.Generator
	Recorder     Recorder
	History      HistoryReader
	Notifier     Notifier

	DefaultDictionary string
	DisconnectGrace   time.Duration

	// GameOptions are applied to every new game; tests use them to fix
	// the random source and the clock
	GameOptions []engine.Option
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions     *session.Manager
	rooms        *room.Negotiator
	dictionaries Dictionaries
	validator    engine.Validator
	generator    engine.Generator
	controller   *virtual.Controller
	recorder     Recorder
	history      HistoryReader
	notifier     Notifier
	timers       *graceTimers

	defaultDictionary string
	grace             time.Duration
	gameOptions       []engine.Option
}

// NewGameService creates a new game service instance
func NewGameService(deps Dependencies) GameService {
	if deps.Sessions == nil {
		deps.Sessions = session.NewManager()
	}
	if deps.DisconnectGrace <= 0 {
		deps.DisconnectGrace = DefaultDisconnectGrace
	}
	if deps.DefaultDictionary == "" {
		deps.DefaultDictionary = dictionary.DefaultID
	}
	return &gameServiceImpl{
		sessions:          deps.Sessions,
		rooms:             room.NewNegotiator(deps.Notifier, deps.Dictionaries),
		dictionaries:      deps.Dictionaries,
		validator:         deps.Validator,
		generator:         deps.Generator,
		controller:        virtual.NewController(deps.Validator, deps.Generator),
		recorder:          deps.Recorder,
		history:           deps.History,
		notifier:          deps.Notifier,
		timers:            newGraceTimers(),
		defaultDictionary: deps.DefaultDictionary,
		grace:             deps.DisconnectGrace,
		gameOptions:       deps.GameOptions,
	}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "GameService."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// canHost reports why hostID may not open a game. Games and rooms are
// keyed by their host, so a surrendered host whose game goes on without
// them cannot open another one until it ends.
func (s *gameServiceImpl) canHost(hostID string) error {
	if _, playing := s.sessions.ForPlayer(hostID); playing {
		return ErrAlreadyPlaying
	}
	if _, open := s.sessions.Get(hostID); open {
		return ErrGameStillOpen
	}
	return nil
}

// withGame runs fn with the game locked. Unknown or closed games report
// false.
func (s *gameServiceImpl) withGame(gameID string, fn func(sess *session.Session) (bool, error)) (bool, error) {
	sess, ok := s.sessions.Get(gameID)
	if !ok {
		return false, nil
	}
	if err := sess.Lock(); err != nil {
		return false, nil
	}
	defer sess.Unlock()
	return fn(sess)
}

// Rooms

func (s *gameServiceImpl) CreateRoom(ctx context.Context, host engine.Identity, params engine.Parameters) (*room.Room, error) {
	_, span := startSpan(ctx, "CreateRoom", attribute.String("player.id", host.ID))
	var err error
	defer func() { endSpan(span, err) }()

	if err = s.canHost(host.ID); err != nil {
		return nil, err
	}
	params = params.WithDefaults(s.defaultDictionary)
	params.Level = ""
	r, err := s.rooms.Create(host, params)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *gameServiceImpl) DeleteRoom(ctx context.Context, hostID string) bool {
	return s.rooms.Delete(hostID)
}

func (s *gameServiceImpl) JoinRequest(ctx context.Context, roomID string, guest engine.Identity) bool {
	if _, playing := s.sessions.ForPlayer(guest.ID); playing {
		return false
	}
	return s.rooms.JoinRequest(roomID, guest)
}

func (s *gameServiceImpl) CancelJoinRequest(ctx context.Context, roomID, guestID string) bool {
	return s.rooms.CancelJoinRequest(roomID, guestID)
}

func (s *gameServiceImpl) RejectJoinRequest(ctx context.Context, hostID string) bool {
	return s.rooms.RejectJoinRequest(hostID)
}

func (s *gameServiceImpl) AvailableRooms(ctx context.Context, mode engine.Mode) []room.Listing {
	return s.rooms.AvailableRooms(mode)
}

// AcceptJoinRequest starts the multiplayer game of the host's room
func (s *gameServiceImpl) AcceptJoinRequest(ctx context.Context, hostID string) (bool, error) {
	_, span := startSpan(ctx, "AcceptJoinRequest", attribute.String("game.id", hostID))
	var err error
	defer func() { endSpan(span, err) }()

	if s.canHost(hostID) != nil {
		return false, nil
	}
	if pending, err := s.rooms.Get(hostID); err == nil && pending.Guest != nil {
		if _, playing := s.sessions.ForPlayer(pending.Guest.ID); playing {
			s.rooms.RejectJoinRequest(hostID)
			return false, nil
		}
	}
	r, ok := s.rooms.AcceptJoinRequest(hostID)
	if !ok {
		return false, nil
	}
	s.rooms.DropPlayer(r.Guest.ID)

	game := engine.NewMultiplayerGame(r.ID, r.Parameters, r.Host, *r.Guest, s.gameOptions...)
	s.attachObjectives(game)
	sess, err := s.sessions.Insert(game)
	if err != nil {
		if !errors.Is(err, session.ErrSessionAlreadyExists) {
			s.dictionaries.Release(r.ID, r.Parameters.DictionaryID)
		}
		if errors.Is(err, session.ErrPlayerSeated) {
			err = ErrAlreadyPlaying
			return false, err
		}
		return false, fmt.Errorf("register game: %w", err)
	}

	if err := sess.Lock(); err != nil {
		return false, nil
	}
	defer sess.Unlock()
	log.Info().Str("game_id", game.ID).Str("host", r.Host.Name).Str("guest", r.Guest.Name).
		Str("first", game.CurrentPlayer().Name).Msg("multiplayer game started")
	s.updateObjectives(game)
	s.updateClient(game)
	return true, nil
}

// Games

// CreateSoloGame seats host against a virtual player of params.Level
func (s *gameServiceImpl) CreateSoloGame(ctx context.Context, host engine.Identity, params engine.Parameters) (*GameView, error) {
	_, span := startSpan(ctx, "CreateSoloGame", attribute.String("player.id", host.ID))
	var err error
	defer func() { endSpan(span, err) }()

	if err = s.canHost(host.ID); err != nil {
		return nil, err
	}
	params = params.WithDefaults(s.defaultDictionary)
	if err = engine.ValidateParameters(params); err != nil {
		return nil, err
	}
	s.rooms.DropPlayer(host.ID)
	if err = s.dictionaries.Acquire(host.ID, params.DictionaryID); err != nil {
		return nil, fmt.Errorf("reserve dictionary: %w", err)
	}

	vp := virtual.NewIdentity(engine.NewRand(), params.Level, host.Name)
	game := engine.NewSoloGame(host.ID, params, host, vp, params.Level, s.gameOptions...)
	s.attachObjectives(game)
	sess, err := s.sessions.Insert(game)
	if err != nil {
		if !errors.Is(err, session.ErrSessionAlreadyExists) {
			s.dictionaries.Release(host.ID, params.DictionaryID)
		}
		if errors.Is(err, session.ErrPlayerSeated) {
			err = ErrAlreadyPlaying
			return nil, err
		}
		return nil, fmt.Errorf("register game: %w", err)
	}

	if err = sess.Lock(); err != nil {
		return nil, err
	}
	defer sess.Unlock()
	s.notifier.JoinRoom(game.ID, host.ID)
	s.notifier.EmitToRoom(game.ID, room.EventGameStarted, room.GameStarted{GameID: game.ID, TimerSeconds: params.TimerSeconds})
	log.Info().Str("game_id", game.ID).Str("host", host.Name).Str("virtual", vp.Name).
		Str("level", string(params.Level)).Msg("solo game started")
	s.updateObjectives(game)
	s.updateClient(game)
	return s.view(game, host.ID), nil
}

func (s *gameServiceImpl) attachObjectives(game *engine.Game) {
	if game.Parameters.Mode != engine.ModeLog2990 {
		return
	}
	ids := make([]string, 0, 2)
	for _, p := range game.Players() {
		ids = append(ids, p.ID)
	}
	game.Objectives = objectives.NewTracker(objectives.Draw(game.Rand()), ids)
}

// GameState returns the game as playerID sees it
func (s *gameServiceImpl) GameState(ctx context.Context, gameID, playerID string) (*GameView, error) {
	var view *GameView
	found, _ := s.withGame(gameID, func(sess *session.Session) (bool, error) {
		view = s.view(sess.Game, playerID)
		return true, nil
	})
	if !found {
		return nil, ErrGameNotFound
	}
	return view, nil
}

// GameOf returns the game playerID is seated in
func (s *gameServiceImpl) GameOf(playerID string) (string, bool) {
	sess, ok := s.sessions.ForPlayer(playerID)
	if !ok {
		return "", false
	}
	return sess.ID, true
}

func (s *gameServiceImpl) ListGames(ctx context.Context) []GameSummary {
	summaries := []GameSummary{}
	for _, sess := range s.sessions.List() {
		if err := sess.Lock(); err != nil {
			continue
		}
		summaries = append(summaries, GameSummary{
			ID:        sess.ID,
			Type:      sess.Game.Type,
			Mode:      sess.Game.Parameters.Mode,
			Players:   playerViews(sess.Game),
			CreatedAt: sess.CreatedAt,
		})
		sess.Unlock()
	}
	return summaries
}

// Turn actions

// Place lays a placement for playerID
func (s *gameServiceImpl) Place(ctx context.Context, gameID, playerID string, p engine.Placement) (bool, error) {
	ctx, span := startSpan(ctx, "Place", attribute.String("game.id", gameID), attribute.String("player.id", playerID))
	var err error
	defer func() { endSpan(span, err) }()

	var ok bool
	ok, err = s.withGame(gameID, func(sess *session.Session) (bool, error) {
		game := sess.Game
		placed, err := game.Place(ctx, s.validator, playerID, p)
		if err != nil {
			log.Warn().Err(err).Str("game_id", gameID).Msg("placement validation failed")
			return false, err
		}
		if !placed {
			log.Debug().Str("game_id", gameID).Str("player_id", playerID).Str("placement", p.Notation()).Msg("placement refused")
			return false, nil
		}
		s.updateObjectives(game)
		s.afterAction(ctx, game)
		return true, nil
	})
	return ok, err
}

// Exchange trades letters from playerID's easel
func (s *gameServiceImpl) Exchange(ctx context.Context, gameID, playerID, letters string) (bool, error) {
	ctx, span := startSpan(ctx, "Exchange", attribute.String("game.id", gameID), attribute.String("player.id", playerID))
	defer span.End()

	return s.withGame(gameID, func(sess *session.Session) (bool, error) {
		if !sess.Game.Exchange(playerID, []byte(strings.ToUpper(letters))) {
			log.Debug().Str("game_id", gameID).Str("player_id", playerID).Msg("exchange refused")
			return false, nil
		}
		s.afterAction(ctx, sess.Game)
		return true, nil
	})
}

// Pass ends playerID's turn
func (s *gameServiceImpl) Pass(ctx context.Context, gameID, playerID string) (bool, error) {
	ctx, span := startSpan(ctx, "Pass", attribute.String("game.id", gameID), attribute.String("player.id", playerID))
	defer span.End()

	return s.withGame(gameID, func(sess *session.Session) (bool, error) {
		if !sess.Game.Pass(playerID, true) {
			return false, nil
		}
		s.afterAction(ctx, sess.Game)
		return true, nil
	})
}

// afterAction notifies the players, then either closes the game or lets
// the virtual player answer
func (s *gameServiceImpl) afterAction(ctx context.Context, game *engine.Game) {
	s.updateClient(game)
	if game.IsEnded() {
		s.handleEnd(ctx, game)
		return
	}
	s.runVirtualPlayer(ctx, game)
}

// runVirtualPlayer plays while the virtual player is to move. Called with
// the session locked.
func (s *gameServiceImpl) runVirtualPlayer(ctx context.Context, game *engine.Game) {
	for game.IsVirtualTurn() {
		res, err := s.controller.Play(ctx, game)
		if err != nil {
			log.Warn().Err(err).Str("game_id", game.ID).Msg("virtual player fell back to a pass")
		}
		if res.MoverMessage == res.RoomMessage {
			s.notifier.EmitToRoom(game.ID, EventChatMessage, ChatMessage{GameID: game.ID, PlayerID: res.PlayerID, PlayerName: res.PlayerName, Content: res.RoomMessage})
		} else {
			s.notifier.EmitToPlayer(res.PlayerID, EventChatMessage, ChatMessage{GameID: game.ID, PlayerID: res.PlayerID, PlayerName: res.PlayerName, Content: res.MoverMessage})
			s.notifier.EmitToRoomExcept(game.ID, res.PlayerID, EventChatMessage, ChatMessage{GameID: game.ID, PlayerID: res.PlayerID, PlayerName: res.PlayerName, Content: res.RoomMessage})
		}
		if res.Action == virtual.ActionPlace {
			s.updateObjectives(game)
		}
		s.updateClient(game)
		if game.IsEnded() {
			s.handleEnd(ctx, game)
			return
		}
	}
}

// Hints suggests up to HintsLimit placements as chat commands
func (s *gameServiceImpl) Hints(ctx context.Context, gameID, playerID string) ([]string, error) {
	ctx, span := startSpan(ctx, "Hints", attribute.String("game.id", gameID), attribute.String("player.id", playerID))
	var err error
	defer func() { endSpan(span, err) }()

	var hints []string
	_, err = s.withGame(gameID, func(sess *session.Session) (bool, error) {
		game := sess.Game
		if !game.IsTurnOf(playerID) {
			return false, nil
		}
		player := game.CurrentPlayer()
		placements, err := s.generator.Generate(ctx, gameID, engine.GenerateRequest{
			Grid:        game.Grid,
			Easel:       player.Easel.String(),
			IsGridEmpty: game.IsGridEmpty,
		})
		if err != nil {
			return false, fmt.Errorf("generate hints: %w", err)
		}
		player.UsedHint = true
		hints = []string{}
		for _, p := range placements {
			if len(hints) == HintsLimit {
				break
			}
			hints = append(hints, virtual.CommandPlace+" "+p.Notation())
		}
		return true, nil
	})
	return hints, err
}

// Reserve lists what is left in the bag
func (s *gameServiceImpl) Reserve(ctx context.Context, gameID string) (string, error) {
	var content string
	found, _ := s.withGame(gameID, func(sess *session.Session) (bool, error) {
		content = sess.Game.Reserve.FormattedContent()
		return true, nil
	})
	if !found {
		return "", ErrGameNotFound
	}
	return content, nil
}

// SendMessage handles a chat line: commands become game actions and
// anything else is relayed to the room
func (s *gameServiceImpl) SendMessage(ctx context.Context, gameID, playerID, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	name, seated := s.playerName(gameID, playerID)
	if !seated {
		return ErrGameNotFound
	}
	from := ChatMessage{GameID: gameID, PlayerID: playerID, PlayerName: name}

	if !IsCommand(content) {
		from.Content = content
		s.notifier.EmitToRoom(gameID, EventChatMessage, from)
		return nil
	}

	cmd, err := ParseCommand(content)
	if err != nil {
		s.serverMessage(playerID, gameID, fmt.Sprintf("%s: %v", InvalidCommand, err))
		return nil
	}

	var ok bool
	switch cmd.Kind {
	case CommandHint:
		hints, err := s.Hints(ctx, gameID, playerID)
		if err != nil {
			return err
		}
		switch {
		case hints == nil:
			s.serverMessage(playerID, gameID, ImpossibleCommand)
		case len(hints) == 0:
			s.serverMessage(playerID, gameID, NoHints)
		default:
			s.serverMessage(playerID, gameID, strings.Join(hints, "\n"))
		}
		return nil

	case CommandReserve:
		reserve, err := s.Reserve(ctx, gameID)
		if err != nil {
			return err
		}
		s.serverMessage(playerID, gameID, reserve)
		return nil

	case CommandPlace:
		from.Content = content
		s.notifier.EmitToRoom(gameID, EventChatMessage, from)
		ok, err = s.Place(ctx, gameID, playerID, cmd.Placement)

	case CommandExchange:
		from.Content = fmt.Sprintf("%s %s", virtual.CommandExchange, cmd.Letters)
		s.notifier.EmitToPlayer(playerID, EventChatMessage, from)
		from.Content = fmt.Sprintf("%s %d", virtual.CommandExchange, len(cmd.Letters))
		s.notifier.EmitToRoomExcept(gameID, playerID, EventChatMessage, from)
		ok, err = s.Exchange(ctx, gameID, playerID, cmd.Letters)

	case CommandPass:
		from.Content = virtual.CommandPass
		s.notifier.EmitToRoom(gameID, EventChatMessage, from)
		ok, err = s.Pass(ctx, gameID, playerID)
	}
	if err != nil {
		return err
	}
	if !ok {
		s.serverMessage(playerID, gameID, ImpossibleCommand)
	}
	return nil
}

func (s *gameServiceImpl) playerName(gameID, playerID string) (string, bool) {
	var name string
	found, _ := s.withGame(gameID, func(sess *session.Session) (bool, error) {
		p, ok := sess.Game.Player(playerID)
		if ok {
			name = p.Name
		}
		return ok, nil
	})
	return name, found
}

func (s *gameServiceImpl) serverMessage(playerID, gameID, content string) {
	s.notifier.EmitToPlayer(playerID, EventChatMessage, ChatMessage{GameID: gameID, PlayerID: ServerID, PlayerName: ServerName, Content: content})
}

// Presence

// Surrender removes playerID from the game. In a multiplayer game a
// beginner virtual player takes the seat; a solo game is closed.
func (s *gameServiceImpl) Surrender(ctx context.Context, gameID, playerID string) bool {
	ctx, span := startSpan(ctx, "Surrender", attribute.String("game.id", gameID), attribute.String("player.id", playerID))
	defer span.End()

	s.timers.cancel(playerID)
	ok, _ := s.withGame(gameID, func(sess *session.Session) (bool, error) {
		game := sess.Game
		player, seated := game.Player(playerID)
		if !seated || player.IsVirtual() {
			return false, nil
		}

		if game.Type == engine.SessionMultiplayer && !game.IsEnded() {
			opponent, _ := game.Opponent(playerID)
			vp := virtual.NewIdentity(game.Rand(), engine.LevelBeginner, opponent.Name)
			if !game.ReplaceWithVirtual(playerID, vp) {
				return false, nil
			}
			s.sessions.Reseat(game.ID, playerID, vp.ID)
			s.notifier.LeaveRoom(game.ID, playerID)
			log.Info().Str("game_id", game.ID).Str("player", player.Name).Str("virtual", vp.Name).Msg("player surrendered, virtual player took the seat")

			s.updateClient(game)
			s.updateObjectives(game)
			s.notifier.EmitToRoomExcept(game.ID, playerID, EventChatMessage, ChatMessage{
				GameID: game.ID, PlayerID: ServerID, PlayerName: ServerName, Content: SurrenderMessage,
			})
			s.runVirtualPlayer(ctx, game)
			return true, nil
		}

		game.Abort()
		s.closeGame(game)
		log.Info().Str("game_id", game.ID).Str("player", player.Name).Msg("solo game abandoned")
		return true, nil
	})
	return ok
}

// PlayerDisconnected deletes the player's room and arms the surrender timer
// of the game they sit in
func (s *gameServiceImpl) PlayerDisconnected(playerID string) {
	s.rooms.DropPlayer(playerID)

	gameID, ok := s.GameOf(playerID)
	if !ok {
		return
	}
	log.Info().Str("game_id", gameID).Str("player_id", playerID).Dur("grace", s.grace).Msg("player disconnected")
	s.timers.arm(playerID, s.grace, func() {
		s.Surrender(context.Background(), gameID, playerID)
	})
}

// PlayerReconnected cancels a pending surrender
func (s *gameServiceImpl) PlayerReconnected(playerID string) {
	if s.timers.cancel(playerID) {
		log.Info().Str("player_id", playerID).Msg("player reconnected in time")
	}
	gameID, ok := s.GameOf(playerID)
	if !ok {
		return
	}
	s.notifier.JoinRoom(gameID, playerID)
	s.withGame(gameID, func(sess *session.Session) (bool, error) {
		s.updateObjectives(sess.Game)
		s.updateClient(sess.Game)
		return true, nil
	})
}

// End of game

// handleEnd announces the result, records it and closes the game. Called
// with the session locked.
func (s *gameServiceImpl) handleEnd(ctx context.Context, game *engine.Game) {
	s.notifier.EmitToRoom(game.ID, EventChatMessage, ChatMessage{
		GameID: game.ID, PlayerID: ServerID, PlayerName: ServerName, Content: game.EndMessage(),
	})
	scores := game.Scores()
	s.notifier.EmitToRoom(game.ID, EventGameEnded, scores)

	now := game.Now()
	for _, p := range []*engine.Player{game.CurrentPlayer(), game.OtherPlayer()} {
		if p.IsVirtual() {
			continue
		}
		err := s.recorder.RecordHighScore(ctx, history.HighScore{Mode: game.Parameters.Mode, Name: p.Name, Score: p.Score, RecordedAt: now})
		if err != nil {
			log.Warn().Err(err).Str("game_id", game.ID).Str("player", p.Name).Msg("failed to record high score")
		}
	}
	record := history.GameRecord{
		ID:         uuid.NewString(),
		GameID:     game.ID,
		Mode:       game.Parameters.Mode,
		Type:       game.Type,
		Dictionary: game.Parameters.DictionaryID,
		StartedAt:  game.StartedAt,
		Duration:   game.Duration(),
		Players:    scores,
	}
	if err := s.recorder.RecordCompletedGame(ctx, record); err != nil {
		log.Warn().Err(err).Str("game_id", game.ID).Msg("failed to record game")
	}

	s.closeGame(game)
	log.Info().Str("game_id", game.ID).Int("score_1", scores[0].Score).Int("score_2", scores[1].Score).
		Int("minutes", record.Duration.Minutes).Int("seconds", record.Duration.Seconds).Msg("game ended")
}

// closeGame frees the dictionary and removes the game from the directory
func (s *gameServiceImpl) closeGame(game *engine.Game) {
	ids := make([]string, 0, 2)
	for _, p := range game.Players() {
		if !p.IsVirtual() {
			ids = append(ids, p.ID)
			s.timers.cancel(p.ID)
		}
	}
	s.dictionaries.Release(game.ID, game.Parameters.DictionaryID)
	if _, err := s.sessions.Remove(game.ID); err != nil {
		log.Warn().Err(err).Str("game_id", game.ID).Msg("game already removed")
	}
	s.notifier.LeaveRoom(game.ID, ids...)
}

// Notifications

// updateClient pushes the board, each easel and the sidebar
func (s *gameServiceImpl) updateClient(game *engine.Game) {
	s.notifier.EmitToRoom(game.ID, EventGridUpdated, game.Grid)
	for _, p := range game.Players() {
		if !p.IsVirtual() {
			s.notifier.EmitToPlayer(p.ID, EventEaselUpdated, p.Easel.Letters())
		}
	}
	s.notifier.EmitToRoom(game.ID, EventSidebarUpdated, game.Sidebar())
}

// updateObjectives pushes the public objectives to the room and each
// private objective to its owner
func (s *gameServiceImpl) updateObjectives(game *engine.Game) {
	tracker, ok := game.Objectives.(*objectives.Tracker)
	if !ok {
		return
	}
	s.notifier.EmitToRoom(game.ID, EventPublicObjectivesUpdated, tracker.Public())
	for _, p := range game.Players() {
		if p.IsVirtual() {
			continue
		}
		if obj, ok := tracker.PrivateFor(p.ID); ok {
			s.notifier.EmitToPlayer(p.ID, EventPrivateObjectiveUpdated, obj)
		}
	}
}

func (s *gameServiceImpl) view(game *engine.Game, playerID string) *GameView {
	v := &GameView{
		ID:              game.ID,
		Type:            game.Type,
		Mode:            game.Parameters.Mode,
		Status:          game.Status(),
		TimerSeconds:    game.Parameters.TimerSeconds,
		Dictionary:      s.dictionaries.Title(game.Parameters.DictionaryID),
		Grid:            game.Grid.Clone(),
		ReserveSize:     game.Reserve.Size(),
		CurrentPlayerID: game.CurrentPlayer().ID,
		YourTurn:        game.IsTurnOf(playerID),
		Players:         playerViews(game),
		TurnStartedAt:   game.TurnStartedAt,
	}
	if p, ok := game.Player(playerID); ok {
		v.Easel = p.Easel.Letters()
	}
	if tracker, ok := game.Objectives.(*objectives.Tracker); ok {
		v.Objectives = tracker.Public()
		if obj, ok := tracker.PrivateFor(playerID); ok {
			v.Objectives = append(v.Objectives, obj)
		}
	}
	return v
}

func playerViews(game *engine.Game) []PlayerView {
	views := make([]PlayerView, 0, 2)
	for _, p := range game.Players() {
		views = append(views, PlayerView{ID: p.ID, Name: p.Name, Score: p.Score, EaselSize: p.Easel.Size(), Virtual: p.IsVirtual()})
	}
	return views
}

// History and catalogue

func (s *gameServiceImpl) RecentGames(ctx context.Context, limit int) ([]history.GameRecord, error) {
	ctx, span := startSpan(ctx, "RecentGames")
	records, err := s.history.RecentGames(ctx, limit)
	endSpan(span, err)
	return records, err
}

func (s *gameServiceImpl) BestScores(ctx context.Context, mode engine.Mode) ([]history.BestScore, error) {
	ctx, span := startSpan(ctx, "BestScores", attribute.String("game.mode", string(mode)))
	scores, err := s.history.BestScores(ctx, mode)
	endSpan(span, err)
	return scores, err
}

func (s *gameServiceImpl) ListDictionaries(ctx context.Context) ([]dictionary.Info, error) {
	return s.dictionaries.List()
}
