package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/scrabble-duel/game/dictionary"
	"github.com/wricardo/scrabble-duel/game/engine"
	"github.com/wricardo/scrabble-duel/game/history"
	"github.com/wricardo/scrabble-duel/game/objectives"
)

type emitted struct {
	target string
	except string
	event  string
	data   any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []emitted
	joined map[string][]string
	left   map[string][]string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{joined: make(map[string][]string), left: make(map[string][]string)}
}

func (r *recordingNotifier) record(e emitted) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingNotifier) EmitToPlayer(playerID, event string, data any) {
	r.record(emitted{target: "player:" + playerID, event: event, data: data})
}

func (r *recordingNotifier) EmitToRoom(roomID, event string, data any) {
	r.record(emitted{target: "room:" + roomID, event: event, data: data})
}

func (r *recordingNotifier) EmitToRoomExcept(roomID, exceptPlayerID, event string, data any) {
	r.record(emitted{target: "room:" + roomID, except: exceptPlayerID, event: event, data: data})
}

func (r *recordingNotifier) EmitToIdle(event string, data any) {
	r.record(emitted{target: "idle", event: event, data: data})
}

func (r *recordingNotifier) JoinRoom(roomID string, playerIDs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joined[roomID] = append(r.joined[roomID], playerIDs...)
}

func (r *recordingNotifier) LeaveRoom(roomID string, playerIDs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.left[roomID] = append(r.left[roomID], playerIDs...)
}

func (r *recordingNotifier) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// find returns the events sent to target with the given name
func (r *recordingNotifier) find(target, event string) []emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []emitted
	for _, e := range r.events {
		if e.target == target && e.event == event {
			out = append(out, e)
		}
	}
	return out
}

func (r *recordingNotifier) chats(target string) []ChatMessage {
	var out []ChatMessage
	for _, e := range r.find(target, EventChatMessage) {
		out = append(out, e.data.(ChatMessage))
	}
	return out
}

func (r *recordingNotifier) hasLeft(roomID, playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.left[roomID] {
		if id == playerID {
			return true
		}
	}
	return false
}

type fakeDictionaries struct {
	mu       sync.Mutex
	acquired map[string]string
}

func newFakeDictionaries() *fakeDictionaries {
	return &fakeDictionaries{acquired: make(map[string]string)}
}

func (f *fakeDictionaries) Acquire(sessionID, dictionaryID string) error {
	if dictionaryID != dictionary.DefaultID {
		return dictionary.ErrDictionaryNotFound
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquired[sessionID] = dictionaryID
	return nil
}

func (f *fakeDictionaries) Release(sessionID, dictionaryID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.acquired, sessionID)
}

func (f *fakeDictionaries) held(sessionID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.acquired[sessionID]
	return ok
}

func (f *fakeDictionaries) Title(dictionaryID string) string {
	return "Mon dictionnaire"
}

func (f *fakeDictionaries) List() ([]dictionary.Info, error) {
	return []dictionary.Info{{ID: dictionary.DefaultID, Title: "Mon dictionnaire"}}, nil
}

type fakeRecorder struct {
	mu     sync.Mutex
	games  []history.GameRecord
	scores []history.HighScore
}

func (f *fakeRecorder) RecordCompletedGame(ctx context.Context, record history.GameRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games = append(f.games, record)
	return nil
}

func (f *fakeRecorder) RecordHighScore(ctx context.Context, score history.HighScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores = append(f.scores, score)
	return nil
}

func (f *fakeRecorder) RecentGames(ctx context.Context, limit int) ([]history.GameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.games, nil
}

func (f *fakeRecorder) BestScores(ctx context.Context, mode engine.Mode) ([]history.BestScore, error) {
	return []history.BestScore{{Score: 42, Names: []string{"Alice"}}}, nil
}

type stubValidator struct {
	valid bool
	err   error
}

func (s *stubValidator) Validate(ctx context.Context, sessionID string, grid *engine.Grid, p engine.Placement, isGridEmpty bool) (engine.PlacementResult, error) {
	return engine.PlacementResult{Valid: s.valid, Score: 10, Words: []string{strings.ToUpper(p.Letters)}}, s.err
}

type stubGenerator struct {
	placements []engine.Placement
}

func (s *stubGenerator) Generate(ctx context.Context, sessionID string, req engine.GenerateRequest) ([]engine.Placement, error) {
	return s.placements, nil
}

type fixture struct {
	svc          GameService
	notifier     *recordingNotifier
	dictionaries *fakeDictionaries
	recorder     *fakeRecorder
	validator    *stubValidator
	generator    *stubGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		notifier:     newRecordingNotifier(),
		dictionaries: newFakeDictionaries(),
		recorder:     &fakeRecorder{},
		validator:    &stubValidator{valid: true},
		generator:    &stubGenerator{},
	}
	f.svc = NewGameService(Dependencies{
		Dictionaries:    f.dictionaries,
		Validator:       f.validator,
		Generator:       f.generator,
		Recorder:        f.recorder,
		History:         f.recorder,
		Notifier:        f.notifier,
		DisconnectGrace: 20 * time.Millisecond,
		GameOptions:     []engine.Option{engine.WithRand(rand.New(rand.NewPCG(7, 11)))},
	})
	return f
}

var (
	alice = engine.Identity{ID: "alice", Name: "Alice"}
	bob   = engine.Identity{ID: "bob", Name: "Bob"}
)

func classic() engine.Parameters {
	return engine.Parameters{TimerSeconds: 60, DictionaryID: dictionary.DefaultID, Mode: engine.ModeClassic}
}

// startMultiplayer seats alice and bob and returns the player to move first
// and the other one
func startMultiplayer(t *testing.T, f *fixture, params engine.Parameters) (string, string) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.svc.CreateRoom(ctx, alice, params); err != nil {
		t.Fatalf("Failed to create room: %v", err)
	}
	if !f.svc.JoinRequest(ctx, alice.ID, bob) {
		t.Fatal("Join request refused")
	}
	started, err := f.svc.AcceptJoinRequest(ctx, alice.ID)
	if err != nil || !started {
		t.Fatalf("Failed to start game: %v", err)
	}
	view, err := f.svc.GameState(ctx, alice.ID, alice.ID)
	if err != nil {
		t.Fatalf("Failed to read game: %v", err)
	}
	if view.CurrentPlayerID == alice.ID {
		return alice.ID, bob.ID
	}
	return bob.ID, alice.ID
}

// easelPlacement lays the whole easel from the center square
func easelPlacement(easel []engine.Letter) engine.Placement {
	var b strings.Builder
	for _, l := range easel {
		if l.Symbol == engine.Wildcard {
			b.WriteByte('e')
			continue
		}
		b.WriteByte(l.Symbol)
	}
	return engine.Placement{Position: engine.Center, Axis: engine.Horizontal, Letters: b.String()}
}

func TestCreateSoloGame(t *testing.T) {
	ctx := context.Background()

	t.Run("seats the host against a virtual player", func(t *testing.T) {
		f := newFixture(t)
		view, err := f.svc.CreateSoloGame(ctx, alice, engine.Parameters{Level: engine.LevelExpert})
		if err != nil {
			t.Fatalf("Failed to create game: %v", err)
		}
		if view.Type != engine.SessionSolo || !view.YourTurn {
			t.Errorf("Expected a solo game with the host to move, got %+v", view)
		}
		if len(view.Easel) != engine.EaselMaxSize {
			t.Errorf("Expected %d letters, got %d", engine.EaselMaxSize, len(view.Easel))
		}
		if view.TimerSeconds != engine.DefaultTimerSeconds || view.Dictionary != "Mon dictionnaire" {
			t.Errorf("Expected defaults to be applied, got %+v", view)
		}
		virtuals := 0
		for _, p := range view.Players {
			if p.Virtual {
				virtuals++
				if p.Name == alice.Name {
					t.Error("Virtual player took the host's name")
				}
			}
		}
		if virtuals != 1 {
			t.Errorf("Expected one virtual player, got %d", virtuals)
		}
		if !f.dictionaries.held(alice.ID) {
			t.Error("Expected the dictionary to be reserved")
		}
		if len(f.notifier.find("room:"+alice.ID, EventGridUpdated)) != 1 {
			t.Error("Expected the grid to be sent")
		}
		if len(f.notifier.find("player:"+alice.ID, EventEaselUpdated)) != 1 {
			t.Error("Expected the easel to be sent")
		}
		if gameID, ok := f.svc.GameOf(alice.ID); !ok || gameID != view.ID {
			t.Errorf("Expected alice seated in %s, got %q", view.ID, gameID)
		}
	})

	t.Run("refuses a second game", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.CreateSoloGame(ctx, alice, classic()); err != nil {
			t.Fatalf("Failed to create game: %v", err)
		}
		if _, err := f.svc.CreateSoloGame(ctx, alice, classic()); !errors.Is(err, ErrAlreadyPlaying) {
			t.Errorf("Expected ErrAlreadyPlaying, got %v", err)
		}
		if _, err := f.svc.CreateRoom(ctx, alice, classic()); !errors.Is(err, ErrAlreadyPlaying) {
			t.Errorf("Expected ErrAlreadyPlaying for a room, got %v", err)
		}
	})

	t.Run("rejects invalid parameters", func(t *testing.T) {
		f := newFixture(t)
		params := classic()
		params.TimerSeconds = 45
		if _, err := f.svc.CreateSoloGame(ctx, alice, params); !errors.Is(err, engine.ErrInvalidParameters) {
			t.Errorf("Expected ErrInvalidParameters, got %v", err)
		}
		if _, ok := f.svc.GameOf(alice.ID); ok {
			t.Error("No game should have been created")
		}
	})

	t.Run("unknown dictionary", func(t *testing.T) {
		f := newFixture(t)
		params := classic()
		params.DictionaryID = "missing"
		if _, err := f.svc.CreateSoloGame(ctx, alice, params); !errors.Is(err, dictionary.ErrDictionaryNotFound) {
			t.Errorf("Expected ErrDictionaryNotFound, got %v", err)
		}
	})

	t.Run("log2990 draws objectives", func(t *testing.T) {
		f := newFixture(t)
		params := classic()
		params.Mode = engine.ModeLog2990
		view, err := f.svc.CreateSoloGame(ctx, alice, params)
		if err != nil {
			t.Fatalf("Failed to create game: %v", err)
		}
		public, private := 0, 0
		for _, o := range view.Objectives {
			switch o.Type {
			case objectives.Public:
				public++
			case objectives.Private:
				private++
				if o.OwnerID != alice.ID {
					t.Errorf("Expected alice's private objective, got owner %q", o.OwnerID)
				}
			}
		}
		if public != 2 || private != 1 {
			t.Errorf("Expected 2 public and 1 private objectives, got %d and %d", public, private)
		}
		if len(f.notifier.find("player:"+alice.ID, EventPrivateObjectiveUpdated)) != 1 {
			t.Error("Expected the private objective to be sent")
		}
	})
}

func TestMultiplayerStart(t *testing.T) {
	f := newFixture(t)
	first, second := startMultiplayer(t, f, classic())

	for _, id := range []string{first, second} {
		if gameID, ok := f.svc.GameOf(id); !ok || gameID != alice.ID {
			t.Errorf("Expected %s seated in alice's game, got %q", id, gameID)
		}
	}
	view, err := f.svc.GameState(context.Background(), alice.ID, second)
	if err != nil {
		t.Fatalf("Failed to read game: %v", err)
	}
	if view.YourTurn || view.Type != engine.SessionMultiplayer {
		t.Errorf("Expected a multiplayer game waiting on %s, got %+v", first, view)
	}
	if view.ReserveSize != 102-2*engine.EaselMaxSize {
		t.Errorf("Expected reserve of %d, got %d", 102-2*engine.EaselMaxSize, view.ReserveSize)
	}
	if games := f.svc.ListGames(context.Background()); len(games) != 1 || len(games[0].Players) != 2 {
		t.Errorf("Expected one game with two players, got %+v", games)
	}
	if f.svc.JoinRequest(context.Background(), "someone", bob) {
		t.Error("A seated player must not join a room")
	}
}

func TestSurrenderedHostCannotReopen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	startMultiplayer(t, f, classic())

	if !f.svc.Surrender(ctx, alice.ID, alice.ID) {
		t.Fatal("Surrender refused")
	}
	if _, err := f.svc.CreateSoloGame(ctx, alice, classic()); !errors.Is(err, ErrGameStillOpen) {
		t.Errorf("Expected ErrGameStillOpen for a solo game, got %v", err)
	}
	if _, err := f.svc.CreateRoom(ctx, alice, classic()); !errors.Is(err, ErrGameStillOpen) {
		t.Errorf("Expected ErrGameStillOpen for a room, got %v", err)
	}
	if !f.dictionaries.held(alice.ID) {
		t.Error("The running game must keep its dictionary")
	}
	if gameID, ok := f.svc.GameOf(bob.ID); !ok || gameID != alice.ID {
		t.Errorf("Expected bob to keep playing in alice's game, got %q", gameID)
	}

	if !f.svc.Surrender(ctx, alice.ID, bob.ID) {
		t.Fatal("Surrender refused")
	}
	if _, err := f.svc.CreateSoloGame(ctx, alice, classic()); err != nil {
		t.Errorf("Expected alice to open a game once the old one ended, got %v", err)
	}
}

func TestAcceptJoinRequestSeating(t *testing.T) {
	ctx := context.Background()
	carol := engine.Identity{ID: "carol", Name: "Carol"}

	t.Run("guest's own room is dropped", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.CreateRoom(ctx, bob, classic()); err != nil {
			t.Fatalf("Failed to create room: %v", err)
		}
		startMultiplayer(t, f, classic())

		if rooms := f.svc.AvailableRooms(ctx, engine.ModeClassic); len(rooms) != 0 {
			t.Errorf("Expected no open room, got %+v", rooms)
		}
		if f.dictionaries.held(bob.ID) {
			t.Error("Expected bob's room dictionary to be released")
		}
		if f.svc.JoinRequest(ctx, bob.ID, carol) {
			t.Error("bob's room should be gone")
		}
		if started, _ := f.svc.AcceptJoinRequest(ctx, bob.ID); started {
			t.Error("bob must not start a second game")
		}
		if gameID, ok := f.svc.GameOf(bob.ID); !ok || gameID != alice.ID {
			t.Errorf("Expected bob seated in alice's game, got %q", gameID)
		}
	})

	t.Run("guest seated elsewhere is turned away", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.CreateRoom(ctx, carol, classic()); err != nil {
			t.Fatalf("Failed to create room: %v", err)
		}
		if _, err := f.svc.CreateRoom(ctx, alice, classic()); err != nil {
			t.Fatalf("Failed to create room: %v", err)
		}
		if !f.svc.JoinRequest(ctx, carol.ID, bob) || !f.svc.JoinRequest(ctx, alice.ID, bob) {
			t.Fatal("Join requests refused")
		}
		if started, err := f.svc.AcceptJoinRequest(ctx, alice.ID); err != nil || !started {
			t.Fatalf("Failed to start game: %v", err)
		}

		if started, _ := f.svc.AcceptJoinRequest(ctx, carol.ID); started {
			t.Error("bob must not be seated twice")
		}
		if _, err := f.svc.GameState(ctx, carol.ID, carol.ID); !errors.Is(err, ErrGameNotFound) {
			t.Errorf("Expected no game for carol, got %v", err)
		}
		if rooms := f.svc.AvailableRooms(ctx, engine.ModeClassic); len(rooms) != 1 || rooms[0].ID != carol.ID {
			t.Errorf("Expected carol's room open again, got %+v", rooms)
		}
	})
}

func TestPlace(t *testing.T) {
	ctx := context.Background()

	t.Run("commits and hands over the turn", func(t *testing.T) {
		f := newFixture(t)
		first, second := startMultiplayer(t, f, classic())
		view, _ := f.svc.GameState(ctx, alice.ID, first)
		f.notifier.reset()

		ok, err := f.svc.Place(ctx, alice.ID, first, easelPlacement(view.Easel))
		if err != nil || !ok {
			t.Fatalf("Expected placement to succeed, got %v, %v", ok, err)
		}
		after, _ := f.svc.GameState(ctx, alice.ID, second)
		if !after.YourTurn {
			t.Error("Expected the turn to pass to the other player")
		}
		for _, p := range after.Players {
			if p.ID == first && p.Score != 10 {
				t.Errorf("Expected score 10, got %d", p.Score)
			}
		}
		if after.ReserveSize != 102-3*engine.EaselMaxSize {
			t.Errorf("Expected the easel to be refilled, reserve %d", after.ReserveSize)
		}
		if len(f.notifier.find("room:"+alice.ID, EventGridUpdated)) != 1 {
			t.Error("Expected a grid update")
		}
		if len(f.notifier.find("room:"+alice.ID, EventSidebarUpdated)) != 1 {
			t.Error("Expected a sidebar update")
		}
		if len(f.notifier.find("player:"+first, EventEaselUpdated)) != 1 || len(f.notifier.find("player:"+second, EventEaselUpdated)) != 1 {
			t.Error("Expected both easels to be sent")
		}
	})

	t.Run("out of turn", func(t *testing.T) {
		f := newFixture(t)
		_, second := startMultiplayer(t, f, classic())
		view, _ := f.svc.GameState(ctx, alice.ID, second)
		if ok, _ := f.svc.Place(ctx, alice.ID, second, easelPlacement(view.Easel)); ok {
			t.Error("Expected placement out of turn to be refused")
		}
	})

	t.Run("rejected by the validator", func(t *testing.T) {
		f := newFixture(t)
		first, _ := startMultiplayer(t, f, classic())
		f.validator.valid = false
		view, _ := f.svc.GameState(ctx, alice.ID, first)
		if ok, err := f.svc.Place(ctx, alice.ID, first, easelPlacement(view.Easel)); ok || err != nil {
			t.Errorf("Expected a refused placement without error, got %v, %v", ok, err)
		}
		if after, _ := f.svc.GameState(ctx, alice.ID, first); !after.YourTurn {
			t.Error("Expected the turn to stay")
		}
	})

	t.Run("validator failure", func(t *testing.T) {
		f := newFixture(t)
		first, _ := startMultiplayer(t, f, classic())
		f.validator.err = errors.New("dictionary unavailable")
		view, _ := f.svc.GameState(ctx, alice.ID, first)
		if _, err := f.svc.Place(ctx, alice.ID, first, easelPlacement(view.Easel)); err == nil {
			t.Error("Expected the validator error")
		}
	})

	t.Run("unknown game", func(t *testing.T) {
		f := newFixture(t)
		if ok, err := f.svc.Place(ctx, "nope", alice.ID, engine.Placement{}); ok || err != nil {
			t.Errorf("Expected false without error, got %v, %v", ok, err)
		}
	})
}

func TestPassesEndTheGame(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first, second := startMultiplayer(t, f, classic())

	for i := 0; i < engine.EndGamePassThreshold; i++ {
		for _, id := range []string{first, second} {
			if ok, err := f.svc.Pass(ctx, alice.ID, id); !ok || err != nil {
				t.Fatalf("Pass %d by %s failed: %v", i, id, err)
			}
		}
	}

	ended := f.notifier.find("room:"+alice.ID, EventGameEnded)
	if len(ended) != 1 {
		t.Fatalf("Expected one game:ended event, got %d", len(ended))
	}
	if scores := ended[0].data.([]engine.PlayerScore); len(scores) != 2 {
		t.Errorf("Expected two score lines, got %+v", scores)
	}
	chats := f.notifier.chats("room:" + alice.ID)
	if len(chats) == 0 || !strings.HasPrefix(chats[len(chats)-1].Content, "Fin de partie") {
		t.Errorf("Expected the end message in the chat, got %+v", chats)
	}

	f.recorder.mu.Lock()
	games, scores := len(f.recorder.games), len(f.recorder.scores)
	f.recorder.mu.Unlock()
	if games != 1 || scores != 2 {
		t.Errorf("Expected 1 game and 2 high scores recorded, got %d and %d", games, scores)
	}
	if f.dictionaries.held(alice.ID) {
		t.Error("Expected the dictionary to be released")
	}
	if _, ok := f.svc.GameOf(first); ok {
		t.Error("Expected the game to leave the directory")
	}
	if !f.notifier.hasLeft(alice.ID, second) {
		t.Error("Expected players to leave the game room")
	}
	if ok, _ := f.svc.Pass(ctx, alice.ID, first); ok {
		t.Error("An ended game must refuse actions")
	}
}

func TestVirtualPlayerAnswers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	view, err := f.svc.CreateSoloGame(ctx, alice, classic())
	if err != nil {
		t.Fatalf("Failed to create game: %v", err)
	}
	var vpID string
	for _, p := range view.Players {
		if p.Virtual {
			vpID = p.ID
		}
	}

	if err := f.svc.SendMessage(ctx, view.ID, alice.ID, "!passer"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	after, _ := f.svc.GameState(ctx, view.ID, alice.ID)
	if !after.YourTurn {
		t.Error("Expected the turn back after the virtual player moved")
	}
	chats := f.notifier.chats("room:" + view.ID)
	if len(chats) < 2 || chats[0].Content != "!passer" || chats[0].PlayerName != alice.Name {
		t.Fatalf("Expected the pass to be echoed first, got %+v", chats)
	}
	spoke := false
	for _, c := range append(chats, f.notifier.chats("player:"+vpID)...) {
		if c.PlayerID == vpID {
			spoke = true
		}
	}
	if !spoke {
		t.Error("Expected the virtual player to announce its move")
	}
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("plain chat is relayed", func(t *testing.T) {
		f := newFixture(t)
		_, second := startMultiplayer(t, f, classic())
		if err := f.svc.SendMessage(ctx, alice.ID, second, "bonne chance"); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		chats := f.notifier.chats("room:" + alice.ID)
		if len(chats) != 1 || chats[0].Content != "bonne chance" || chats[0].PlayerID != second {
			t.Errorf("Expected the message relayed, got %+v", chats)
		}
	})

	t.Run("not seated", func(t *testing.T) {
		f := newFixture(t)
		startMultiplayer(t, f, classic())
		if err := f.svc.SendMessage(ctx, alice.ID, "mallory", "salut"); !errors.Is(err, ErrGameNotFound) {
			t.Errorf("Expected ErrGameNotFound, got %v", err)
		}
	})

	t.Run("invalid command", func(t *testing.T) {
		f := newFixture(t)
		first, _ := startMultiplayer(t, f, classic())
		f.svc.SendMessage(ctx, alice.ID, first, "!placer zz")
		chats := f.notifier.chats("player:" + first)
		if len(chats) != 1 || chats[0].PlayerID != ServerID || !strings.HasPrefix(chats[0].Content, InvalidCommand) {
			t.Errorf("Expected an invalid command notice, got %+v", chats)
		}
	})

	t.Run("command out of turn", func(t *testing.T) {
		f := newFixture(t)
		_, second := startMultiplayer(t, f, classic())
		f.svc.SendMessage(ctx, alice.ID, second, "!passer")
		chats := f.notifier.chats("player:" + second)
		if len(chats) != 1 || chats[0].Content != ImpossibleCommand {
			t.Errorf("Expected an impossible command notice, got %+v", chats)
		}
	})

	t.Run("exchange hides the letters from the opponent", func(t *testing.T) {
		f := newFixture(t)
		first, _ := startMultiplayer(t, f, classic())
		view, _ := f.svc.GameState(ctx, alice.ID, first)
		typed := strings.ToLower(engine.LettersToString(view.Easel[:2]))
		f.notifier.reset()

		if err := f.svc.SendMessage(ctx, alice.ID, first, "!échanger "+typed); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		mine := f.notifier.chats("player:" + first)
		if len(mine) != 1 || mine[0].Content != "!échanger "+strings.ToUpper(typed) {
			t.Errorf("Expected the mover to see the letters, got %+v", mine)
		}
		theirs := f.notifier.find("room:"+alice.ID, EventChatMessage)
		if len(theirs) != 1 || theirs[0].except != first || theirs[0].data.(ChatMessage).Content != "!échanger 2" {
			t.Errorf("Expected the room to see the count, got %+v", theirs)
		}
		if after, _ := f.svc.GameState(ctx, alice.ID, first); after.YourTurn {
			t.Error("Expected the exchange to end the turn")
		}
	})

	t.Run("reserve", func(t *testing.T) {
		f := newFixture(t)
		_, second := startMultiplayer(t, f, classic())
		f.svc.SendMessage(ctx, alice.ID, second, "!réserve")
		chats := f.notifier.chats("player:" + second)
		if len(chats) != 1 || !strings.HasPrefix(chats[0].Content, "A: ") || !strings.Contains(chats[0].Content, "\n*: ") {
			t.Errorf("Expected the reserve content, got %+v", chats)
		}
	})

	t.Run("hints", func(t *testing.T) {
		f := newFixture(t)
		first, _ := startMultiplayer(t, f, classic())
		for _, w := range []string{"CHAT", "CHATS", "TA", "AS"} {
			f.generator.placements = append(f.generator.placements, engine.Placement{Position: engine.Center, Axis: engine.Horizontal, Letters: w})
		}
		f.svc.SendMessage(ctx, alice.ID, first, "!indice")
		chats := f.notifier.chats("player:" + first)
		want := "!placer h8h chat\n!placer h8h chats\n!placer h8h ta"
		if len(chats) != 1 || chats[0].Content != want {
			t.Errorf("Expected %q, got %+v", want, chats)
		}
	})

	t.Run("no hints", func(t *testing.T) {
		f := newFixture(t)
		first, _ := startMultiplayer(t, f, classic())
		f.svc.SendMessage(ctx, alice.ID, first, "!indice")
		chats := f.notifier.chats("player:" + first)
		if len(chats) != 1 || chats[0].Content != NoHints {
			t.Errorf("Expected %q, got %+v", NoHints, chats)
		}
	})
}

func TestSurrender(t *testing.T) {
	ctx := context.Background()

	t.Run("multiplayer seat goes to a virtual player", func(t *testing.T) {
		f := newFixture(t)
		startMultiplayer(t, f, classic())
		f.notifier.reset()

		if !f.svc.Surrender(ctx, alice.ID, bob.ID) {
			t.Fatal("Surrender refused")
		}
		if _, ok := f.svc.GameOf(bob.ID); ok {
			t.Error("Expected bob to leave the game")
		}
		view, err := f.svc.GameState(ctx, alice.ID, alice.ID)
		if err != nil {
			t.Fatalf("Expected the game to continue: %v", err)
		}
		if view.Type != engine.SessionSolo || !view.YourTurn {
			t.Errorf("Expected a solo game with alice to move, got %+v", view)
		}
		replaced := false
		for _, p := range view.Players {
			if p.Virtual && p.ID != bob.ID {
				replaced = true
			}
		}
		if !replaced {
			t.Error("Expected a virtual player in bob's seat")
		}
		notices := f.notifier.find("room:"+alice.ID, EventChatMessage)
		if len(notices) != 1 || notices[0].except != bob.ID || notices[0].data.(ChatMessage).Content != SurrenderMessage {
			t.Errorf("Expected the surrender notice, got %+v", notices)
		}
		if f.svc.Surrender(ctx, alice.ID, bob.ID) {
			t.Error("A player cannot surrender twice")
		}
	})

	t.Run("solo game is closed", func(t *testing.T) {
		f := newFixture(t)
		view, err := f.svc.CreateSoloGame(ctx, alice, classic())
		if err != nil {
			t.Fatalf("Failed to create game: %v", err)
		}
		if !f.svc.Surrender(ctx, view.ID, alice.ID) {
			t.Fatal("Surrender refused")
		}
		if _, err := f.svc.GameState(ctx, view.ID, alice.ID); !errors.Is(err, ErrGameNotFound) {
			t.Errorf("Expected the game to be gone, got %v", err)
		}
		if f.dictionaries.held(alice.ID) {
			t.Error("Expected the dictionary to be released")
		}
		f.recorder.mu.Lock()
		defer f.recorder.mu.Unlock()
		if len(f.recorder.games) != 0 {
			t.Error("An abandoned solo game is not recorded")
		}
	})
}

func TestDisconnectGrace(t *testing.T) {
	t.Run("surrenders after the grace period", func(t *testing.T) {
		f := newFixture(t)
		startMultiplayer(t, f, classic())
		f.svc.PlayerDisconnected(bob.ID)

		deadline := time.Now().Add(2 * time.Second)
		for {
			if _, ok := f.svc.GameOf(bob.ID); !ok {
				break
			}
			if time.Now().After(deadline) {
				t.Fatal("Expected bob to be replaced after the grace period")
			}
			time.Sleep(5 * time.Millisecond)
		}
		if _, ok := f.svc.GameOf(alice.ID); !ok {
			t.Error("Expected alice to keep playing")
		}
	})

	t.Run("reconnecting keeps the seat", func(t *testing.T) {
		f := newFixture(t)
		startMultiplayer(t, f, classic())
		f.svc.PlayerDisconnected(bob.ID)
		f.svc.PlayerReconnected(bob.ID)

		time.Sleep(100 * time.Millisecond)
		if _, ok := f.svc.GameOf(bob.ID); !ok {
			t.Error("Expected bob to stay seated")
		}
	})

	t.Run("disconnecting drops a waiting room", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		if _, err := f.svc.CreateRoom(ctx, alice, classic()); err != nil {
			t.Fatalf("Failed to create room: %v", err)
		}
		f.svc.PlayerDisconnected(alice.ID)
		if rooms := f.svc.AvailableRooms(ctx, engine.ModeClassic); len(rooms) != 0 {
			t.Errorf("Expected no room left, got %+v", rooms)
		}
	})
}

func TestHistoryPassThrough(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	best, err := f.svc.BestScores(ctx, engine.ModeClassic)
	if err != nil || len(best) != 1 || best[0].Score != 42 {
		t.Errorf("Expected the stored best scores, got %+v, %v", best, err)
	}
	dicts, err := f.svc.ListDictionaries(ctx)
	if err != nil || len(dicts) != 1 || dicts[0].ID != dictionary.DefaultID {
		t.Errorf("Expected the default dictionary, got %+v, %v", dicts, err)
	}
	if games, err := f.svc.RecentGames(ctx, 10); err != nil || len(games) != 0 {
		t.Errorf("Expected no games yet, got %+v, %v", games, err)
	}
}
