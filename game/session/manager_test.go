package session

import (
	"errors"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/wricardo/scrabble-duel/game/engine"
)

func newGame(id, guest string) *engine.Game {
	params := engine.Parameters{TimerSeconds: 60, DictionaryID: "default", Mode: engine.ModeClassic}
	return engine.NewMultiplayerGame(id, params,
		engine.Identity{ID: id, Name: "Host"}, engine.Identity{ID: guest, Name: "Guest"},
		engine.WithRand(rand.New(rand.NewPCG(1, 2))))
}

func TestManager_Insert(t *testing.T) {
	manager := NewManager()

	t.Run("indexes players", func(t *testing.T) {
		s, err := manager.Insert(newGame("alice", "bob"))
		if err != nil {
			t.Fatalf("Failed to insert session: %v", err)
		}
		if s.ID != "alice" {
			t.Errorf("Expected session ID 'alice', got '%s'", s.ID)
		}
		for _, player := range []string{"alice", "bob"} {
			if got, ok := manager.ForPlayer(player); !ok || got != s {
				t.Errorf("Player %s should be indexed", player)
			}
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		if _, err := manager.Insert(newGame("alice", "carol")); !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("player seated elsewhere", func(t *testing.T) {
		if _, err := manager.Insert(newGame("carol", "bob")); !errors.Is(err, ErrPlayerSeated) {
			t.Errorf("Expected ErrPlayerSeated, got %v", err)
		}
		if _, ok := manager.Get("carol"); ok {
			t.Error("A refused session must not be registered")
		}
		if got, _ := manager.ForPlayer("bob"); got == nil || got.ID != "alice" {
			t.Error("bob should stay indexed in alice's session")
		}
	})

	t.Run("missing id", func(t *testing.T) {
		if _, err := manager.Insert(nil); !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})
}

func TestManager_Remove(t *testing.T) {
	manager := NewManager()
	s, _ := manager.Insert(newGame("alice", "bob"))

	removed, err := manager.Remove("alice")
	if err != nil || removed != s {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok := manager.Get("alice"); ok {
		t.Error("Session should be gone")
	}
	if _, ok := manager.ForPlayer("bob"); ok {
		t.Error("Player index should be cleared")
	}
	if err := s.Lock(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Late caller should see ErrSessionClosed, got %v", err)
	}
	if _, err := manager.Remove("alice"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_RemoveWhileLocked(t *testing.T) {
	manager := NewManager()
	s, _ := manager.Insert(newGame("alice", "bob"))

	if err := s.Lock(); err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	if _, err := manager.Remove("alice"); err != nil {
		t.Fatalf("Remove under lock failed: %v", err)
	}
	if !s.Closed() {
		t.Error("Session should be closed")
	}
	s.Unlock()
}

func TestManager_Reseat(t *testing.T) {
	manager := NewManager()
	s, _ := manager.Insert(newGame("alice", "bob"))

	manager.Reseat("alice", "bob", "vp-1")
	if _, ok := manager.ForPlayer("bob"); ok {
		t.Error("Departed player should not be indexed")
	}
	if got, ok := manager.ForPlayer("vp-1"); !ok || got != s {
		t.Error("New occupant should be indexed")
	}
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	manager.Insert(newGame("a", "a2"))
	manager.Insert(newGame("b", "b2"))

	if manager.Count() != 2 || len(manager.List()) != 2 {
		t.Errorf("Expected 2 sessions, got %d", manager.Count())
	}
}

func TestSession_SerializesOperations(t *testing.T) {
	manager := NewManager()
	s, _ := manager.Insert(newGame("alice", "bob"))

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Lock(); err != nil {
				return
			}
			defer s.Unlock()
			counter++
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Errorf("Expected 50 serialized operations, got %d", counter)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	var wg sync.WaitGroup
	ids := []string{"p0", "p1", "p2", "p3", "p4", "p5", "p6", "p7"}
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			manager.Insert(newGame(id, id+"-guest"))
			manager.Get(id)
			manager.List()
		}(id)
	}
	wg.Wait()
	if manager.Count() != len(ids) {
		t.Errorf("Expected %d sessions, got %d", len(ids), manager.Count())
	}
}
