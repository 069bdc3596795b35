package dictionary

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultID is the id of the embedded dictionary
const DefaultID = "default"

var (
	ErrDictionaryNotFound = errors.New("dictionary not found")
	ErrInvalidDictionary  = errors.New("invalid dictionary")
	ErrNotAcquired        = errors.New("no dictionary acquired for session")
)

//go:embed default.json
var defaultDictionary []byte

// File is the on-disk format of a dictionary
type File struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Words       []string `json:"words"`
}

// Info describes a dictionary without its words
type Info struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Dictionary is a loaded word list. Words are stored upper case.
type Dictionary struct {
	Info
	words  map[string]struct{}
	sorted []string
}

// Contains reports whether word is in the dictionary, ignoring case
func (d *Dictionary) Contains(word string) bool {
	_, ok := d.words[strings.ToUpper(word)]
	return ok
}

// Words returns the words in alphabetical order
func (d *Dictionary) Words() []string {
	return d.sorted
}

// Size returns the number of words
func (d *Dictionary) Size() int {
	return len(d.sorted)
}

// Manager keeps the dictionary catalogue and the words in use
type Manager struct {
	dir string

	mu       sync.RWMutex
	loaded   map[string]*Dictionary         // id -> words, while in use
	users    map[string]map[string]struct{} // id -> sessions
	sessions map[string]string              // session -> id
}

// NewManager creates a manager reading dictionaries from dir. A missing
// directory leaves only the embedded dictionary available.
func NewManager(dir string) (*Manager, error) {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			return nil, fmt.Errorf("dictionary path is not a directory: %s", dir)
		}
	}
	if _, err := parse(DefaultID, defaultDictionary); err != nil {
		return nil, fmt.Errorf("embedded dictionary: %w", err)
	}
	return &Manager{
		dir:      dir,
		loaded:   make(map[string]*Dictionary),
		users:    make(map[string]map[string]struct{}),
		sessions: make(map[string]string),
	}, nil
}

// List returns every valid dictionary, the embedded one first
func (m *Manager) List() ([]Info, error) {
	infos := []Info{}
	seen := map[string]bool{}

	if d, err := m.read(DefaultID); err == nil {
		infos = append(infos, d.Info)
		seen[DefaultID] = true
	}

	if m.dir == "" {
		return infos, nil
	}
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return infos, nil
		}
		return nil, fmt.Errorf("failed to read dictionary directory: %w", err)
	}

	var found []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		if seen[id] {
			continue
		}
		d, err := m.read(id)
		if err != nil {
			log.Warn().Err(err).Str("dictionary", id).Msg("skipping dictionary")
			continue
		}
		found = append(found, d.Info)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return append(infos, found...), nil
}

// Title returns the title of a dictionary, or its id when it cannot be read
func (m *Manager) Title(id string) string {
	m.mu.RLock()
	if d, ok := m.loaded[id]; ok {
		m.mu.RUnlock()
		return d.Title
	}
	m.mu.RUnlock()

	d, err := m.read(id)
	if err != nil {
		return id
	}
	return d.Title
}

// Acquire marks id as used by sessionID, loading its words if needed. A
// session holds at most one dictionary; acquiring again replaces it.
func (m *Manager) Acquire(sessionID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.sessions[sessionID]; ok {
		if current == id {
			return nil
		}
		m.releaseLocked(sessionID, current)
	}

	if _, ok := m.loaded[id]; !ok {
		d, err := m.read(id)
		if err != nil {
			return err
		}
		m.loaded[id] = d
		log.Info().Str("dictionary", id).Int("words", d.Size()).Msg("dictionary loaded")
	}
	if m.users[id] == nil {
		m.users[id] = make(map[string]struct{})
	}
	m.users[id][sessionID] = struct{}{}
	m.sessions[sessionID] = id
	return nil
}

// Release drops sessionID's use of id. The words are freed when no session
// uses the dictionary any more.
func (m *Manager) Release(sessionID, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseLocked(sessionID, id)
}

func (m *Manager) releaseLocked(sessionID, id string) {
	users, ok := m.users[id]
	if !ok {
		return
	}
	if _, held := users[sessionID]; !held {
		return
	}
	delete(users, sessionID)
	if m.sessions[sessionID] == id {
		delete(m.sessions, sessionID)
	}
	if len(users) == 0 {
		delete(m.users, id)
		delete(m.loaded, id)
		log.Info().Str("dictionary", id).Msg("dictionary freed")
	}
}

// ForSession returns the dictionary acquired by sessionID
func (m *Manager) ForSession(sessionID string) (*Dictionary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAcquired, sessionID)
	}
	return m.loaded[id], nil
}

// InUse returns the number of sessions using id
func (m *Manager) InUse(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users[id])
}

// read loads a dictionary from the directory, falling back to the embedded
// one for DefaultID
func (m *Manager) read(id string) (*Dictionary, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return nil, fmt.Errorf("%w: %q", ErrDictionaryNotFound, id)
	}

	var data []byte
	if m.dir != "" {
		raw, err := os.ReadFile(filepath.Join(m.dir, id+".json"))
		switch {
		case err == nil:
			data = raw
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read dictionary file: %w", err)
		}
	}
	if data == nil {
		if id != DefaultID {
			return nil, fmt.Errorf("%w: %s", ErrDictionaryNotFound, id)
		}
		data = defaultDictionary
	}
	return parse(id, data)
}

// New builds a dictionary from a word list
func New(id, title string, words []string) *Dictionary {
	d := &Dictionary{
		Info:  Info{ID: id, Title: title},
		words: make(map[string]struct{}, len(words)),
	}
	for _, w := range words {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, dup := d.words[w]; dup {
			continue
		}
		d.words[w] = struct{}{}
		d.sorted = append(d.sorted, w)
	}
	sort.Strings(d.sorted)
	return d
}

func parse(id string, data []byte) (*Dictionary, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDictionary, err)
	}
	if strings.TrimSpace(f.Title) == "" {
		return nil, fmt.Errorf("%w: missing title", ErrInvalidDictionary)
	}
	if len(f.Words) == 0 {
		return nil, fmt.Errorf("%w: no words", ErrInvalidDictionary)
	}

	d := New(id, f.Title, f.Words)
	d.Description = f.Description
	return d, nil
}
