package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/wricardo/scrabble-duel/game/dictionary"
	"github.com/wricardo/scrabble-duel/game/engine"
	"github.com/wricardo/scrabble-duel/game/history"
	"github.com/wricardo/scrabble-duel/game/room"
	"github.com/wricardo/scrabble-duel/game/service"
	"github.com/wricardo/scrabble-duel/transport/websocket"
)

const defaultHistoryLimit = 20

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	auth    *Auth
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(gameService service.GameService, hub *websocket.Hub, auth *Auth) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		auth:    auth,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	authed := s.auth.requirePlayer

	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/players", s.handleRegisterPlayer).Methods("POST")

	// Catalogue and history
	api.HandleFunc("/dictionaries", s.handleListDictionaries).Methods("GET")
	api.HandleFunc("/history", s.handleHistory).Methods("GET")
	api.HandleFunc("/scores", s.handleBestScores).Methods("GET")

	// Rooms
	api.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
	api.HandleFunc("/rooms", authed(s.handleCreateRoom)).Methods("POST")
	api.HandleFunc("/rooms", authed(s.handleDeleteRoom)).Methods("DELETE")
	api.HandleFunc("/rooms/accept", authed(s.handleAccept)).Methods("POST")
	api.HandleFunc("/rooms/reject", authed(s.handleReject)).Methods("POST")
	api.HandleFunc("/rooms/{id}/join", authed(s.handleJoin)).Methods("POST")
	api.HandleFunc("/rooms/{id}/join", authed(s.handleCancelJoin)).Methods("DELETE")

	// Games
	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	api.HandleFunc("/games/solo", authed(s.handleCreateSolo)).Methods("POST")
	api.HandleFunc("/games/{id}", authed(s.handleGameState)).Methods("GET")
	api.HandleFunc("/games/{id}/place", authed(s.handlePlace)).Methods("POST")
	api.HandleFunc("/games/{id}/exchange", authed(s.handleExchange)).Methods("POST")
	api.HandleFunc("/games/{id}/pass", authed(s.handlePass)).Methods("POST")
	api.HandleFunc("/games/{id}/hints", authed(s.handleHints)).Methods("GET")
	api.HandleFunc("/games/{id}/reserve", authed(s.handleReserve)).Methods("GET")
	api.HandleFunc("/games/{id}/chat", authed(s.handleChat)).Methods("POST")
	api.HandleFunc("/games/{id}/surrender", authed(s.handleSurrender)).Methods("POST")

	// WebSocket
	if s.hub != nil {
		s.router.HandleFunc("/ws", s.hub.ServeWS)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors to status codes
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, room.ErrRoomNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyPlaying), errors.Is(err, service.ErrGameStillOpen), errors.Is(err, room.ErrRoomExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, engine.ErrInvalidParameters), errors.Is(err, dictionary.ErrDictionaryNotFound):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// respondAccepted reports the outcome of an action a player may not be
// allowed to take
func respondAccepted(w http.ResponseWriter, accepted bool) {
	respondJSON(w, http.StatusOK, map[string]bool{"accepted": accepted})
}

func decodeBody(r *http.Request, into any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(into)
}

// Player Handlers

func (s *Server) handleRegisterPlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	id := uuid.NewString()
	token, err := s.auth.Issue(id, name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"player_id": id, "name": name, "token": token})
}

// Catalogue Handlers

func (s *Server) handleListDictionaries(w http.ResponseWriter, r *http.Request) {
	dicts, err := s.service.ListDictionaries(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dicts)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = n
	}
	games, err := s.service.RecentGames(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if games == nil {
		games = []history.GameRecord{}
	}
	respondJSON(w, http.StatusOK, games)
}

func modeParam(r *http.Request) (engine.Mode, bool) {
	switch mode := engine.Mode(r.URL.Query().Get("mode")); mode {
	case "":
		return engine.ModeClassic, true
	case engine.ModeClassic, engine.ModeLog2990:
		return mode, true
	}
	return "", false
}

func (s *Server) handleBestScores(w http.ResponseWriter, r *http.Request) {
	mode, ok := modeParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown mode")
		return
	}
	scores, err := s.service.BestScores(r.Context(), mode)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if scores == nil {
		scores = []history.BestScore{}
	}
	respondJSON(w, http.StatusOK, scores)
}

// Room Handlers

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	mode, ok := modeParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown mode")
		return
	}
	respondJSON(w, http.StatusOK, room.AvailableRooms{Mode: mode, Rooms: s.service.AvailableRooms(r.Context(), mode)})
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var params engine.Parameters
	if err := decodeBody(r, &params); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := s.service.CreateRoom(r.Context(), playerFrom(r.Context()), params)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	respondAccepted(w, s.service.DeleteRoom(r.Context(), playerFrom(r.Context()).ID))
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]
	respondAccepted(w, s.service.JoinRequest(r.Context(), roomID, playerFrom(r.Context())))
}

func (s *Server) handleCancelJoin(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]
	respondAccepted(w, s.service.CancelJoinRequest(r.Context(), roomID, playerFrom(r.Context()).ID))
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	accepted, err := s.service.AcceptJoinRequest(r.Context(), playerFrom(r.Context()).ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondAccepted(w, accepted)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	respondAccepted(w, s.service.RejectJoinRequest(r.Context(), playerFrom(r.Context()).ID))
}

// Game Handlers

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.service.ListGames(r.Context()))
}

func (s *Server) handleCreateSolo(w http.ResponseWriter, r *http.Request) {
	var params engine.Parameters
	if err := decodeBody(r, &params); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, err := s.service.CreateSoloGame(r.Context(), playerFrom(r.Context()), params)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.GameState(r.Context(), mux.Vars(r)["id"], playerFrom(r.Context()).ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var p engine.Placement
	if err := decodeBody(r, &p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	accepted, err := s.service.Place(r.Context(), mux.Vars(r)["id"], playerFrom(r.Context()).ID, p)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondAccepted(w, accepted)
}

func (s *Server) handleExchange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Letters string `json:"letters"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	accepted, err := s.service.Exchange(r.Context(), mux.Vars(r)["id"], playerFrom(r.Context()).ID, req.Letters)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondAccepted(w, accepted)
}

func (s *Server) handlePass(w http.ResponseWriter, r *http.Request) {
	accepted, err := s.service.Pass(r.Context(), mux.Vars(r)["id"], playerFrom(r.Context()).ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondAccepted(w, accepted)
}

func (s *Server) handleHints(w http.ResponseWriter, r *http.Request) {
	hints, err := s.service.Hints(r.Context(), mux.Vars(r)["id"], playerFrom(r.Context()).ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if hints == nil {
		respondJSON(w, http.StatusOK, map[string]any{"accepted": false, "hints": []string{}})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"accepted": true, "hints": hints})
}

func (s *Server) handleReserve(w http.ResponseWriter, r *http.Request) {
	content, err := s.service.Reserve(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"reserve": content})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.service.SendMessage(r.Context(), mux.Vars(r)["id"], playerFrom(r.Context()).ID, req.Content); err != nil {
		respondServiceError(w, err)
		return
	}
	respondAccepted(w, true)
}

func (s *Server) handleSurrender(w http.ResponseWriter, r *http.Request) {
	respondAccepted(w, s.service.Surrender(r.Context(), mux.Vars(r)["id"], playerFrom(r.Context()).ID))
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
