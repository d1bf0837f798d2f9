package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"gomoku/config"
	"gomoku/game"
	"gomoku/searcher"
)

// Server plays one gomoku game against the search engine over HTTP. The
// human posts a placement and the engine answers in the same request.
type Server struct {
	hub *Hub

	mu     sync.Mutex
	cfg    config.Config
	board  *game.GomokuState
	mcts   *searcher.MCTS
	stones int
}

type statusResponse struct {
	BoardSize  int             `json:"board_size"`
	Rows       []string        `json:"rows"`
	NextPlayer int             `json:"next_player"`
	Winner     int             `json:"winner"`
	Status     string          `json:"status"`
	Stones     int             `json:"stones"`
	Hash       string          `json:"hash"`
	LastMove   *game.Placement `json:"last_move,omitempty"`
	Reply      *replyDTO       `json:"reply,omitempty"`
}

type replyDTO struct {
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Playouts  int64   `json:"playouts"`
	PerSecond float64 `json:"per_second"`
}

type apiMove struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// New creates a server playing on a fresh board with the given settings.
func New(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mcts, err := newSearcher(cfg)
	if err != nil {
		return nil, err
	}
	return &Server{
		hub:   NewHub(),
		cfg:   *cfg,
		board: game.NewGomokuState(cfg.BoardSize),
		mcts:  mcts,
	}, nil
}

func newSearcher(cfg *config.Config) (*searcher.MCTS, error) {
	options := []searcher.Option{searcher.WithMetrics()}
	if cfg.Iterations > 0 {
		options = append(options, searcher.WithIterations(cfg.Iterations))
	}
	if d := cfg.MaxTime(); d > 0 {
		options = append(options, searcher.WithDuration(d))
	}
	if cfg.Verbose {
		options = append(options, searcher.WithVerbose())
	}
	return searcher.New(cfg.Goroutines, options...)
}

// Handler builds the HTTP API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/config", s.handleGetConfig)
	r.Post("/api/config", s.handleSetConfig)
	r.Get("/api/game", s.handleStatus)
	r.Post("/api/game/start", s.handleStart)
	r.Post("/api/game/move", s.handleMove)

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.serveWS(w, r)
	})

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	hubCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.hub.Run(hubCtx.Done())

	server := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.Handler(),
	}
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	log.Info().Msgf("listening on %s", s.cfg.ListenAddr)
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err, ok := <-serverErr:
		if ok {
			return err
		}
		return nil
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return server.Close()
	}
	return nil
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, cfg)
}

// handleSetConfig swaps the search settings and resizes the board when
// asked. A changed listen address only applies on the next start.
func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	updated := s.cfg
	s.mu.Unlock()
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := updated.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	mcts, err := newSearcher(&updated)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.mu.Lock()
	resize := updated.BoardSize != s.cfg.BoardSize
	s.cfg = updated
	s.mcts = mcts
	if resize {
		s.board = game.NewGomokuState(updated.BoardSize)
		s.stones = 0
	}
	status := s.snapshot()
	s.mu.Unlock()

	s.hub.publishStatus(status)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status := s.snapshot()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, status)
}

// handleStart resets the game. With engine_starts the engine searches and
// plays the opening stone before responding, so the human takes white.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		BoardSize    int  `json:"board_size"`
		EngineStarts bool `json:"engine_starts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	s.mu.Lock()
	size := s.cfg.BoardSize
	s.mu.Unlock()
	if payload.BoardSize != 0 {
		if payload.BoardSize < game.MinBoardSize || payload.BoardSize > game.MaxBoardSize {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("board size must be between %d and %d", game.MinBoardSize, game.MaxBoardSize),
			})
			return
		}
		size = payload.BoardSize
	}

	s.mu.Lock()
	s.board = game.NewGomokuState(size)
	s.stones = 0
	var reply *replyDTO
	if payload.EngineStarts {
		move, metric, err := s.mcts.ComputeMove(s.board)
		if err != nil {
			s.mu.Unlock()
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if move != nil {
			placement := move.(game.Placement)
			s.board.Play(placement)
			s.stones++
			reply = &replyDTO{
				X:         placement.X,
				Y:         placement.Y,
				Playouts:  metric.Playouts,
				PerSecond: metric.PerSecond(),
			}
		}
	}
	status := s.snapshot()
	status.Reply = reply
	s.mu.Unlock()

	s.hub.publishReset(status)
	writeJSON(w, http.StatusOK, status)
}

// handleMove applies the human placement, then searches and plays the
// engine's answer before responding. The request blocks for the whole
// search.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var payload apiMove
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	s.mu.Lock()
	if !s.board.HasMoves() {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "the game is over"})
		return
	}
	size := s.board.Size()
	if payload.X < 0 || payload.X >= size || payload.Y < 0 || payload.Y >= size ||
		s.board.CellAt(payload.X, payload.Y) != game.Empty {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "illegal move"})
		return
	}

	s.board.Play(game.Placement{X: payload.X, Y: payload.Y})
	s.stones++

	var reply *replyDTO
	if s.board.HasMoves() {
		move, metric, err := s.mcts.ComputeMove(s.board)
		if err != nil {
			s.mu.Unlock()
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if move != nil {
			placement := move.(game.Placement)
			s.board.Play(placement)
			s.stones++
			reply = &replyDTO{
				X:         placement.X,
				Y:         placement.Y,
				Playouts:  metric.Playouts,
				PerSecond: metric.PerSecond(),
			}
		}
	}

	status := s.snapshot()
	status.Reply = reply
	s.mu.Unlock()

	s.hub.publishStatus(status)
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{hub: s.hub, send: make(chan []byte, 16)}
	s.hub.Register(client)

	s.mu.Lock()
	status := s.snapshot()
	s.mu.Unlock()
	client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(status)})

	go client.writePump(conn)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			s.mu.Lock()
			status := s.snapshot()
			s.mu.Unlock()
			client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(status)})
		}
	}
}

// snapshot reports the current game. The caller holds the lock.
func (s *Server) snapshot() statusResponse {
	status := statusResponse{
		BoardSize:  s.board.Size(),
		Rows:       s.board.Rows(),
		NextPlayer: int(s.board.Player()),
		Status:     "running",
		Stones:     s.stones,
		Hash:       fmt.Sprintf("0x%016x", s.board.Hash()),
	}
	if last, ok := s.board.LastPlacement(); ok {
		status.LastMove = &last
	}
	if winner, ok := s.board.Winner(); ok {
		status.Winner = int(winner)
		if winner == game.Player1 {
			status.Status = "black_won"
		} else {
			status.Status = "white_won"
		}
	} else if !s.board.HasMoves() {
		status.Status = "draw"
	}
	return status
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
