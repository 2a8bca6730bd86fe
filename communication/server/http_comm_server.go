package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"ai2048/communication"
	"ai2048/game"
	"ai2048/gamemaster"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	defaultStreamInterval = 100 * time.Millisecond
	writeWait             = 5 * time.Second
)

// PopulationSource exposes the live boards of a running population.
type PopulationSource interface {
	Snapshot() gamemaster.ArenaSnapshot
}

type Option func(s *Server)

func WithPopulation(source PopulationSource) Option {
	return func(s *Server) {
		s.population = source
	}
}

// WithStreamInterval sets how often the population stream polls for changes.
func WithStreamInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.streamInterval = d
		}
	}
}

// Server serves one interactive board and, when a population source is set,
// the live boards of a training run.
type Server struct {
	session        *gamemaster.Session
	population     PopulationSource
	streamInterval time.Duration
	upgrader       websocket.Upgrader
	quit           chan struct{}
	mux            *http.ServeMux
}

func NewServer(session *gamemaster.Session, options ...Option) *Server {
	s := &Server{
		session:        session,
		streamInterval: defaultStreamInterval,
		upgrader:       websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		quit:           make(chan struct{}),
		mux:            http.NewServeMux(),
	}
	for _, option := range options {
		option(s)
	}
	s.mux.HandleFunc("GET /board", s.handleGetBoard)
	s.mux.HandleFunc("POST /move", s.handleMove)
	s.mux.HandleFunc("POST /step", s.handleStep)
	s.mux.HandleFunc("POST /reset", s.handleReset)
	s.mux.HandleFunc("GET /population", s.handleGetPopulation)
	s.mux.HandleFunc("GET /population/stream", s.handleStream)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("serving on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	close(s.quit)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, communication.NewBoardState(s.session.Snapshot()))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req communication.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid move request: %w", err))
		return
	}
	d, err := game.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	snap, moved := s.session.Move(d)
	writeJSON(w, http.StatusOK, communication.MoveResponse{
		Direction: d.String(),
		Moved:     moved,
		Board:     communication.NewBoardState(snap),
	})
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	var req communication.StepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid step request: %w", err))
		return
	}
	d, snap, moved := s.session.AutoStep(req.Weights)
	writeJSON(w, http.StatusOK, communication.MoveResponse{
		Direction: d.String(),
		Moved:     moved,
		Board:     communication.NewBoardState(snap),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, communication.NewBoardState(s.session.Reset()))
}

func (s *Server) handleGetPopulation(w http.ResponseWriter, r *http.Request) {
	if s.population == nil {
		writeError(w, http.StatusNotFound, errors.New("no population is running"))
		return
	}
	writeJSON(w, http.StatusOK, communication.NewPopulationState(s.population.Snapshot()))
}

type frame struct {
	hash     game.BoardHash
	finished bool
}

func frameOf(snap gamemaster.ArenaSnapshot) []frame {
	frames := make([]frame, len(snap.Agents))
	for i, a := range snap.Agents {
		frames[i] = frame{hash: a.Board.Hash, finished: a.Finished}
	}
	return frames
}

// handleStream pushes a population snapshot whenever a board, a finished flag
// or the generation changes.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.population == nil {
		writeError(w, http.StatusNotFound, errors.New("no population is running"))
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("population stream upgrade failed")
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	var last []frame
	lastGeneration := -1
	for {
		snap := s.population.Snapshot()
		frames := frameOf(snap)
		if snap.Generation != lastGeneration || !slices.Equal(frames, last) {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(communication.NewPopulationState(snap)); err != nil {
				log.Debug().Err(err).Msg("population stream closed")
				return
			}
			last, lastGeneration = frames, snap.Generation
		}

		select {
		case <-closed:
			return
		case <-s.quit:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
			return
		case <-ticker.C:
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, communication.ErrorResponse{Error: err.Error()})
}
