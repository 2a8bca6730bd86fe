package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai2048/communication"
	"ai2048/game"
	"ai2048/gamemaster"
	"ai2048/genetic"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestBoardEndpoints(t *testing.T) {
	t.Run("get board", func(t *testing.T) {
		s := NewServer(gamemaster.NewSession(4, 1))
		rec := serve(t, s, http.MethodGet, "/board", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		state := decode[communication.BoardState](t, rec)
		require.Len(t, state.Rows, 4)
		require.Zero(t, state.Score)
		require.False(t, state.GameOver)
	})

	t.Run("move", func(t *testing.T) {
		session := gamemaster.NewSession(4, 2)
		s := NewServer(session)
		for _, d := range []string{"left", "right", "up", "down"} {
			before := session.Snapshot()
			rec := serve(t, s, http.MethodPost, "/move", `{"direction":"`+d+`"}`)
			require.Equal(t, http.StatusOK, rec.Code)

			resp := decode[communication.MoveResponse](t, rec)
			require.Equal(t, d, resp.Direction)
			if !resp.Moved {
				require.Equal(t, before.Rows, resp.Board.Rows)
			}
			require.Equal(t, session.Snapshot().Rows, resp.Board.Rows)
		}
	})

	t.Run("bad move requests", func(t *testing.T) {
		s := NewServer(gamemaster.NewSession(4, 3))
		rec := serve(t, s, http.MethodPost, "/move", `{"direction":"sideways"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, decode[communication.ErrorResponse](t, rec).Error, "sideways")

		rec = serve(t, s, http.MethodPost, "/move", `{`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		rec = serve(t, s, http.MethodGet, "/move", "")
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("step with default weights", func(t *testing.T) {
		s := NewServer(gamemaster.NewSession(4, 4))
		ref := gamemaster.NewSession(4, 4)
		want, wantSnap, _ := ref.AutoStep(nil)

		rec := serve(t, s, http.MethodPost, "/step", "")
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[communication.MoveResponse](t, rec)
		require.True(t, resp.Moved)
		require.Equal(t, want.String(), resp.Direction)
		require.Equal(t, wantSnap.Rows, resp.Board.Rows)
		require.Equal(t, 1, resp.Board.Moves)
	})

	t.Run("step with weights", func(t *testing.T) {
		w := game.Weights{Empty: 1, Merge: 2}
		s := NewServer(gamemaster.NewSession(4, 5))
		ref := gamemaster.NewSession(4, 5)
		want, _, _ := ref.AutoStep(&w)

		rec := serve(t, s, http.MethodPost, "/step", `{"weights":{"empty":1,"merge":2}}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, want.String(), decode[communication.MoveResponse](t, rec).Direction)
	})

	t.Run("reset", func(t *testing.T) {
		s := NewServer(gamemaster.NewSession(4, 6))
		serve(t, s, http.MethodPost, "/step", "")
		serve(t, s, http.MethodPost, "/step", "")

		rec := serve(t, s, http.MethodPost, "/reset", "")
		require.Equal(t, http.StatusOK, rec.Code)
		state := decode[communication.BoardState](t, rec)
		require.Zero(t, state.Moves)
		require.Zero(t, state.Score)
	})
}

func TestPopulationEndpoint(t *testing.T) {
	t.Run("no population", func(t *testing.T) {
		s := NewServer(gamemaster.NewSession(4, 1))
		require.Equal(t, http.StatusNotFound, serve(t, s, http.MethodGet, "/population", "").Code)
		require.Equal(t, http.StatusNotFound, serve(t, s, http.MethodGet, "/population/stream", "").Code)
	})

	t.Run("snapshot", func(t *testing.T) {
		pop := genetic.NewOptimizer(1).NewPopulation(3)
		pop.Generation = 2
		arena := gamemaster.NewArena(pop, 4, 1)
		arena.StepAll()
		s := NewServer(gamemaster.NewSession(4, 1), WithPopulation(arena))

		rec := serve(t, s, http.MethodGet, "/population", "")
		require.Equal(t, http.StatusOK, rec.Code)
		state := decode[communication.PopulationState](t, rec)
		require.Equal(t, 2, state.Generation)
		require.Len(t, state.Agents, 3)
		for i, a := range state.Agents {
			require.Equal(t, pop.Individuals[i].Weights, a.Weights)
			require.Equal(t, 1, a.Steps)
		}
	})
}

func TestPopulationStream(t *testing.T) {
	pop := genetic.NewOptimizer(1).NewPopulation(2)
	arena := gamemaster.NewArena(pop, 4, 1)
	s := NewServer(gamemaster.NewSession(4, 1), WithPopulation(arena), WithStreamInterval(5*time.Millisecond))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/population/stream", nil)
	require.NoError(t, err)
	defer conn.Close()

	var first communication.PopulationState
	require.NoError(t, conn.ReadJSON(&first))
	require.Len(t, first.Agents, 2)
	require.Zero(t, first.Agents[0].Steps)

	// Unchanged boards are not sent again.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(50*time.Millisecond)))
	var none communication.PopulationState
	require.Error(t, conn.ReadJSON(&none))

	conn2, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/population/stream", nil)
	require.NoError(t, err)
	defer conn2.Close()
	require.NoError(t, conn2.ReadJSON(&first))

	arena.StepAll()
	var next communication.PopulationState
	require.NoError(t, conn2.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn2.ReadJSON(&next))
	require.Equal(t, 1, next.Agents[0].Steps)
}
