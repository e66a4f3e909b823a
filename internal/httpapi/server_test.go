package httpapi

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"lostfound-server/internal/app"
	"lostfound-server/internal/geom"
	"lostfound-server/internal/model"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	m := model.NewMap("map1", "Town", 2, 3)
	m.AddRoad(model.NewRoad(model.Horizontal, geom.Point2D{X: 0, Y: 0}, 40))
	m.LootSettings = model.LootSettings{Probability: 0, Values: []uint{10}}

	game := model.NewGame(false)
	require.NoError(t, game.AddMap(m))

	a := app.New(game, rand.New(rand.NewSource(1)), rand.New(rand.NewSource(2)), rand.New(rand.NewSource(3)))
	t.Cleanup(a.Close)

	return New(a, ":0", true)
}

func TestHandleMaps(t *testing.T) {
	srv := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/maps", nil)
	srv.Mux().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var out []mapSummaryView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Equal(t, []mapSummaryView{{ID: "map1", Name: "Town"}}, out)
}

func TestHandleMapByIDNotFound(t *testing.T) {
	srv := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/maps/nope", nil)
	srv.Mux().ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestJoinThenActionThenState(t *testing.T) {
	srv := newTestServer(t)
	mux := srv.Mux()

	body, _ := json.Marshal(joinRequest{UserName: "Alice", MapID: "map1"})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/game/join", bytes.NewReader(body))
	mux.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var joined joinResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &joined))
	require.Len(t, joined.AuthToken, 32)

	actionBody, _ := json.Marshal(actionRequest{Move: "R"})
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/game/player/action", bytes.NewReader(actionBody))
	req.Header.Set("Authorization", "Bearer "+joined.AuthToken)
	mux.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/game/tick", bytes.NewReader(mustJSON(tickRequest{TimeDelta: 1000})))
	mux.ServeHTTP(rr, req)
	// AutoTick is true for this fixture, so manual tick should be rejected.
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/game/state", nil)
	req.Header.Set("Authorization", "Bearer "+joined.AuthToken)
	mux.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var state gameStateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	require.Len(t, state.Players, 1)
}

func TestStateRequiresAuthorization(t *testing.T) {
	srv := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/game/state", nil)
	srv.Mux().ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestStateRejectsMalformedToken(t *testing.T) {
	srv := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/game/state", nil)
	req.Header.Set("Authorization", "Bearer abc")
	srv.Mux().ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
