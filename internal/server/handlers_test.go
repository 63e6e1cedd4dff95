package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yirenWang/myVelib/internal/bike"
	"github.com/yirenWang/myVelib/internal/config"
	"github.com/yirenWang/myVelib/internal/geo"
	"github.com/yirenWang/myVelib/internal/network"
	"github.com/yirenWang/myVelib/internal/station"
)

func testServer(t *testing.T) (*Server, *network.Network) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	n := network.New("paris", 10, 1, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	_, err := n.AddStationAt(station.Standard, 2, geo.Point{X: 1, Y: 1}, true)
	require.NoError(t, err)
	_, err = n.AddStationAt(station.Plus, 2, geo.Point{X: 8, Y: 8}, true)
	require.NoError(t, err)
	_, err = n.AddBike(1, bike.Mechanical)
	require.NoError(t, err)

	cfg := &config.Config{RateLimitRPS: 1000, RateLimitBurst: 1000}
	return New(n, cfg), n
}

func perform(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAddUser(t *testing.T) {
	srv, _ := testServer(t)

	t.Run("creates the user", func(t *testing.T) {
		w := perform(t, srv, "POST", "/users", `{"name":"alice","card_type":"vlibre"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		body := decode(t, w)
		assert.Equal(t, "alice", body["name"])
		assert.Equal(t, "VLIBRE", body["card_type"])
		assert.Equal(t, float64(1), body["id"])
	})

	t.Run("missing name", func(t *testing.T) {
		w := perform(t, srv, "POST", "/users", `{"card_type":"vlibre"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown card type", func(t *testing.T) {
		w := perform(t, srv, "POST", "/users", `{"name":"bob","card_type":"GOLD"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "This type of card is not recognized.")
	})
}

func TestGetUser(t *testing.T) {
	srv, _ := testServer(t)
	perform(t, srv, "POST", "/users", `{"name":"alice","card_type":"no_card"}`)

	w := perform(t, srv, "GET", "/users/1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(t, srv, "GET", "/users/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(t, srv, "GET", "/users/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddStation(t *testing.T) {
	srv, _ := testServer(t)

	t.Run("explicit coordinates", func(t *testing.T) {
		w := perform(t, srv, "POST", "/stations", `{"kind":"plus","capacity":3,"x":2.5,"y":2.5,"online":false}`)
		require.Equal(t, http.StatusCreated, w.Code)

		body := decode(t, w)
		assert.Equal(t, "PLUS", body["kind"])
		assert.Equal(t, float64(3), body["capacity"])
		assert.Equal(t, false, body["online"])
	})

	t.Run("out of bounds", func(t *testing.T) {
		w := perform(t, srv, "POST", "/stations", `{"kind":"standard","capacity":3,"x":50,"y":0}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Coordinates are out of bounds.")
	})

	t.Run("unknown kind", func(t *testing.T) {
		w := perform(t, srv, "POST", "/stations", `{"kind":"mega","capacity":3}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListStations(t *testing.T) {
	srv, _ := testServer(t)

	w := perform(t, srv, "GET", "/stations", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	w = perform(t, srv, "GET", "/stations?sort=least_occupied", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	// Station 2 is empty and ranks first.
	assert.Equal(t, float64(2), list[0]["id"])

	w = perform(t, srv, "GET", "/stations?sort=popularity", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStationOnlineOffline(t *testing.T) {
	srv, _ := testServer(t)

	w := perform(t, srv, "PUT", "/stations/1/offline", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "station 1 is now offline")

	w = perform(t, srv, "PUT", "/stations/1/offline", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "station 1 is already offline")

	w = perform(t, srv, "PUT", "/stations/99/online", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddBike(t *testing.T) {
	srv, _ := testServer(t)

	w := perform(t, srv, "POST", "/stations/1/bikes", `{"type":"elec"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = perform(t, srv, "POST", "/stations/1/bikes", `{"type":"hover"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(t, srv, "POST", "/stations/99/bikes", `{"type":"mech"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlanRide(t *testing.T) {
	srv, _ := testServer(t)
	perform(t, srv, "POST", "/users", `{"name":"alice","card_type":"no_card"}`)

	w := perform(t, srv, "POST", "/rides/plan",
		`{"user_id":1,"source":{"x":0,"y":0},"destination":{"x":9,"y":9},"policy":"shortest","bike_type":"mech"}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(1), body["source_station"])
	assert.Equal(t, float64(2), body["dest_station"])
	assert.Equal(t, "SHORTEST", body["policy"])

	w = perform(t, srv, "POST", "/rides/plan",
		`{"user_id":1,"source":{"x":0,"y":0},"destination":{"x":9,"y":9},"policy":"scenic","bike_type":"mech"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRentAndReturn(t *testing.T) {
	srv, _ := testServer(t)
	perform(t, srv, "POST", "/users", `{"name":"alice","card_type":"no_card"}`)

	w := perform(t, srv, "POST", "/rides/rent",
		`{"user_id":1,"station_id":1,"bike_type":"mech","at":"2026-05-01T08:00:00Z"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// A second rent for the same user conflicts.
	w = perform(t, srv, "POST", "/rides/rent",
		`{"user_id":1,"station_id":1,"bike_type":"mech","at":"2026-05-01T08:05:00Z"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "This user already has a bike rental in progress.")

	w = perform(t, srv, "POST", "/rides/return",
		`{"user_id":1,"station_id":2,"at":"2026-05-01T09:30:00Z"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"price":"2"`)

	// No active rental anymore.
	w = perform(t, srv, "POST", "/rides/return",
		`{"user_id":1,"station_id":2,"at":"2026-05-01T10:00:00Z"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)

	w := perform(t, srv, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
