package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yirenWang/myVelib/internal/api"
	"github.com/yirenWang/myVelib/internal/bike"
	"github.com/yirenWang/myVelib/internal/card"
	"github.com/yirenWang/myVelib/internal/geo"
	"github.com/yirenWang/myVelib/internal/network"
	"github.com/yirenWang/myVelib/internal/rideplan"
	"github.com/yirenWang/myVelib/internal/station"
	"github.com/yirenWang/myVelib/internal/user"
)

type handlers struct {
	net *network.Network
}

func newHandlers(n *network.Network) *handlers {
	return &handlers{net: n}
}

type addUserRequest struct {
	Name     string `json:"name" binding:"required" validate:"required,min=1,max=100"`
	CardType string `json:"card_type" binding:"required" validate:"required"`
}

type addStationRequest struct {
	Kind     string   `json:"kind" binding:"required"`
	Capacity int      `json:"capacity" binding:"required,min=1"`
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
	Online   *bool    `json:"online"`
}

type addBikeRequest struct {
	Type string `json:"type" binding:"required"`
}

type pointPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type planRideRequest struct {
	UserID      int          `json:"user_id" binding:"required"`
	Source      pointPayload `json:"source"`
	Destination pointPayload `json:"destination"`
	Policy      string       `json:"policy" binding:"required"`
	BikeType    string       `json:"bike_type" binding:"required"`
}

type rentBikeRequest struct {
	UserID    int       `json:"user_id" binding:"required"`
	StationID int       `json:"station_id" binding:"required"`
	BikeType  string    `json:"bike_type" binding:"required"`
	At        time.Time `json:"at" binding:"required"`
}

type returnBikeRequest struct {
	UserID    int       `json:"user_id" binding:"required"`
	StationID int       `json:"station_id" binding:"required"`
	At        time.Time `json:"at" binding:"required"`
}

type stationResponse struct {
	ID           int          `json:"id"`
	Kind         string       `json:"kind"`
	Coordinates  pointPayload `json:"coordinates"`
	Capacity     int          `json:"capacity"`
	Bikes        int          `json:"bikes"`
	Online       bool         `json:"online"`
	TotalRentals int          `json:"total_rentals"`
	TotalReturns int          `json:"total_returns"`
}

type userResponse struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Coordinates pointPayload `json:"coordinates"`
	CardType    string       `json:"card_type"`
	TimeCredit  int          `json:"time_credit"`
	Stats       user.Stats   `json:"stats"`
	Inbox       []string     `json:"inbox"`
}

type planResponse struct {
	UserID        int    `json:"user_id"`
	Policy        string `json:"policy"`
	BikeType      string `json:"bike_type"`
	SourceStation int    `json:"source_station"`
	DestStation   int    `json:"dest_station"`
	Message       string `json:"message"`
}

func (h *handlers) AddUser(c *gin.Context) {
	var req addUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if errs := ValidateStruct(req); len(errs) > 0 {
		RespondWithValidationErrors(c, errs)
		return
	}
	kind, err := card.ParseKind(req.CardType)
	if err != nil {
		respondError(c, err)
		return
	}
	u, err := h.net.AddUser(req.Name, kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userView(u))
}

func (h *handlers) GetUser(c *gin.Context) {
	id, ok := pathID(c, "userID")
	if !ok {
		return
	}
	u, err := h.net.User(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userView(u))
}

func (h *handlers) AddStation(c *gin.Context) {
	var req addStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	kind, err := station.ParseKind(req.Kind)
	if err != nil {
		respondError(c, err)
		return
	}
	var s *station.Station
	if req.X != nil && req.Y != nil {
		online := true
		if req.Online != nil {
			online = *req.Online
		}
		s, err = h.net.AddStationAt(kind, req.Capacity, geo.Point{X: *req.X, Y: *req.Y}, online)
	} else {
		s, err = h.net.AddStation(kind, req.Capacity)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stationView(s))
}

func (h *handlers) ListStations(c *gin.Context) {
	if raw, ok := c.GetQuery("sort"); ok {
		policy, err := station.ParseSortPolicy(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		ranked, err := h.net.SortStations(policy)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stationViews(ranked))
		return
	}
	c.JSON(http.StatusOK, stationViews(h.net.Stations()))
}

func (h *handlers) GetStation(c *gin.Context) {
	id, ok := pathID(c, "stationID")
	if !ok {
		return
	}
	s, err := h.net.Station(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stationView(s))
}

func (h *handlers) SetOnline(c *gin.Context) {
	h.setOnline(c, true)
}

func (h *handlers) SetOffline(c *gin.Context) {
	h.setOnline(c, false)
}

func (h *handlers) setOnline(c *gin.Context, online bool) {
	id, ok := pathID(c, "stationID")
	if !ok {
		return
	}
	var (
		changed bool
		err     error
	)
	if online {
		changed, err = h.net.SetOnline(id)
	} else {
		changed, err = h.net.SetOffline(id)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	state := "offline"
	if online {
		state = "online"
	}
	if !changed {
		c.JSON(http.StatusOK, api.MessageResponse{Message: "station " + strconv.Itoa(id) + " is already " + state})
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "station " + strconv.Itoa(id) + " is now " + state})
}

func (h *handlers) AddBike(c *gin.Context) {
	id, ok := pathID(c, "stationID")
	if !ok {
		return
	}
	var req addBikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	t, err := bike.ParseType(req.Type)
	if err != nil {
		respondError(c, err)
		return
	}
	b, err := h.net.AddBike(id, t)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *handlers) PlanRide(c *gin.Context) {
	var req planRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	policy, err := rideplan.ParsePolicy(req.Policy)
	if err != nil {
		respondError(c, err)
		return
	}
	t, err := bike.ParseType(req.BikeType)
	if err != nil {
		respondError(c, err)
		return
	}
	plan, err := h.net.PlanRide(req.UserID,
		geo.Point{X: req.Source.X, Y: req.Source.Y},
		geo.Point{X: req.Destination.X, Y: req.Destination.Y},
		policy, t)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, planResponse{
		UserID:        req.UserID,
		Policy:        plan.Policy.String(),
		BikeType:      plan.BikeType.String(),
		SourceStation: plan.SourceStation.ID(),
		DestStation:   plan.DestStation.ID(),
		Message:       plan.String(),
	})
}

func (h *handlers) RentBike(c *gin.Context) {
	var req rentBikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	t, err := bike.ParseType(req.BikeType)
	if err != nil {
		respondError(c, err)
		return
	}
	b, err := h.net.RentBike(req.UserID, req.StationID, t, req.At)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bike":       b,
		"user_id":    req.UserID,
		"station_id": req.StationID,
		"rented_at":  req.At,
	})
}

func (h *handlers) ReturnBike(c *gin.Context) {
	var req returnBikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	r, err := h.net.ReturnBike(req.UserID, req.StationID, req.At)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rental":     r,
		"user_id":    req.UserID,
		"station_id": req.StationID,
	})
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}

func stationView(s *station.Station) stationResponse {
	return stationResponse{
		ID:           s.ID(),
		Kind:         s.Kind().String(),
		Coordinates:  pointPayload{X: s.Coordinates().X, Y: s.Coordinates().Y},
		Capacity:     s.Capacity(),
		Bikes:        s.CountBikes(),
		Online:       s.Online(),
		TotalRentals: s.TotalRentals(),
		TotalReturns: s.TotalReturns(),
	}
}

func stationViews(stations []*station.Station) []stationResponse {
	out := make([]stationResponse, 0, len(stations))
	for _, s := range stations {
		out = append(out, stationView(s))
	}
	return out
}

func userView(u *user.User) userResponse {
	return userResponse{
		ID:          u.ID(),
		Name:        u.Name(),
		Coordinates: pointPayload{X: u.Coordinates().X, Y: u.Coordinates().Y},
		CardType:    u.Card().Kind().String(),
		TimeCredit:  u.Card().Credit(),
		Stats:       u.Stats(),
		Inbox:       u.Inbox(),
	}
}

// respondError renders an engine error with the shared user-facing message
// and a status matching its kind.
func respondError(c *gin.Context, err error) {
	c.JSON(httpStatus(err), api.ErrorResponse{Error: network.ErrorMessage(err)})
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, network.ErrUnknownUser), errors.Is(err, network.ErrUnknownStation):
		return http.StatusNotFound
	case errors.Is(err, network.ErrOngoingRental),
		errors.Is(err, network.ErrNoActiveRental),
		errors.Is(err, station.ErrOffline),
		errors.Is(err, station.ErrFull),
		errors.Is(err, station.ErrBikeUnavailable),
		errors.Is(err, rideplan.ErrNoViableStation):
		return http.StatusConflict
	case errors.Is(err, network.ErrOutOfBounds),
		errors.Is(err, bike.ErrInvalidType),
		errors.Is(err, card.ErrInvalidKind),
		errors.Is(err, station.ErrInvalidKind),
		errors.Is(err, rideplan.ErrUnknownPolicy),
		errors.Is(err, station.ErrUnknownSortPolicy),
		errors.Is(err, station.ErrInvalidTimeSpan),
		errors.Is(err, card.ErrInvalidDates),
		errors.Is(err, card.ErrInvalidBike):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
