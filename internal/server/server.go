package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yirenWang/myVelib/internal/api"
	"github.com/yirenWang/myVelib/internal/config"
	"github.com/yirenWang/myVelib/internal/network"
)

type Server struct {
	router *gin.Engine
	net    *network.Network
	config *config.Config
}

func New(n *network.Network, cfg *config.Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	h := newHandlers(n)

	router.POST("/users", h.AddUser)
	router.GET("/users/:userID", h.GetUser)

	router.POST("/stations", h.AddStation)
	router.GET("/stations", h.ListStations)
	router.GET("/stations/:stationID", h.GetStation)
	router.PUT("/stations/:stationID/online", h.SetOnline)
	router.PUT("/stations/:stationID/offline", h.SetOffline)
	router.POST("/stations/:stationID/bikes", h.AddBike)

	router.POST("/rides/plan", h.PlanRide)
	router.POST("/rides/rent", h.RentBike)
	router.POST("/rides/return", h.ReturnBike)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
	})
	router.GET("/metrics", Metrics())

	return &Server{
		router: router,
		net:    n,
		config: cfg,
	}
}

// Router exposes the gin engine, mainly for httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start(port string) error {
	return s.router.Run(":" + port)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
