// Package api is the HTTP intake façade: a gin.Engine exposing order
// placement/cancellation, lookups, and live market data, with rs/cors
// mounted ahead of every route.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/k2302/golang-order-matching/engine"
	"github.com/k2302/golang-order-matching/events"
	"github.com/k2302/golang-order-matching/pricefmt"
)

type Server struct {
	eng   *engine.Engine
	codec pricefmt.Codec
	hub   *events.WSHub
	log   *zap.Logger

	router *gin.Engine
}

func NewServer(eng *engine.Engine, codec pricefmt.Codec, hub *events.WSHub, log *zap.Logger) *Server {
	s := &Server{eng: eng, codec: codec, hub: hub, log: log, router: gin.Default()}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.POST("/orders", s.handlePlaceOrder)
	s.router.DELETE("/orders/:id", s.handleCancelOrder)
	s.router.GET("/orders/:id", s.handleGetOrder)
	s.router.GET("/users/:id/orders", s.handleGetUserOrders)
	s.router.GET("/users/:id/balance", s.handleGetUserBalance)
	s.router.GET("/orderbook/:symbol", s.handleGetOrderBook)
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ws/market/:symbol", s.handleWebSocket)
}

// Handler wraps the router with a permissive CORS policy. There is no
// auth model yet, so the default policy is left wide open rather than
// tightened against a scheme that doesn't exist.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

func (s *Server) Run(addr string) error {
	return http.ListenAndServe(addr, s.Handler())
}
