package api

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shekharupadhyay/live-typing-board/internal/queue"
	"github.com/shekharupadhyay/live-typing-board/internal/service/room"
	"github.com/shekharupadhyay/live-typing-board/internal/websocket"
)

type RouteRegistrar func(mux *http.ServeMux, s *APIServer)

type APIServer struct {
	listenAddr          string
	requestQueueManager *queue.RequestQueueManager
	rooms               *room.Service
	handler             *websocket.Handler
	routeRegistrars     []RouteRegistrar
	metrics             *metrics
}

func NewAPIServer(listenAddr string, rqm *queue.RequestQueueManager, rooms *room.Service, handler *websocket.Handler, registrars ...RouteRegistrar) *APIServer {
	return &APIServer{
		listenAddr:          listenAddr,
		requestQueueManager: rqm,
		rooms:               rooms,
		handler:             handler,
		routeRegistrars:     registrars,
		metrics:             newMetrics(prometheus.DefaultRegisterer, listenAddr, rqm),
	}
}

func (s *APIServer) Run() {
	mux := http.NewServeMux()

	for _, reg := range s.routeRegistrars {
		reg(mux, s)
	}

	mux.Handle("/metrics", s.metrics.metricsHandler())

	fmt.Printf("Server listening on http://localhost%s\n", s.listenAddr)

	if err := http.ListenAndServe(s.listenAddr, s.metrics.instrument(mux)); err != nil {
		fmt.Printf("server stopped: %v\n", err)
	}
}

func (s *APIServer) Rooms() *room.Service {
	return s.rooms
}

func (s *APIServer) Handler() *websocket.Handler {
	return s.handler
}
