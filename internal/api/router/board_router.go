package router

import (
	"net/http"

	"github.com/shekharupadhyay/live-typing-board/internal/api"
	"github.com/shekharupadhyay/live-typing-board/internal/api/endpoints"
)

func BoardRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		boardEndpoints := endpoints.NewBoardEndpoints(s.Handler(), s.Rooms())
		mux.HandleFunc("/ws", s.MakeHTTPHandleFunc(boardEndpoints.Websocket))
		mux.HandleFunc(prefix+"/stats", s.MakeHTTPHandleFunc(boardEndpoints.Stats))
	}
}
