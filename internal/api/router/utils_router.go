package router

import (
	"net/http"

	"github.com/shekharupadhyay/live-typing-board/internal/api"
	"github.com/shekharupadhyay/live-typing-board/internal/api/endpoints"
)

func UtilsRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		utilsEndpoints := endpoints.NewUtilsEndpoints()
		mux.HandleFunc(prefix+"/health", s.MakeHTTPHandleFunc(utilsEndpoints.Health))
	}
}
