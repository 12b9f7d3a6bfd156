package endpoints

import (
	"net/http"

	"github.com/shekharupadhyay/live-typing-board/internal/service/room"
	"github.com/shekharupadhyay/live-typing-board/internal/websocket"
)

type BoardEndpoints interface {
	Websocket(http.ResponseWriter, *http.Request) error
	Stats(http.ResponseWriter, *http.Request) error
}

type boardEndpoints struct {
	handler *websocket.Handler
	rooms   *room.Service
}

func NewBoardEndpoints(handler *websocket.Handler, rooms *room.Service) BoardEndpoints {
	return &boardEndpoints{
		handler: handler,
		rooms:   rooms,
	}
}

func (e *boardEndpoints) Websocket(w http.ResponseWriter, r *http.Request) error {
	return e.handler.ServeWS(w, r)
}

type StatsResponse struct {
	Rooms       int `json:"rooms"`
	Members     int `json:"members"`
	Connections int `json:"connections"`
}

// Stats exposes aggregate counts only. Room ids are the access tokens,
// so nothing here ever lists them.
func (e *boardEndpoints) Stats(w http.ResponseWriter, r *http.Request) error {
	st := e.rooms.Stats()
	return WriteJSON(w, http.StatusOK, StatsResponse{
		Rooms:       st.Rooms,
		Members:     st.Members,
		Connections: e.handler.Connections(),
	})
}
