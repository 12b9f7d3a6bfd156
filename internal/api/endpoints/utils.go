package endpoints

import (
	"net/http"

	"github.com/shekharupadhyay/live-typing-board/internal/api"
)

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	return api.WriteJSON(w, status, v)
}
