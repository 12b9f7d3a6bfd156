package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shekharupadhyay/live-typing-board/internal/api/middleware"
	"github.com/shekharupadhyay/live-typing-board/internal/env"
	"github.com/shekharupadhyay/live-typing-board/internal/queue"
)

type apiFunc func(http.ResponseWriter, *http.Request) error

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// MakeHTTPHandleFunc runs f through the worker queue and wraps it with
// CORS and request logging.
func (s *APIServer) MakeHTTPHandleFunc(f apiFunc) http.HandlerFunc {
	corsConfig := middleware.CORSConfig{
		AllowedOrigins:   []string{env.GetOrDefault(env.WebURL, "*")},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Requested-With"},
		AllowCredentials: false,
	}

	baseHandler := func(w http.ResponseWriter, r *http.Request) {
		errc := make(chan error, 1)

		job := queue.Job{
			Fn: func() error {
				return f(w, r)
			},
			Errc: errc,
		}

		s.requestQueueManager.EnqueueJob(job)

		err := <-errc
		if err != nil {
			var httpErr *HTTPError
			if errors.As(err, &httpErr) {
				fmt.Println(httpErr.ErrorLog)
				WriteJSON(w, httpErr.StatusCode, ApiError{Error: httpErr.Message})
			} else {
				WriteJSON(w, http.StatusInternalServerError, ApiError{Error: "Internal server error"})
			}
		}
	}

	finalHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		baseHandler(w, r)
	}

	return middleware.Chain(finalHandler, middleware.CORS(corsConfig), middleware.Logging())
}
