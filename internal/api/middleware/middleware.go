package middleware

import "net/http"

type Middleware func(http.HandlerFunc) http.HandlerFunc

// Chain applies the middlewares so the first one listed runs outermost.
func Chain(f http.HandlerFunc, middlewares ...Middleware) http.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		f = middlewares[i](f)
	}
	return f
}
