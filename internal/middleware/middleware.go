package middleware

import "net/http"

type Middleware func(http.Handler) http.Handler

// Wrap applies mws so that the first one listed runs innermost.
func Wrap(h http.Handler, mws ...Middleware) http.Handler {
	for _, mw := range mws {
		h = mw(h)
	}
	return h
}

type CtxKey int

const (
	CtxPlayerClaims CtxKey = iota
	CtxLogger
	CtxRequestID
)
