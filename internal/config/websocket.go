package config

import (
	"net/http"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader websocket.Upgrader
}

// NewWebSocket accepts every origin unless WS_ALLOWED_ORIGINS lists the
// permitted hosts, comma separated.
func NewWebSocket() (*WebSocket, error) {
	var allowed []string
	for _, host := range strings.Split(os.Getenv("WS_ALLOWED_ORIGINS"), ",") {
		if host = strings.TrimSpace(host); host != "" {
			allowed = append(allowed, host)
		}
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			origin, err := url.Parse(r.Header.Get("Origin"))
			if err != nil {
				return false
			}
			return slices.Contains(allowed, origin.Host)
		},
	}

	return &WebSocket{Upgrader: upgrader}, nil
}
