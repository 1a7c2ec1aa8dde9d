package app

import (
	"crypto/rand"
	"crypto/rsa"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/antimine/internal/config"
	"github.com/vancomm/antimine/internal/middleware"
)

// newTestApp wires every route without a database. Requests that reach
// storage must not be sent.
func newTestApp(t *testing.T) *App {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	t.Setenv("COOKIES_DOMAIN", "example.com")
	t.Setenv("APP_BASE_PATH", "")
	log := logrus.New()
	log.SetOutput(io.Discard)

	a := New(log)
	a.cookies, err = config.NewCookies(config.NewJWTWithKeys(key, &key.PublicKey, time.Hour))
	require.NoError(t, err)
	a.ws, err = config.NewWebSocket()
	require.NoError(t, err)
	prefs := config.DefaultPreferences()
	a.prefs = &prefs
	a.presets = config.DefaultPresets()
	a.loadRoutes()
	return a
}

func TestRoutes(t *testing.T) {
	a := newTestApp(t)
	handler := a.Handler()

	tests := []struct {
		method, target string
		status         int
	}{
		{http.MethodGet, "/game/abc", http.StatusBadRequest},
		{http.MethodPost, "/game/abc/click?cell=1", http.StatusBadRequest},
		{http.MethodPost, "/game?difficulty=hard&cell=0", http.StatusBadRequest},
		{http.MethodGet, "/game/current", http.StatusUnauthorized},
		{http.MethodGet, "/highscores?limit=-1", http.StatusBadRequest},
		{http.MethodGet, "/auth/status", http.StatusOK},
		{http.MethodPost, "/auth/logout", http.StatusNoContent},
		{http.MethodDelete, "/game/1", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nowhere", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestMetricsRoute(t *testing.T) {
	a := newTestApp(t)
	a.metrics.PressArea(3)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "antimine_presses_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
