package handlers

import (
	"context"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/antimine/internal/config"
	"github.com/vancomm/antimine/internal/middleware"
	"github.com/vancomm/antimine/internal/repository"
	"github.com/vancomm/antimine/internal/session"
)

type GameHandler struct {
	log       logrus.FieldLogger
	repo      Repository
	presets   *config.Presets
	prefs     config.Preferences
	analytics session.Analytics
	ws        *config.WebSocket
	newSeed   func() uint64
}

func NewGameHandler(
	log logrus.FieldLogger,
	repo Repository,
	presets *config.Presets,
	prefs config.Preferences,
	analytics session.Analytics,
	ws *config.WebSocket,
) *GameHandler {
	return &GameHandler{
		log:       log,
		repo:      repo,
		presets:   presets,
		prefs:     prefs,
		analytics: analytics,
		ws:        ws,
		newSeed:   rand.Uint64,
	}
}

type gameOptions struct {
	playerID *int64
	presets  *config.Presets
	listener session.Listener
	delay    time.Duration

	// wallClock counts a stored game's time from its start rather than
	// from the clock saved with it.
	wallClock bool
}

func (g *GameHandler) controller(log logrus.FieldLogger, opts gameOptions) *session.Controller {
	presets := opts.presets
	if presets == nil {
		presets = g.presets
	}
	return session.New(session.Options{
		Dimensions:     presets,
		Preferences:    g.prefs,
		Saves:          gameSaves{repo: g.repo, playerID: opts.playerID},
		Analytics:      g.analytics,
		Listener:       opts.listener,
		Logger:         log,
		ExplosionDelay: opts.delay,
		NewSeed:        g.newSeed,
	})
}

func playerID(r *http.Request) *int64 {
	if claims, ok := middleware.PlayerClaims(r.Context()); ok {
		return &claims.PlayerID
	}
	return nil
}

// load rebuilds a stored game for the player making the request. Games of
// registered players are off limits to everyone else.
func (g *GameHandler) load(r *http.Request, opts gameOptions) (*session.Controller, error) {
	saveID, err := parseSaveID(r)
	if err != nil {
		return nil, err
	}
	row, err := g.repo.GetSave(r.Context(), saveID)
	if err != nil {
		return nil, err
	}
	if row.PlayerID != nil {
		if id := playerID(r); id == nil || *id != *row.PlayerID {
			return nil, ErrNotYourGame
		}
	}

	save, err := row.SaveState()
	if err != nil {
		return nil, err
	}
	if opts.wallClock && !row.Finished() {
		save.ElapsedSeconds = max(save.ElapsedSeconds, int64(time.Since(row.StartedAt).Seconds()))
	}

	opts.playerID = row.PlayerID
	log := middleware.Logger(r.Context(), g.log).WithField("saveID", saveID)
	c := g.controller(log, opts)
	if _, err := c.Resume(*save); err != nil {
		return nil, err
	}
	return c, nil
}

// respond sends the game the controller holds together with its stored row.
func (g *GameHandler) respond(w http.ResponseWriter, r *http.Request, c *session.Controller, status int) {
	log := middleware.Logger(r.Context(), g.log)

	snapshot, err := c.Snapshot()
	if err != nil {
		sendError(w, log, err)
		return
	}
	view, err := c.View()
	if err != nil {
		sendError(w, log, err)
		return
	}

	var row *repository.GameSave
	if snapshot.SaveID != 0 {
		if row, err = g.repo.GetSave(r.Context(), snapshot.SaveID); err != nil {
			sendError(w, log, err)
			return
		}
	}
	w.WriteHeader(status)
	sendJSONOrLog(w, log, newGameDTO(snapshot.Difficulty, snapshot.Minefield, view, row))
}

// finish settles a game that ev ends and stores the result.
func finish(ctx context.Context, c *session.Controller, ev session.Event) error {
	if ev.Finished() {
		return c.Settle(ctx, ev)
	}
	return c.SaveGame(ctx)
}

// NewGame starts a board and opens the first cell on it. The game is stored
// from that first click on.
func (g *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r.Context(), g.log)

	dto, err := decode[CreateGameDTO](r.URL.Query())
	if err != nil {
		sendError(w, log, err)
		return
	}

	opts := gameOptions{playerID: playerID(r)}
	d, custom := dto.Board()
	if custom != nil {
		if err := custom.Validate(); err != nil {
			sendError(w, log, err)
			return
		}
		opts.presets = g.presets.WithCustom(*custom)
	}

	c := g.controller(log, opts)
	defer c.StopClock()
	if _, err := c.StartNewGame(d); err != nil {
		sendError(w, log, err)
		return
	}
	ev, err := c.ClickArea(dto.Cell)
	if err != nil {
		sendError(w, log, err)
		return
	}
	if err := finish(r.Context(), c, ev); err != nil {
		sendError(w, log, err)
		return
	}
	g.respond(w, r, c, http.StatusCreated)
}

// Current resumes the player's unfinished game, or deals a fresh board that
// is stored once it is clicked.
func (g *GameHandler) Current(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r.Context(), g.log)

	id := playerID(r)
	if id == nil {
		sendError(w, log, ErrLoginRequired)
		return
	}

	c := g.controller(log, gameOptions{playerID: id})
	if _, err := c.OnCreate(r.Context(), nil); err != nil {
		sendError(w, log, err)
		return
	}
	g.respond(w, r, c, http.StatusOK)
}

func (g *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	c, err := g.load(r, gameOptions{wallClock: true})
	if err != nil {
		sendError(w, middleware.Logger(r.Context(), g.log), err)
		return
	}
	g.respond(w, r, c, http.StatusOK)
}

type gameAction func(c *session.Controller, r *http.Request) (session.Event, error)

func (g *GameHandler) act(action gameAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := middleware.Logger(r.Context(), g.log)

		c, err := g.load(r, gameOptions{wallClock: true})
		if err != nil {
			sendError(w, log, err)
			return
		}
		defer c.StopClock()

		ev, err := action(c, r)
		if err != nil {
			sendError(w, log, err)
			return
		}
		if err := finish(r.Context(), c, ev); err != nil {
			sendError(w, log, err)
			return
		}
		g.respond(w, r, c, http.StatusOK)
	}
}

func (g *GameHandler) Click() http.HandlerFunc {
	return g.act(func(c *session.Controller, r *http.Request) (session.Event, error) {
		dto, err := decode[CellDTO](r.URL.Query())
		if err != nil {
			return session.EventNone, err
		}
		return c.ClickArea(dto.Cell)
	})
}

func (g *GameHandler) LongClick() http.HandlerFunc {
	return g.act(func(c *session.Controller, r *http.Request) (session.Event, error) {
		dto, err := decode[CellDTO](r.URL.Query())
		if err != nil {
			return session.EventNone, err
		}
		return c.LongClick(dto.Cell)
	})
}

func (g *GameHandler) Assistant() http.HandlerFunc {
	return g.act(func(c *session.Controller, _ *http.Request) (session.Event, error) {
		return c.RunAssistant()
	})
}

func (g *GameHandler) Forfeit() http.HandlerFunc {
	return g.act(func(c *session.Controller, r *http.Request) (session.Event, error) {
		return session.EventNone, c.Forfeit(r.Context())
	})
}

type wsError struct {
	Error string `json:"error"`
}

// wsWriter is the only writer of a websocket once attached. Updates sent
// before that are dropped.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) attach(conn *websocket.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.conn = conn
}

func (w *wsWriter) write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return nil
	}
	return w.conn.WriteJSON(v)
}

// Connect plays a stored game over a websocket. Every update of the board,
// clock ticks and the staged explosion included, is streamed as JSON.
func (g *GameHandler) Connect(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r.Context(), g.log)

	out := &wsWriter{}
	c, err := g.load(r, gameOptions{
		listener: func(u session.Update) {
			if err := out.write(u); err != nil {
				log.WithError(err).Debug("unable to write update")
			}
		},
		delay: session.DefaultExplosionDelay,
	})
	if err != nil {
		sendError(w, log, err)
		return
	}

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("unable to upgrade connection")
		return
	}
	defer conn.Close()

	view, err := c.View()
	if err != nil {
		log.WithError(err).Error("unable to read game")
		return
	}
	if err := conn.WriteJSON(view); err != nil {
		log.WithError(err).Debug("unable to write game")
		return
	}
	out.attach(conn)
	c.ResumeGame()

	defer func() {
		c.Pause()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
		defer cancel()
		if err := c.SaveGame(ctx); err != nil {
			log.WithError(err).Error("unable to save game on disconnect")
		}
	}()

	err = loop(r.Context(), conn, out, c, log)
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		log.WithError(err).Info("websocket closed")
	}
}

func loop(ctx context.Context, conn *websocket.Conn, out *wsWriter, c *session.Controller, log logrus.FieldLogger) error {
	for {
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if mt != websocket.TextMessage {
			return nil
		}

		for _, line := range strings.Split(strings.TrimSpace(string(buf)), "\n") {
			ev, err := c.Execute(ctx, line)
			if err != nil {
				log.WithError(err).WithField("command", line).Debug("rejected command")
				if err := out.write(wsError{Error: err.Error()}); err != nil {
					return err
				}
				continue
			}
			if ev.Finished() {
				if err := c.Settle(ctx, ev); err != nil {
					return err
				}
				break
			}
		}
		if err := c.SaveGame(ctx); err != nil {
			return err
		}
	}
}
