package app

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vancomm/antimine/internal/config"
	"github.com/vancomm/antimine/internal/handlers"
	"github.com/vancomm/antimine/internal/repository"
)

func (a *App) loadRoutes() {
	repo := repository.New(a.db)
	base := config.BasePath()

	game := handlers.NewGameHandler(a.log, repo, a.presets, *a.prefs, a.metrics, a.ws)
	a.router.HandleFunc("POST "+base+"/game", game.NewGame)
	a.router.HandleFunc("GET "+base+"/game/current", game.Current)
	a.router.HandleFunc("GET "+base+"/game/{id}", game.Fetch)
	a.router.HandleFunc("POST "+base+"/game/{id}/click", game.Click())
	a.router.HandleFunc("POST "+base+"/game/{id}/long-click", game.LongClick())
	a.router.HandleFunc("POST "+base+"/game/{id}/assistant", game.Assistant())
	a.router.HandleFunc("POST "+base+"/game/{id}/forfeit", game.Forfeit())
	a.router.HandleFunc("GET "+base+"/game/{id}/connect", game.Connect)

	highscores := handlers.NewHighscores(a.log, repo)
	a.router.HandleFunc("GET "+base+"/highscores", highscores.List)

	auth := handlers.NewAuth(a.log, repo, a.cookies)
	a.router.HandleFunc("POST "+base+"/auth/register", auth.Register)
	a.router.HandleFunc("POST "+base+"/auth/login", auth.Login)
	a.router.HandleFunc("POST "+base+"/auth/logout", auth.Logout)
	a.router.HandleFunc("GET "+base+"/auth/status", auth.Status)

	a.router.Handle("GET /metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
}
