package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/antimine/internal/middleware"
	"github.com/vancomm/antimine/internal/repository"
)

type Highscores struct {
	log  logrus.FieldLogger
	repo Repository
}

func NewHighscores(log logrus.FieldLogger, repo Repository) *Highscores {
	return &Highscores{log: log, repo: repo}
}

// List returns the best won games, optionally for one difficulty or player.
func (h *Highscores) List(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r.Context(), h.log)

	dto, err := decode[HighscoresDTO](r.URL.Query())
	if err != nil {
		sendError(w, log, err)
		return
	}

	scores, err := h.repo.GetHighscores(r.Context(), dto.Filter())
	if err != nil {
		sendError(w, log, err)
		return
	}
	if scores == nil {
		scores = []repository.Highscore{}
	}
	sendJSONOrLog(w, log, scores)
}
