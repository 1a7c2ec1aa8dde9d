package handlers

import (
	"errors"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/vancomm/antimine/internal/config"
	"github.com/vancomm/antimine/internal/middleware"
	"github.com/vancomm/antimine/internal/repository"
)

// maxPasswordBytes is the longest password bcrypt accepts.
const maxPasswordBytes = 72

var (
	ErrPasswordTooLong  = errors.New("password too long")
	ErrUsernameTaken    = errors.New("username taken")
	ErrWrongCredentials = errors.New("wrong username or password")
)

type Auth struct {
	log     logrus.FieldLogger
	repo    Repository
	cookies *config.Cookies
	cost    int
}

func NewAuth(log logrus.FieldLogger, repo Repository, cookies *config.Cookies) *Auth {
	return &Auth{
		log:     log,
		repo:    repo,
		cookies: cookies,
		cost:    bcrypt.DefaultCost,
	}
}

func (a *Auth) credentials(r *http.Request) (CredentialsDTO, error) {
	if err := r.ParseForm(); err != nil {
		return CredentialsDTO{}, err
	}
	dto, err := decode[CredentialsDTO](r.PostForm)
	if err != nil {
		return dto, err
	}
	if len(dto.Password) > maxPasswordBytes {
		return dto, ErrPasswordTooLong
	}
	return dto, nil
}

func (a *Auth) signIn(w http.ResponseWriter, log logrus.FieldLogger, player *repository.Player) {
	claims := config.NewPlayerClaims(player.PlayerID, player.Username)
	if err := a.cookies.Refresh(w, claims); err != nil {
		sendError(w, log, err)
		return
	}
	sendJSONOrLog(w, log, Status{
		LoggedIn: true,
		Player:   &PlayerInfo{PlayerID: player.PlayerID, Username: player.Username},
	})
}

func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r.Context(), a.log)

	dto, err := a.credentials(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, log, wrapError(err))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), a.cost)
	if err != nil {
		sendError(w, log, err)
		return
	}

	player, err := a.repo.CreatePlayer(r.Context(), repository.CreatePlayerParams{
		Username:     dto.Username,
		PasswordHash: hash,
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		w.WriteHeader(http.StatusConflict)
		sendJSONOrLog(w, log, wrapError(ErrUsernameTaken))
		return
	}
	if err != nil {
		sendError(w, log, err)
		return
	}

	log.WithField("playerID", player.PlayerID).Info("player registered")
	a.signIn(w, log, player)
}

func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r.Context(), a.log)

	dto, err := a.credentials(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, log, wrapError(err))
		return
	}

	player, err := a.repo.GetPlayer(r.Context(), dto.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusUnauthorized)
		sendJSONOrLog(w, log, wrapError(ErrWrongCredentials))
		return
	}
	if err != nil {
		sendError(w, log, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword(player.PasswordHash, []byte(dto.Password)); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		sendJSONOrLog(w, log, wrapError(ErrWrongCredentials))
		return
	}

	a.signIn(w, log, player)
}

func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// Status reports who is logged in and keeps their cookies fresh.
func (a *Auth) Status(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r.Context(), a.log)

	claims, ok := middleware.PlayerClaims(r.Context())
	if !ok {
		a.cookies.Clear(w)
		sendJSONOrLog(w, log, Status{LoggedIn: false})
		return
	}

	refreshed := config.NewPlayerClaims(claims.PlayerID, claims.Username)
	if err := a.cookies.Refresh(w, refreshed); err != nil {
		sendError(w, log, err)
		return
	}
	sendJSONOrLog(w, log, Status{
		LoggedIn: true,
		Player:   &PlayerInfo{PlayerID: claims.PlayerID, Username: claims.Username},
	})
}
