package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/antimine/internal/mines"
	"github.com/vancomm/antimine/internal/repository"
	"github.com/vancomm/antimine/internal/session"
)

// Repository is the slice of persistence the handlers need.
type Repository interface {
	CreateSave(ctx context.Context, playerID *int64, save mines.SaveState) (*repository.GameSave, error)
	UpdateSave(ctx context.Context, save mines.SaveState) (*repository.GameSave, error)
	GetSave(ctx context.Context, saveID int64) (*repository.GameSave, error)
	FetchCurrentSave(ctx context.Context, playerID int64) (*repository.GameSave, error)
	GetHighscores(ctx context.Context, filter repository.HighscoreFilter) ([]repository.Highscore, error)
	CreatePlayer(ctx context.Context, params repository.CreatePlayerParams) (*repository.Player, error)
	GetPlayer(ctx context.Context, username string) (*repository.Player, error)
}

var _ Repository = (*repository.Queries)(nil)

var (
	ErrBadSaveID     = errors.New("game id must be a positive integer")
	ErrNotYourGame   = errors.New("game belongs to another player")
	ErrLoginRequired = errors.New("login required")
)

var (
	decoder  = schema.NewDecoder()
	validate = validator.New(validator.WithRequiredStructEnabled())
)

func init() {
	decoder.IgnoreUnknownKeys(true)
}

// decode fills a DTO from query or form values and validates it.
func decode[T any](src url.Values) (T, error) {
	var dto T
	if err := decoder.Decode(&dto, src); err != nil {
		return dto, err
	}
	if err := validate.Struct(dto); err != nil {
		return dto, err
	}
	return dto, nil
}

func SendJSON(w http.ResponseWriter, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	w.Header().Set("Content-Type", "application/json")
	return w.Write(payload)
}

func sendJSONOrLog(w http.ResponseWriter, log logrus.FieldLogger, v any) {
	if _, err := SendJSON(w, v); err != nil {
		log.WithError(err).Error("unable to send response")
	}
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}

// statusFor maps an error to the response status that reports it.
func statusFor(err error) int {
	var (
		pgErr   *pgconn.PgError
		multi   schema.MultiError
		invalid validator.ValidationErrors
	)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return http.StatusNotFound
	case errors.Is(err, ErrNotYourGame), errors.Is(err, ErrLoginRequired):
		return http.StatusUnauthorized
	case errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code):
		return http.StatusConflict
	case errors.Is(err, ErrBadSaveID),
		errors.Is(err, mines.ErrOutOfRange),
		errors.Is(err, mines.ErrInvalidConfiguration),
		errors.As(err, &multi),
		errors.As(err, &invalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// sendError writes err with its status. Server errors are logged and their
// details kept from the client.
func sendError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status := statusFor(err)
	w.WriteHeader(status)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
		err = errors.New(http.StatusText(status))
	}
	sendJSONOrLog(w, log, wrapError(err))
}

func parseSaveID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrBadSaveID
	}
	return id, nil
}

// gameSaves stores a controller's games for one player, or for nobody.
type gameSaves struct {
	repo     Repository
	playerID *int64
}

var _ session.Saves = gameSaves{}

func (s gameSaves) FetchCurrentSave(ctx context.Context) (*mines.SaveState, error) {
	if s.playerID == nil {
		return nil, nil
	}
	row, err := s.repo.FetchCurrentSave(ctx, *s.playerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.SaveState()
}

func (s gameSaves) SaveGame(ctx context.Context, save mines.SaveState) (int64, error) {
	var (
		row *repository.GameSave
		err error
	)
	if save.SaveID == 0 {
		row, err = s.repo.CreateSave(ctx, s.playerID, save)
	} else {
		row, err = s.repo.UpdateSave(ctx, save)
	}
	if err != nil {
		return 0, err
	}
	return row.SaveID, nil
}
