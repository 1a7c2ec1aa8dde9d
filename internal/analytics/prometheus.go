// Package analytics reports player activity as Prometheus metrics.
package analytics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vancomm/antimine/internal/mines"
)

const namespace = "antimine"

type Metrics struct {
	newGames *prometheus.CounterVec
	resumes  prometheus.Counter
	presses  *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
	score    *prometheus.HistogramVec
}

// New registers the game metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		newGames: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "New games by difficulty",
		}, []string{"difficulty"}),
		resumes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_resumed_total",
			Help:      "Games continued from a save",
		}),
		presses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "presses_total",
			Help:      "Player input by kind",
		}, []string{"kind"}),
		outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Finished games by outcome and difficulty",
		}, []string{"outcome", "difficulty"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "game_duration_seconds",
			Help:      "Time played until the game ended",
			Buckets:   []float64{10, 30, 60, 120, 300, 600, 1200, 3600},
		}, []string{"outcome"}),
		score: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "game_score",
			Help:      "Score of finished games",
			Buckets:   prometheus.ExponentialBuckets(100, 2, 12),
		}, []string{"outcome"}),
	}
}

func (m *Metrics) NewGame(_ mines.Minefield, d mines.Difficulty, _ uint64) {
	m.newGames.WithLabelValues(string(d)).Inc()
}

func (m *Metrics) ResumePreviousGame() {
	m.resumes.Inc()
}

func (m *Metrics) PressArea(int) {
	m.presses.WithLabelValues("press").Inc()
}

func (m *Metrics) LongPressArea(int) {
	m.presses.WithLabelValues("long_press").Inc()
}

func (m *Metrics) LongPressMultipleArea(int) {
	m.presses.WithLabelValues("chord").Inc()
}

func (m *Metrics) GameOver(d mines.Difficulty, elapsedSeconds, score int64) {
	m.finish("loss", d, elapsedSeconds, score)
}

func (m *Metrics) Victory(d mines.Difficulty, elapsedSeconds, score int64) {
	m.finish("victory", d, elapsedSeconds, score)
}

func (m *Metrics) finish(outcome string, d mines.Difficulty, elapsedSeconds, score int64) {
	m.outcomes.WithLabelValues(outcome, string(d)).Inc()
	m.duration.WithLabelValues(outcome).Observe(float64(elapsedSeconds))
	m.score.WithLabelValues(outcome).Observe(float64(score))
}
