package session

import (
	"encoding/json"

	"github.com/vancomm/antimine/internal/mines"
)

type Event int

const (
	// EventNone marks an update that only carries changed cells or time.
	EventNone Event = iota
	EventStartNewGame
	EventResumeGame
	EventResumeGameOver
	EventResumeVictory
	EventRunning
	EventGameOver
	EventVictory
	EventPause
	EventResume
)

var eventNames = [...]string{
	EventNone:           "none",
	EventStartNewGame:   "start_new_game",
	EventResumeGame:     "resume_game",
	EventResumeGameOver: "resume_game_over",
	EventResumeVictory:  "resume_victory",
	EventRunning:        "running",
	EventGameOver:       "game_over",
	EventVictory:        "victory",
	EventPause:          "pause",
	EventResume:         "resume",
}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[e]
}

func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// Finished reports whether e ends the game.
func (e Event) Finished() bool {
	switch e {
	case EventGameOver, EventVictory, EventResumeGameOver, EventResumeVictory:
		return true
	}
	return false
}

// Update is what a listener gets after every state change. Field is set only
// when the whole board needs redrawing; otherwise Changed lists the cells to
// refresh.
type Update struct {
	Event          Event        `json:"event"`
	Changed        []mines.Area `json:"changed,omitempty"`
	Field          []mines.Area `json:"field,omitempty"`
	Width          int          `json:"width"`
	Height         int          `json:"height"`
	RemainingMines int          `json:"remaining_mines"`
	Elapsed        int64        `json:"elapsed"`
}

// Listener receives updates in order. It runs with the controller locked and
// must not call back into it.
type Listener func(Update)
