package config

import (
	"github.com/vancomm/antimine/internal/mines"
)

// Preferences are the gameplay switches a player can change between games.
type Preferences struct {
	FlagAssistant     bool
	FirstClickOpening bool
	QuestionMarks     bool
	Custom            mines.Minefield
}

func DefaultPreferences() Preferences {
	return Preferences{
		FlagAssistant:     false,
		FirstClickOpening: true,
		QuestionMarks:     true,
		Custom:            mines.Minefield{Width: 9, Height: 9, Mines: 9},
	}
}

func NewPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()

	var err error
	if prefs.FlagAssistant, err = lookupBool("FLAG_ASSISTANT", prefs.FlagAssistant); err != nil {
		return nil, err
	}
	if prefs.FirstClickOpening, err = lookupBool("FIRST_CLICK_OPENING", prefs.FirstClickOpening); err != nil {
		return nil, err
	}
	if prefs.QuestionMarks, err = lookupBool("QUESTION_MARKS", prefs.QuestionMarks); err != nil {
		return nil, err
	}
	if prefs.Custom.Width, err = lookupInt("CUSTOM_WIDTH", prefs.Custom.Width); err != nil {
		return nil, err
	}
	if prefs.Custom.Height, err = lookupInt("CUSTOM_HEIGHT", prefs.Custom.Height); err != nil {
		return nil, err
	}
	if prefs.Custom.Mines, err = lookupInt("CUSTOM_MINES", prefs.Custom.Mines); err != nil {
		return nil, err
	}
	if err := prefs.Custom.Validate(); err != nil {
		return nil, err
	}

	return &prefs, nil
}
