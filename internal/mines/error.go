package mines

import "errors"

var (
	ErrOutOfRange           = errors.New("cell index out of range")
	ErrAlreadyPlanted       = errors.New("mines already planted")
	ErrNotYetPlanted        = errors.New("mines not planted yet")
	ErrInvalidConfiguration = errors.New("invalid minefield configuration")
	ErrInvalidSave          = errors.New("invalid save state")
)
