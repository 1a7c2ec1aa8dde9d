package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Commands understood by [Controller.Execute]. A cell is given by its id,
// row * width + col.
const (
	CommandNoop      = "g"
	CommandClick     = "c"
	CommandLongClick = "l"
	CommandAssistant = "a"
	CommandForfeit   = "r"
)

var ErrUnknownCommand = errors.New("unknown command")

// Execute runs one text command against the game, for instance "c 12".
// Blank lines do nothing. A returned event that is finished still has to
// be settled.
func (c *Controller) Execute(ctx context.Context, line string) (Event, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return EventNone, nil
	}
	cmd, args := tokens[0], tokens[1:]

	cell := func() (int, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("%s expects a cell id", cmd)
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return 0, fmt.Errorf("%s: bad cell id %q", cmd, args[0])
		}
		return id, nil
	}

	switch cmd {
	case CommandNoop:
		return EventNone, nil
	case CommandClick:
		id, err := cell()
		if err != nil {
			return EventNone, err
		}
		return c.ClickArea(id)
	case CommandLongClick:
		id, err := cell()
		if err != nil {
			return EventNone, err
		}
		return c.LongClick(id)
	case CommandAssistant:
		return c.RunAssistant()
	case CommandForfeit:
		return EventNone, c.Forfeit(ctx)
	default:
		return EventNone, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
}
