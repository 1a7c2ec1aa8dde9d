package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vancomm/antimine/internal/config"
	"github.com/vancomm/antimine/internal/mines"
	"github.com/vancomm/antimine/internal/session"
	"github.com/vancomm/antimine/internal/store"
)

type playOptions struct {
	*rootOptions
	Difficulty string
	Seed       uint64
	New        bool
}

const playHelp = `commands:
  c <cell>   open a cell, or clear its mark
  l <cell>   cycle the mark of a covered cell, chord an open one
  a          run the flag assistant
  r          give up
  n          start a new game
  q          save and quit
cells are numbered row * width + col`

func newPlayCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &playOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		Long: `Play a game in the terminal. The unfinished game in the save file is
resumed unless a difficulty or --new is given. Progress is saved after every
move.

` + playHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Difficulty, "difficulty", string(mines.Standard), "difficulty of a new game")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "seed of new boards, random when unset")
	cmd.Flags().BoolVar(&opts.New, "new", false, "start a new game even if one is unfinished")

	return cmd
}

func runPlay(opts *playOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	log, err := opts.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	prefs, err := config.NewPreferences()
	if err != nil {
		return err
	}
	presets, err := config.LoadPresets(prefs)
	if err != nil {
		return err
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	sessionOpts := session.Options{
		Dimensions:  presets,
		Preferences: *prefs,
		Saves:       st,
		Logger:      log,
	}
	if cmd.Flags().Changed("seed") {
		sessionOpts.NewSeed = func() uint64 { return opts.Seed }
	}
	c := session.New(sessionOpts)

	var newGame *mines.Difficulty
	if opts.New || cmd.Flags().Changed("difficulty") {
		d, err := mines.ParseDifficulty(opts.Difficulty)
		if err != nil {
			return err
		}
		newGame = &d
	}
	if _, err := c.OnCreate(ctx, newGame); err != nil {
		return err
	}
	defer func() {
		c.Pause()
		if err := c.SaveGame(ctx); err != nil {
			log.WithError(err).Error("unable to save game")
		}
	}()

	if err := printBoard(out, c); err != nil {
		return err
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "q":
			return nil
		case "h", "?":
			fmt.Fprintln(out, playHelp)
			continue
		case "n":
			if _, err := c.StartNewGame(c.Difficulty()); err != nil {
				return err
			}
		default:
			ev, err := c.Execute(ctx, line)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			if err := c.Settle(ctx, ev); err != nil {
				return err
			}
			if err := c.SaveGame(ctx); err != nil {
				return err
			}
		}

		if err := printBoard(out, c); err != nil {
			return err
		}
	}
}

func printBoard(out io.Writer, c *session.Controller) error {
	view, err := c.View()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s | %s | mines left %d | %ds\n",
		c.Difficulty(), view.Event, view.RemainingMines, view.Elapsed)
	fmt.Fprint(out, mines.RenderAreas(view.Field, view.Width, false))
	return nil
}
