package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vancomm/antimine/internal/config"
	"github.com/vancomm/antimine/internal/mines"
)

type replayOptions struct {
	*rootOptions
	Seed       uint64
	Difficulty string
	Cell       int
	NoOpening  bool
}

func newReplayCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &replayOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Print the mine layout a seed produces",
		Long: `Regenerate a board from its seed and first click and print it with
every mine shown. Boards are reproducible: the same seed, difficulty and
first cell always give the same layout.

Examples:
  antiminectl replay --seed 42 --difficulty beginner --cell 40
  antiminectl replay --seed 42 --difficulty expert --cell 0 --no-opening`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "board seed (required)")
	_ = cmd.MarkFlagRequired("seed")
	cmd.Flags().StringVar(&opts.Difficulty, "difficulty", string(mines.Standard), "board difficulty")
	cmd.Flags().IntVar(&opts.Cell, "cell", 0, "id of the first clicked cell")
	cmd.Flags().BoolVar(&opts.NoOpening, "no-opening", false, "allow mines next to the first cell")

	return cmd
}

func runReplay(opts *replayOptions, cmd *cobra.Command) error {
	d, err := mines.ParseDifficulty(opts.Difficulty)
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
	field, err := presets.Minefield(d)
	if err != nil {
		return err
	}

	game, err := mines.NewGame(field, opts.Seed)
	if err != nil {
		return err
	}
	// play falls back the same way on boards too dense for an opening
	err = game.PlantMinesExcept(opts.Cell, !opts.NoOpening)
	if errors.Is(err, mines.ErrInvalidConfiguration) && !opts.NoOpening {
		err = game.PlantMinesExcept(opts.Cell, false)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s seed=%d cell=%d\n", d, field, opts.Seed, opts.Cell)
	fmt.Fprint(out, game.Render(true))
	return nil
}
