package main

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vancomm/antimine/internal/config"
)

type rootOptions struct {
	Verbose  bool
	Database string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "antiminectl",
		Short:         "Play and inspect minesweeper games offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log debug output to stderr")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "antimine.db", "path to the SQLite save file")

	cmd.AddCommand(newPlayCommand(opts))
	cmd.AddCommand(newReplayCommand(opts))
	cmd.AddCommand(newSavesCommand(opts))

	return cmd
}

func (o *rootOptions) logger(out io.Writer) (*logrus.Logger, error) {
	log, err := config.NewLogger(out, &config.Logging{})
	if err != nil {
		return nil, err
	}
	if o.Verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log, nil
}
