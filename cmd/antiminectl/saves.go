package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vancomm/antimine/internal/store"
)

func newSavesCommand(rootOpts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saves",
		Short: "Inspect the games stored in the save file",
	}
	cmd.AddCommand(newSavesListCommand(rootOpts))
	cmd.AddCommand(newSavesDeleteCommand(rootOpts))
	return cmd
}

func newSavesListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored games, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(opts.Database)
			if err != nil {
				return err
			}
			defer st.Close()

			saves, err := st.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDIFFICULTY\tBOARD\tSEED\tTIME\tOUTCOME\tUPDATED")
			for _, s := range saves {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
					s.SaveID, s.Difficulty, s.Minefield, s.Seed,
					time.Duration(s.ElapsedSeconds)*time.Second, s.Outcome,
					s.UpdatedAt.Format(time.DateTime))
			}
			return w.Flush()
		},
	}
}

func newSavesDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete stored games",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(opts.Database)
			if err != nil {
				return err
			}
			defer st.Close()

			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("bad save id %q", arg)
				}
				if err := st.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("save %d: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", id)
			}
			return nil
		},
	}
}
