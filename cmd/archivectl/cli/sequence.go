package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"docarchive/internal/service"
)

func NewSequenceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sequence",
		Short: "Archive number sequences",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <username>",
		Short: "Print the next free archive number of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openArchive(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			seq, err := service.NewMaintenance(a.Repos, a.Store, a.Log).NumberSequence(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), seq.NextFreeNumber)
			return nil
		},
	})

	return cmd
}
