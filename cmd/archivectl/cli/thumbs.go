package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"docarchive/internal/service"
)

func NewThumbsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thumbs",
		Short: "Thumbnail maintenance",
	}

	cmd.AddCommand(newThumbsRegenerateCommand())

	return cmd
}

func newThumbsRegenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Re-render the thumbnails of every stored document",
		Long: `Re-render the thumbnails of every stored document.

Old thumbnails are removed first. Documents whose file is missing or whose
rendering fails are reported and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openArchive(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			width, _ := cmd.Flags().GetInt("width")
			if width <= 0 {
				width = a.Config.Store.ThumbWidth
			}

			rep, err := service.NewMaintenance(a.Repos, a.Store, a.Log).RegenerateThumbs(cmd.Context(), width)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "documents: %d, thumbnails: %d, missing: %d, failed: %d\n",
				rep.Documents, rep.Thumbs, rep.Missing, rep.Failed)
			return nil
		},
	}

	cmd.Flags().Int("width", 0, "thumbnail width in pixels (default THUMB_WIDTH)")

	return cmd
}
