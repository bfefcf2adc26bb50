package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"docarchive/internal/app"
	"docarchive/internal/config"
	"docarchive/internal/logging"
)

type VersionInfo struct {
	Version string
	Commit  string
}

func NewRootCommand(info VersionInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "archivectl",
		Short:         "Document archive administration",
		Long:          "Administrative tasks for the document archive: schema migration, access tokens, thumbnail maintenance and archive number inspection.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	cmd.Version = fmt.Sprintf("%s.%s", info.Version, info.Commit)

	return cmd
}

// openArchive loads the environment configuration, opens the archive and brings the
// schema up to date. Logs go to stderr so command output stays clean on stdout.
func openArchive(ctx context.Context, cmd *cobra.Command) (*app.Archive, error) {
	cfg := config.Load()
	log := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.TimeZone)
	if name, err := cmd.Flags().GetString("log-level"); err == nil {
		if lvl, err := logrus.ParseLevel(name); err == nil {
			log.SetLevel(lvl)
		}
	}

	a, err := app.Open(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := a.Migrate(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return a, nil
}
