package cli

import (
	"github.com/spf13/cobra"

	"wpback/internal/adapter/database"
	"wpback/internal/adapter/mirror"
	"wpback/internal/adapter/remote"
	"wpback/internal/adapter/wpconfig"
	"wpback/internal/domain"
	"wpback/internal/usecase"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore a backup archive onto the remote site",
	Long: `Restore a backup archive onto the remote site.

The file tree is pushed authoritatively: remote files that are not part of
the backup are deleted. Existing database tables are dropped before the
dump is imported.`,
	Args: cobra.NoArgs,
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().String("input-file", "", "backup archive to restore (required)")
	restoreCmd.MarkFlagRequired("input-file")
}

func runRestore(cmd *cobra.Command, args []string) error {
	inputFile, _ := cmd.Flags().GetString("input-file")

	profile := cfg.Profile()
	runner := remote.NewSSH(profile)
	resolver := wpconfig.NewResolver(runner, profile.RemotePath, log)
	newDB := func(creds domain.Credentials) domain.Database {
		return database.NewMySQL(runner, creds, log)
	}
	uc := usecase.NewRestore(profile, resolver, mirror.NewRsync(profile), newDB, log)

	return uc.Execute(cmd.Context(), inputFile, cfg.Override())
}
