package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"wpback/internal/adapter/database"
	"wpback/internal/adapter/mirror"
	"wpback/internal/adapter/remote"
	"wpback/internal/adapter/storage"
	"wpback/internal/adapter/wpconfig"
	"wpback/internal/config"
	"wpback/internal/domain"
	"wpback/internal/infrastructure/scheduler"
	"wpback/internal/usecase"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the remote site's files and database into a zip archive",
	Args:  cobra.NoArgs,
	RunE:  runBackup,
}

func init() {
	backupCmd.Flags().String("output-file", "", "output archive filename (default: wordpress_backup_<timestamp>.zip)")
	backupCmd.Flags().String("schedule", "", "cron expression; repeat the backup on this schedule until interrupted")
}

func runBackup(cmd *cobra.Command, args []string) error {
	outputFile, _ := cmd.Flags().GetString("output-file")
	scheduleSpec, _ := cmd.Flags().GetString("schedule")
	if outputFile != "" && scheduleSpec != "" {
		return fmt.Errorf("%w: --output-file cannot be combined with --schedule, scheduled runs name their archives by timestamp",
			domain.ErrPrecondition)
	}

	uc := buildBackup()

	if scheduleSpec == "" {
		archivePath, err := uc.Execute(cmd.Context(), outputFile)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), archivePath)
		return nil
	}

	sched := scheduler.New()
	err := sched.Add(scheduleSpec, func(ctx context.Context) error {
		_, err := uc.Execute(ctx, "")
		return err
	}, func(err error) {
		log.Errorf("Scheduled backup failed: %v", err)
	})
	if err != nil {
		return fmt.Errorf("%w: invalid schedule %q: %v", domain.ErrPrecondition, scheduleSpec, err)
	}

	log.Infof("Running backups on schedule %q, interrupt to stop", scheduleSpec)
	sched.Run(cmd.Context())
	return nil
}

func buildBackup() *usecase.Backup {
	profile := cfg.Profile()
	runner := remote.NewSSH(profile)
	resolver := wpconfig.NewResolver(runner, profile.RemotePath, log)
	newDB := func(creds domain.Credentials) domain.Database {
		return database.NewMySQL(runner, creds, log)
	}
	return usecase.NewBackup(profile, resolver, mirror.NewRsync(profile), newDB, buildUploadTargets(), log)
}

func buildUploadTargets() []usecase.UploadTarget {
	var targets []usecase.UploadTarget
	for _, tc := range cfg.EnabledUploadTargets() {
		up, err := newUploader(tc)
		if err != nil {
			log.Errorf("Failed to initialize %s upload target: %v", tc.Type, err)
			continue
		}
		if up == nil {
			log.Warnf("Unknown upload target type: %s", tc.Type)
			continue
		}
		targets = append(targets, usecase.UploadTarget{Name: tc.Type, Uploader: up})
	}
	return targets
}

func newUploader(tc config.UploadTarget) (domain.Uploader, error) {
	switch tc.Type {
	case "s3":
		return storage.NewS3(&tc)
	case "gdrive":
		return storage.NewGDrive(&tc)
	case "telegram":
		return storage.NewTelegram(&tc)
	default:
		return nil, nil
	}
}
