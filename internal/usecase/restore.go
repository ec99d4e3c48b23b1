package usecase

import (
	"context"
	"fmt"
	"os"
	"time"

	"wpback/internal/adapter/archive"
	"wpback/internal/adapter/database"
	"wpback/internal/domain"
)

type Restore struct {
	profile domain.Profile
	source  domain.CredentialSource
	mirror  domain.Mirror
	newDB   DatabaseFactory
	log     Logger
}

func NewRestore(
	profile domain.Profile,
	source domain.CredentialSource,
	mirror domain.Mirror,
	newDB DatabaseFactory,
	log Logger,
) *Restore {
	return &Restore{
		profile: profile,
		source:  source,
		mirror:  mirror,
		newDB:   newDB,
		log:     log,
	}
}

// Execute replays the archive at inputFile onto the remote site: files are
// pushed authoritatively (extraneous remote entries deleted), then the
// database dump is imported after a best-effort table clearing.
func (uc *Restore) Execute(ctx context.Context, inputFile string, override *domain.Credentials) error {
	start := time.Now()
	uc.log.Infof("Starting restoration of WordPress site to %s...", uc.profile.Host)

	if _, err := os.Stat(inputFile); err != nil {
		return fmt.Errorf("%w: backup file %s not found", domain.ErrPrecondition, inputFile)
	}

	work, err := NewWorkArea()
	if err != nil {
		return err
	}
	defer work.Cleanup()

	uc.log.Infof("Extracting backup archive: %s", inputFile)
	if err := archive.Extract(inputFile, work.Root); err != nil {
		return err
	}

	creds, err := uc.source.ForRestore(ctx, work.FilesDir(), override)
	if err != nil {
		return err
	}

	if _, err := os.Stat(work.FilesDir()); err != nil {
		return fmt.Errorf("%w: no files directory found in backup", domain.ErrArchive)
	}

	uc.log.Infof("Restoring WordPress files to %s...", uc.profile.RemotePath)
	if err := uc.mirror.Push(ctx, work.FilesDir(), uc.profile.RemotePath); err != nil {
		return err
	}

	dumpPath, err := database.FindDump(work.DatabaseDir(), creds.Name)
	if err != nil {
		return err
	}

	db := uc.newDB(creds)
	if err := db.ClearTables(ctx); err != nil {
		return err
	}
	if err := db.Import(ctx, dumpPath); err != nil {
		return err
	}

	uc.log.Infof("Restoration complete in %s", time.Since(start).Round(time.Second))
	return nil
}
