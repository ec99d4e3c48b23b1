// Package usecase sequences the backup and restore runs. Each run is strictly
// sequential: credentials, database, files, archive; the first failure aborts
// the run and the working area is cleaned up regardless.
package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"wpback/internal/adapter/archive"
	"wpback/internal/domain"
)

// Logger is the slice of the application logger the orchestrators need.
type Logger interface {
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

// DatabaseFactory builds the database transfer once credentials are known.
type DatabaseFactory func(creds domain.Credentials) domain.Database

// UploadTarget is an optional off-host destination for finished archives.
type UploadTarget struct {
	Name     string
	Uploader domain.Uploader
}

type Backup struct {
	profile domain.Profile
	source  domain.CredentialSource
	mirror  domain.Mirror
	newDB   DatabaseFactory
	targets []UploadTarget
	log     Logger
}

func NewBackup(
	profile domain.Profile,
	source domain.CredentialSource,
	mirror domain.Mirror,
	newDB DatabaseFactory,
	targets []UploadTarget,
	log Logger,
) *Backup {
	return &Backup{
		profile: profile,
		source:  source,
		mirror:  mirror,
		newDB:   newDB,
		targets: targets,
		log:     log,
	}
}

// DefaultArchiveName derives the timestamped artifact name used when the
// operator does not supply one.
func DefaultArchiveName(now time.Time) string {
	return fmt.Sprintf("wordpress_backup_%s.zip", now.Format("20060102_150405"))
}

// Execute runs a full backup and returns the absolute path of the archive.
func (uc *Backup) Execute(ctx context.Context, outputFile string) (string, error) {
	start := time.Now()
	uc.log.Infof("Starting backup of WordPress site at %s...", uc.profile.Host)

	uc.log.Infof("Extracting database credentials from wp-config.php...")
	creds, err := uc.source.FromRemote(ctx)
	if err != nil {
		return "", err
	}

	work, err := NewWorkArea()
	if err != nil {
		return "", err
	}
	defer work.Cleanup()
	if err := work.MkdirLayout(); err != nil {
		return "", err
	}

	db := uc.newDB(creds)
	dumpPath := filepath.Join(work.DatabaseDir(), creds.Name+".sql")
	if err := db.Dump(ctx, dumpPath); err != nil {
		return "", err
	}

	uc.log.Infof("Backing up WordPress files from %s...", uc.profile.RemotePath)
	if err := uc.mirror.Pull(ctx, uc.profile.RemotePath, work.FilesDir()); err != nil {
		return "", err
	}

	if outputFile == "" {
		outputFile = DefaultArchiveName(time.Now())
	}
	uc.log.Infof("Creating backup archive: %s", outputFile)
	if err := archive.Create(work.Root, outputFile); err != nil {
		return "", err
	}

	archivePath, err := filepath.Abs(outputFile)
	if err != nil {
		archivePath = outputFile
	}

	uc.upload(ctx, archivePath)

	uc.log.Infof("Backup complete in %s: %s", time.Since(start).Round(time.Second), archivePath)
	return archivePath, nil
}

// upload fans the archive out to the configured targets. The local artifact
// already exists at this point, so a failed upload is logged, not fatal.
func (uc *Backup) upload(ctx context.Context, archivePath string) {
	if len(uc.targets) == 0 {
		return
	}

	name := filepath.Base(archivePath)
	var wg sync.WaitGroup
	for _, target := range uc.targets {
		wg.Add(1)
		go func(t UploadTarget) {
			defer wg.Done()
			uc.log.Infof("Uploading %s to %s...", name, t.Name)
			if err := t.Uploader.Upload(ctx, archivePath, name); err != nil {
				uc.log.Errorf("Failed to upload to %s: %v", t.Name, err)
				return
			}
			uc.log.Infof("Successfully uploaded to %s", t.Name)
		}(target)
	}
	wg.Wait()
}
