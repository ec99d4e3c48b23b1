package storage

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"wpback/internal/config"
)

type GDriveStorage struct {
	service  *drive.Service
	folderID string
}

// NewGDrive authenticates with a service-account credentials file; a
// single-run CLI has nowhere to host an interactive token grant.
func NewGDrive(cfg *config.UploadTarget) (*GDriveStorage, error) {
	service, err := drive.NewService(context.Background(), option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &GDriveStorage{service: service, folderID: cfg.FolderID}, nil
}

func (g *GDriveStorage) Upload(ctx context.Context, localPath, remoteName string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	meta := &drive.File{
		Name:    remoteName,
		Parents: []string{g.folderID},
	}
	_, err = g.service.Files.Create(meta).Media(file).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to upload to gdrive: %w", err)
	}
	return nil
}
