package usecase

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"wpback/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

type fakeSource struct {
	creds        domain.Credentials
	remoteErr    error
	remoteCalled bool

	restoreCalled   bool
	restoreOverride *domain.Credentials
	restoreFilesDir string
}

func (f *fakeSource) FromRemote(ctx context.Context) (domain.Credentials, error) {
	f.remoteCalled = true
	return f.creds, f.remoteErr
}

func (f *fakeSource) ForRestore(ctx context.Context, filesDir string, override *domain.Credentials) (domain.Credentials, error) {
	f.restoreCalled = true
	f.restoreFilesDir = filesDir
	f.restoreOverride = override
	if override != nil {
		creds := *override
		if creds.Host == "" {
			creds.Host = domain.DefaultDBHost
		}
		return creds, nil
	}
	return f.creds, f.remoteErr
}

type fakeMirror struct {
	pullErr   error
	pushErr   error
	pulled    bool
	pushedDir string

	// seeded into the local dir on Pull, simulating the remote tree
	remoteFiles map[string]string
}

func (f *fakeMirror) Pull(ctx context.Context, remotePath, localDir string) error {
	f.pulled = true
	if f.pullErr != nil {
		return f.pullErr
	}
	for rel, data := range f.remoteFiles {
		path := filepath.Join(localDir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeMirror) Push(ctx context.Context, localDir, remotePath string) error {
	f.pushedDir = localDir
	return f.pushErr
}

type fakeDatabase struct {
	dumpContent string
	dumpErr     error
	clearErr    error
	importErr   error

	calls      []string
	importPath string
}

func (f *fakeDatabase) Dump(ctx context.Context, outPath string) error {
	f.calls = append(f.calls, "dump")
	if f.dumpErr != nil {
		return f.dumpErr
	}
	return os.WriteFile(outPath, []byte(f.dumpContent), 0o644)
}

func (f *fakeDatabase) ClearTables(ctx context.Context) error {
	f.calls = append(f.calls, "clear")
	return f.clearErr
}

func (f *fakeDatabase) Import(ctx context.Context, dumpPath string) error {
	f.calls = append(f.calls, "import")
	f.importPath = dumpPath
	return f.importErr
}

type fakeUploader struct {
	uploaded string
	err      error
}

func (f *fakeUploader) Upload(ctx context.Context, localPath, remoteName string) error {
	f.uploaded = remoteName
	return f.err
}

func zipEntries(t *testing.T, path string) map[string]bool {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	return names
}

func TestBackupExecute(t *testing.T) {
	Convey("Given a backup run against a reachable site", t, func() {
		tempDir, err := os.MkdirTemp("", "wpback_backup_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		profile := domain.Profile{Host: "wp.example.com", User: "root", KeyPath: "/key", Port: 22, RemotePath: "/var/www/html"}
		source := &fakeSource{creds: domain.Credentials{Name: "wp", User: "admin", Password: "secret", Host: "localhost"}}
		mirror := &fakeMirror{remoteFiles: map[string]string{
			"index.php":              "<?php\n",
			"wp-config.php":          "define('DB_NAME', 'wp');\n",
			"wp-content/uploads/a":   "binary",
			"wp-content/themes/x.js": "js",
		}}
		db := &fakeDatabase{dumpContent: "CREATE TABLE wp_posts;\n"}

		uc := NewBackup(profile, source, mirror, func(creds domain.Credentials) domain.Database {
			So(creds.Name, ShouldEqual, "wp")
			return db
		}, nil, nopLogger{})

		Convey("When executing with an explicit output file", func() {
			out := filepath.Join(tempDir, "snap.zip")
			archivePath, err := uc.Execute(context.Background(), out)

			Convey("It should report the absolute archive path", func() {
				So(err, ShouldBeNil)
				So(filepath.IsAbs(archivePath), ShouldBeTrue)
				So(archivePath, ShouldEqual, out)
			})

			Convey("The archive should hold the dump and the mirrored tree", func() {
				So(err, ShouldBeNil)
				entries := zipEntries(t, archivePath)
				So(entries["database/wp.sql"], ShouldBeTrue)
				So(entries["files/index.php"], ShouldBeTrue)
				So(entries["files/wp-content/uploads/a"], ShouldBeTrue)
			})

			Convey("The database should be dumped before files are mirrored", func() {
				So(err, ShouldBeNil)
				So(db.calls, ShouldResemble, []string{"dump"})
				So(mirror.pulled, ShouldBeTrue)
			})
		})

		Convey("When upload targets are configured", func() {
			up := &fakeUploader{}
			failing := &fakeUploader{err: errors.New("bucket gone")}
			uc := NewBackup(profile, source, mirror, func(domain.Credentials) domain.Database { return db },
				[]UploadTarget{{Name: "s3", Uploader: up}, {Name: "gdrive", Uploader: failing}}, nopLogger{})

			out := filepath.Join(tempDir, "snap.zip")
			_, err := uc.Execute(context.Background(), out)

			Convey("A failed upload should not fail the backup", func() {
				So(err, ShouldBeNil)
				So(up.uploaded, ShouldEqual, "snap.zip")
			})
		})

		Convey("When credential resolution fails", func() {
			source.remoteErr = domain.ErrCredentials

			_, err := uc.Execute(context.Background(), filepath.Join(tempDir, "snap.zip"))

			Convey("Nothing further should run", func() {
				So(errors.Is(err, domain.ErrCredentials), ShouldBeTrue)
				So(db.calls, ShouldBeEmpty)
				So(mirror.pulled, ShouldBeFalse)
			})
		})

		Convey("When the dump fails", func() {
			db.dumpErr = domain.ErrDump

			_, err := uc.Execute(context.Background(), filepath.Join(tempDir, "snap.zip"))

			Convey("The file sync should never start", func() {
				So(errors.Is(err, domain.ErrDump), ShouldBeTrue)
				So(mirror.pulled, ShouldBeFalse)
			})
		})

		Convey("When the file sync fails", func() {
			mirror.pullErr = domain.ErrTransfer

			_, err := uc.Execute(context.Background(), filepath.Join(tempDir, "snap.zip"))

			Convey("No archive should be produced", func() {
				So(errors.Is(err, domain.ErrTransfer), ShouldBeTrue)
				_, statErr := os.Stat(filepath.Join(tempDir, "snap.zip"))
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})
	})
}

func TestDefaultArchiveName(t *testing.T) {
	Convey("Given a point in time", t, func() {
		at := time.Date(2025, 7, 14, 9, 30, 5, 0, time.UTC)

		Convey("The default artifact name should embed the timestamp", func() {
			So(DefaultArchiveName(at), ShouldEqual, "wordpress_backup_20250714_093005.zip")
		})
	})
}
