// Package archive packs a working area into a zip artifact and unpacks one
// back out. Entry names are relative to the working-area root so an archive
// extracts into the same files/ + database/ layout wherever it lands.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"wpback/internal/domain"
)

// Create walks every regular file under root and writes it, deflated, into a
// new zip archive at outPath.
func Create(root, outPath string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", domain.ErrArchive, outPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return addFile(zw, path, filepath.ToSlash(rel))
	})
	if err != nil {
		zw.Close()
		return fmt.Errorf("%w: packing %s: %v", domain.ErrArchive, root, err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: finalizing %s: %v", domain.ErrArchive, outPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: flushing %s: %v", domain.ErrArchive, outPath, err)
	}
	return nil
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

// Extract unpacks the archive at archivePath into destRoot, recreating the
// relative path structure. Entries that would escape destRoot are rejected.
func Extract(archivePath, destRoot string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("%w: cannot open %s: %v", domain.ErrArchive, archivePath, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if err := extractFile(f, destRoot); err != nil {
			return fmt.Errorf("%w: extracting %s: %v", domain.ErrArchive, f.Name, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, destRoot string) error {
	name := filepath.FromSlash(f.Name)
	if !filepath.IsLocal(name) {
		return fmt.Errorf("entry path escapes the extraction root")
	}
	target := filepath.Join(destRoot, name)

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return dst.Close()
}
