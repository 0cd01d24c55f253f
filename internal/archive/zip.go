// Package archive unpacks downloaded zip bundles in place so the loaders can
// read the contained file directly.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrCorruptArchive is returned when a .zip file cannot be read.
var ErrCorruptArchive = errors.New("archive: corrupt zip")

// MaybeExtractZip extracts path in place when it ends in ".zip" and returns
// the working path with the suffix stripped; any other path is returned
// unchanged. All archive members land in the file's parent directory.
func MaybeExtractZip(path string) (string, error) {
	if !strings.HasSuffix(path, ".zip") {
		return path, nil
	}
	dir := filepath.Dir(path)
	if err := extractAll(path, dir); err != nil {
		return "", err
	}
	return strings.TrimSuffix(path, ".zip"), nil
}

// extractAll writes every member of the zip at src into destDir. Member names
// are flattened through filepath.Base so a crafted archive cannot escape the
// destination directory.
func extractAll(src, destDir string) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptArchive, src, err)
	}
	defer zr.Close()

	for _, member := range zr.File {
		if member.FileInfo().IsDir() {
			continue
		}
		if err := extractMember(member, destDir); err != nil {
			return err
		}
	}
	return nil
}

func extractMember(member *zip.File, destDir string) error {
	rc, err := member.Open()
	if err != nil {
		return fmt.Errorf("%w: member %s: %v", ErrCorruptArchive, member.Name, err)
	}
	defer rc.Close()

	dest := filepath.Join(destDir, filepath.Base(member.Name))
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("archive: create %s: %w", dest, err)
	}
	_, err = io.Copy(f, rc)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("archive: extract %s: %w", member.Name, err)
	}
	return nil
}
