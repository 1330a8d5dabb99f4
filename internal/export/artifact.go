package export

import (
	"errors"
	"io/fs"
	"os"
)

// Content types of produced artifacts.
const (
	ContentTypeZip  = "application/zip"
	ContentTypePDF  = "application/pdf"
	ContentTypeJPEG = "image/jpeg"
)

// Artifact is a finished export file in the export cache directory. The
// caller deletes it after delivery; otherwise the janitor reaps it.
type Artifact struct {
	Path        string
	ContentType string
	Filename    string // download name
}

// Size returns the artifact size in bytes.
func (a *Artifact) Size() (int64, error) {
	fi, err := os.Stat(a.Path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// Remove deletes the artifact file. A file that is already gone is not an
// error.
func (a *Artifact) Remove() error {
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
