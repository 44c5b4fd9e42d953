package filestore

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/elearn360/backend/core"
)

// LocalStorage keeps uploaded files on disk under a root directory. Stored
// paths are the file names relative to that root; the API serves them under
// baseURL.
type LocalStorage struct {
	root    string
	baseURL string
}

var _ core.FileStorage = (*LocalStorage)(nil) // interface compliance check

func NewLocalStorage(conf *core.Config) (*LocalStorage, error) {
	if err := os.MkdirAll(conf.UploadsDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating uploads dir")
	}
	return &LocalStorage{root: conf.UploadsDir, baseURL: "/v1/uploads"}, nil
}

// Save writes the content under a fresh UUID-prefixed name so that repeated
// uploads of the same filename never clobber each other on disk.
func (s *LocalStorage) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	name := uuid.New().String() + "_" + filepath.Base(filename)
	dst, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return "", errors.Wrap(err, "creating file")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer dst.Close()

	if _, err = io.Copy(dst, content); err != nil {
		return "", errors.Wrap(err, "writing file")
	}
	return name, nil
}

// Delete removes a stored file. A missing file is not an error; the record
// pointing at it is already gone.
func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	err := os.Remove(filepath.Join(s.root, filepath.Base(path)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "deleting file")
	}
	return nil
}

func (s *LocalStorage) URL(path string) string {
	return s.baseURL + "/" + filepath.Base(path)
}

// Root returns the directory files are stored under, for static serving.
func (s *LocalStorage) Root() string {
	return s.root
}
