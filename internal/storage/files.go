package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FileStore keeps attachment bytes on local disk under a single directory.
// Stored names are random so client file names never reach the filesystem.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create upload dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Save copies r to a new file named with a uuid plus the extension of
// originalName and returns the stored name and its size.
func (s *FileStore) Save(r io.Reader, originalName string) (string, int64, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filepath.Base(originalName)))

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", 0, errors.Wrap(err, "create attachment file")
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", 0, errors.Wrap(err, "write attachment file")
	}
	return name, n, nil
}

// Open returns the stored file. A missing file yields an error matching
// os.ErrNotExist.
func (s *FileStore) Open(name string) (io.ReadCloser, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Remove deletes a stored file. Removing a missing file is not an error.
func (s *FileStore) Remove(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).WithField("file", name).Warn("Failed to remove attachment")
		return errors.Wrap(err, "remove attachment file")
	}
	return nil
}

func (s *FileStore) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid stored file name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}
