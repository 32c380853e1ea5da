package storage

import (
	"context"
	"errors"
	"github.com/mdobak/go-xerrors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var ErrKeyOutsideRoot = xerrors.Message("Key escapes the storage root")

// Disk stores files under a root media directory, creating parent
// directories on demand. It is the default backend and keeps the
// write-then-overwrite semantics of a plain filesystem.
type Disk struct {
	root string
}

func NewDisk(root string) (*Disk, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, xerrors.New(err)
	}
	if err := os.MkdirAll(absRoot, 0o755); err != nil {
		return nil, xerrors.New(err)
	}

	return &Disk{root: absRoot}, nil
}

// Root returns the absolute media directory the store was opened with.
func (d *Disk) Root() string {
	return d.root
}

func (d *Disk) path(key string) (string, error) {
	path := filepath.Join(d.root, filepath.FromSlash(key))
	if path != d.root && !strings.HasPrefix(path, d.root+string(filepath.Separator)) {
		return "", xerrors.New(ErrKeyOutsideRoot)
	}
	return path, nil
}

func (d *Disk) Upload(ctx context.Context, key string, data []byte) error {
	path, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return xerrors.New(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return xerrors.New(err)
	}
	return nil
}

func (d *Disk) Download(ctx context.Context, key string) ([]byte, error) {
	path, err := d.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.New(err)
	}
	return data, nil
}

func (d *Disk) Delete(ctx context.Context, key string) error {
	path, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return xerrors.New(err)
	}
	return nil
}

func (d *Disk) Exists(ctx context.Context, key string) (bool, error) {
	path, err := d.path(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, xerrors.New(err)
	}
	return true, nil
}
