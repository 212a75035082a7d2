package filestore

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// localBackend writes under a root directory. Keys are slash paths relative to root.
type localBackend struct {
	root string
}

func NewLocal(root string, opt Options) (Store, error) {
	if root == "" {
		root = "uploads"
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, "resolve upload root")
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create upload root %s", abs)
	}
	return newStore(&localBackend{root: abs}, opt), nil
}

func (b *localBackend) path(key string) string {
	return filepath.Join(b.root, filepath.FromSlash(key))
}

// put writes to a temp file first so readers never see a partial file.
func (b *localBackend) put(_ context.Context, key string, data []byte, _ string) error {
	dst := b.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrap(err, "mkdir")
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "write")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "close")
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "rename")
	}
	return nil
}

func (b *localBackend) move(_ context.Context, src, dst string) error {
	to := b.path(dst)
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return errors.Wrap(err, "mkdir")
	}
	return errors.Wrap(os.Rename(b.path(src), to), "rename")
}

func (b *localBackend) remove(_ context.Context, key string) error {
	err := os.Remove(b.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (b *localBackend) reap(ctx context.Context, prefix string, olderThan time.Time) (int, error) {
	dir := b.path(prefix)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}
	removed := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(olderThan) {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}
