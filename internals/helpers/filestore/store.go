// Package filestore saves uploaded files under a logical folder and hands back
// a unique stored name. Images are shrunk and re-encoded to WebP on the way in.
package filestore

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolstaff_backend/internals/constants"
	helper "schoolstaff_backend/internals/helpers"
)

// Store is what controllers depend on.
type Store interface {
	Save(ctx context.Context, fh *multipart.FileHeader, folder string) (string, error)
	SaveMany(ctx context.Context, fhs []*multipart.FileHeader, folder string) ([]string, error)
	Delete(ctx context.Context, name, folder string) error
	Stage(ctx context.Context, fh *multipart.FileHeader, folder string) (*Staged, error)
	ReapStaged(ctx context.Context, olderThan time.Time) (int, error)
}

// backend is the raw object layer of a driver.
type backend interface {
	put(ctx context.Context, key string, data []byte, contentType string) error
	move(ctx context.Context, src, dst string) error
	remove(ctx context.Context, key string) error
	reap(ctx context.Context, prefix string, olderThan time.Time) (int, error)
}

type Options struct {
	Driver     string
	MaxW       int
	MaxH       int
	Quality    float32
	MaxBytes   int64
	StagingDir string
}

type store struct {
	be   backend
	opt  Options
	now  func() time.Time
	name func(original string) string
}

func newStore(be backend, opt Options) *store {
	if opt.StagingDir == "" {
		opt.StagingDir = ".staging"
	}
	s := &store{be: be, opt: opt, now: time.Now}
	s.name = s.uniqueName
	return s
}

/* ===============================
   Naming
=================================*/

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

func sanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	safe := unsafeChars.ReplaceAllString(base, "_")
	safe = strings.Trim(safe, "._")
	if safe == "" {
		safe = "file"
	}
	if len(safe) > 100 {
		safe = safe[len(safe)-100:]
	}
	return safe
}

// uniqueName gives YYYYMMDD-<uuid>-<sanitized original>.
func (s *store) uniqueName(original string) string {
	return fmt.Sprintf("%s-%s-%s", s.now().Format("20060102"), uuid.NewString(), sanitizeFilename(original))
}

func cleanFolder(folder string) (string, error) {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" || strings.Contains(folder, "..") || strings.HasPrefix(folder, ".") {
		return "", helper.InvalidArgument("invalid upload folder %q", folder)
	}
	return folder, nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name != path.Base(name) || strings.HasPrefix(name, ".") {
		return "", helper.InvalidArgument("invalid stored file name %q", name)
	}
	return name, nil
}

/* ===============================
   Save / Delete
=================================*/

// prepared is a file already read and converted, ready to be written.
type prepared struct {
	name        string
	data        []byte
	contentType string
}

func (s *store) prepare(fh *multipart.FileHeader) (*prepared, error) {
	if fh == nil {
		return nil, helper.InvalidArgument("file is required")
	}
	if !constants.IsAllowedUpload(fh.Filename) {
		return nil, helper.InvalidArgument("unsupported file type %q", fh.Filename)
	}
	if s.opt.MaxBytes > 0 && fh.Size > s.opt.MaxBytes {
		return nil, helper.InvalidArgument("file %q too large (max %d bytes)", fh.Filename, s.opt.MaxBytes)
	}
	src, err := fh.Open()
	if err != nil {
		return nil, helper.StorageError(err, "open upload %q", fh.Filename)
	}
	defer src.Close()
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, helper.StorageError(err, "read upload %q", fh.Filename)
	}

	name := s.name(fh.Filename)
	p := &prepared{name: name, data: raw, contentType: sniffContentType(raw, fh.Filename)}

	if isImageContentType(p.contentType) {
		out, err := toWebP(raw, s.opt.MaxW, s.opt.MaxH, s.opt.Quality)
		if err != nil {
			log.Printf("[FileStore] %s not re-encoded, storing raw: %v", fh.Filename, err)
			return p, nil
		}
		p.data = out
		p.contentType = "image/webp"
		p.name = strings.TrimSuffix(name, path.Ext(name)) + ".webp"
	}
	return p, nil
}

func (s *store) Save(ctx context.Context, fh *multipart.FileHeader, folder string) (string, error) {
	folder, err := cleanFolder(folder)
	if err != nil {
		return "", err
	}
	p, err := s.prepare(fh)
	if err != nil {
		return "", err
	}
	if err := s.be.put(ctx, path.Join(folder, p.name), p.data, p.contentType); err != nil {
		return "", helper.StorageError(err, "save %s/%s", folder, p.name)
	}
	return p.name, nil
}

// SaveMany saves in order; on failure the files already written are removed.
func (s *store) SaveMany(ctx context.Context, fhs []*multipart.FileHeader, folder string) ([]string, error) {
	names := make([]string, 0, len(fhs))
	for _, fh := range fhs {
		name, err := s.Save(ctx, fh, folder)
		if err != nil {
			for _, n := range names {
				_ = s.Delete(ctx, n, folder)
			}
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// Delete removes a stored file. A missing file is not an error.
func (s *store) Delete(ctx context.Context, name, folder string) error {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	folder, err := cleanFolder(folder)
	if err != nil {
		return err
	}
	name, err = cleanName(name)
	if err != nil {
		return err
	}
	if err := s.be.remove(ctx, path.Join(folder, name)); err != nil {
		return helper.StorageError(err, "delete %s/%s", folder, name)
	}
	return nil
}

/* ===============================
   Two-phase upload
=================================*/

// Staged is an upload written under the staging area. Commit moves it to its
// final folder; Discard drops it. Both are safe to call on a nil *Staged.
type Staged struct {
	Name   string
	Folder string

	s    *store
	key  string
	done bool
}

func (s *store) Stage(ctx context.Context, fh *multipart.FileHeader, folder string) (*Staged, error) {
	folder, err := cleanFolder(folder)
	if err != nil {
		return nil, err
	}
	p, err := s.prepare(fh)
	if err != nil {
		return nil, err
	}
	key := path.Join(s.opt.StagingDir, folder, p.name)
	if err := s.be.put(ctx, key, p.data, p.contentType); err != nil {
		return nil, helper.StorageError(err, "stage %s/%s", folder, p.name)
	}
	return &Staged{Name: p.name, Folder: folder, s: s, key: key}, nil
}

// StoredName is "" for a nil stage, so callers can assign it unconditionally.
func (st *Staged) StoredName() string {
	if st == nil {
		return ""
	}
	return st.Name
}

func (st *Staged) Commit(ctx context.Context) error {
	if st == nil || st.done {
		return nil
	}
	if err := st.s.be.move(ctx, st.key, path.Join(st.Folder, st.Name)); err != nil {
		return helper.StorageError(err, "commit %s/%s", st.Folder, st.Name)
	}
	st.done = true
	return nil
}

func (st *Staged) Discard(ctx context.Context) {
	if st == nil || st.done {
		return
	}
	st.done = true
	if err := st.s.be.remove(ctx, st.key); err != nil {
		log.Printf("[FileStore] discard %s: %v", st.key, err)
	}
}

// ReapStaged deletes staged files older than the cutoff.
func (s *store) ReapStaged(ctx context.Context, olderThan time.Time) (int, error) {
	n, err := s.be.reap(ctx, s.opt.StagingDir, olderThan)
	if err != nil {
		return n, helper.StorageError(err, "reap staging")
	}
	return n, nil
}

/* ===============================
   Helpers for controllers
=================================*/

// StageOptional stages fh when the request carried one; nil otherwise.
func StageOptional(ctx context.Context, st Store, fh *multipart.FileHeader, folder string) (*Staged, error) {
	if fh == nil {
		return nil, nil
	}
	return st.Stage(ctx, fh, folder)
}

// StageAll stages every non-nil header; on error the ones already staged are discarded.
func StageAll(ctx context.Context, st Store, folder string, fhs ...*multipart.FileHeader) ([]*Staged, error) {
	out := make([]*Staged, len(fhs))
	for i, fh := range fhs {
		if fh == nil {
			continue
		}
		sf, err := st.Stage(ctx, fh, folder)
		if err != nil {
			DiscardAll(ctx, out...)
			return nil, err
		}
		out[i] = sf
	}
	return out, nil
}

// CommitAll commits after the DB transaction; a failure is logged, the row already points at the name.
func CommitAll(ctx context.Context, staged ...*Staged) error {
	var first error
	for _, sf := range staged {
		if err := sf.Commit(ctx); err != nil {
			log.Printf("[FileStore] commit: %v", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func DiscardAll(ctx context.Context, staged ...*Staged) {
	for _, sf := range staged {
		sf.Discard(ctx)
	}
}

// DeleteQuiet removes a replaced or purged file and only logs failures.
func DeleteQuiet(ctx context.Context, st Store, folder string, names ...string) {
	for _, n := range names {
		if n == "" {
			continue
		}
		if err := st.Delete(ctx, n, folder); err != nil {
			log.Printf("[FileStore] delete %s/%s: %v", folder, n, err)
		}
	}
}
