package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Local implements Storage on the filesystem. Keys map to paths under a
// base directory; resolvePath blocks traversal outside it.
type Local struct {
	basePath string
	baseURL  string
	logger   *slog.Logger
}

// NewLocal creates filesystem storage rooted at cfg.BasePath, creating
// the directory if needed.
func NewLocal(cfg LocalConfig, logger *slog.Logger) (*Local, error) {
	absPath, err := filepath.Abs(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	logger.Info("initialized local storage", "base_path", absPath)

	return &Local{
		basePath: absPath,
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		logger:   logger,
	}, nil
}

// Put stores data at the specified key.
func (s *Local) Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.resolvePath(key)
	if err != nil {
		return &Error{Op: "Put", Key: key, Err: err}
	}

	if !opts.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return &Error{Op: "Put", Key: key, Err: ErrKeyExists}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &Error{Op: "Put", Key: key, Err: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return &Error{Op: "Put", Key: key, Err: err}
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		os.Remove(path)
		return &Error{Op: "Put", Key: key, Err: err}
	}

	s.logger.Debug("stored file", "key", key)
	return nil
}

// Get retrieves the data at the specified key.
func (s *Local) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, ObjectInfo{}, err
	}

	path, err := s.resolvePath(key)
	if err != nil {
		return nil, ObjectInfo{}, &Error{Op: "Get", Key: key, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ObjectInfo{}, &Error{Op: "Get", Key: key, Err: ErrNotFound}
		}
		return nil, ObjectInfo{}, &Error{Op: "Get", Key: key, Err: err}
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, &Error{Op: "Get", Key: key, Err: err}
	}

	info := ObjectInfo{
		Key:          key,
		Size:         stat.Size(),
		ContentType:  mime.TypeByExtension(filepath.Ext(path)),
		LastModified: stat.ModTime(),
	}
	return f, info, nil
}

// Delete removes the object at the specified key.
func (s *Local) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.resolvePath(key)
	if err != nil {
		return &Error{Op: "Delete", Key: key, Err: err}
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &Error{Op: "Delete", Key: key, Err: err}
	}
	return nil
}

// URL returns the serving URL for the object. Local files are served by
// the application itself, so expiry is ignored.
func (s *Local) URL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if _, err := s.resolvePath(key); err != nil {
		return "", &Error{Op: "URL", Key: key, Err: err}
	}
	return s.baseURL + "/" + key, nil
}

// Exists checks if an object exists at the specified key.
func (s *Local) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	path, err := s.resolvePath(key)
	if err != nil {
		return false, &Error{Op: "Exists", Key: key, Err: err}
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &Error{Op: "Exists", Key: key, Err: err}
	}
	return true, nil
}

// resolvePath maps a key to an absolute path inside basePath.
func (s *Local) resolvePath(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") {
		return "", ErrInvalidKey
	}
	path := filepath.Join(s.basePath, filepath.FromSlash(key))
	if !strings.HasPrefix(path, s.basePath+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return path, nil
}
