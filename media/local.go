package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"
)

// Local writes uploads into a directory served as static files.
type Local struct {
	dir    string
	prefix string
	mu     sync.Mutex
}

// NewLocal stores files in dir and builds URLs as prefix + "/" + name.
// An empty prefix defaults to /public/uploads.
func NewLocal(dir, prefix string) *Local {
	if prefix == "" {
		prefix = "/public/uploads"
	}
	return &Local{dir: dir, prefix: prefix}
}

// Upload copies r into a new file named after filename. A counter suffix is
// added when the name is taken.
func (l *Local) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}

	f, name, err := l.create(filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(filepath.Join(l.dir, name))
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return path.Join(l.prefix, name), nil
}

func (l *Local) create(filename string) (*os.File, string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	base, ext := slugifyFilename(filename)
	candidate := base + ext
	for counter := 1; ; counter++ {
		f, err := os.OpenFile(filepath.Join(l.dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("create image file: %w", err)
		}
		candidate = fmt.Sprintf("%s-%d%s", base, counter+1, ext)
	}
}
