package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"MiniShop/pkg/kit"
)

// Store persists the whole catalog and the archive of removed products.
type Store interface {
	Load(ctx context.Context) ([]Product, error)
	Save(ctx context.Context, products []Product) error
	LoadArchive(ctx context.Context) ([]Product, error)
	SaveArchive(ctx context.Context, removed []Product) error
	Ping(ctx context.Context) error
}

// FileStore keeps the catalog as one pretty-printed JSON array per file.
// Every call opens and closes the file; nothing is held between calls.
type FileStore struct {
	path        string
	archivePath string
	log         *zap.Logger
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path, archivePath string, log *zap.Logger) *FileStore {
	return &FileStore{
		path:        path,
		archivePath: archivePath,
		log:         kit.OrNop(log),
	}
}

func (s *FileStore) Path() string        { return s.path }
func (s *FileStore) ArchivePath() string { return s.archivePath }

func (s *FileStore) Load(ctx context.Context) ([]Product, error) {
	return s.read(ctx, s.path)
}

func (s *FileStore) Save(ctx context.Context, products []Product) error {
	if err := s.write(ctx, s.path, products); err != nil {
		s.log.Error("save catalog failed", zap.String("path", s.path), zap.Error(err))
		return err
	}
	s.log.Debug("catalog saved", zap.String("path", s.path), zap.Int("products", len(products)))
	return nil
}

func (s *FileStore) LoadArchive(ctx context.Context) ([]Product, error) {
	return s.read(ctx, s.archivePath)
}

func (s *FileStore) SaveArchive(ctx context.Context, removed []Product) error {
	if err := s.write(ctx, s.archivePath, removed); err != nil {
		s.log.Error("save archive failed", zap.String("path", s.archivePath), zap.Error(err))
		return err
	}
	s.log.Debug("archive saved", zap.String("path", s.archivePath), zap.Int("products", len(removed)))
	return nil
}

// Ping reports whether the catalog file can be read and parsed.
func (s *FileStore) Ping(ctx context.Context) error {
	_, err := s.Load(ctx)
	return err
}

func (s *FileStore) read(ctx context.Context, path string) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Product{}, nil
	}

	var out []Product
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if out == nil {
		out = []Product{}
	}
	return out, nil
}

// write replaces path through a temp file in the same directory so readers
// never observe a half-written document.
func (s *FileStore) write(ctx context.Context, path string, products []Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if products == nil {
		products = []Product{}
	}

	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
