package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
)

// LocalFileStorage implements port.ReceiptStorage on the local filesystem.
// Each receipt lands in its own directory: <baseDir>/<uuid>/<fileName>.
type LocalFileStorage struct {
	baseDir   string
	urlPrefix string
	logger    *zap.Logger
}

// NewLocalFileStorage creates a new LocalFileStorage. urlPrefix is the public
// path under which baseDir is served.
func NewLocalFileStorage(baseDir, urlPrefix string, logger *zap.Logger) *LocalFileStorage {
	return &LocalFileStorage{
		baseDir:   baseDir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		logger:    logger,
	}
}

var _ port.ReceiptStorage = (*LocalFileStorage)(nil)

// BaseDir returns the directory receipts are written to
func (s *LocalFileStorage) BaseDir() string {
	return s.baseDir
}

// SaveReceipt writes the receipt and returns its public URL
func (s *LocalFileStorage) SaveReceipt(ctx context.Context, fileName string, content []byte) (*port.StoredReceipt, error) {
	name := filepath.Base(filepath.Clean(fileName))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return nil, fmt.Errorf("invalid receipt file name: %q", fileName)
	}

	dir := uuid.NewString()
	fullPath := filepath.Join(s.baseDir, dir, name)
	if err := s.SaveFile(fullPath, content); err != nil {
		return nil, err
	}

	return &port.StoredReceipt{
		FileURL:  path.Join(s.urlPrefix, dir, name),
		FileName: name,
	}, nil
}

// DeleteReceipt removes the receipt served at fileURL together with its
// per-receipt directory
func (s *LocalFileStorage) DeleteReceipt(ctx context.Context, fileURL string) error {
	cleaned := path.Clean(fileURL)
	rel := strings.TrimPrefix(cleaned, s.urlPrefix+"/")
	if rel == cleaned || rel == "" {
		return fmt.Errorf("receipt url outside %s: %q", s.urlPrefix, fileURL)
	}

	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(rel))
	if err := s.ValidatePath(fullPath); err != nil {
		return err
	}

	dir := filepath.Dir(fullPath)
	if filepath.Clean(dir) == filepath.Clean(s.baseDir) {
		dir = fullPath
	}
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Error("Failed to delete receipt",
			zap.String("path", dir),
			zap.Error(err))
		return fmt.Errorf("failed to delete receipt: %w", err)
	}

	s.logger.Debug("Receipt deleted", zap.String("path", dir))
	return nil
}

// SaveFile writes content to fullPath, creating parent directories
func (s *LocalFileStorage) SaveFile(fullPath string, content []byte) error {
	if err := s.ValidatePath(fullPath); err != nil {
		return err
	}

	parentDir := filepath.Dir(fullPath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		s.logger.Error("Failed to create parent directories",
			zap.String("path", parentDir),
			zap.Error(err))
		return fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", fullPath),
			zap.Error(err))
		return fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("Receipt saved",
		zap.String("path", fullPath),
		zap.Int("size", len(content)))

	return nil
}

// ValidatePath checks that fullPath stays within baseDir
func (s *LocalFileStorage) ValidatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}

	return nil
}
