package service

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"coursehub_backend/internal/config"
	"coursehub_backend/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// DeleteResult classifies the outcome of an asset delete so callers can
// ignore "already gone" and log real I/O failures without exception-style
// control flow.
type DeleteResult int

const (
	DeleteOK DeleteResult = iota
	DeleteNotFound
	DeleteIOError
)

// AssetStore is the boundary the course aggregate uses for file side
// effects. References are the URL-like strings stored on courses and
// submaterials.
type AssetStore interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	DeleteIfExists(ctx context.Context, ref string) DeleteResult
	GetURL(filename string) string
}

// StorageProvider is the low-level backend behind the store.
type StorageProvider interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, filename string) error
	GetURL(filename string) string
}

// LocalStorageProvider keeps assets on the local disk.
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filename)
	dir := filepath.Dir(dst)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}

	return p.GetURL(filename), nil
}

func (p *LocalStorageProvider) Delete(ctx context.Context, filename string) error {
	return os.Remove(filepath.Join(p.Config.LocalPath, filename))
}

func (p *LocalStorageProvider) GetURL(filename string) string {
	return "/uploads/" + filename
}

// MinioStorageProvider stores assets in a MinIO bucket.
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, filename, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, filename string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, filename, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) GetURL(filename string) string {
	return "/" + p.Config.MinioBucket + "/" + filename
}

// StorageService selects a provider from config and exposes the AssetStore
// boundary on top of it.
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	if cfg.Storage.Type == "minio" {
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Warn("minio unavailable, falling back to local storage", zap.Error(err))
		} else {
			provider = p
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider}
}

func (s *StorageService) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	return s.Provider.Upload(ctx, filename, reader, size, contentType)
}

func (s *StorageService) GetURL(filename string) string {
	return s.Provider.GetURL(filename)
}

// DeleteIfExists removes the stored object behind ref. A missing object is
// not a failure; any other error is logged and reported as DeleteIOError,
// never propagated, because asset cleanup is advisory.
func (s *StorageService) DeleteIfExists(ctx context.Context, ref string) DeleteResult {
	name := s.objectName(ref)
	if name == "" {
		return DeleteNotFound
	}

	err := s.Provider.Delete(ctx, name)
	switch {
	case err == nil:
		return DeleteOK
	case isObjectNotFound(err):
		return DeleteNotFound
	default:
		logger.Log.Error("asset delete failed", zap.String("ref", ref), zap.Error(err))
		return DeleteIOError
	}
}

// objectName maps a stored reference back to the provider's object name by
// stripping the provider's URL prefix.
func (s *StorageService) objectName(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	prefix := s.Provider.GetURL("")
	return strings.TrimPrefix(ref, prefix)
}

func isObjectNotFound(err error) bool {
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey"
}
