package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal-api/internal/dto"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
	"github.com/noah-isme/internship-portal-api/pkg/storage"
)

// Upload kinds, used as the first key segment.
const (
	FileKindCV         = "cv"
	FileKindSubmission = "submissions"
)

var allowedExtensions = map[string]map[string]bool{
	FileKindCV:         {".pdf": true, ".doc": true, ".docx": true},
	FileKindSubmission: {".pdf": true, ".doc": true, ".docx": true, ".zip": true, ".txt": true, ".xlsx": true, ".pptx": true, ".png": true, ".jpg": true, ".jpeg": true},
}

// FileService stores uploads and hands out signed download links.
type FileService struct {
	store        storage.FileStore
	signer       *storage.SignedURLSigner
	maxBytes     int64
	downloadPath string
	logger       *zap.Logger
}

// NewFileService constructs a FileService. downloadPath is the route that
// serves signed tokens, e.g. "/api/files/download".
func NewFileService(store storage.FileStore, signer *storage.SignedURLSigner, maxBytes int64, downloadPath string, logger *zap.Logger) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	return &FileService{store: store, signer: signer, maxBytes: maxBytes, downloadPath: downloadPath, logger: logger}
}

// MaxBytes is the upload size limit.
func (s *FileService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload validates and stores a file for owner and returns its key and link.
func (s *FileService) Upload(ctx context.Context, kind, owner, filename, contentType string, size int64, r io.Reader) (*dto.UploadedFile, error) {
	if r == nil || strings.TrimSpace(filename) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if size > s.maxBytes {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if allowed := allowedExtensions[kind]; allowed != nil && !allowed[ext] {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file type %q is not allowed", ext))
	}

	key, err := s.store.Save(ctx, storage.ObjectKey(kind, owner, filename), io.LimitReader(r, s.maxBytes+1), contentType)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to store file")
	}
	link, err := s.URL(owner, key)
	if err != nil {
		return nil, err
	}
	s.logger.Info("file stored", zap.String("kind", kind), zap.String("owner", owner), zap.String("key", key), zap.Int64("size", size))
	return &dto.UploadedFile{Key: key, URL: link, ContentType: contentType, Size: size}, nil
}

// URL returns a signed download link for a stored key.
func (s *FileService) URL(owner, key string) (string, error) {
	token, _, err := s.signer.Generate(owner, key)
	if err != nil {
		return "", appErrors.Internal(err, "failed to sign download link")
	}
	return s.downloadPath + "?token=" + url.QueryEscape(token), nil
}

// Open resolves a download token to the stored file.
func (s *FileService) Open(ctx context.Context, token string) (io.ReadCloser, string, error) {
	if strings.TrimSpace(token) == "" {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "token is required")
	}
	_, key, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token")
	}
	rc, err := s.store.Open(ctx, key)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "file not found")
	}
	return rc, filepath.Base(key), nil
}

// Remove deletes a stored file, logging failures only.
func (s *FileService) Remove(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete stored file", zap.String("key", key), zap.Error(err))
	}
}
