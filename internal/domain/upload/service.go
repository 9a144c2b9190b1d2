package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultMaxFileSize = 5 * 1024 * 1024 // 5 MB
	DefaultBaseDir     = "./storage"
	proofDir           = "payment-proofs"
)

// AllowedMimeTypes maps accepted sniffed types to the extensions a proof may carry.
var AllowedMimeTypes = map[string][]string{
	"image/jpeg":      {".jpg", ".jpeg"},
	"image/png":       {".png"},
	"application/pdf": {".pdf"},
}

// Service stores payment-proof files on local disk and records them in the database.
type Service struct {
	repo    Repository
	baseDir string
	maxSize int64
	now     func() time.Time
}

func NewService(repo Repository, baseDir string, maxSize int64) *Service {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Service{repo: repo, baseDir: baseDir, maxSize: maxSize, now: time.Now}
}

// Save writes the proof under payment-proofs/ and returns its record.
// The returned Upload.FilePath is what bookings store.
func (s *Service) Save(ctx context.Context, userID, bookingID int64, fileHeader *multipart.FileHeader) (*Upload, error) {
	if fileHeader.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fileHeader.Size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// sniff from the first 512 bytes, never trust the client's Content-Type
	buf := make([]byte, 512)
	n, _ := io.ReadFull(file, buf)
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]

	exts, ok := AllowedMimeTypes[mimeType]
	if !ok {
		return nil, ErrInvalidMimeType
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !contains(exts, ext) {
		ext = exts[0]
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind file: %w", err)
	}

	absDir := filepath.Join(s.baseDir, proofDir)
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	id := uuid.NewString()
	relPath := path.Join(proofDir, id+ext)
	absPath := filepath.Join(s.baseDir, filepath.FromSlash(relPath))

	dst, err := os.Create(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	written, err := io.Copy(dst, io.LimitReader(file, s.maxSize+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if written > s.maxSize {
		_ = os.Remove(absPath)
		return nil, ErrFileTooLarge
	}

	u := &Upload{
		ID:           id,
		UserID:       userID,
		BookingID:    bookingID,
		OriginalName: filepath.Base(fileHeader.Filename),
		FilePath:     relPath,
		MimeType:     mimeType,
		Size:         written,
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		_ = os.Remove(absPath) // rollback file on DB error
		return nil, fmt.Errorf("failed to save upload record: %w", err)
	}

	return u, nil
}

// Discard removes the file and its record. Used when the booking refuses the proof.
func (s *Service) Discard(ctx context.Context, u *Upload) error {
	absPath, err := s.Resolve(u.FilePath)
	if err != nil {
		return err
	}
	_ = os.Remove(absPath) // file may already be gone
	return s.repo.Delete(ctx, u.ID)
}

// Resolve maps a stored relative path to a file on disk, refusing paths that
// leave the proof directory.
func (s *Service) Resolve(relPath string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(relPath, "\\", "/"))
	if !strings.HasPrefix(clean, "/"+proofDir+"/") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

func (s *Service) ListForBooking(ctx context.Context, bookingID int64) ([]*Upload, error) {
	return s.repo.ListByBooking(ctx, bookingID)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
