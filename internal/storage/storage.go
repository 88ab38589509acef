package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// Rule bounds what an upload slot accepts.
type Rule struct {
	MaxBytes   int64
	Extensions []string
}

var (
	ImageRule   = Rule{MaxBytes: 5 << 20, Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}}
	VoucherRule = Rule{MaxBytes: 5 << 20, Extensions: []string{".jpg", ".jpeg", ".png", ".gif"}}
	QrRule      = Rule{MaxBytes: 5 << 20, Extensions: []string{".jpg", ".jpeg", ".png", ".gif"}}
	LogoRule    = Rule{MaxBytes: 2 << 20, Extensions: []string{".jpg", ".jpeg", ".png", ".svg"}}
)

func (r Rule) check(fh *multipart.FileHeader) error {
	if fh.Size > r.MaxBytes {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, fh.Size)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	for _, allowed := range r.Extensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
}

// Store persists uploaded files and returns stable relative paths.
type Store interface {
	Save(ctx context.Context, folder string, fh *multipart.FileHeader, rule Rule) (string, error)
	Remove(ctx context.Context, relPath string) error
}

// Disk stores uploads under BaseDir with uuid names.
type Disk struct {
	BaseDir string
}

func NewDisk(baseDir string) *Disk {
	return &Disk{BaseDir: baseDir}
}

func (d *Disk) Save(ctx context.Context, folder string, fh *multipart.FileHeader, rule Rule) (string, error) {
	if err := rule.check(fh); err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	relPath := path.Join(folder, name)

	dir := filepath.Join(d.BaseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, rule.MaxBytes+1)); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write file: %w", err)
	}

	return relPath, nil
}

func (d *Disk) Remove(ctx context.Context, relPath string) error {
	if relPath == "" {
		return nil
	}
	return os.Remove(filepath.Join(d.BaseDir, filepath.FromSlash(relPath)))
}

// RelPath inverts PublicURL for files served by this instance; foreign URLs
// yield "".
func RelPath(baseURL, publicURL string) string {
	prefix := strings.TrimSuffix(baseURL, "/") + "/storage/"
	if strings.HasPrefix(publicURL, prefix) {
		return strings.TrimPrefix(publicURL, prefix)
	}
	return ""
}

// PublicURL converts a stored relative path into a fetchable URL.
func PublicURL(baseURL, relPath string) string {
	if relPath == "" {
		return ""
	}
	if strings.HasPrefix(relPath, "http://") || strings.HasPrefix(relPath, "https://") {
		return relPath
	}
	return strings.TrimSuffix(baseURL, "/") + "/storage/" + strings.TrimPrefix(relPath, "/")
}
