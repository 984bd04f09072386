// Package storage keeps uploaded images on local disk or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// Store persists objects and returns their public URL.
type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
}

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrTooLarge          = errors.New("image too large")
	ErrInvalidKey        = errors.New("invalid object key")
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// Object describes a stored upload.
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// SaveImage validates an uploaded image and writes it under folder.
func SaveImage(ctx context.Context, store Store, file *multipart.FileHeader, folder string, maxSize int64) (*Object, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExt[ext] {
		return nil, ErrUnsupportedFormat
	}
	if maxSize > 0 && file.Size > maxSize {
		return nil, ErrTooLarge
	}

	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, ErrUnsupportedFormat
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	key, err := NewKey(folder, ext)
	if err != nil {
		return nil, err
	}
	url, err := store.Put(ctx, key, mtype.String(), f, file.Size)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", key, err)
	}
	return &Object{Key: key, URL: url, ContentType: mtype.String(), Size: file.Size}, nil
}

// NewKey builds "<folder>/<unixnano>-<random><ext>".
func NewKey(folder, ext string) (string, error) {
	folder = CleanFolder(folder)
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), hex.EncodeToString(b[:]), ext)
	if folder == "" {
		return name, nil
	}
	return folder + "/" + name, nil
}

// CleanFolder keeps only safe path segments of a caller supplied folder.
func CleanFolder(folder string) string {
	var parts []string
	for _, p := range strings.Split(folder, "/") {
		p = strings.TrimSpace(p)
		if p == "" || p == "." || p == ".." {
			continue
		}
		clean := strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
				return r
			case r >= 'A' && r <= 'Z':
				return r + ('a' - 'A')
			}
			return -1
		}, p)
		if clean != "" {
			parts = append(parts, clean)
		}
	}
	return strings.Join(parts, "/")
}

// ValidateKey rejects keys that escape the storage root.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	if path.Clean(key) != key {
		return ErrInvalidKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
