// Package media stores post feature images and hands back their public URL.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

// MaxUploadSize is the largest accepted feature image.
const MaxUploadSize = 10 << 20 // 10MB

var (
	ErrNotImage  = errors.New("file is not a JPEG, PNG, GIF or WebP image")
	ErrTooLarge  = errors.New("file too large (max 10MB)")
	ErrNoStorage = errors.New("no media storage configured")
)

// Uploader stores an image and returns the URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Config selects and configures an Uploader. Cloudinary is used when URL or
// the cloud name and key pair are set; otherwise files go under Dir.
type Config struct {
	CloudinaryURL string
	CloudName     string
	APIKey        string
	APISecret     string
	Folder        string

	Dir       string
	URLPrefix string
}

func (c Config) cloudinaryConfigured() bool {
	return c.CloudinaryURL != "" || (c.CloudName != "" && c.APIKey != "" && c.APISecret != "")
}

// New returns the Uploader described by cfg.
func New(cfg Config) (Uploader, error) {
	if cfg.cloudinaryConfigured() {
		c, err := NewCloudinary(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	if cfg.Dir == "" {
		return nil, ErrNoStorage
	}
	return NewLocal(cfg.Dir, cfg.URLPrefix), nil
}

// CheckImage reports the decoded format of data, or ErrNotImage when no
// registered decoder recognises it. Only the header is decoded.
func CheckImage(data []byte) (string, error) {
	if len(data) > MaxUploadSize {
		return "", ErrTooLarge
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return format, nil
}

// ReadImage reads at most MaxUploadSize bytes from r and validates them.
func ReadImage(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if _, err := CheckImage(data); err != nil {
		return nil, err
	}
	return data, nil
}

// slugifyFilename turns "My Photo.PNG" into "my-photo" and ".png".
func slugifyFilename(name string) (string, string) {
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))))
	var b strings.Builder
	dash := false
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		slug = "image"
	}
	return slug, ext
}
