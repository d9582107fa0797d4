package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const MaxImageBytes = 5 * 1024 * 1024

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ImageUploader validates complaint photos by extension and content and stores them.
type ImageUploader struct {
	storage ImageStorage
}

func NewImageUploader(storage ImageStorage) *ImageUploader {
	return &ImageUploader{storage: storage}
}

// SaveAll stores files and returns their keys. Nothing is left behind on error.
func (u *ImageUploader) SaveAll(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) > MaxComplaintImages {
		return nil, newValidationError("images", "must contain at most %d items", MaxComplaintImages)
	}

	keys := make([]string, 0, len(files))
	for _, fh := range files {
		key, err := u.save(ctx, fh)
		if err != nil {
			u.Discard(ctx, keys)
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Discard removes stored images, logging failures.
func (u *ImageUploader) Discard(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := u.storage.Delete(ctx, key); err != nil {
			log.Printf("[uploads] failed to remove %s: %v", key, err)
		}
	}
}

func (u *ImageUploader) save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExts[ext] {
		return "", newValidationError("images", "only JPEG, PNG and WebP images are allowed")
	}
	if fh.Size > MaxImageBytes {
		return "", newValidationError("images", "%s exceeds the 5MB limit", fh.Filename)
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return u.store(ctx, fh.Filename, data)
}

func (u *ImageUploader) store(ctx context.Context, original string, data []byte) (string, error) {
	if len(data) > MaxImageBytes {
		return "", newValidationError("images", "%s exceeds the 5MB limit", original)
	}
	mt := mimetype.Detect(data)
	if !allowedImageTypes[mt.String()] {
		return "", newValidationError("images", "%s is not a JPEG, PNG or WebP image", original)
	}

	key := "complaint-" + uuid.NewString() + mt.Extension()
	if err := u.storage.Save(ctx, key, data, mt.String()); err != nil {
		return "", dependencyError("store image", err)
	}
	log.Printf("[uploads] stored %s as %s (%d bytes)", original, key, len(data))
	return key, nil
}
