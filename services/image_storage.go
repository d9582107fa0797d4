package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var ErrImageNotFound = errors.New("image not found")

// ImageStorage stores complaint photos by opaque key.
type ImageStorage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// safeKey rejects keys that could escape the storage root.
func safeKey(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid image key %q", key)
	}
	return key, nil
}

type DiskImageStorage struct {
	root string
}

func NewDiskImageStorage(root string) (*DiskImageStorage, error) {
	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &DiskImageStorage{root: root}, nil
}

func (s *DiskImageStorage) Save(_ context.Context, key string, data []byte, _ string) error {
	name, err := safeKey(key)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.root, name), data, 0o644)
}

func (s *DiskImageStorage) Load(_ context.Context, key string) ([]byte, error) {
	name, err := safeKey(key)
	if err != nil {
		return nil, ErrImageNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.root, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrImageNotFound
	}
	return data, err
}

func (s *DiskImageStorage) Delete(_ context.Context, key string) error {
	name, err := safeKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.root, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

type S3ImageStorage struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3ImageStorage(client *s3.Client, bucket, prefix string) *S3ImageStorage {
	return &S3ImageStorage{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *S3ImageStorage) objectKey(key string) (string, error) {
	name, err := safeKey(key)
	if err != nil {
		return "", err
	}
	if s.prefix == "" {
		return name, nil
	}
	return s.prefix + "/" + name, nil
}

func (s *S3ImageStorage) Save(ctx context.Context, key string, data []byte, contentType string) error {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", objectKey, err)
	}
	return nil
}

func (s *S3ImageStorage) Load(ctx context.Context, key string) ([]byte, error) {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return nil, ErrImageNotFound
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("s3 get %s: %w", objectKey, err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, out.Body); err != nil {
		return nil, fmt.Errorf("read s3 object %s: %w", objectKey, err)
	}
	return buf.Bytes(), nil
}

func (s *S3ImageStorage) Delete(ctx context.Context, key string) error {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	return err
}
