package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logging"
)

// MaxImageBytes caps decoded image uploads
const MaxImageBytes = 10 << 20

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// DecodedImage is an image uploaded as a base64 data URL
type DecodedImage struct {
	ContentType string
	Extension   string
	Data        []byte
}

// DecodeDataURL parses "data:image/<type>;base64,<payload>"
func DecodeDataURL(dataURL string) (*DecodedImage, error) {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, newFieldError("image", "Изображение должно быть в формате data:image/*;base64.")
	}
	contentType := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64"))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, newFieldError("image", "Неподдерживаемый тип изображения.")
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes {
		return nil, newFieldError("image", "Изображение слишком большое.")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, newFieldError("image", "Не удалось декодировать изображение.")
	}
	return &DecodedImage{ContentType: contentType, Extension: ext, Data: data}, nil
}

func imageKey(folder, ext string) string {
	return path.Join(folder, uuid.New().String()+"."+ext)
}

// NewImageStore returns an S3-backed store when a bucket is configured and a
// local filesystem store otherwise.
func NewImageStore(ctx context.Context, cfg *config.Config) (IImageStore, error) {
	if cfg.S3BucketName == "" {
		return NewLocalImageStore(cfg.MediaDir, cfg.MediaURL), nil
	}
	s3Config, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewS3ImageStore(s3Config), nil
}

// S3ImageStore uploads images to the media bucket
type S3ImageStore struct {
	s3Config *config.S3Config
}

func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3Config: s3Config}
}

func (s *S3ImageStore) Save(ctx context.Context, folder string, dataURL string) (string, error) {
	img, err := DecodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	key := imageKey(folder, img.Extension)
	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	publicURL := s.s3Config.ObjectURL(key)
	logging.Ctx(ctx).Debug().Str("url", publicURL).Msg("uploaded image to S3")
	return publicURL, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, url string) error {
	prefix := s.s3Config.ObjectURL("")
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	return s.s3Config.DeleteObject(ctx, strings.TrimPrefix(url, prefix))
}

// LocalImageStore writes images below a media directory served at baseURL
type LocalImageStore struct {
	dir     string
	baseURL string
}

func NewLocalImageStore(dir, baseURL string) *LocalImageStore {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalImageStore{dir: dir, baseURL: baseURL}
}

func (s *LocalImageStore) Save(ctx context.Context, folder string, dataURL string) (string, error) {
	img, err := DecodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	key := imageKey(folder, img.Extension)
	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(target, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.baseURL + key, nil
}

func (s *LocalImageStore) Delete(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, s.baseURL) {
		return nil
	}
	key := path.Clean("/" + strings.TrimPrefix(url, s.baseURL))
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
