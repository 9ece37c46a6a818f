package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/realtruedate/backend/internal/config"
)

// ObjectStorage is the object-store collaborator: upload, download and
// time-limited fetch URLs. The S3 client implements it; tests use fakes.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	Download(ctx context.Context, key string, dst io.Writer) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type S3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

func NewS3(ctx context.Context, cfg *config.Config) (*S3Storage, error) {
	awsConf, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.S3.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsConf)
	return &S3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.S3.Bucket,
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) Download(ctx context.Context, key string, dst io.Writer) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", key, err)
	}
	defer out.Body.Close()
	if _, err := io.Copy(dst, out.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}

// --- upload validation ---

var (
	validImageExts = map[string]bool{"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true}
	validVideoExts = map[string]bool{"mp4": true, "mov": true, "avi": true, "webm": true, "mkv": true}

	unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
)

// The platform mime table is not guaranteed to know video formats; register
// the accepted ones so type detection does not depend on /etc/mime.types.
func init() {
	for ext, typ := range map[string]string{
		".mp4": "video/mp4", ".mov": "video/quicktime", ".avi": "video/x-msvideo",
		".webm": "video/webm", ".mkv": "video/x-matroska", ".webp": "image/webp",
	} {
		mime.AddExtensionType(ext, typ)
	}
}

// UploadMeta describes a validated, keyed upload before it hits storage.
type UploadMeta struct {
	Key      string `json:"key"`
	FileName string `json:"file_name"`
	Folder   string `json:"folder"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// ValidateFile checks the mime family, extension and size caps, routes the
// file into a folder by type and builds a collision-free key.
func ValidateFile(cfg *config.Config, fileName string, size int64) (*UploadMeta, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	mimeType := mime.TypeByExtension("." + ext)
	if mimeType == "" {
		return nil, fmt.Errorf("could not determine the file type")
	}

	var folder string
	switch {
	case strings.HasPrefix(mimeType, "image"):
		folder = "images"
		if !validImageExts[ext] {
			return nil, fmt.Errorf("invalid image file format")
		}
		if size > int64(cfg.S3.ImageSizeLimitMB)*1024*1024 {
			return nil, fmt.Errorf("image file size exceeds the %d MB limit", cfg.S3.ImageSizeLimitMB)
		}
	case strings.HasPrefix(mimeType, "video"):
		folder = "videos"
		if !validVideoExts[ext] {
			return nil, fmt.Errorf("invalid video file format")
		}
		if size > int64(cfg.S3.VideoSizeLimitMB)*1024*1024 {
			return nil, fmt.Errorf("video file size exceeds the %d MB limit", cfg.S3.VideoSizeLimitMB)
		}
	case mimeType == "application/json":
		folder = "results"
	default:
		return nil, fmt.Errorf("unsupported file type")
	}

	safeName := unsafeKeyChars.ReplaceAllString(fileName, "_")
	return &UploadMeta{
		Key:      fmt.Sprintf("%s/%s_%s", folder, uuid.New().String(), safeName),
		FileName: fileName,
		Folder:   folder,
		MimeType: mimeType,
		Size:     size,
	}, nil
}
