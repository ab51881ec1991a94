// Package objectstore uploads generated exports to MinIO and hands out
// time-limited download links.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Config MinIO connection settings
type Config struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	UseSSL     bool
	LinkExpiry time.Duration
}

// Link a presigned download link
type Link struct {
	URL       string    `json:"url"`
	Object    string    `json:"object"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Publisher stores export files and presigns GET links for them
type Publisher struct {
	client *minio.Client
	bucket string
	expiry time.Duration
	logger *zap.Logger
}

// New connects to MinIO. The bucket is created when missing.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("minio bucket created", zap.String("bucket", cfg.Bucket))
	}

	expiry := cfg.LinkExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &Publisher{client: client, bucket: cfg.Bucket, expiry: expiry, logger: logger}, nil
}

// Publish uploads data under exports/YYYY/MM/DD/ and returns a presigned link
func (p *Publisher) Publish(ctx context.Context, fileName, contentType string, data []byte) (*Link, error) {
	objectName := ObjectName(time.Now(), uuid.New().String()[:8], fileName)

	_, err := p.client.PutObject(ctx, p.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", objectName, err)
	}

	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition", fmt.Sprintf("attachment; filename=\"%s\"", sanitizeFilename(fileName)))
	u, err := p.client.PresignedGetObject(ctx, p.bucket, objectName, p.expiry, reqParams)
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", objectName, err)
	}

	p.logger.Info("export published", zap.String("object", objectName), zap.Int("bytes", len(data)))
	return &Link{URL: u.String(), Object: objectName, ExpiresAt: time.Now().Add(p.expiry)}, nil
}

// ObjectName builds the storage path for an export file
func ObjectName(now time.Time, nonce, fileName string) string {
	return fmt.Sprintf("exports/%s/%s-%s", now.Format("2006/01/02"), nonce, sanitizeFilename(path.Base(fileName)))
}

func sanitizeFilename(name string) string {
	cleaned := strings.NewReplacer("\"", "", "\\", "", "/", "", "..", "").Replace(name)
	b := make([]rune, 0, len(cleaned))
	for _, r := range cleaned {
		if r < 32 || r == 127 {
			continue
		}
		b = append(b, r)
	}
	return strings.TrimSpace(string(b))
}
