package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/onboarding-backend/internal/config"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

// BucketService is the object-store boundary for document bytes. Keys
// look like documents/<user_id>/<document_type>/<file_name>.
type BucketService interface {
	Upload(ctx context.Context, key string, contentType string, data []byte) error
	Download(ctx context.Context, key string) ([]byte, error)
	SignedDownloadURL(key string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	bucketName    string
	urlExpiry     time.Duration
}

func NewBucketService(cfg config.BucketConfig, log *logger.Logger) (BucketService, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("missing document bucket name")
	}
	serviceLog := log.With("service", "BucketService")

	ctx := context.Background()
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	stClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	expiry := cfg.SignedURLExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}

	serviceLog.Info("Object storage initialized", "bucket", cfg.Name, "url_expiry", expiry.String())
	return &bucketService{
		log:           serviceLog,
		storageClient: stClient,
		bucketName:    cfg.Name,
		urlExpiry:     expiry,
	}, nil
}

func (bs *bucketService) Upload(ctx context.Context, key string, contentType string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := bs.storageClient.Bucket(bs.bucketName).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close writer for %q: %w", key, err)
	}
	return nil
}

func (bs *bucketService) Download(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	r, err := bs.storageClient.Bucket(bs.bucketName).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object %q: %w", key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %q: %w", key, err)
	}
	return data, nil
}

// SignedDownloadURL returns a time-limited retrieval URL. Signing uses
// the client's credentials; no object bytes move through this process.
func (bs *bucketService) SignedDownloadURL(key string) (string, error) {
	url, err := bs.storageClient.Bucket(bs.bucketName).SignedURL(key, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(bs.urlExpiry),
		Scheme:  storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign URL for %q: %w", key, err)
	}
	return url, nil
}

func (bs *bucketService) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	o := bs.storageClient.Bucket(bs.bucketName).Object(key)
	if err := o.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}
	return nil
}

func (bs *bucketService) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := bs.storageClient.Bucket(bs.bucketName).Object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
