// -----------------------------------------------------------------------
// Object Store - S3-compatible artifact upload via MinIO client
// -----------------------------------------------------------------------

package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/aestimo/internal/interfaces"
	"github.com/ternarybob/aestimo/internal/models"
)

const (
	uploadAttempts    = 3
	uploadBackoffBase = 500 * time.Millisecond
)

// defaultS3Host is used when no alternate endpoint is configured.
const defaultS3Host = "s3.amazonaws.com"

// putFunc uploads one local file to bucket/key. Split out so retry behavior
// is testable without a live store.
type putFunc func(ctx context.Context, bucket, key, localPath string) error

// Store uploads artifacts to an S3-compatible endpoint. An alternate
// endpoint (MinIO and friends) is signed against directly.
type Store struct {
	region string
	logger arbor.ILogger
	put    putFunc
	sleep  func(time.Duration)
}

var _ interfaces.ObjectStore = (*Store)(nil)

// Config carries the per-job store settings.
type Config struct {
	Region    string
	Endpoint  string // optional S3-compatible override
	AccessKey string
	SecretKey string
}

// New creates a store for one assignment's region and optional endpoint.
func New(cfg Config, logger arbor.ILogger) (*Store, error) {
	host := defaultS3Host
	secure := true
	if cfg.Endpoint != "" {
		parsed, err := url.Parse(cfg.Endpoint)
		if err != nil || parsed.Host == "" {
			return nil, models.Errorf(models.ErrKindConfig, "invalid S3 endpoint %q", cfg.Endpoint)
		}
		host = parsed.Host
		secure = parsed.Scheme != "http"
	}

	var creds *credentials.Credentials
	if cfg.AccessKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		creds = credentials.NewEnvAWS()
	}

	client, err := minio.New(host, &minio.Options{
		Creds:  creds,
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, models.NewJobError(models.ErrKindConfig, "failed to create object store client", err)
	}

	return &Store{
		region: cfg.Region,
		logger: logger,
		put: func(ctx context.Context, bucket, key, localPath string) error {
			_, err := client.FPutObject(ctx, bucket, key, localPath, minio.PutObjectOptions{})
			return err
		},
		sleep: time.Sleep,
	}, nil
}

// ParseTargetURI splits s3://bucket/key... into bucket and key.
func ParseTargetURI(targetURI string) (bucket, key string, err error) {
	parsed, err := url.Parse(targetURI)
	if err != nil {
		return "", "", models.NewJobError(models.ErrKindInvalidInput, fmt.Sprintf("invalid storage URI %q", targetURI), err)
	}
	if parsed.Scheme != "s3" || parsed.Host == "" {
		return "", "", models.Errorf(models.ErrKindInvalidInput, "storage URI %q is not s3://bucket/key", targetURI)
	}
	key = strings.TrimPrefix(parsed.Path, "/")
	if key == "" {
		return "", "", models.Errorf(models.ErrKindInvalidInput, "storage URI %q has no object key", targetURI)
	}
	return parsed.Host, key, nil
}

// Upload copies a local artifact to its s3://bucket/key destination with 3
// attempts and exponential backoff (base 500ms, factor 2). Exhaustion
// surfaces as an upload failure for the runtime to report.
func (s *Store) Upload(ctx context.Context, localPath, targetURI string) error {
	bucket, key, err := ParseTargetURI(targetURI)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= uploadAttempts; attempt++ {
		lastErr = s.put(ctx, bucket, key, localPath)
		if lastErr == nil {
			s.logger.Info().
				Str("bucket", bucket).
				Str("key", key).
				Int("attempt", attempt).
				Msg("Artifact uploaded")
			return nil
		}
		if ctx.Err() != nil {
			break
		}
		if attempt < uploadAttempts {
			backoff := uploadBackoffBase << (attempt - 1)
			s.logger.Warn().
				Err(lastErr).
				Str("bucket", bucket).
				Str("key", key).
				Int("attempt", attempt).
				Str("backoff", backoff.String()).
				Msg("Upload failed, retrying")
			s.sleep(backoff)
		}
	}

	return models.NewJobError(models.ErrKindUpload,
		fmt.Sprintf("upload of %s to %s failed after %d attempts", localPath, targetURI, uploadAttempts), lastErr)
}
