package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/libriahq/libria/internal/common"
	"github.com/libriahq/libria/internal/logging"
)

// SDK seams, swappable in tests.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPostObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignPostOptions)) (*s3.PresignedPostRequest, error) {
		return pc.PresignPostObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in)
	}
	copyObject = func(c *s3.Client, ctx context.Context, in *s3.CopyObjectInput) (*s3.CopyObjectOutput, error) {
		return c.CopyObject(ctx, in)
	}
	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return c.HeadObject(ctx, in)
	}
)

// DefaultCredentialExpiry is the lifetime of issued credentials when the
// caller does not specify one.
const DefaultCredentialExpiry = time.Hour

// S3Settings configures the live provider. Empty credentials or bucket put
// the service into degraded mode.
type S3Settings struct {
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	// BaseEndpoint overrides the endpoint for S3-compatible backends (MinIO).
	BaseEndpoint string
}

// UploadCredential is a scoped, expiring grant for one direct-to-storage
// upload. Mock marks credentials issued in degraded mode; they are
// syntactically valid but not backed by the provider.
type UploadCredential struct {
	URL       string
	Key       string
	ExpiresIn int64
	Fields    map[string]string
	Mock      bool
}

// DownloadCredential is a read-scoped, expiring URL for exactly one object.
type DownloadCredential struct {
	URL       string
	ExpiresIn int64
	Mock      bool
}

// ObjectMeta describes a stored object as reported by the provider.
type ObjectMeta struct {
	Size         int64
	ContentType  string
	LastModified time.Time
	Mock         bool
}

type grantSpec struct {
	contentType string
	ownerID     string
	filename    string
	expires     time.Duration
}

// provider is the storage backend variant behind the Service. Exactly one
// implementation is selected at construction; call sites never branch on mode.
type provider interface {
	uploadGrant(ctx context.Context, key string, spec grantSpec) (url string, fields map[string]string, err error)
	downloadURL(ctx context.Context, key string, expires time.Duration) (string, error)
	removeObject(ctx context.Context, key string) error
	duplicateObject(ctx context.Context, sourceKey, destKey string) error
	objectMeta(ctx context.Context, key string) (*ObjectMeta, error)
	live() bool
}

// Service issues scoped, expiring storage credentials. It holds a read-only
// provider handle initialized once at startup and is safe for concurrent use.
type Service struct {
	provider provider
	logger   logging.Logger
}

// NewService selects the provider mode once: live when S3 credentials are
// configured and the client can be built, degraded otherwise. The mode never
// changes at runtime.
func NewService(cfg S3Settings, logger logging.Logger) *Service {
	l := logger.With("module", "storage")
	ctx := context.Background()

	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.Bucket == "" {
		l.Warn(ctx, "storage credentials not configured, issuing mock credentials")
		return &Service{provider: &degradedProvider{bucket: cfg.Bucket}, logger: l}
	}

	p, err := newLiveProvider(cfg)
	if err != nil {
		l.Error(ctx, "storage client init failed, issuing mock credentials", "error", err.Error())
		return &Service{provider: &degradedProvider{bucket: cfg.Bucket}, logger: l}
	}

	l.Info(ctx, "storage client initialized", "bucket", cfg.Bucket, "region", cfg.Region)
	return &Service{provider: p, logger: l}
}

// Live reports whether the service talks to a real provider.
func (s *Service) Live() bool {
	return s.provider.live()
}

// IssueUploadCredential derives a fresh storage key for (filename, ownerID)
// and returns an upload grant scoped to that key, the exact content type, a
// metadata binding to the owner and original filename, and the enforced
// [1, 100 MiB] size range. Validation is the caller's job; failures here are
// provider errors only.
func (s *Service) IssueUploadCredential(ctx context.Context, filename, contentType, ownerID string, expires time.Duration) (*UploadCredential, error) {
	if expires <= 0 {
		expires = DefaultCredentialExpiry
	}

	key := DeriveStorageKey(filename, ownerID, time.Now())

	url, fields, err := s.provider.uploadGrant(ctx, key, grantSpec{
		contentType: contentType,
		ownerID:     ownerID,
		filename:    filename,
		expires:     expires,
	})
	if err != nil {
		s.logger.Error(ctx, "upload credential request failed", "key", key, "error", err.Error())
		return nil, fmt.Errorf("%w: presign upload: %v", common.ErrorProvider, err)
	}

	s.logger.Info(ctx, "issued upload credential", "filename", filename, "key", key)

	return &UploadCredential{
		URL:       url,
		Key:       key,
		ExpiresIn: int64(expires.Seconds()),
		Fields:    fields,
		Mock:      !s.provider.live(),
	}, nil
}

// IssueDownloadCredential returns a read-scoped, time-limited URL for exactly
// the given key.
func (s *Service) IssueDownloadCredential(ctx context.Context, storageKey string, expires time.Duration) (*DownloadCredential, error) {
	if expires <= 0 {
		expires = DefaultCredentialExpiry
	}

	url, err := s.provider.downloadURL(ctx, storageKey, expires)
	if err != nil {
		s.logger.Error(ctx, "download credential request failed", "key", storageKey, "error", err.Error())
		return nil, fmt.Errorf("%w: presign download: %v", common.ErrorProvider, err)
	}

	return &DownloadCredential{
		URL:       url,
		ExpiresIn: int64(expires.Seconds()),
		Mock:      !s.provider.live(),
	}, nil
}

// DeleteObject removes the object at key, best effort. Degraded mode
// simulates success so higher-level flows keep working without live storage.
func (s *Service) DeleteObject(ctx context.Context, storageKey string) bool {
	if err := s.provider.removeObject(ctx, storageKey); err != nil {
		s.logger.Error(ctx, "object deletion failed", "key", storageKey, "error", err.Error())
		return false
	}
	return true
}

// CopyObject copies source to dest within the bucket, best effort.
func (s *Service) CopyObject(ctx context.Context, sourceKey, destKey string) bool {
	if err := s.provider.duplicateObject(ctx, sourceKey, destKey); err != nil {
		s.logger.Error(ctx, "object copy failed", "source", sourceKey, "dest", destKey, "error", err.Error())
		return false
	}
	return true
}

// ObjectInfo looks up size, content type and last-modified for key. Degraded
// mode returns deterministic mock metadata.
func (s *Service) ObjectInfo(ctx context.Context, storageKey string) (*ObjectMeta, error) {
	meta, err := s.provider.objectMeta(ctx, storageKey)
	if err != nil {
		s.logger.Error(ctx, "object info lookup failed", "key", storageKey, "error", err.Error())
		return nil, fmt.Errorf("%w: head object: %v", common.ErrorProvider, err)
	}
	return meta, nil
}

// liveProvider talks to an S3-compatible backend through clients built once
// at startup.
type liveProvider struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

func newLiveProvider(cfg S3Settings) (*liveProvider, error) {
	awsCfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
	})

	return &liveProvider{
		client:  client,
		presign: newS3PresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

func (p *liveProvider) uploadGrant(ctx context.Context, key string, spec grantSpec) (string, map[string]string, error) {
	req, err := presignPostObject(p.presign, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(spec.contentType),
		Metadata: map[string]string{
			"user-id":           spec.ownerID,
			"original-filename": spec.filename,
		},
	}, func(o *s3.PresignPostOptions) {
		o.Expires = spec.expires
		o.Conditions = append(o.Conditions,
			[]interface{}{"content-length-range", MinUploadBytes, MaxUploadBytes})
	})
	if err != nil {
		return "", nil, err
	}
	return req.URL, req.Values, nil
}

func (p *liveProvider) downloadURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	req, err := presignGetObject(p.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (p *liveProvider) removeObject(ctx context.Context, key string) error {
	_, err := deleteObject(p.client, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (p *liveProvider) duplicateObject(ctx context.Context, sourceKey, destKey string) error {
	_, err := copyObject(p.client, ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(p.bucket),
		CopySource: aws.String(p.bucket + "/" + sourceKey),
		Key:        aws.String(destKey),
	})
	return err
}

func (p *liveProvider) objectMeta(ctx context.Context, key string) (*ObjectMeta, error) {
	out, err := headObject(p.client, ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}

	meta := &ObjectMeta{ContentType: "application/octet-stream"}
	if out.ContentLength != nil {
		meta.Size = *out.ContentLength
	}
	if out.ContentType != nil {
		meta.ContentType = *out.ContentType
	}
	if out.LastModified != nil {
		meta.LastModified = *out.LastModified
	}
	return meta, nil
}

func (p *liveProvider) live() bool { return true }

// degradedProvider serves deterministic placeholder results without any
// network I/O when live storage credentials are unavailable.
type degradedProvider struct {
	bucket string
}

func (p *degradedProvider) mockURL(key string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s?mock=true", p.bucket, key)
}

func (p *degradedProvider) uploadGrant(ctx context.Context, key string, spec grantSpec) (string, map[string]string, error) {
	return p.mockURL(key), map[string]string{}, nil
}

func (p *degradedProvider) downloadURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return p.mockURL(key), nil
}

func (p *degradedProvider) removeObject(ctx context.Context, key string) error {
	return nil
}

func (p *degradedProvider) duplicateObject(ctx context.Context, sourceKey, destKey string) error {
	return nil
}

func (p *degradedProvider) objectMeta(ctx context.Context, key string) (*ObjectMeta, error) {
	return &ObjectMeta{
		Size:         1024000,
		ContentType:  "application/octet-stream",
		LastModified: time.Now().UTC(),
		Mock:         true,
	}, nil
}

func (p *degradedProvider) live() bool { return false }
