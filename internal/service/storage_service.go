package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/oweru/content-api/configs"
)

// ObjectStorage is the media store: binary assets keyed by object name,
// retrievable through a public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, file []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	PublicURL(key string) string
	// KeyFromURL maps a URL back to its object key, failing for URLs
	// outside this store's public origin.
	KeyFromURL(url string) (string, error)
}

// R2Service stores media in an S3-compatible bucket (Cloudflare R2).
type R2Service struct {
	config cfg.Config
}

func NewR2Service(cfg cfg.Config) *R2Service {
	return &R2Service{config: cfg}
}

func (r *R2Service) client() (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.config.R2.AccessKey, r.config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Error(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.R2.AccountID))
	}), nil
}

func (r *R2Service) Upload(ctx context.Context, key string, file []byte, contentType string) error {
	client, err := r.client()
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *R2Service) Delete(ctx context.Context, key string) error {
	client, err := r.client()
	if err != nil {
		return err
	}

	input := &s3.DeleteObjectInput{
		Bucket: aws.String(r.config.R2.BucketName),
		Key:    aws.String(key),
	}

	if _, err := client.DeleteObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

// Get streams a stored object and reports its content type.
func (r *R2Service) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	client, err := r.client()
	if err != nil {
		return nil, "", err
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(r.config.R2.BucketName),
		Key:    aws.String(key),
	}

	out, err := client.GetObject(ctx, input)
	if err != nil {
		slog.Info(err.Error())
		return nil, "", err
	}

	contentType := "application/octet-stream"
	if out.ContentType != nil {
		contentType = *out.ContentType
	}

	return out.Body, contentType, nil
}

func (r *R2Service) PublicURL(key string) string {
	return strings.TrimSuffix(r.config.R2.PublicBaseURL, "/") + "/" + key
}

func (r *R2Service) KeyFromURL(url string) (string, error) {
	base := strings.TrimSuffix(r.config.R2.PublicBaseURL, "/") + "/"
	if base == "/" || !strings.HasPrefix(url, base) {
		return "", fmt.Errorf("url %q is outside the media storage origin", url)
	}
	key := strings.TrimPrefix(url, base)
	if key == "" || strings.Contains(key, "/") {
		return "", fmt.Errorf("url %q does not name a stored object", url)
	}
	return key, nil
}
