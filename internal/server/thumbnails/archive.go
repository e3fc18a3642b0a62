// Package thumbnails copies video thumbnails into an S3-compatible bucket so
// saved bookmarks keep their image after the provider drops it.
package thumbnails

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/vidmark/internal/netx"
	sc "github.com/dmitrijs2005/vidmark/internal/server/config"
	"github.com/google/uuid"
)

const (
	maxThumbnailBytes = 2 << 20
	presignExpiry     = 15 * time.Minute
)

// Archiver stores thumbnail copies and hands out temporary links to them.
type Archiver interface {
	Archive(ctx context.Context, externalID, sourceURL string) (string, error)
	URL(ctx context.Context, key string) (string, error)
}

// ObjectPutter is the part of *s3.Client the archiver writes through.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ObjectPresigner is the part of *s3.PresignClient used for read links.
type ObjectPresigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type S3Archiver struct {
	bucket    string
	putter    ObjectPutter
	presigner ObjectPresigner
	http      *http.Client
}

func NewS3Archiver(bucket string, putter ObjectPutter, presigner ObjectPresigner, httpClient *http.Client) *S3Archiver {
	return &S3Archiver{bucket: bucket, putter: putter, presigner: presigner, http: httpClient}
}

// NewS3ArchiverFromConfig builds the S3 clients from static credentials and
// the configured base endpoint (MinIO in development).
func NewS3ArchiverFromConfig(ctx context.Context, cfg *sc.Config) (*S3Archiver, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return NewS3Archiver(cfg.S3Bucket, client, s3.NewPresignClient(client),
		&http.Client{Timeout: cfg.YouTubeTimeout}), nil
}

// StorageKey returns a fresh object key for a thumbnail of externalID.
func StorageKey(externalID string) string {
	return fmt.Sprintf("thumbnails/%s/%s.jpg", externalID, uuid.NewString())
}

// Archive downloads sourceURL and stores it under a new key, which it returns.
func (a *S3Archiver) Archive(ctx context.Context, externalID, sourceURL string) (string, error) {
	body, contentType, err := netx.Download(ctx, a.http, sourceURL, maxThumbnailBytes)
	if err != nil {
		return "", fmt.Errorf("download thumbnail: %w", err)
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key := StorageKey(externalID)
	_, err = a.putter.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put thumbnail: %w", err)
	}

	return key, nil
}

// URL returns a presigned GET link to key.
func (a *S3Archiver) URL(ctx context.Context, key string) (string, error) {
	req, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
