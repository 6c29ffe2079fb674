package storage

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/autopeer-io/voxpeer/pkg/log"
	"github.com/autopeer-io/voxpeer/pkg/options"
)

// presignExpiry bounds how long the returned download link works.
const presignExpiry = 24 * time.Hour

// MinIO uploads snapshots to an S3-compatible bucket.
type MinIO struct {
	client     *minio.Client
	bucketName string
	prefix     string
}

var _ Provider = (*MinIO)(nil)

// NewMinIO creates an S3 storage provider.
func NewMinIO(opts *options.S3Options) (*MinIO, error) {
	// Self-signed certificates are common on edge MinIO installs.
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure:    opts.UseSSL,
		Region:    opts.Region,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinIO{
		client:     client,
		bucketName: opts.BucketName,
		prefix:     opts.Prefix,
	}, nil
}

// CheckReady creates the bucket when it does not exist yet.
func (p *MinIO) CheckReady(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		log.Info("Bucket does not exist, creating...", "bucket", p.bucketName)
		if err := p.client.MakeBucket(ctx, p.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// Save uploads data and returns a presigned download URL, or the object
// path when presigning fails.
func (p *MinIO) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := p.prefix + name

	info, err := p.client.PutObject(ctx, p.bucketName, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	log.Debug("Snapshot uploaded", "bucket", info.Bucket, "key", info.Key, "etag", info.ETag)

	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", name))

	presigned, err := p.client.PresignedGetObject(ctx, p.bucketName, key, presignExpiry, reqParams)
	if err != nil {
		log.Warn("Failed to presign snapshot URL", "key", key, "error", err)
		return fmt.Sprintf("s3://%s/%s", p.bucketName, key), nil
	}
	return presigned.String(), nil
}
