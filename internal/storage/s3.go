package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// presignTTL is the longest expiry S3 and R2 accept for presigned URLs.
const presignTTL = 7 * 24 * time.Hour

// S3FileStorage stores files in Amazon S3 or an S3-compatible service such as R2.
type S3FileStorage struct {
	client        *s3.Client
	presigner     *s3.PresignClient
	bucketName    string
	publicBaseURL string
}

// NewR2FileStorage creates a new R2-backed file storage instance.
func NewR2FileStorage(accountID, bucketName, accessKeyID, secretAccessKey, publicBaseURL string) *S3FileStorage {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)

	client := s3.New(s3.Options{
		Region:       "auto",
		BaseEndpoint: &endpoint,
		Credentials:  credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
	})
	return NewS3FileStorageWithClient(client, bucketName, publicBaseURL)
}

// NewS3FileStorage creates an S3-backed file storage using the default AWS
// configuration chain with static credentials.
func NewS3FileStorage(ctx context.Context, region, bucketName, accessKeyID, secretAccessKey, publicBaseURL string) (*S3FileStorage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewS3FileStorageWithClient(s3.NewFromConfig(cfg), bucketName, publicBaseURL), nil
}

// NewS3FileStorageWithClient wraps an existing client.
func NewS3FileStorageWithClient(client *s3.Client, bucketName, publicBaseURL string) *S3FileStorage {
	return &S3FileStorage{
		client:        client,
		presigner:     s3.NewPresignClient(client),
		bucketName:    bucketName,
		publicBaseURL: publicBaseURL,
	}
}

// Save uploads a file.
func (s *S3FileStorage) Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucketName,
		Key:           &key,
		Body:          reader,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return fmt.Errorf("s3 put object failed: %w", err)
	}
	return nil
}

// Delete removes a file.
func (s *S3FileStorage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucketName,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("s3 delete object failed: %w", err)
	}
	return nil
}

// URL returns the public URL when a public base is configured and a
// presigned GET URL otherwise.
func (s *S3FileStorage) URL(ctx context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if s.publicBaseURL != "" {
		return joinURL(s.publicBaseURL, key), nil
	}
	result, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucketName,
		Key:    &key,
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("s3 presign failed: %w", err)
	}
	return result.URL, nil
}
