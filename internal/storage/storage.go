// Package storage stores uploaded blog images in object storage (Cloudflare
// R2, Amazon S3 or Supabase Storage).
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jungianjournals/journals-backend/config"
)

// FileStorage abstracts the object store behind image uploads.
type FileStorage interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL returns a URL the browser can load the object from.
	URL(ctx context.Context, key string) (string, error)
}

// New builds the FileStorage selected by cfg.Storage.Provider.
func New(ctx context.Context, cfg *config.Config) (FileStorage, error) {
	sc := cfg.Storage
	switch sc.Provider {
	case config.StorageProviderR2:
		return NewR2FileStorage(sc.R2AccountID, sc.Bucket, sc.AccessKeyID, sc.SecretAccessKey, sc.PublicBaseURL), nil
	case config.StorageProviderS3:
		return NewS3FileStorage(ctx, sc.Region, sc.Bucket, sc.AccessKeyID, sc.SecretAccessKey, sc.PublicBaseURL)
	case config.StorageProviderSupabase, "":
		return NewSupabaseFileStorage(cfg.Supabase.URL, cfg.Supabase.ServiceKey, sc.Bucket), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", sc.Provider)
	}
}

// validateKey rejects storage keys containing path traversal segments.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty storage key")
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return fmt.Errorf("path traversal detected in storage key")
		}
	}
	return nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
