package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseFileStorage stores files in a Supabase Storage bucket.
type SupabaseFileStorage struct {
	baseURL    string
	serviceKey string
	bucket     string
}

// NewSupabaseFileStorage targets the storage API of the given project.
func NewSupabaseFileStorage(projectURL, serviceKey, bucket string) *SupabaseFileStorage {
	return &SupabaseFileStorage{
		baseURL:    strings.TrimRight(projectURL, "/") + "/storage/v1",
		serviceKey: serviceKey,
		bucket:     bucket,
	}
}

// client returns a fresh client per call. storage-go keeps upload options in
// headers shared by every request of a client.
func (s *SupabaseFileStorage) client() *storage_go.Client {
	return storage_go.NewClient(s.baseURL, s.serviceKey, nil)
}

// Save uploads a file. Existing objects are not overwritten.
func (s *SupabaseFileStorage) Save(_ context.Context, key string, reader io.Reader, _ int64, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	upsert := false
	cacheControl := "31536000"
	_, err := s.client().UploadFile(s.bucket, key, reader, storage_go.FileOptions{
		ContentType:  &contentType,
		CacheControl: &cacheControl,
		Upsert:       &upsert,
	})
	if err != nil {
		return fmt.Errorf("supabase upload failed: %w", err)
	}
	return nil
}

// Delete removes a file.
func (s *SupabaseFileStorage) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if _, err := s.client().RemoveFile(s.bucket, []string{key}); err != nil {
		return fmt.Errorf("supabase remove failed: %w", err)
	}
	return nil
}

// URL returns the public object URL. The bucket is expected to be public.
func (s *SupabaseFileStorage) URL(_ context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return s.client().GetPublicUrl(s.bucket, key).SignedURL, nil
}
