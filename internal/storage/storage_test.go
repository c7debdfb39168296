package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jungianjournals/journals-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestS3(t *testing.T, handler http.HandlerFunc, publicBase string) *S3FileStorage {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	endpoint := srv.URL
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: &endpoint,
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
	})
	return NewS3FileStorageWithClient(client, "blog-images", publicBase)
}

func TestS3FileStorage_Save(t *testing.T) {
	var gotPath, gotType, gotBody string
	s := newTestS3(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}, "")

	img, err := ReadImage(strings.NewReader(string(pngHeader)), 0)
	require.NoError(t, err)

	err = s.Save(context.Background(), "blog/2025/03/x.png", img.Reader(), img.Size(), img.ContentType)
	require.NoError(t, err)
	assert.Equal(t, "/blog-images/blog/2025/03/x.png", gotPath)
	assert.Equal(t, "image/png", gotType)
	assert.Contains(t, gotBody, "PNG")
}

func TestS3FileStorage_SaveRejectsTraversal(t *testing.T) {
	s := newTestS3(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not be sent")
	}, "")

	err := s.Save(context.Background(), "../etc/passwd", strings.NewReader("x"), 1, "image/png")
	assert.Error(t, err)
}

func TestS3FileStorage_URL(t *testing.T) {
	public := newTestS3(t, func(w http.ResponseWriter, r *http.Request) {}, "https://cdn.example.com")
	u, err := public.URL(context.Background(), "blog/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/blog/a.png", u)

	private := newTestS3(t, func(w http.ResponseWriter, r *http.Request) {}, "")
	u, err = private.URL(context.Background(), "blog/a.png")
	require.NoError(t, err)
	assert.Contains(t, u, "/blog-images/blog/a.png")
	assert.Contains(t, u, "X-Amz-Signature=")
}

func TestSupabaseFileStorage(t *testing.T) {
	var uploads, removes int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/storage/v1/object/blog-images/blog/a.png":
			uploads++
			assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
			_, _ = w.Write([]byte(`{"Key":"blog-images/blog/a.png"}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/storage/v1/object/blog-images":
			removes++
			_, _ = w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"statusCode":"404","error":"not_found","message":"not found"}`))
		}
	}))
	defer srv.Close()

	s := NewSupabaseFileStorage(srv.URL, "service-key", "blog-images")
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "blog/a.png", strings.NewReader("png"), 3, "image/png"))
	require.NoError(t, s.Delete(ctx, "blog/a.png"))
	assert.Equal(t, 1, uploads)
	assert.Equal(t, 1, removes)

	u, err := s.URL(ctx, "blog/a.png")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/blog-images/blog/a.png", u)

	assert.Error(t, s.Save(ctx, "other/b.png", strings.NewReader("png"), 3, "image/png"))
}

func TestNew(t *testing.T) {
	cfg := &config.Config{
		Supabase: config.SupabaseConfig{URL: "https://proj.supabase.co", ServiceKey: "k"},
		Storage:  config.StorageConfig{Provider: config.StorageProviderSupabase, Bucket: "blog-images"},
	}
	fs, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &SupabaseFileStorage{}, fs)

	cfg.Storage = config.StorageConfig{Provider: config.StorageProviderR2, R2AccountID: "acct", Bucket: "b", AccessKeyID: "a", SecretAccessKey: "s"}
	fs, err = New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &S3FileStorage{}, fs)

	cfg.Storage.Provider = "ftp"
	_, err = New(context.Background(), cfg)
	assert.Error(t, err)
}
