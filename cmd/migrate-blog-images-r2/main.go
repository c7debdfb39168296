// Package main provides a one-time migration tool that copies blog images
// from the Supabase Storage bucket to Cloudflare R2. With -rewrite it also
// points blog_content.image_url at the R2 public URL.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const maxImageBytes = 10 << 20

type blogImage struct {
	blogID string
	url    string
	key    string
}

func main() {
	dryRun := flag.Bool("dry-run", false, "List images that would be migrated without uploading")
	concurrency := flag.Int("concurrency", 4, "Number of parallel uploads")
	rewrite := flag.Bool("rewrite", false, "Update blog_content.image_url to the R2 URL after upload")
	flag.Parse()

	ctx := context.Background()

	// --- Database connection ---
	pool, err := pgxpool.New(ctx, buildDatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Database ping failed: %v", err)
	}
	log.Println("Connected to database")

	prefix := supabasePublicPrefix()

	// --- Fetch image URLs from DB ---
	rows, err := pool.Query(ctx,
		`SELECT id::text, image_url FROM blog_content WHERE image_url LIKE $1 || '%'`, prefix)
	if err != nil {
		log.Fatalf("Failed to query blog_content: %v", err)
	}
	defer rows.Close()

	var images []blogImage
	for rows.Next() {
		var img blogImage
		if err := rows.Scan(&img.blogID, &img.url); err != nil {
			log.Fatalf("Failed to scan row: %v", err)
		}
		img.key = strings.TrimPrefix(img.url, prefix)
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Row iteration error: %v", err)
	}

	total := len(images)
	log.Printf("Found %d blog images in Supabase Storage", total)

	if total == 0 {
		log.Println("Nothing to migrate")
		return
	}

	if *dryRun {
		log.Println("=== DRY RUN: images that would be migrated ===")
		for i, img := range images {
			fmt.Printf("  [%d/%d] %s -> %s\n", i+1, total, img.url, img.key)
		}
		log.Println("=== DRY RUN complete ===")
		return
	}

	// --- R2 / S3 client ---
	s3Client, bucket := newR2Client(ctx)
	publicBase := strings.TrimRight(requireEnv("R2_PUBLIC_BASE_URL"), "/")
	httpClient := &http.Client{Timeout: 30 * time.Second}

	// --- Concurrent migration ---
	var (
		migrated  int64
		skipped   int64
		rewritten int64
		errCount  int64
		wg        sync.WaitGroup
		sem       = make(chan struct{}, *concurrency)
	)

	for i, img := range images {
		wg.Add(1)
		sem <- struct{}{} // acquire slot

		go func(idx int, img blogImage) {
			defer wg.Done()
			defer func() { <-sem }() // release slot

			if existsInR2(ctx, s3Client, bucket, img.key) {
				log.Printf("Skipping image %d/%d (already in R2): %s", idx+1, total, img.key)
				atomic.AddInt64(&skipped, 1)
			} else {
				body, err := download(ctx, httpClient, img.url)
				if err != nil {
					log.Printf("ERROR image %d/%d: download failed for %s: %v", idx+1, total, img.url, err)
					atomic.AddInt64(&errCount, 1)
					return
				}

				log.Printf("Migrating image %d/%d: %s", idx+1, total, img.key)
				if err := uploadToR2(ctx, s3Client, bucket, img.key, body); err != nil {
					log.Printf("ERROR image %d/%d: upload failed for %s: %v", idx+1, total, img.key, err)
					atomic.AddInt64(&errCount, 1)
					return
				}

				if !existsInR2(ctx, s3Client, bucket, img.key) {
					log.Printf("ERROR image %d/%d: verification failed for %s", idx+1, total, img.key)
					atomic.AddInt64(&errCount, 1)
					return
				}
				atomic.AddInt64(&migrated, 1)
			}

			if *rewrite {
				newURL := publicBase + "/" + img.key
				if _, err := pool.Exec(ctx,
					`UPDATE blog_content SET image_url = $1, updated_at = NOW() WHERE id = $2 AND image_url = $3`,
					newURL, img.blogID, img.url); err != nil {
					log.Printf("ERROR image %d/%d: rewrite failed for blog %s: %v", idx+1, total, img.blogID, err)
					atomic.AddInt64(&errCount, 1)
					return
				}
				atomic.AddInt64(&rewritten, 1)
			}
		}(i, img)
	}

	wg.Wait()

	log.Println("=== Migration Summary ===")
	log.Printf("  Total:     %d", total)
	log.Printf("  Migrated:  %d", migrated)
	log.Printf("  Skipped:   %d (already in R2)", skipped)
	log.Printf("  Rewritten: %d", rewritten)
	log.Printf("  Errors:    %d", errCount)

	if errCount > 0 {
		os.Exit(1)
	}
}

// supabasePublicPrefix is the public object URL prefix of the image bucket.
func supabasePublicPrefix() string {
	base := strings.TrimRight(requireEnv("SUPABASE_URL"), "/")
	bucket := envOrDefault("STORAGE_BUCKET", "blog-images")
	return fmt.Sprintf("%s/storage/v1/object/public/%s/", base, bucket)
}

// buildDatabaseURL constructs a PostgreSQL connection string from env vars.
// Supports DATABASE_URL directly, or individual DB_* vars.
func buildDatabaseURL() string {
	if u := os.Getenv("DATABASE_URL"); u != "" {
		return u
	}

	host := envOrDefault("DB_HOST", "localhost")
	port := envOrDefault("DB_PORT", "5432")
	user := envOrDefault("DB_USER", "postgres")
	pass := envOrDefault("DB_PASSWORD", "")
	name := envOrDefault("DB_NAME", "journals")
	ssl := envOrDefault("DB_SSL_MODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(user), url.QueryEscape(pass), host, port, name, ssl)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newR2Client creates an S3-compatible client pointed at Cloudflare R2.
func newR2Client(ctx context.Context) (*s3.Client, string) {
	accountID := requireEnv("R2_ACCOUNT_ID")
	bucket := requireEnv("R2_BUCKET_NAME")
	accessKey := requireEnv("R2_ACCESS_KEY_ID")
	secretKey := requireEnv("R2_SECRET_ACCESS_KEY")

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return client, bucket
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("Required environment variable %s is not set", key)
	}
	return v
}

// download fetches a public object into memory.
func download(ctx context.Context, client *http.Client, objectURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, objectURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}
	return data, nil
}

// existsInR2 checks if an object already exists in R2 via HeadObject.
func existsInR2(ctx context.Context, client *s3.Client, bucket, key string) bool {
	_, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return err == nil
}

// uploadToR2 uploads an image to R2 using PutObject.
func uploadToR2(ctx context.Context, client *s3.Client, bucket, key string, data []byte) error {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:            aws.String(bucket),
		Key:               aws.String(key),
		Body:              bytes.NewReader(data),
		ContentType:       aws.String(mimetype.Detect(data).String()),
		ChecksumAlgorithm: s3types.ChecksumAlgorithmCrc32,
	})
	return err
}
