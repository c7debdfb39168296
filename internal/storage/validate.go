package storage

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	apperrors "github.com/jungianjournals/journals-backend/errors"
)

// DefaultMaxImageSize is 5 MiB.
const DefaultMaxImageSize = 5 << 20

// allowedImageTypes maps accepted MIME types to the stored file extension.
var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// Image is a validated upload ready to be stored.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// Reader returns a seekable reader over the image bytes.
func (i *Image) Reader() *bytes.Reader {
	return bytes.NewReader(i.Data)
}

// Size is the image length in bytes.
func (i *Image) Size() int64 {
	return int64(len(i.Data))
}

// ReadImage reads at most maxSize bytes from r, sniffs the content type
// ignoring whatever the client claimed, and rejects anything that is not an
// allowed image.
func ReadImage(r io.Reader, maxSize int64) (*Image, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}

	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, apperrors.ValidationFailed("invalid_file", "failed to read uploaded file")
	}
	if len(data) == 0 {
		return nil, apperrors.ValidationFailed("empty_file", "uploaded file is empty")
	}
	if int64(len(data)) > maxSize {
		return nil, apperrors.ValidationFailed("file_too_large", fmt.Sprintf("file exceeds the %d byte limit", maxSize))
	}

	detected := mimetype.Detect(data).String()
	ext, ok := allowedImageTypes[detected]
	if !ok {
		return nil, apperrors.ValidationFailed("invalid_mime_type",
			fmt.Sprintf("MIME type %s is not allowed. Allowed: jpeg, png, webp, gif", detected))
	}

	return &Image{Data: data, ContentType: detected, Extension: ext}, nil
}

// BlogImageKey returns blog/{yyyy}/{mm}/{uuid}.{ext} for an upload at now.
func BlogImageKey(now time.Time, ext string) string {
	now = now.UTC()
	return fmt.Sprintf("blog/%04d/%02d/%s.%s", now.Year(), int(now.Month()), uuid.NewString(), ext)
}
