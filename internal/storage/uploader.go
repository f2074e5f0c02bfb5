package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNoFile  = errors.New("no file provided")
	ErrStorage = errors.New("storage error")
)

const (
	imageFolder    = "images"
	documentFolder = "files"
	suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	unsafeNameChars = regexp.MustCompile(`[^a-z0-9._-]`)
	repeatedDashes  = regexp.MustCompile(`-+`)
)

// File is an uploaded payload as received from a multipart form.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

type UploadResult struct {
	FileURL string `json:"file_url"`
	Bucket  string `json:"bucket"`
	Key     string `json:"key"`
}

// Store is an object storage backend.
type Store interface {
	Put(ctx context.Context, bucket, key, contentType string, data []byte) error
	PublicURL(bucket, key string) string
}

type Buckets struct {
	Photo    string
	Document string
}

type Uploader struct {
	store   Store
	buckets Buckets
	now     func() time.Time
	suffix  func() string
}

func NewUploader(store Store, buckets Buckets) *Uploader {
	return &Uploader{
		store:   store,
		buckets: buckets,
		now:     time.Now,
		suffix:  randomSuffix,
	}
}

// Upload stores f in the photo bucket when it is an image and in the document bucket otherwise.
func (u *Uploader) Upload(ctx context.Context, f *File) (*UploadResult, error) {
	if f == nil || (len(f.Content) == 0 && f.Name == "") {
		return nil, ErrNoFile
	}

	contentType := DetectContentType(f)
	bucket, folder := u.buckets.Document, documentFolder
	if IsImage(contentType) {
		bucket, folder = u.buckets.Photo, imageFolder
	}

	key := path.Join(folder, fmt.Sprintf("%d-%s-%s", u.now().UnixMilli(), u.suffix(), StorageName(f.Name)))

	if err := u.store.Put(ctx, bucket, key, contentType, f.Content); err != nil {
		return nil, fmt.Errorf("%w: failed to upload %s: %v", ErrStorage, key, err)
	}

	url := u.store.PublicURL(bucket, key)
	if url == "" {
		return nil, fmt.Errorf("%w: failed to generate file URL", ErrStorage)
	}

	slog.InfoContext(ctx, "File uploaded", slog.String("bucket", bucket), slog.String("key", key), slog.Int("size", len(f.Content)))

	return &UploadResult{FileURL: url, Bucket: bucket, Key: key}, nil
}

// DetectContentType trusts a specific declared type and sniffs the content otherwise.
func DetectContentType(f *File) string {
	declared := strings.TrimSpace(strings.ToLower(f.ContentType))
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if len(f.Content) == 0 {
		return "application/octet-stream"
	}
	return mimetype.Detect(f.Content).String()
}

func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// SanitizeFileName lowercases name and replaces anything outside [a-z0-9._-] with a single dash.
func SanitizeFileName(name string) string {
	if name == "" {
		name = "file"
	}
	name = unsafeNameChars.ReplaceAllString(strings.ToLower(name), "-")
	return repeatedDashes.ReplaceAllString(name, "-")
}

// FileExt returns the lowercased extension without the dot, or "bin".
func FileExt(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		return "bin"
	}
	return strings.ToLower(name[idx+1:])
}

// StorageName renders "{sanitized-base}.{ext}" for an original file name.
func StorageName(name string) string {
	base := name
	if idx := strings.LastIndex(name, "."); idx > 0 {
		base = name[:idx]
	}
	return SanitizeFileName(base) + "." + FileExt(name)
}

func randomSuffix() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = suffixAlphabet[rand.IntN(len(suffixAlphabet))]
	}
	return string(b)
}
