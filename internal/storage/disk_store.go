package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps objects under Path/{bucket}/{key}; the API server exposes them under /files/.
type DiskStore struct {
	Path    string
	BaseURL string
}

func NewDiskStore(path, baseURL string) *DiskStore {
	return &DiskStore{
		Path:    path,
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *DiskStore) Put(_ context.Context, bucket, key, _ string, data []byte) error {
	dst := filepath.Join(s.Path, bucket, filepath.FromSlash(key))
	if !strings.HasPrefix(dst, filepath.Clean(s.Path)+string(os.PathSeparator)) {
		return fmt.Errorf("object key %q escapes the storage root", key)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create bucket directory: %w", err)
	}

	// O_EXCL mirrors the no-upsert behaviour of the remote store.
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(data)
	return err
}

func (s *DiskStore) PublicURL(bucket, key string) string {
	return s.BaseURL + "/files/" + bucket + "/" + key
}
