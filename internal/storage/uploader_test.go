package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	bucket, key, contentType string
	data                     []byte
	err                      error
	url                      string
}

func (f *fakeStore) Put(_ context.Context, bucket, key, contentType string, data []byte) error {
	f.bucket, f.key, f.contentType, f.data = bucket, key, contentType, data
	return f.err
}

func (f *fakeStore) PublicURL(bucket, key string) string {
	if f.url == "-" {
		return ""
	}
	return "https://cdn.test/" + bucket + "/" + key
}

func newTestUploader(store Store) *Uploader {
	u := NewUploader(store, Buckets{Photo: "Profilephoto", Document: "Resume"})
	u.now = func() time.Time { return time.UnixMilli(1700000000000) }
	u.suffix = func() string { return "abc12345" }
	return u
}

var pngHeader = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 0x49, 0x48, 0x44, 0x52}

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"My Resume (final)": "my-resume-final-",
		"photo__1":          "photo__1",
		"":                  "file",
		"a   b":             "a-b",
		"Résumé":            "r-sum-",
		"report.v2":         "report.v2",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFileName(in), in)
	}
}

func TestFileExt(t *testing.T) {
	assert.Equal(t, "pdf", FileExt("CV.PDF"))
	assert.Equal(t, "gz", FileExt("archive.tar.gz"))
	assert.Equal(t, "bin", FileExt("README"))
	assert.Equal(t, "bin", FileExt("trailing."))
}

func TestStorageName(t *testing.T) {
	assert.Equal(t, "my-cv.pdf", StorageName("My CV.pdf"))
	assert.Equal(t, "notes.bin", StorageName("notes"))
	assert.Equal(t, ".hidden.bin", StorageName(".hidden"))
}

func TestUploadRoutesImagesToPhotoBucket(t *testing.T) {
	store := &fakeStore{}
	res, err := newTestUploader(store).Upload(context.Background(), &File{Name: "Me.PNG", Content: pngHeader})
	require.NoError(t, err)

	assert.Equal(t, "Profilephoto", store.bucket)
	assert.Equal(t, "image/png", store.contentType)
	assert.Equal(t, "images/1700000000000-abc12345-me.png", res.Key)
	assert.Equal(t, "https://cdn.test/Profilephoto/images/1700000000000-abc12345-me.png", res.FileURL)
}

func TestUploadRoutesDocumentsToResumeBucket(t *testing.T) {
	store := &fakeStore{}
	res, err := newTestUploader(store).Upload(context.Background(), &File{
		Name:        "Resume 2024.pdf",
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.4"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Resume", res.Bucket)
	assert.Equal(t, "files/1700000000000-abc12345-resume-2024.pdf", res.Key)
}

func TestUploadErrors(t *testing.T) {
	_, err := newTestUploader(&fakeStore{}).Upload(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoFile)

	_, err = newTestUploader(&fakeStore{err: errors.New("bucket not found")}).Upload(context.Background(), &File{Name: "a.txt", Content: []byte("hi")})
	assert.ErrorIs(t, err, ErrStorage)
	assert.Contains(t, err.Error(), "bucket not found")

	_, err = newTestUploader(&fakeStore{url: "-"}).Upload(context.Background(), &File{Name: "a.txt", Content: []byte("hi")})
	assert.ErrorIs(t, err, ErrStorage)
}

func TestRandomSuffix(t *testing.T) {
	s := randomSuffix()
	assert.Len(t, s, 8)
	assert.Regexp(t, `^[a-z0-9]{8}$`, s)
}

func TestSupabaseStorePut(t *testing.T) {
	var gotPath, gotAuth, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotAuth, gotType = r.URL.Path, r.Header.Get("Authorization"), r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"Key":"Resume/files/x.pdf"}`))
	}))
	defer srv.Close()

	store := NewSupabaseStore(srv.URL+"/", "service-key")
	require.NoError(t, store.Put(context.Background(), "Resume", "files/x.pdf", "application/pdf", []byte("%PDF")))

	assert.Equal(t, "/storage/v1/object/Resume/files/x.pdf", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "application/pdf", gotType)
	assert.Equal(t, []byte("%PDF"), gotBody)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/Resume/files/x.pdf", store.PublicURL("Resume", "files/x.pdf"))
}

func TestSupabaseStoreRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Bucket not found"}`))
	}))
	defer srv.Close()

	err := NewSupabaseStore(srv.URL, "k").Put(context.Background(), "Nope", "files/x.pdf", "application/pdf", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bucket not found")
}

func TestDiskStore(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, "http://localhost:5000/")

	require.NoError(t, store.Put(context.Background(), "Resume", "files/cv.pdf", "application/pdf", []byte("cv")))
	data, err := os.ReadFile(filepath.Join(dir, "Resume", "files", "cv.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "cv", string(data))

	assert.Error(t, store.Put(context.Background(), "Resume", "files/cv.pdf", "application/pdf", []byte("again")))
	assert.Error(t, store.Put(context.Background(), "Resume", "../../escape.txt", "text/plain", []byte("x")))
	assert.Equal(t, "http://localhost:5000/files/Resume/files/cv.pdf", store.PublicURL("Resume", "files/cv.pdf"))
}
