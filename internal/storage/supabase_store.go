package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// SupabaseStore writes objects through the Supabase Storage REST API.
type SupabaseStore struct {
	client  *resty.Client
	baseURL string
}

func NewSupabaseStore(baseURL, serviceKey string) *SupabaseStore {
	baseURL = strings.TrimRight(baseURL, "/")

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetHeader("Authorization", "Bearer "+serviceKey).
		SetHeader("apikey", serviceKey)

	return &SupabaseStore{client: client, baseURL: baseURL}
}

func (s *SupabaseStore) Put(ctx context.Context, bucket, key, contentType string, data []byte) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("Cache-Control", "3600").
		SetHeader("x-upsert", "false").
		SetBody(data).
		Post("/storage/v1/object/" + objectPath(bucket, key))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("upload rejected with status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func (s *SupabaseStore) PublicURL(bucket, key string) string {
	if s.baseURL == "" {
		return ""
	}
	return s.baseURL + "/storage/v1/object/public/" + objectPath(bucket, key)
}

func objectPath(bucket, key string) string {
	segments := append([]string{bucket}, strings.Split(key, "/")...)
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
