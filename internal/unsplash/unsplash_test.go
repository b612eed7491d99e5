package unsplash_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/infinitescroll/image-store/internal/logger"
	"github.com/infinitescroll/image-store/internal/tracing/test"
	"github.com/infinitescroll/image-store/internal/unsplash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const accessKey = "test-key"

func newClient(t *testing.T, handler http.HandlerFunc) *unsplash.Client {
	t.Helper()

	log := logger.New(zap.FatalLevel)
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return &unsplash.Client{
		BaseURL:    ts.URL,
		AccessKey:  accessKey,
		Tracer:     test.Tracer(log),
		HTTPClient: ts.Client(),
	}
}

func TestRandomPhotos(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/photos/random/", r.URL.Path)
		assert.Equal(t, accessKey, r.URL.Query().Get("client_id"))
		assert.Equal(t, "2", r.URL.Query().Get("count"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"id": "a1", "alt_description": "a lake", "description": null, "urls": {"regular": "https://images.example.com/a1.jpg", "raw": "x"}},
			{"id": "b2", "alt_description": null, "description": "A forest", "urls": {"regular": "https://images.example.com/b2.jpg"}, "likes": 3}
		]`)
	})

	photos, err := client.RandomPhotos(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, photos, 2)

	assert.Equal(t, "a1", photos[0].ID)
	require.NotNil(t, photos[0].AltDescription)
	assert.Equal(t, "a lake", *photos[0].AltDescription)
	assert.Nil(t, photos[0].Description)
	assert.Equal(t, "https://images.example.com/a1.jpg", photos[0].DownloadURL)

	assert.Equal(t, "b2", photos[1].ID)
	assert.Nil(t, photos[1].AltDescription)
	require.NotNil(t, photos[1].Description)
	assert.Equal(t, "A forest", *photos[1].Description)
}

func TestRandomPhotosErrors(t *testing.T) {
	tests := []struct {
		Name      string
		Status    int
		Body      string
		Malformed bool
	}{
		{"server error", http.StatusInternalServerError, `{"errors": ["oops"]}`, false},
		{"rate limited", http.StatusForbidden, `Rate Limit Exceeded`, false},
		{"unparseable body", http.StatusOK, `not json`, false},
		{"object instead of array", http.StatusOK, `{"id": "a1"}`, false},
		{"missing id", http.StatusOK, `[{"urls": {"regular": "https://images.example.com/a1.jpg"}}]`, true},
		{"missing download url", http.StatusOK, `[{"id": "a1", "urls": {}}]`, true},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(test.Status)
				fmt.Fprint(w, test.Body)
			})

			photos, err := client.RandomPhotos(context.Background(), 1)
			assert.Nil(t, photos)
			assert.ErrorIs(t, err, unsplash.ErrFetch)

			if test.Malformed {
				assert.ErrorIs(t, err, unsplash.ErrMalformed)
			}
		})
	}
}

func TestRandomPhotosUnreachable(t *testing.T) {
	log := logger.New(zap.FatalLevel)
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()

	client := &unsplash.Client{
		BaseURL:   ts.URL,
		AccessKey: accessKey,
		Tracer:    test.Tracer(log),
	}

	_, err := client.RandomPhotos(context.Background(), 1)
	require.ErrorIs(t, err, unsplash.ErrFetch)
	assert.NotContains(t, err.Error(), accessKey)
}

func TestDownload(t *testing.T) {
	content := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/a1.jpg" {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(content)
	})

	data, err := client.Download(context.Background(), client.BaseURL+"/a1.jpg")
	require.NoError(t, err)
	assert.Equal(t, content, data)

	_, err = client.Download(context.Background(), client.BaseURL+"/missing.jpg")
	assert.ErrorIs(t, err, unsplash.ErrFetch)
}
