package unsplash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/infinitescroll/image-store/internal/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Errors
var (
	ErrFetch     = errors.New("error fetching from unsplash")
	ErrMalformed = fmt.Errorf("%w: malformed photo", ErrFetch)
)

// Photo is a candidate photo returned by the random photos endpoint
type Photo struct {
	ID             string
	AltDescription *string
	Description    *string
	DownloadURL    string
}

// Client is an Unsplash API client
type Client struct {
	BaseURL   string
	AccessKey string
	Tracer    *tracing.Tracer

	// HTTPClient defaults to a client with an instrumented transport
	HTTPClient *http.Client
}

// NewHTTPClient returns an http client that propagates traces to outgoing requests
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

type apiPhoto struct {
	ID             string  `json:"id"`
	AltDescription *string `json:"alt_description"`
	Description    *string `json:"description"`
	URLs           struct {
		Regular string `json:"regular"`
	} `json:"urls"`
}

// RandomPhotos requests count random photos
func (c *Client) RandomPhotos(ctx context.Context, count int) ([]Photo, error) {
	ctx, span := c.Tracer.Start(ctx, "unsplash.RandomPhotos", trace.WithAttributes(attribute.Int("unsplash.count", count)))
	defer span.End()

	photos, err := c.randomPhotos(ctx, count)
	tracing.RecordError(span, err)
	return photos, err
}

func (c *Client) randomPhotos(ctx context.Context, count int) ([]Photo, error) {
	query := url.Values{}
	query.Set("client_id", c.AccessKey)
	query.Set("count", strconv.Itoa(count))

	endpoint := strings.TrimSuffix(c.BaseURL, "/") + "/photos/random/?" + query.Encode()

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var response []apiPhoto
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: error decoding response: %s", ErrFetch, err)
	}

	photos := make([]Photo, 0, len(response))
	for i, p := range response {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: photo %d has no id", ErrMalformed, i)
		}

		if p.URLs.Regular == "" {
			return nil, fmt.Errorf("%w: photo %s has no download url", ErrMalformed, p.ID)
		}

		photos = append(photos, Photo{
			ID:             p.ID,
			AltDescription: p.AltDescription,
			Description:    p.Description,
			DownloadURL:    p.URLs.Regular,
		})
	}

	return photos, nil
}

// Download returns the raw bytes found at url
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	ctx, span := c.Tracer.Start(ctx, "unsplash.Download")
	defer span.End()

	body, err := c.get(ctx, url)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("%w: error reading download: %s", ErrFetch, err)
	}

	span.SetAttributes(attribute.Int("unsplash.download.bytes", len(data)))
	return data, nil
}

func (c *Client) get(ctx context.Context, endpoint string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFetch, err)
	}

	req.Header.Set("Accept-Version", "v1")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}

	res, err := httpClient.Do(req)
	if err != nil {
		// The url carries the access key, keep it out of the error
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}

		return nil, fmt.Errorf("%w: %s", ErrFetch, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		res.Body.Close()
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrFetch, res.StatusCode)
	}

	return res.Body, nil
}
