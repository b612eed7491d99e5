package mock

import (
	"context"
	"fmt"
	"io"

	"github.com/infinitescroll/image-store/internal/storage"
)

// Provider implements a mock image storage that fails every operation
type Provider struct {
}

// Put stores an image
func (p *Provider) Put(ctx context.Context, fileName string, r io.Reader) (string, error) {
	return "", fmt.Errorf("put error")
}

// Get returns the image data for an image id
func (p *Provider) Get(ctx context.Context, id string) (*storage.Object, error) {
	return nil, fmt.Errorf("get error")
}

// Random returns random images
func (p *Provider) Random(ctx context.Context, count int) ([]storage.Object, error) {
	return nil, fmt.Errorf("random error")
}

// Delete removes an image
func (p *Provider) Delete(ctx context.Context, id string) error {
	return fmt.Errorf("delete error")
}

// Ping checks that the storage is reachable
func (p *Provider) Ping(ctx context.Context) error {
	return fmt.Errorf("ping error")
}
