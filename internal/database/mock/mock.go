package mock

import (
	"context"
	"fmt"

	"github.com/infinitescroll/image-store/internal/database"
)

// Provider implements a mock metadata store that fails every operation
type Provider struct {
}

// Exists returns whether a record exists
func (p *Provider) Exists(ctx context.Context, imageID string) (bool, error) {
	return false, fmt.Errorf("exists error")
}

// Insert stores a record
func (p *Provider) Insert(ctx context.Context, record database.Record) (string, error) {
	return "", fmt.Errorf("insert error")
}

// Wait blocks until a database connection is ready
func (p *Provider) Wait(ctx context.Context) error {
	return nil
}

// Shutdown shuts down the database client
func (p *Provider) Shutdown() {}
