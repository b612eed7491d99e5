package file

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/infinitescroll/image-store/internal/database"
)

// Provider implements a file-based metadata store, keeping every record in memory and in a JSON file
type Provider struct {
	path    string
	records []storedRecord
	mu      sync.RWMutex
}

type storedRecord struct {
	ID string `json:"id"`
	database.Record
}

// New returns a new Provider instance, loading existing records from path if the file exists
func New(path string) (*Provider, error) {
	records := []storedRecord{}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
	}

	return &Provider{
		path:    path,
		records: records,
	}, nil
}

// Exists returns whether a record with the given external image id exists
func (p *Provider) Exists(ctx context.Context, imageID string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.indexOf(imageID) != -1, nil
}

// Insert stores a record and returns its id
func (p *Provider) Insert(ctx context.Context, record database.Record) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.indexOf(record.ImageID) != -1 {
		return "", database.ErrDuplicate
	}

	stored := storedRecord{
		ID:     uuid.NewString(),
		Record: record,
	}

	records := append(p.records, stored)
	if err := p.write(records); err != nil {
		return "", err
	}

	p.records = records
	return stored.ID, nil
}

func (p *Provider) indexOf(imageID string) int {
	for i, record := range p.records {
		if record.ImageID == imageID {
			return i
		}
	}

	return -1
}

// write replaces the file atomically so a crash never leaves a truncated file behind
func (p *Provider) write(records []storedRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.path), ".metadata-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), p.path)
}

// Wait blocks until a database connection is ready
// You can use the given context to specify a timeout
func (p *Provider) Wait(ctx context.Context) error {
	return nil
}

// Shutdown shuts down the database client
func (p *Provider) Shutdown() {}
