package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/infinitescroll/image-store/internal/storage"
)

// Provider implements a file-based image storage
// Every object is a directory named after its id, holding a single file with the stored file name
type Provider struct {
	path   string
	random *rand.Rand
	mu     sync.Mutex
}

// New returns a new Provider instance
func New(path string) (*Provider, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	return &Provider{
		path:   path,
		random: rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Put stores an image and returns its id
func (p *Provider) Put(ctx context.Context, fileName string, r io.Reader) (string, error) {
	if fileName == "" || filepath.Base(fileName) != fileName {
		return "", fmt.Errorf("invalid file name %q", fileName)
	}

	id := uuid.NewString()
	dir := filepath.Join(p.path, id)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(dir, fileName))
	if err != nil {
		os.RemoveAll(dir)
		return "", err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.RemoveAll(dir)
		return "", err
	}

	if err := f.Close(); err != nil {
		os.RemoveAll(dir)
		return "", err
	}

	return id, nil
}

// Get returns the image data for an image id
func (p *Provider) Get(ctx context.Context, id string) (*storage.Object, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, storage.ErrNotFound
	}

	dir := filepath.Join(p.path, id)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, storage.ErrNotFound
		}

		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		buf := new(bytes.Buffer)
		f, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		_, err = io.Copy(buf, f)
		f.Close()
		if err != nil {
			return nil, err
		}

		return &storage.Object{
			ID:       id,
			FileName: entry.Name(),
			Content:  buf.Bytes(),
		}, nil
	}

	return nil, storage.ErrNotFound
}

// Random returns up to count random images
func (p *Provider) Random(ctx context.Context, count int) ([]storage.Object, error) {
	objects := []storage.Object{}
	if count <= 0 {
		return objects, nil
	}

	entries, err := os.ReadDir(p.path)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}

	p.mu.Lock()
	p.random.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	p.mu.Unlock()

	for _, id := range ids {
		if len(objects) == count {
			break
		}

		object, err := p.Get(ctx, id)
		if err != nil {
			// Half-written or foreign directories are not part of the catalog
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}

			return nil, err
		}

		objects = append(objects, *object)
	}

	return objects, nil
}

// Delete removes an image
func (p *Provider) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return storage.ErrNotFound
	}

	dir := filepath.Join(p.path, id)
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storage.ErrNotFound
		}

		return err
	}

	return os.RemoveAll(dir)
}

// Ping checks that the storage directory still exists
func (p *Provider) Ping(ctx context.Context) error {
	info, err := os.Stat(p.path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", p.path)
	}

	return nil
}
