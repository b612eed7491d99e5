package storage

import (
	"context"
	"errors"
	"io"
)

// Object is a stored binary along with the name it was stored under
type Object struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	Content  []byte `json:"content"`
}

// Provider is an interface for storing and retrieving image binaries
type Provider interface {
	// Put stores everything read from r as a single object named fileName, and returns its generated id
	Put(ctx context.Context, fileName string, r io.Reader) (id string, err error)
	// Get returns the object with the given id, or ErrNotFound
	Get(ctx context.Context, id string) (*Object, error)
	// Random returns up to count distinct objects, picked at random
	Random(ctx context.Context, count int) ([]Object, error)
	// Delete removes the object with the given id, or returns ErrNotFound
	Delete(ctx context.Context, id string) error
	// Ping returns an error if the backend can't be reached
	Ping(ctx context.Context) error
}

// Errors
var (
	ErrNotFound = errors.New("Image does not exist")
)
