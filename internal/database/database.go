package database

import (
	"context"
	"errors"
)

// Record links a photo from the external source to its stored binary
type Record struct {
	ImageID        string  `json:"imageId"`
	AltDescription *string `json:"altDescription"`
	Description    *string `json:"description"`
	ObjectID       string  `json:"objectId"`
}

// Provider is an interface for storing and looking up image metadata
type Provider interface {
	// Exists returns whether a record with the given external image id exists
	Exists(ctx context.Context, imageID string) (bool, error)
	// Insert stores a record and returns its id, or ErrDuplicate if the external image id is already stored
	Insert(ctx context.Context, record Record) (string, error)

	Wait(ctx context.Context) error
	Shutdown()
}

// Errors
var (
	ErrDuplicate = errors.New("Image already exists")
)
