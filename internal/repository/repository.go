package repository

import (
	"context"
	"fmt"
	"io"

	"github.com/infinitescroll/image-store/internal/database"
	"github.com/infinitescroll/image-store/internal/storage"
	"github.com/infinitescroll/image-store/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Repository stores image binaries alongside the metadata of the photo they came from
// There's no transaction spanning the two; a binary can exist without metadata if an import fails halfway
type Repository struct {
	Storage  storage.Provider
	Database database.Provider
	Tracer   *tracing.Tracer
}

// Exists returns whether metadata for the given external image id is already stored
func (r *Repository) Exists(ctx context.Context, imageID string) (bool, error) {
	ctx, span := r.Tracer.Start(ctx, "repository.Exists", trace.WithAttributes(attribute.String("image.external_id", imageID)))
	defer span.End()

	exists, err := r.Database.Exists(ctx, imageID)
	tracing.RecordError(span, err)
	return exists, err
}

// StoreImage stores the image binary under fileName and returns its object id
func (r *Repository) StoreImage(ctx context.Context, content io.Reader, fileName string) (string, error) {
	ctx, span := r.Tracer.Start(ctx, "repository.StoreImage", trace.WithAttributes(attribute.String("image.file_name", fileName)))
	defer span.End()

	id, err := r.Storage.Put(ctx, fileName, content)
	if err != nil {
		tracing.RecordError(span, err)
		return "", fmt.Errorf("error storing image: %w", err)
	}

	return id, nil
}

// StoreMetadata stores the metadata record for an image and returns the record id
// database.ErrDuplicate is passed through unwrapped so callers can treat it as "already stored"
func (r *Repository) StoreMetadata(ctx context.Context, record database.Record) (string, error) {
	ctx, span := r.Tracer.Start(ctx, "repository.StoreMetadata", trace.WithAttributes(attribute.String("image.external_id", record.ImageID)))
	defer span.End()

	id, err := r.Database.Insert(ctx, record)
	if err != nil {
		if err == database.ErrDuplicate {
			return "", err
		}

		tracing.RecordError(span, err)
		return "", fmt.Errorf("error storing image metadata: %w", err)
	}

	return id, nil
}

// Discard removes a stored image binary that ended up without metadata
func (r *Repository) Discard(ctx context.Context, objectID string) error {
	ctx, span := r.Tracer.Start(ctx, "repository.Discard")
	defer span.End()

	err := r.Storage.Delete(ctx, objectID)
	tracing.RecordError(span, err)
	return err
}

// Random returns up to count random images
func (r *Repository) Random(ctx context.Context, count int) ([]storage.Object, error) {
	ctx, span := r.Tracer.Start(ctx, "repository.Random", trace.WithAttributes(attribute.Int("image.count", count)))
	defer span.End()

	objects, err := r.Storage.Random(ctx, count)
	tracing.RecordError(span, err)
	return objects, err
}

// Get returns the image with the given object id, or storage.ErrNotFound
func (r *Repository) Get(ctx context.Context, id string) (*storage.Object, error) {
	ctx, span := r.Tracer.Start(ctx, "repository.Get", trace.WithAttributes(attribute.String("image.id", id)))
	defer span.End()

	object, err := r.Storage.Get(ctx, id)
	if err != nil && err != storage.ErrNotFound {
		tracing.RecordError(span, err)
	}

	return object, err
}
