package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/infinitescroll/image-store/internal/database"
	"github.com/infinitescroll/image-store/internal/logger"
	"github.com/infinitescroll/image-store/internal/repository"
	"github.com/infinitescroll/image-store/internal/storage"
	"github.com/infinitescroll/image-store/internal/unsplash"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"
)

var (
	importedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "image_store_imported_total",
		Help: "Number of images imported from the photo source.",
	})
	skippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "image_store_skipped_total",
		Help: "Number of photos skipped during import because they were already stored.",
	})
)

// Source is where photos are imported from
type Source interface {
	RandomPhotos(ctx context.Context, count int) ([]unsplash.Photo, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// Service imports photos from a Source into the repository, and reads them back
type Service struct {
	Repository *repository.Repository
	Source     Source
	Log        *logger.Logger

	imports singleflight.Group
}

// ImportResult lists the object ids of newly stored images, in the order the source returned them
type ImportResult struct {
	IDs     []string
	Skipped int
}

type importOutcome struct {
	id      string
	skipped bool
}

// Import fetches count photos from the source and stores the ones that aren't stored yet
// The first failure aborts the import; images stored before it are kept
func (s *Service) Import(ctx context.Context, count int) (*ImportResult, error) {
	photos, err := s.Source.RandomPhotos(ctx, count)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		IDs: []string{},
	}

	for _, photo := range photos {
		photo := photo

		// Concurrent imports of the same photo within this process share a single import
		// Only the caller that ran it reports the stored id, the others count the photo as skipped
		ran := false
		v, err, _ := s.imports.Do(photo.ID, func() (interface{}, error) {
			ran = true
			return s.importPhoto(ctx, photo)
		})
		if err != nil {
			return nil, err
		}

		outcome := v.(importOutcome)
		if outcome.skipped || !ran {
			result.Skipped++
			continue
		}

		result.IDs = append(result.IDs, outcome.id)
	}

	return result, nil
}

func (s *Service) importPhoto(ctx context.Context, photo unsplash.Photo) (importOutcome, error) {
	exists, err := s.Repository.Exists(ctx, photo.ID)
	if err != nil {
		return importOutcome{}, err
	}

	if exists {
		s.Log.Infow("image already exists, skipping download", "image-id", photo.ID)
		skippedTotal.Inc()
		return importOutcome{skipped: true}, nil
	}

	data, err := s.Source.Download(ctx, photo.DownloadURL)
	if err != nil {
		return importOutcome{}, err
	}

	objectID, err := s.Repository.StoreImage(ctx, bytes.NewReader(data), fmt.Sprintf("%s.jpg", uuid.NewString()))
	if err != nil {
		return importOutcome{}, err
	}

	_, err = s.Repository.StoreMetadata(ctx, database.Record{
		ImageID:        photo.ID,
		AltDescription: photo.AltDescription,
		Description:    photo.Description,
		ObjectID:       objectID,
	})
	if err != nil {
		if !errors.Is(err, database.ErrDuplicate) {
			return importOutcome{}, err
		}

		// Another importer stored this photo after our existence check
		if err := s.Repository.Discard(ctx, objectID); err != nil {
			s.Log.Warnw("error discarding duplicate image", "image-id", photo.ID, "object-id", objectID, "error", err)
		}

		s.Log.Infow("image stored concurrently, skipping", "image-id", photo.ID)
		skippedTotal.Inc()
		return importOutcome{skipped: true}, nil
	}

	importedTotal.Inc()
	s.Log.Debugw("imported image", "image-id", photo.ID, "object-id", objectID, "bytes", len(data))

	return importOutcome{id: objectID}, nil
}

// Random returns up to count random stored images
func (s *Service) Random(ctx context.Context, count int) ([]storage.Object, error) {
	return s.Repository.Random(ctx, count)
}

// Get returns a stored image by its object id, or storage.ErrNotFound
func (s *Service) Get(ctx context.Context, id string) (*storage.Object, error) {
	return s.Repository.Get(ctx, id)
}
