package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/infinitescroll/image-store/internal/handler"
	"github.com/infinitescroll/image-store/internal/params"
	"github.com/infinitescroll/image-store/internal/storage"
	"github.com/twmb/murmur3"
)

func (a *API) uploadHandler(w http.ResponseWriter, r *http.Request) *handler.Error {
	count, err := params.UploadCount(r)
	if err != nil {
		return handler.BadRequest(err.Error())
	}

	// Images stored before a client disconnect stay stored, so the import isn't cancelled with the request
	result, err := a.Service.Import(context.WithoutCancel(r.Context()), count)
	if err != nil {
		a.logError(r, "error importing images", err)
		return &handler.Error{
			Message: "Failed to fetch and upload image from Unsplash",
			Code:    http.StatusInternalServerError,
		}
	}

	if result.Skipped > 0 {
		a.Log.Infow("skipped images that were already stored", handler.LogFields(r, "skipped", result.Skipped)...)
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Image uploaded with ID: [%s]", strings.Join(result.IDs, ", "))

	return nil
}

func (a *API) randomHandler(w http.ResponseWriter, r *http.Request) *handler.Error {
	count, err := params.Count(r)
	if err != nil {
		return handler.BadRequest(err.Error())
	}

	start := time.Now()
	objects, err := a.Service.Random(r.Context(), count)
	a.Log.Infow("fetched random images", handler.LogFields(r, "count", len(objects), "elapsed", time.Since(start))...)
	if err != nil {
		a.logError(r, "error fetching random images", err)
		return &handler.Error{
			Message: fmt.Sprintf("Error fetching images: %s", err),
			Code:    http.StatusInternalServerError,
		}
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(objects); err != nil {
		a.logError(r, "error encoding random images", err)
		return handler.InternalServerError()
	}

	return nil
}

func (a *API) imageHandler(w http.ResponseWriter, r *http.Request) *handler.Error {
	vars := mux.Vars(r)
	imageID := vars["id"]

	object, err := a.Service.Get(r.Context(), imageID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return handler.NotFound("Image does not exist")
		}

		a.logError(r, "error getting image", err)
		return handler.InternalServerError()
	}

	etag := fmt.Sprintf(`"%x"`, murmur3.Sum64(object.Content))
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=2592000") // Stored images never change

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(object); err != nil {
		a.logError(r, "error encoding image", err)
		return handler.InternalServerError()
	}

	return nil
}
