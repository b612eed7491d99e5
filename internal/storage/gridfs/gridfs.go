package gridfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/infinitescroll/image-store/internal/storage"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// BucketName is the GridFS bucket images are stored in
const BucketName = "images"

// Provider implements a MongoDB GridFS based image storage
type Provider struct {
	bucket *mongo.GridFSBucket
}

// New returns a new Provider instance using the images bucket in the given database
func New(db *mongo.Database) *Provider {
	return &Provider{
		bucket: db.GridFSBucket(options.GridFSBucket().SetName(BucketName)),
	}
}

// Put uploads an image to the bucket and returns its ObjectID in hex
func (p *Provider) Put(ctx context.Context, fileName string, r io.Reader) (string, error) {
	id, err := p.bucket.UploadFromStream(ctx, fileName, r)
	if err != nil {
		return "", err
	}

	return id.Hex(), nil
}

// Get returns the image data for an image id
func (p *Provider) Get(ctx context.Context, id string) (*storage.Object, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, storage.ErrNotFound
	}

	cursor, err := p.bucket.Find(ctx, bson.D{{Key: "_id", Value: objectID}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, err
		}

		return nil, storage.ErrNotFound
	}

	var file fileDocument
	if err := cursor.Decode(&file); err != nil {
		return nil, err
	}

	return p.download(ctx, file)
}

// Random samples up to count files from the bucket with $sample and downloads each of them
func (p *Provider) Random(ctx context.Context, count int) ([]storage.Object, error) {
	objects := []storage.Object{}
	if count <= 0 {
		return objects, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: count}}}},
		{{Key: "$project", Value: bson.D{{Key: "_id", Value: 1}, {Key: "filename", Value: 1}}}},
	}

	cursor, err := p.bucket.GetFilesCollection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var files []fileDocument
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}

	for _, file := range files {
		object, err := p.download(ctx, file)
		if err != nil {
			// Deleted between sampling and download
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}

			return nil, err
		}

		objects = append(objects, *object)
	}

	return objects, nil
}

// Delete removes an image and its chunks
func (p *Provider) Delete(ctx context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return storage.ErrNotFound
	}

	if err := p.bucket.Delete(ctx, objectID); err != nil {
		if errors.Is(err, mongo.ErrFileNotFound) {
			return storage.ErrNotFound
		}

		return err
	}

	return nil
}

// Ping checks that the bucket's files collection can be queried
func (p *Provider) Ping(ctx context.Context) error {
	_, err := p.bucket.GetFilesCollection().EstimatedDocumentCount(ctx)
	return err
}

type fileDocument struct {
	ID   bson.ObjectID `bson:"_id"`
	Name string        `bson:"filename"`
}

func (p *Provider) download(ctx context.Context, file fileDocument) (*storage.Object, error) {
	buf := new(bytes.Buffer)
	if _, err := p.bucket.DownloadToStream(ctx, file.ID, buf); err != nil {
		if errors.Is(err, mongo.ErrFileNotFound) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("error downloading %s: %w", file.ID.Hex(), err)
	}

	return &storage.Object{
		ID:       file.ID.Hex(),
		FileName: file.Name,
		Content:  buf.Bytes(),
	}, nil
}
