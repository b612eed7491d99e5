package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/infinitescroll/image-store/internal/database"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// CollectionName is the collection image metadata is stored in
const CollectionName = "images"

const waitInterval = time.Second

// ErrDuplicateRecords is returned by Wait when the unique imageId index can't be built over existing duplicate records
// The connection is usable; duplicates are then only prevented by the existence check before an import
var ErrDuplicateRecords = errors.New("collection contains duplicate image ids, unique index not created")

// Provider implements a MongoDB based metadata store
type Provider struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// New connects to the given MongoDB deployment
// The connection is established lazily, use Wait to block until it's ready
func New(uri, name string) (*Provider, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	return &Provider{
		client:     client,
		collection: client.Database(name).Collection(CollectionName),
	}, nil
}

// Database returns the database the metadata collection lives in, for sharing the connection with GridFS
func (p *Provider) Database() *mongo.Database {
	return p.collection.Database()
}

type document struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	ImageID        string        `bson:"imageId"`
	AltDescription *string       `bson:"altDescription"`
	Description    *string       `bson:"description"`
	GridFSID       interface{}   `bson:"gridFsId"`
}

// Exists returns whether a record with the given external image id exists
func (p *Provider) Exists(ctx context.Context, imageID string) (bool, error) {
	err := p.collection.FindOne(ctx, bson.D{{Key: "imageId", Value: imageID}}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// Insert stores a record and returns its id
func (p *Provider) Insert(ctx context.Context, record database.Record) (string, error) {
	doc := document{
		ImageID:        record.ImageID,
		AltDescription: record.AltDescription,
		Description:    record.Description,
		GridFSID:       record.ObjectID,
	}

	// Reference GridFS files by their ObjectID, the same type as images.files._id
	if objectID, err := bson.ObjectIDFromHex(record.ObjectID); err == nil {
		doc.GridFSID = objectID
	}

	result, err := p.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", database.ErrDuplicate
		}

		return "", err
	}

	if id, ok := result.InsertedID.(bson.ObjectID); ok {
		return id.Hex(), nil
	}

	return "", nil
}

// Wait blocks until the deployment is reachable and the unique imageId index exists
// You can use the given context to specify a timeout
func (p *Provider) Wait(ctx context.Context) error {
	for {
		err := p.client.Ping(ctx, readpref.Primary())
		if err == nil {
			break
		}

		select {
		case <-ctx.Done():
			return err
		case <-time.After(waitInterval):
		}
	}

	return p.ensureIndexes(ctx)
}

func (p *Provider) ensureIndexes(ctx context.Context) error {
	_, err := p.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "imageId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("imageId_unique"),
	})
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateRecords, err)
	}

	return err
}

// Shutdown disconnects the database client
func (p *Provider) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p.client.Disconnect(ctx)
}
