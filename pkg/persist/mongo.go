package persist

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/cardspace/pkg/errors"
)

// MongoConfig configures the MongoDB backend.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// Mongo stores each key as one document {_id, data, updatedAt}.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoDoc struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// NewMongo connects to MongoDB and pings the primary.
func NewMongo(ctx context.Context, cfg MongoConfig) (*Mongo, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo backend needs a URI")
	}
	if cfg.Database == "" {
		cfg.Database = "cardspace"
	}
	if cfg.Collection == "" {
		cfg.Collection = "datasets"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBackend, err, "mongo: connect")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeBackend, err, "mongo: ping")
	}
	return &Mongo{client: client, coll: client.Database(cfg.Database).Collection(cfg.Collection)}, nil
}

// Name returns "mongo".
func (m *Mongo) Name() string { return "mongo" }

// Get reads the document for key.
func (m *Mongo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc mongoDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, backendErr(m.Name(), m.classify(err), "find")
	}
	return doc.Data, true, nil
}

// Set upserts the document for key.
func (m *Mongo) Set(ctx context.Context, key string, data []byte) error {
	doc := mongoDoc{Key: key, Data: data, UpdatedAt: time.Now().UTC()}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return backendErr(m.Name(), m.classify(err), "replace")
}

// Delete removes the document for key.
func (m *Mongo) Delete(ctx context.Context, key string) error {
	_, err := m.coll.DeleteOne(ctx, bson.M{"_id": key})
	return backendErr(m.Name(), m.classify(err), "delete")
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// classify marks network and timeout failures retryable.
func (m *Mongo) classify(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return Retryable(err)
	}
	return err
}

var _ Backend = (*Mongo)(nil)
