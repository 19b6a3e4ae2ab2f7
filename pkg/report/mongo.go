package report

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/releasestats/pkg/stats"
)

// MongoDB defaults.
const (
	DefaultMongoDatabase   = "release_stats"
	DefaultMongoCollection = "downloads"
)

// MongoSink upserts records into a MongoDB collection, one document per
// (owner, repo, release). Re-exporting a repository refreshes its documents
// in place.
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoSink connects to uri and verifies the connection.
// Empty database or collection names fall back to the defaults.
func NewMongoSink(ctx context.Context, uri, database, collection string) (*MongoSink, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoSink{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// mongoDocument is a Document keyed by repository.
type mongoDocument struct {
	Owner      string    `bson:"owner"`
	Repo       string    `bson:"repo"`
	ExportedAt time.Time `bson:"exported_at"`
	Document   `bson:",inline"`
}

// UpsertModels builds one upsert per record.
func UpsertModels(owner, repo string, records []stats.Record, now time.Time) []mongo.WriteModel {
	models := make([]mongo.WriteModel, 0, len(records))
	for _, r := range records {
		filter := bson.D{
			{Key: "owner", Value: owner},
			{Key: "repo", Value: repo},
			{Key: "release", Value: r.Release},
		}
		doc := mongoDocument{Owner: owner, Repo: repo, ExportedAt: now.UTC(), Document: NewDocument(r)}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(filter).
			SetReplacement(doc).
			SetUpsert(true))
	}
	return models
}

// Export upserts records for owner/repo and returns how many documents were
// inserted or modified.
func (s *MongoSink) Export(ctx context.Context, owner, repo string, records []stats.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	res, err := s.collection.BulkWrite(ctx, UpsertModels(owner, repo, records, time.Now()),
		options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("upsert %s/%s: %w", owner, repo, err)
	}
	return res.UpsertedCount + res.ModifiedCount, nil
}

// Close disconnects the client.
func (s *MongoSink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Name identifies the sink in logs.
func (s *MongoSink) Name() string { return "mongodb" }
