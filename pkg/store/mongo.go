package store

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// CollectionName is the MongoDB collection holding analyses.
const CollectionName = "analyses"

// MongoStore keeps analyses in a MongoDB collection, keyed by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return NewMongoStoreFromClient(client, database), nil
}

// NewMongoStoreFromClient wraps an existing client. Close disconnects it.
func NewMongoStoreFromClient(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(CollectionName),
	}
}

func (s *MongoStore) Save(ctx context.Context, a *Analysis) error {
	if err := ValidateID(a.ID); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": a.ID}, a, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save analysis %s: %w", a.ID, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Analysis, error) {
	var a Analysis
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis %s: %w", id, err)
	}
	return &a, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete analysis %s: %w", id, err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]*Analysis, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	var out []*Analysis
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode analyses: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
