// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danielhkuo/quickpoll/models"
)

// CollectionName is the MongoDB collection holding poll documents.
const CollectionName = "polls"

type pollDocument struct {
	ID      string `bson:"_id"`
	Rev     string `bson:"_rev"`
	Title   string `bson:"title"`
	Option1 string `bson:"option1"`
	Option2 string `bson:"option2"`
	Votes1  int    `bson:"votes1"`
	Votes2  int    `bson:"votes2"`
}

func toDocument(p models.Poll) pollDocument {
	return pollDocument(p)
}

func (d pollDocument) poll() models.Poll {
	return models.Poll(d)
}

// MongoStore keeps each poll as one document; writes are filtered on both
// _id and _rev so a stale revision matches nothing.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

func NewMongoStore(client *mongo.Client, database *mongo.Database, timeout time.Duration) *MongoStore {
	return &MongoStore{
		client:     client,
		collection: database.Collection(CollectionName),
		timeout:    timeout,
	}
}

func (s *MongoStore) List(ctx context.Context) ([]models.Poll, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	cursor, err := s.collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	var docs []pollDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode polls: %w", err)
	}

	polls := make([]models.Poll, 0, len(docs))
	for _, d := range docs {
		polls = append(polls, d.poll())
	}
	return polls, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (models.Poll, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var d pollDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Poll{}, ErrNotFound
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query poll: %w", err)
	}
	return d.poll(), nil
}

func (s *MongoStore) Create(ctx context.Context, p models.Poll) (models.Poll, error) {
	rev, err := NextRev("")
	if err != nil {
		return models.Poll{}, err
	}
	p.ID = NewID()
	p.Rev = rev

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.collection.InsertOne(ctx, toDocument(p)); err != nil {
		return models.Poll{}, fmt.Errorf("failed to insert poll: %w", err)
	}
	return p, nil
}

func (s *MongoStore) Update(ctx context.Context, p models.Poll) (models.Poll, error) {
	rev, err := NextRev(p.Rev)
	if err != nil {
		return models.Poll{}, err
	}
	next := p
	next.Rev = rev

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.collection.ReplaceOne(ctx, bson.M{"_id": p.ID, "_rev": p.Rev}, toDocument(next))
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to update poll: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.Poll{}, s.missOrConflict(ctx, p.ID)
	}
	return next, nil
}

func (s *MongoStore) Delete(ctx context.Context, id, rev string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id, "_rev": rev})
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	if res.DeletedCount == 0 {
		return s.missOrConflict(ctx, id)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := withTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) missOrConflict(ctx context.Context, id string) error {
	n, err := s.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to query poll: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConflict
}
