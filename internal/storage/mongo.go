package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"videosplus/storefront/internal/codec"
	"videosplus/storefront/internal/domain"
)

// Default connection timeout
const defaultMongoTimeout = 10 * time.Second

// ConnectMongo establishes a connection to MongoDB and pings the primary.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultMongoTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// The initial connection might succeed while the server is unresponsive.
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}
	return client, nil
}

// DisconnectMongo gracefully disconnects the MongoDB client.
func DisconnectMongo(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultMongoTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// documentRecord is how a document is kept in MongoDB. Body holds the codec output so
// every backend stores the same JSON.
type documentRecord struct {
	Key       string    `bson:"_id"`
	Body      string    `bson:"body"`
	Revision  int64     `bson:"revision"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoStore keeps each document as one record in a collection, keyed by document key.
type MongoStore struct {
	collection *mongo.Collection
	docs       documentSource
	log        logrus.FieldLogger
}

var (
	_ DocumentStore = (*MongoStore)(nil)
	_ Prober        = (*MongoStore)(nil)
)

// NewMongoStore expects a connected *mongo.Database instance.
func NewMongoStore(db *mongo.Database, collection string, defaults domain.Defaults, log logrus.FieldLogger) *MongoStore {
	s := &MongoStore{
		collection: db.Collection(collection),
		docs:       newDocumentSource(defaults, log, "mongo-store"),
	}
	s.log = s.docs.log
	return s
}

func (s *MongoStore) FetchDocument(ctx context.Context, key string) (*domain.Document, Version, error) {
	var rec documentRecord
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return s.docs.fresh(), missingVersion, nil
		}
		return nil, Version{}, unavailable("fetch", key, err)
	}
	return s.docs.decode(key, []byte(rec.Body)), revisionVersion(rec.Revision), nil
}

func (s *MongoStore) StoreDocument(ctx context.Context, key string, doc *domain.Document, expected Version) (Version, error) {
	raw, err := codec.Encode(doc)
	if err != nil {
		return Version{}, err
	}
	now := time.Now().UTC()

	if expected.Missing {
		_, err := s.collection.InsertOne(ctx, documentRecord{Key: key, Body: string(raw), Revision: 1, UpdatedAt: now})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return Version{}, fmt.Errorf("store %s: %w", key, ErrVersionConflict)
			}
			return Version{}, unavailable("store", key, err)
		}
		return revisionVersion(1), nil
	}

	filter := bson.M{"_id": key}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if expected.Tag != "" {
		rev, err := strconv.ParseInt(expected.Tag, 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("store %s: invalid revision %q: %w", key, expected.Tag, ErrVersionConflict)
		}
		filter["revision"] = rev
	} else {
		opts.SetUpsert(true)
	}

	update := bson.M{
		"$set": bson.M{"body": string(raw), "updatedAt": now},
		"$inc": bson.M{"revision": int64(1)},
	}

	var rec documentRecord
	err = s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Version{}, fmt.Errorf("store %s: %w", key, ErrVersionConflict)
		}
		return Version{}, unavailable("store", key, err)
	}
	return revisionVersion(rec.Revision), nil
}

func (s *MongoStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{"_id": key}, options.Count().SetLimit(1))
	if err != nil {
		return false, unavailable("count", key, err)
	}
	return n > 0, nil
}

func revisionVersion(rev int64) Version {
	return Version{Tag: strconv.FormatInt(rev, 10)}
}
