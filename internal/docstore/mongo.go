package docstore

import (
	"context"
	"time"

	"github.com/roboclean/ops-sync/internal/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// Make sure we conform to Store interface
var _ Store = (*MongoStore)(nil)

func NewMongoStore(ctx context.Context, cfg *config.Config) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.DocStore.URI))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, err
	}

	zap.S().Named("docstore").Infof("connected to document store: %s", cfg.DocStore.Database)
	return &MongoStore{client: client, db: client.Database(cfg.DocStore.Database)}, nil
}

func (s *MongoStore) ChangedSince(ctx context.Context, collection string, after time.Time, limit int) ([]Document, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "changedAt", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := s.db.Collection(collection).Find(ctx, bson.M{"changedAt": bson.M{"$gt": after}}, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	return decodeAll(ctx, cur)
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var doc bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return normalize(doc), nil
}

func (s *MongoStore) Find(ctx context.Context, collection, field string, value any) ([]Document, error) {
	cur, err := s.db.Collection(collection).Find(ctx, bson.M{field: value})
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	return decodeAll(ctx, cur)
}

func (s *MongoStore) IDs(ctx context.Context, collection string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"id": 1})
	cur, err := s.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	docs, err := decodeAll(ctx, cur)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		if id := doc.ID(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *MongoStore) Insert(ctx context.Context, collection string, doc Document) error {
	_, err := s.db.Collection(collection).InsertOne(ctx, bson.M(doc))
	return err
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields Document) error {
	result, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"id": id})
	return err
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]Document, error) {
	var docs []Document
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, normalize(doc))
	}
	return docs, cur.Err()
}

// normalize strips the driver's storage id so every document presents the
// same shape no matter which store produced it.
func normalize(doc bson.M) Document {
	delete(doc, "_id")
	return Document(doc)
}
