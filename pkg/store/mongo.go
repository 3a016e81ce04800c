package store

import (
	"context"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/dashgrid/pkg/dashboard"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/observability"
)

// MongoStore keeps one document per dashboard:
//
//	{_id: "<key>", snapshot: {layout, layouts, components}, updated_at}
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	keyer  Keyer
}

type mongoDoc struct {
	Key       string             `bson:"_id"`
	Snapshot  dashboard.Snapshot `bson:"snapshot"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// NewMongoStore connects to uri and uses database.collection.
func NewMongoStore(ctx context.Context, uri, database, collection string, keyer Keyer) (*MongoStore, error) {
	// Nested component config must decode as maps, not ordered documents,
	// to re-encode as JSON objects.
	opts := options.Client().ApplyURI(uri).SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
		keyer:  keyer,
	}, nil
}

// Load implements Store.
func (s *MongoStore) Load(ctx context.Context, name string) (snap dashboard.Snapshot, err error) {
	start := time.Now()
	defer func() { observability.Store().OnLoad(ctx, s.Kind(), name, time.Since(start), err) }()

	if err := errors.ValidateName(name); err != nil {
		return dashboard.Snapshot{}, err
	}
	var doc mongoDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": s.keyer.Key(name)}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return dashboard.Snapshot{}, errors.New(errors.ErrCodeNotFound, "dashboard %q not found", name)
	}
	if err != nil {
		return dashboard.Snapshot{}, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "mongo find %s", name))
	}
	return doc.Snapshot, nil
}

// Save implements Store.
func (s *MongoStore) Save(ctx context.Context, name string, snap dashboard.Snapshot) (err error) {
	start := time.Now()
	defer func() { observability.Store().OnSave(ctx, s.Kind(), name, 0, time.Since(start), err) }()

	if err := errors.ValidateName(name); err != nil {
		return err
	}
	key := s.keyer.Key(name)
	doc := mongoDoc{Key: key, Snapshot: snap, UpdatedAt: time.Now().UTC()}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "mongo replace %s", name))
	}
	return nil
}

// Delete implements Store.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.keyer.Key(name)}); err != nil {
		return Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "mongo delete %s", name))
	}
	return nil
}

// List implements Store.
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "mongo list"))
	}
	defer cur.Close(ctx)

	var names []string
	for cur.Next(ctx) {
		var d struct {
			Key string `bson:"_id"`
		}
		if err := cur.Decode(&d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode mongo key")
		}
		if name, ok := nameOf(s.keyer, d.Key); ok {
			names = append(names, name)
		}
	}
	if err := cur.Err(); err != nil {
		return nil, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "mongo list"))
	}
	slices.Sort(names)
	return names, nil
}

// Kind implements Store.
func (s *MongoStore) Kind() string { return "mongo" }

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
