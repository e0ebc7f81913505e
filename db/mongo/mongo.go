// db/mongo/mongo.go
package mongo

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/AnnekeHeelsum/android-uploader/settings"
)

// DefaultDatabase is used when the URI names no database.
const DefaultDatabase = "uploader"

// Connect opens a Mongo connection using the given URI and timeout and pings
// the primary before returning.
//
// The caller is responsible for calling client.Disconnect(...) when done.
func Connect(uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(4).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// DatabaseFromURI returns the database named in the URI path, or
// DefaultDatabase.
func DatabaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return DefaultDatabase
	}
	if db := strings.Trim(u.Path, "/"); db != "" {
		return db
	}
	return DefaultDatabase
}

type setting struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

// Store keeps one document per setting, keyed by _id.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewStore returns a Store over database.collection. It takes ownership of client.
func NewStore(client *mongo.Client, database, collection string) *Store {
	return &Store{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
}

// Open connects with uri and returns a Store over collection in the URI's database.
func Open(uri, collection string, timeout time.Duration) (*Store, error) {
	client, err := Connect(uri, timeout)
	if err != nil {
		return nil, err
	}
	return NewStore(client, DatabaseFromURI(uri), collection), nil
}

// Get returns the value under key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var doc setting
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", settings.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return doc.Value, nil
}

// Apply writes the batch as one ordered bulk write. Without a replica set
// there is no multi-document transaction, so a failure part-way leaves the
// earlier writes in place; ordering keeps later ones from running.
func (s *Store) Apply(ctx context.Context, changes []settings.Change) error {
	if len(changes) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(changes))
	for _, c := range changes {
		filter := bson.M{"_id": c.Key}
		if c.Value == nil {
			models = append(models, mongo.NewDeleteOneModel().SetFilter(filter))
			continue
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(filter).
			SetReplacement(setting{Key: c.Key, Value: *c.Value}).
			SetUpsert(true))
	}
	_, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	return err
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
