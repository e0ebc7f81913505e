// db/redis/redis.go
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/AnnekeHeelsum/android-uploader/settings"
)

// Client is an alias for the go-redis client, re-exported for convenience.
type Client = goredis.Client

// Connect opens a Redis connection from a URL and pings it.
// The caller is responsible for calling client.Close() when done.
//
// URL formats:
//
//	redis://localhost:6379
//	redis://:password@localhost:6379/0
//	rediss://localhost:6379 (TLS)
func Connect(url string, timeout time.Duration) (*Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Store keeps settings as fields of one Redis hash.
type Store struct {
	client *Client
	key    string
}

// NewStore returns a Store over the hash at key. It takes ownership of client.
func NewStore(client *Client, key string) *Store {
	return &Store{client: client, key: key}
}

// Get returns the hash field for key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.HGet(ctx, s.key, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", settings.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Apply writes the batch inside MULTI/EXEC.
func (s *Store) Apply(ctx context.Context, changes []settings.Change) error {
	if len(changes) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, c := range changes {
			if c.Value == nil {
				pipe.HDel(ctx, s.key, c.Key)
				continue
			}
			pipe.HSet(ctx, s.key, c.Key, *c.Value)
		}
		return nil
	})
	return err
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}
