package mongostore

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongox "github.com/dmitrymomot/userland/pkg/mongo"
	"github.com/dmitrymomot/userland/pkg/session"
)

// record is the stored document.
type record struct {
	ID        string `bson:"_id"`
	Name      string `bson:"name"`
	Data      []byte `bson:"data"`
	WrittenAt int64  `bson:"written_at"`
}

// Store is a session.Handler backed by a MongoDB collection. It remembers the
// name passed to Open, so sessions of different names need their own Store;
// Clone makes one.
type Store struct {
	coll *mongo.Collection
	now  func() time.Time

	mu   sync.RWMutex
	name string
}

var _ session.Handler = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source for written_at and GC.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a store on coll.
func New(coll *mongo.Collection, opts ...Option) (*Store, error) {
	if coll == nil {
		return nil, errors.Join(ErrInvalidConfig, errors.New("collection is required"))
	}

	s := &Store{coll: coll, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Clone returns a Store on the same collection with no name.
// Its signature fits session.HandlerFactory.
func (s *Store) Clone() session.Handler {
	return &Store{coll: s.coll, now: s.now}
}

// Open remembers name for the keys of later calls.
func (s *Store) Open(_ context.Context, _, name string) error {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
	return nil
}

// Close is a no-op; the collection outlives single sessions.
func (s *Store) Close(context.Context) error {
	return nil
}

func (s *Store) openName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Read returns the data of the document for id.
func (s *Store) Read(ctx context.Context, id string) ([]byte, error) {
	var rec record
	err := s.coll.FindOne(ctx, bson.M{"_id": s.key(id)}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	return rec.Data, nil
}

// Write upserts the document for id.
func (s *Store) Write(ctx context.Context, id string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	rec := record{
		ID:        s.key(id),
		Name:      s.openName(),
		Data:      data,
		WrittenAt: s.now().Unix(),
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	return err
}

// Destroy deletes the document for id.
func (s *Store) Destroy(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.key(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return session.ErrNotFound
	}
	return nil
}

// GC deletes this name's documents written more than maxLifetime ago.
func (s *Store) GC(ctx context.Context, maxLifetime time.Duration) error {
	_, err := s.coll.DeleteMany(ctx, gcFilter(s.openName(), s.now(), maxLifetime))
	return err
}

// EnsureIndexes creates the {name, written_at} index used by GC.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}, {Key: "written_at", Value: 1}},
		Options: options.Index().SetName("name_written_at"),
	})
	return err
}

// Healthcheck pings the deployment behind the collection.
func (s *Store) Healthcheck(ctx context.Context) error {
	return mongox.Healthcheck(s.coll.Database().Client())(ctx)
}

func (s *Store) key(id string) string {
	return s.openName() + "_" + id
}

func gcFilter(name string, now time.Time, maxLifetime time.Duration) bson.M {
	cutoff := now.Unix() - int64(maxLifetime/time.Second)
	return bson.M{
		"name":       name,
		"written_at": bson.M{"$lt": cutoff},
	}
}
