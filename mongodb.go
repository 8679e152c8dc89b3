package telemock

import (
	"context"
	"fmt"
	"time"

	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/errm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const historyCollection = "history"

// MongoArchive stores history entries in a MongoDB collection, one
// document per entry in insertion order. It implements HistoryArchiver.
type MongoArchive struct {
	coll   *mongo.Collection
	client *mongo.Client
}

// NewMongoArchive connects to MongoDB and returns an archive backed by
// the "history" collection. Disconnect is registered on ctx.
func NewMongoArchive(ctx contem.Context, cfg DatabaseConfig) (*MongoArchive, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errm.Wrap(err, "validate config")
	}

	dsn := fmt.Sprintf("mongodb://%s/%s", cfg.Address, cfg.DBName)
	opts := options.Client().ApplyURI(dsn)
	if len(cfg.Username) > 0 && len(cfg.Password) > 0 {
		opts.SetAuth(options.Credential{
			AuthMechanism: "SCRAM-SHA-256",
			AuthSource:    cfg.DBName,
			Username:      cfg.Username,
			Password:      cfg.Password,
		})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errm.Wrap(err, "connect")
	}
	ctx.Add(client.Disconnect)

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errm.Wrap(err, "ping")
	}

	return &MongoArchive{
		coll:   client.Database(cfg.DBName).Collection(historyCollection),
		client: client,
	}, nil
}

// Archive inserts one history entry. The stored document carries the
// entry plus an archive timestamp so sessions can be told apart.
func (a *MongoArchive) Archive(ctx context.Context, entry HistoryEntry) error {
	doc := archivedEntry{
		HistoryEntry: entry,
		ArchivedAt:   time.Now().UTC(),
	}
	if _, err := a.coll.InsertOne(ctx, doc); err != nil {
		return errm.Wrap(err, "insert")
	}
	return nil
}

// Entries returns every archived entry in insertion order.
func (a *MongoArchive) Entries(ctx context.Context) ([]HistoryEntry, error) {
	cur, err := a.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, errm.Wrap(err, "find")
	}
	defer cur.Close(ctx)

	var docs []archivedEntry
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errm.Wrap(err, "decode")
	}

	out := make([]HistoryEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.HistoryEntry)
	}
	return out, nil
}

// Drop removes the whole archive collection.
func (a *MongoArchive) Drop(ctx context.Context) error {
	return errm.Wrap(a.coll.Drop(ctx), "drop")
}

type archivedEntry struct {
	HistoryEntry `bson:",inline"`
	ArchivedAt   time.Time `bson:"archived_at"`
}
