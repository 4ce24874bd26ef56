package vitals

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordsCollection is the MongoDB collection holding records.
const RecordsCollection = "records"

// MongoSource reads records from a MongoDB collection indexed by datetime.
type MongoSource struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// ConnectMongo connects to uri and returns a source over
// <database>.records. Close the source to disconnect.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoSource, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := &MongoSource{client: client, coll: client.Database(database).Collection(RecordsCollection)}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// NewMongoSource wraps an existing collection. Close is then a no-op.
func NewMongoSource(coll *mongo.Collection) *MongoSource {
	return &MongoSource{coll: coll}
}

func (s *MongoSource) Name() string { return "mongo" }

// EnsureIndexes creates the datetime index used by range queries.
func (s *MongoSource) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "datetime", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create datetime index: %w", err)
	}
	return nil
}

func (s *MongoSource) Records(ctx context.Context, from, to time.Time) ([]Record, error) {
	filter := bson.M{"datetime": bson.M{"$gte": from, "$lte": to}}
	opts := options.Find().SetSort(bson.D{{Key: "datetime", Value: 1}})

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}
	defer cur.Close(ctx)

	var out []Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return out, nil
}

// Insert stores records in batches.
func (s *MongoSource) Insert(ctx context.Context, records []Record) (int, error) {
	const batch = 500
	n := 0
	for i := 0; i < len(records); i += batch {
		end := min(i+batch, len(records))
		docs := make([]any, 0, end-i)
		for _, r := range records[i:end] {
			docs = append(docs, r)
		}
		res, err := s.coll.InsertMany(ctx, docs)
		if err != nil {
			return n, fmt.Errorf("insert records: %w", err)
		}
		n += len(res.InsertedIDs)
	}
	return n, nil
}

// Close disconnects the client created by [ConnectMongo].
func (s *MongoSource) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

var _ RecordSource = (*MongoSource)(nil)
