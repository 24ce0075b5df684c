package db

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/quanta-team/quanta-engine/core"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// MongoDB is a DocumentStore backed by a MongoDB database. The client
// connects lazily, so Setup succeeds without a reachable server.
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	setting  *core.MongoSetting
}

func (m *MongoDB) Setup(c *core.Conf) error {
	zap.L().Debug("Setting up MongoDB")
	m.setting = loadMongoSetting()
	opts := options.Client().
		ApplyURI(c.MongoURI).
		SetServerSelectionTimeout(m.pingTimeout())
	if err := opts.Validate(); err != nil {
		zap.L().Error(fmt.Sprintf("invalid mongo uri/reason:%s", err))
		return err
	}
	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to create a mongo client/reason:%s", err))
		return err
	}
	m.client = client
	m.database = client.Database(c.MongoDatabase)
	zap.L().Info(fmt.Sprintf("MongoDB client created/database:%s", c.MongoDatabase))
	return nil
}

func loadMongoSetting() *core.MongoSetting {
	s, ok := core.GetComponentSetting(core.MongoSettingKey)
	if !ok {
		return core.NewMongoSetting()
	}
	ms, ok := s.(*core.MongoSetting)
	if !ok {
		zap.L().Warn(fmt.Sprintf("unexpected mongo setting type %T, using defaults", s))
		return core.NewMongoSetting()
	}
	return ms
}

func (m *MongoDB) pingTimeout() time.Duration {
	return time.Duration(m.setting.PingTimeoutSeconds) * time.Second
}

func (m *MongoDB) queryTimeout() time.Duration {
	return time.Duration(m.setting.QueryTimeoutSeconds) * time.Second
}

func (m *MongoDB) Ping(ctx context.Context) error {
	if m.client == nil {
		return errors.New("mongo client is not set up")
	}
	ctx, cancel := context.WithTimeout(ctx, m.pingTimeout())
	defer cancel()
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoDB) Count(ctx context.Context, collection string, filter core.Filter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, m.queryTimeout())
	defer cancel()
	return m.database.Collection(collection).CountDocuments(ctx, nonNil(filter))
}

func (m *MongoDB) Find(ctx context.Context, collection string, filter core.Filter, opts *core.FindOptions) ([]bson.Raw, error) {
	ctx, cancel := context.WithTimeout(ctx, m.queryTimeout())
	defer cancel()
	cur, err := m.database.Collection(collection).Find(ctx, nonNil(filter), findOptions(opts))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	docs := []bson.Raw{}
	for cur.Next(ctx) {
		// cur.Current is reused by the next call to Next.
		docs = append(docs, append(bson.Raw(nil), cur.Current...))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (m *MongoDB) Drop(ctx context.Context, collection string) error {
	ctx, cancel := context.WithTimeout(ctx, m.queryTimeout())
	defer cancel()
	return m.database.Collection(collection).Drop(ctx)
}

func (m *MongoDB) InsertMany(ctx context.Context, collection string, docs []interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, m.queryTimeout())
	defer cancel()
	res, err := m.database.Collection(collection).InsertMany(ctx, docs)
	if err != nil {
		return err
	}
	zap.L().Debug(fmt.Sprintf("inserted %d documents into %s", len(res.InsertedIDs), collection))
	return nil
}

func (m *MongoDB) TearDown() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.pingTimeout())
	defer cancel()
	if err := m.client.Disconnect(ctx); err != nil {
		zap.L().Error(fmt.Sprintf("failed to disconnect from mongo/reason:%s", err))
		return err
	}
	m.client = nil
	return nil
}

func nonNil(filter core.Filter) core.Filter {
	if filter == nil {
		return core.Filter{}
	}
	return filter
}

// findOptions never returns _id.
func findOptions(opts *core.FindOptions) *options.FindOptions {
	fo := options.Find().SetProjection(bson.M{"_id": 0})
	if opts == nil {
		return fo
	}
	if opts.SortKey != "" {
		fo.SetSort(bson.D{{Key: opts.SortKey, Value: 1}})
	}
	if opts.Skip != 0 {
		fo.SetSkip(opts.Skip)
	}
	if opts.Limit != 0 {
		fo.SetLimit(opts.Limit)
	}
	return fo
}
