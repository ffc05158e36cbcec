package mongo_client

import (
	"context"
	"fmt"
	"roicalculator/types"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gopkg.in/mgo.v2/bson"
)

var (
	Client *mongo.Client
)

// benchmarkDocument is one ratio's benchmark as stored in the benchmark collection.
type benchmarkDocument struct {
	Ratio           string `bson:"ratio"`
	types.Benchmark `bson:",inline"`
}

// Init connects to MongoDB and pings the admin database.
func Init(ctx context.Context, mongoURI string) error {
	zap.L().Info("MONGO_URI: ", zap.String("uri", mongoURI))

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(mongoURI).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("error connecting to MongoDB: %w", err)
	}

	// Send a ping to confirm a successful connection
	pingCmd := bson.M{"ping": 1}
	if err := client.Database("admin").RunCommand(ctx, pingCmd).Err(); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("error pinging MongoDB: %w", err)
	}

	Client = client
	zap.L().Info("Connected to MongoDB")
	return nil
}

func Close(ctx context.Context) {
	if Client == nil {
		return
	}
	if err := Client.Disconnect(ctx); err != nil {
		zap.L().Error("Error disconnecting from MongoDB", zap.Error(err))
	}
}

// LoadBenchmarks reads every benchmark document of the collection.
func LoadBenchmarks(ctx context.Context, database, collectionName string) (types.BenchmarkConfig, error) {
	if Client == nil {
		return nil, fmt.Errorf("mongo client is not initialised")
	}
	collection := Client.Database(database).Collection(collectionName)
	cursor, err := collection.Find(ctx, bson.M{}, options.Find())
	if err != nil {
		return nil, fmt.Errorf("error fetching benchmarks: %w", err)
	}
	defer cursor.Close(ctx)

	cfg := types.BenchmarkConfig{}
	for cursor.Next(ctx) {
		var doc benchmarkDocument
		if err := cursor.Decode(&doc); err != nil {
			zap.L().Error("Error while decoding benchmark", zap.Error(err))
			continue
		}
		if doc.Ratio == "" {
			continue
		}
		cfg[doc.Ratio] = doc.Benchmark
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}
