package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoAppName identifies the service in server logs and currentOp.
const MongoAppName = "recordbook"

// mongoClientOptions bounds server selection by timeout so a dead server
// fails the ping instead of blocking for the driver's 30s default.
func mongoClientOptions(uri string, timeout time.Duration) (*options.ClientOptions, error) {
	if !strings.HasPrefix(uri, "mongodb://") && !strings.HasPrefix(uri, "mongodb+srv://") {
		return nil, errors.New("mongo uri must start with mongodb:// or mongodb+srv://")
	}
	opts := options.Client().ApplyURI(uri).SetAppName(MongoAppName)
	if timeout > 0 {
		opts.SetServerSelectionTimeout(timeout).SetConnectTimeout(timeout)
	}
	return opts, opts.Validate()
}

// ConnectMongo opens a client and pings the primary. Caller must Disconnect.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	opts, err := mongoClientOptions(uri, timeout)
	if err != nil {
		return nil, fmt.Errorf("mongo options: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}
