package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db, err := OpenSQL(context.Background(), DriverSQLite, ":memory:", time.Second)
	require.NoError(t, err)
	defer db.Close()

	require.Equal(t, 1, db.Stats().MaxOpenConnections)

	var one int
	require.NoError(t, db.QueryRowContext(context.Background(), "SELECT 1").Scan(&one))
	require.Equal(t, 1, one)
}

func TestOpenSQLUnknownDriver(t *testing.T) {
	_, err := OpenSQL(context.Background(), "nope", "", time.Second)
	require.Error(t, err)
}

func TestRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	v, err := Retry(context.Background(), "test", Backoff{Attempts: 5, Initial: time.Millisecond}, func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("not yet")
		}
		return 42, nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.Equal(t, 3, calls)
}

func TestRetryReturnsLastError(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), "test", Backoff{Attempts: 3, Initial: time.Millisecond}, func(context.Context) (string, error) {
		calls++
		return "", errors.New("down")
	})
	require.EqualError(t, err, "down")
	require.Equal(t, 3, calls)
}

func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Retry(ctx, "test", Backoff{Attempts: 3, Initial: time.Hour}, func(context.Context) (int, error) {
		return 0, errors.New("down")
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestMongoClientOptions(t *testing.T) {
	opts, err := mongoClientOptions("mongodb://localhost:27017", 2*time.Second)
	require.NoError(t, err)
	require.Equal(t, MongoAppName, *opts.AppName)
	require.Equal(t, 2*time.Second, *opts.ServerSelectionTimeout)

	_, err = mongoClientOptions("localhost:27017", time.Second)
	require.Error(t, err)
}

func TestConnectMongoUnreachable(t *testing.T) {
	start := time.Now()
	_, err := ConnectMongo(context.Background(), "mongodb://127.0.0.1:1", 200*time.Millisecond)
	require.Error(t, err)
	require.Less(t, time.Since(start), 10*time.Second)
}
