package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/rzpsarthak13/schema-forge/internal/config"
)

type fakeRedis struct {
	data   map[string]string
	setErr error
	closed bool
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	client := &fakeRedis{data: map[string]string{}}
	store := newRedisStore(client, nil)

	_, err := store.Get(ctx, "shop:schema")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "shop:schema", []byte(`["users"]`)))
	got, err := store.Get(ctx, "shop:schema")
	require.NoError(t, err)
	require.Equal(t, `["users"]`, string(got))

	require.NoError(t, store.Delete(ctx, "shop:schema"))
	require.Empty(t, client.data)

	client.setErr = errors.New("READONLY")
	require.ErrorContains(t, store.Set(ctx, "k", []byte("v")), "failed to set key k")

	require.NoError(t, store.Close())
	require.True(t, client.closed)
	_, err = store.Get(ctx, "k")
	require.ErrorIs(t, err, ErrClosed)
}

func TestRedisOptions(t *testing.T) {
	opts := redisOptions(config.RedisConfig{
		Endpoints: []string{"cache-a:6379", "cache-b:6379"},
		DB:        2,
		PoolSize:  8,
	})
	require.Equal(t, "cache-a:6379", opts.Addr)
	require.Equal(t, 2, opts.DB)
	require.Equal(t, 8, opts.PoolSize)
}

func TestRedisFactoryValidate(t *testing.T) {
	f := redisFactory{}
	require.Error(t, f.Validate(config.SnapshotConfig{}))
	require.ErrorContains(t, f.Validate(config.SnapshotConfig{Redis: config.RedisConfig{
		Endpoints: []string{"x:6379"}, PoolSize: 2, MinIdleConns: 3,
	}}), "cannot exceed")
	require.NoError(t, f.Validate(config.SnapshotConfig{Redis: config.RedisConfig{Endpoints: []string{"x:6379"}}}))
}

type fakeDynamo struct {
	items map[string]map[string]types.AttributeValue
}

func (f *fakeDynamo) keyOf(key map[string]types.AttributeValue) string {
	return key["key"].(*types.AttributeValueMemberS).Value
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.items[f.keyOf(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if aws.ToString(in.TableName) != "schemas" {
		return nil, errors.New("ResourceNotFoundException")
	}
	f.items[f.keyOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	delete(f.items, f.keyOf(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestDynamoDBStore(t *testing.T) {
	ctx := context.Background()
	client := &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
	store := newDynamoDBStore(client, "schemas", nil)

	_, err := store.Get(ctx, "shop:schema:users")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "shop:schema:users", []byte(`[]`)))
	require.Contains(t, client.items["shop:schema:users"], "created_at")

	got, err := store.Get(ctx, "shop:schema:users")
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got))

	client.items["bad"] = map[string]types.AttributeValue{
		"key":   &types.AttributeValueMemberS{Value: "bad"},
		"value": &types.AttributeValueMemberS{Value: "not binary"},
	}
	_, err = store.Get(ctx, "bad")
	require.ErrorContains(t, err, "invalid value format")

	require.NoError(t, store.Delete(ctx, "shop:schema:users"))
	_, err = store.Get(ctx, "shop:schema:users")
	require.ErrorIs(t, err, ErrNotFound)

	other := newDynamoDBStore(client, "missing", nil)
	require.ErrorContains(t, other.Set(ctx, "k", nil), "ResourceNotFoundException")
}
