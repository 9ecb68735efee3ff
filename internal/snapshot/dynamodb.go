package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/rzpsarthak13/schema-forge/internal/config"
	"github.com/rzpsarthak13/schema-forge/internal/logging"
)

// dynamoAPI is the part of *dynamodb.Client the store uses.
type dynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoDBStore implements Store on a DynamoDB table keyed by a string
// attribute named "key".
type DynamoDBStore struct {
	client    dynamoAPI
	tableName string
	log       *zap.Logger
	closed    bool
}

// NewDynamoDBStore loads the AWS configuration for cfg.Region and checks that
// the table exists.
func NewDynamoDBStore(cfg config.DynamoDBConfig, logger *zap.Logger) (*DynamoDBStore, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("region is required")
	}
	if cfg.TableName == "" {
		return nil, fmt.Errorf("table name is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	var opts []func(*dynamodb.Options)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	client := dynamodb.NewFromConfig(awsCfg, opts...)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(cfg.TableName)}); err != nil {
		return nil, fmt.Errorf("failed to connect to DynamoDB table %s: %w", cfg.TableName, err)
	}

	return newDynamoDBStore(client, cfg.TableName, logger), nil
}

func newDynamoDBStore(client dynamoAPI, tableName string, logger *zap.Logger) *DynamoDBStore {
	return &DynamoDBStore{
		client:    client,
		tableName: tableName,
		log:       logging.OrNop(logger).Named("snapshot.dynamodb"),
	}
}

func (d *DynamoDBStore) Get(ctx context.Context, key string) ([]byte, error) {
	if d.closed {
		return nil, ErrClosed
	}

	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key:       itemKey(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	if out.Item == nil {
		d.log.Debug("key not found", zap.String("key", key))
		return nil, ErrNotFound
	}

	attr, ok := out.Item["value"]
	if !ok {
		return nil, ErrNotFound
	}
	value, ok := attr.(*types.AttributeValueMemberB)
	if !ok {
		return nil, fmt.Errorf("invalid value format for key %s", key)
	}
	return value.Value, nil
}

func (d *DynamoDBStore) Set(ctx context.Context, key string, value []byte) error {
	if d.closed {
		return ErrClosed
	}

	_, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item: map[string]types.AttributeValue{
			"key":        &types.AttributeValueMemberS{Value: key},
			"value":      &types.AttributeValueMemberB{Value: value},
			"created_at": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	d.log.Debug("key stored", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

func (d *DynamoDBStore) Delete(ctx context.Context, key string) error {
	if d.closed {
		return ErrClosed
	}
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key:       itemKey(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Close marks the store closed. The AWS client holds no connections that
// need releasing.
func (d *DynamoDBStore) Close() error {
	d.closed = true
	return nil
}

func itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"key": &types.AttributeValueMemberS{Value: key},
	}
}

type dynamoDBFactory struct{}

func (dynamoDBFactory) Type() string { return "dynamodb" }

func (dynamoDBFactory) Validate(cfg config.SnapshotConfig) error {
	if cfg.DynamoDB.Region == "" {
		return fmt.Errorf("dynamodb.region is required")
	}
	if cfg.DynamoDB.TableName == "" {
		return fmt.Errorf("dynamodb.table_name is required")
	}
	return nil
}

func (dynamoDBFactory) Create(cfg config.SnapshotConfig, logger *zap.Logger) (Store, error) {
	return NewDynamoDBStore(cfg.DynamoDB, logger)
}

func init() {
	RegisterFactory(dynamoDBFactory{})
}
