package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/bbernstein/tidechart/internal/config"
	"github.com/bbernstein/tidechart/internal/metrics"
	"github.com/bbernstein/tidechart/internal/models"
)

// predictionItem keeps levels as their provider text so no precision is
// lost on the round trip.
type predictionItem struct {
	Time  string `dynamodbav:"t"`
	Level string `dynamodbav:"v"`
}

type predictionRecord struct {
	StationID   string           `dynamodbav:"stationId"`
	Predictions []predictionItem `dynamodbav:"predictions"`
	ExpiresAt   int64            `dynamodbav:"expiresAt"`
	TTL         int64            `dynamodbav:"ttl"`
}

type DynamoCache struct {
	client    DynamoDBClient
	tableName string
	clock     clock
}

func NewDynamoCache(client DynamoDBClient, cfg *config.CacheConfig) *DynamoCache {
	return &DynamoCache{
		client:    client,
		tableName: cfg.DynamoTable,
		clock:     systemClock{},
	}
}

func (c *DynamoCache) Get(ctx context.Context, stationID string) (*Entry, error) {
	result, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"stationId": &types.AttributeValueMemberS{Value: stationID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting predictions for %s: %w", stationID, err)
	}

	if result.Item == nil {
		metrics.ObserveCache("dynamo", false)
		return nil, nil
	}

	var record predictionRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("unmarshaling prediction record: %w", err)
	}

	entry, err := record.toEntry()
	if err != nil {
		return nil, err
	}

	// DynamoDB TTL deletion lags, so expiry is enforced here too.
	if !entry.Valid(c.clock.Now()) {
		log.Debug().
			Str("station_id", stationID).
			Time("expires_at", entry.ExpiresAt).
			Msg("Ignoring expired prediction record")
		metrics.ObserveCache("dynamo", false)
		return nil, nil
	}

	metrics.ObserveCache("dynamo", true)
	return entry, nil
}

func (c *DynamoCache) Set(ctx context.Context, entry Entry) error {
	if entry.StationID == "" {
		return fmt.Errorf("station ID is required")
	}

	item, err := attributevalue.MarshalMap(newPredictionRecord(entry))
	if err != nil {
		return fmt.Errorf("marshaling prediction record: %w", err)
	}

	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("saving predictions for %s: %w", entry.StationID, err)
	}

	log.Debug().
		Str("station_id", entry.StationID).
		Int("count", len(entry.Predictions)).
		Msg("Saved predictions to DynamoDB")
	return nil
}

func newPredictionRecord(entry Entry) predictionRecord {
	items := make([]predictionItem, len(entry.Predictions))
	for i, p := range entry.Predictions {
		items[i] = predictionItem{Time: p.Time, Level: p.Level.String()}
	}
	return predictionRecord{
		StationID:   entry.StationID,
		Predictions: items,
		ExpiresAt:   entry.ExpiresAt.UnixMilli(),
		TTL:         entry.ExpiresAt.Unix(),
	}
}

func (r predictionRecord) toEntry() (*Entry, error) {
	predictions := make([]models.Prediction, len(r.Predictions))
	for i, item := range r.Predictions {
		level, err := decimal.NewFromString(item.Level)
		if err != nil {
			return nil, fmt.Errorf("parsing cached level %q: %w", item.Level, err)
		}
		predictions[i] = models.Prediction{Time: item.Time, Level: level}
	}
	return &Entry{
		StationID:   r.StationID,
		Predictions: predictions,
		ExpiresAt:   time.UnixMilli(r.ExpiresAt),
	}, nil
}
