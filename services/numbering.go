package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Document number prefixes
const (
	InvoicePrefix = "INV"
	PayoutPrefix  = "PAY"
)

// NumberGenerator issues unique invoice/payout numbers. Injected so that
// collision and retry behavior is controllable in tests.
type NumberGenerator interface {
	Next(ctx context.Context, prefix string) (string, error)
}

// FormatNumber renders a document number as PREFIX-YYYYMMDD-NNNNN.
func FormatNumber(prefix string, day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%05d", prefix, day.Format("20060102"), seq)
}

// CounterNumberGenerator issues numbers from a per-day counters collection.
type CounterNumberGenerator struct {
	DB *mongo.Database
}

func NewCounterNumberGenerator(db *mongo.Database) *CounterNumberGenerator {
	return &CounterNumberGenerator{DB: db}
}

// Next increments the day's counter for the prefix and formats the number.
func (g *CounterNumberGenerator) Next(ctx context.Context, prefix string) (string, error) {
	now := time.Now()
	key := fmt.Sprintf("%s-%s", prefix, now.Format("20060102"))

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := g.DB.Collection("counters").FindOneAndUpdate(
		ctx,
		bson.M{"_id": key},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return "", fmt.Errorf("failed to advance %s counter: %w", prefix, err)
	}

	return FormatNumber(prefix, now, counter.Seq), nil
}

// numberingAttempts bounds the retries on a duplicate-key collision before
// the error is surfaced to the caller.
const numberingAttempts = 3
