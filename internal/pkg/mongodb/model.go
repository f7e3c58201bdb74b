package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Model 需要维护索引的集合
type Model interface {
	Collection() string
	EnsureIndexes(ctx context.Context, db *mongo.Database) error
}

// EnsureAllIndexes 依次为各集合建索引，出错时带上集合名
func EnsureAllIndexes(ctx context.Context, db *mongo.Database, models ...Model) error {
	for _, m := range models {
		if err := m.EnsureIndexes(ctx, db); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", m.Collection(), err)
		}
	}
	return nil
}
