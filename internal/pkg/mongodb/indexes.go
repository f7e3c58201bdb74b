package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"vibesync/internal/model/credit"
	"vibesync/internal/model/music"
)

// EnsureIndexes 创建所有模型的索引
// 在应用启动时调用
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	models := []Model{
		&music.Track{},
		&music.MergeJob{},
		&credit.Account{},
		&credit.PaymentEvent{},
	}
	return EnsureAllIndexes(ctx, db, models...)
}
