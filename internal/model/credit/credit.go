package credit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Account 用户积分账户
type Account struct {
	UserID    string    `bson:"user_id" json:"user_id"`
	Credits   int       `bson:"credits" json:"credits"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (a *Account) Collection() string {
	return "credit_accounts"
}

// EnsureIndexes 创建和维护索引
func (a *Account) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(a.Collection()).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{bson.E{Key: "user_id", Value: 1}},
		Options: options.Index().SetName("idx_user_id").SetUnique(true),
	})
	return err
}

// PaymentEvent 已处理的支付回调事件（幂等）
type PaymentEvent struct {
	EventID   string    `bson:"event_id" json:"event_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Collection 返回集合名称
func (e *PaymentEvent) Collection() string {
	return "payment_events"
}

// EnsureIndexes 创建和维护索引
func (e *PaymentEvent) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(e.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "event_id", Value: 1}},
			Options: options.Index().SetName("idx_event_id").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_created_at").SetExpireAfterSeconds(int32((30 * 24 * time.Hour).Seconds())), // TTL，30 天后自动删除
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
