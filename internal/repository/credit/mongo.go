package credit

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vibesync/internal/model/credit"
)

// MongoStore MongoDB 积分存储
type MongoStore struct {
	accounts *mongo.Collection
	events   *mongo.Collection
}

// NewMongoStore 创建 MongoDB 积分存储
func NewMongoStore(db *mongo.Database) *MongoStore {
	var account credit.Account
	var event credit.PaymentEvent
	return &MongoStore{
		accounts: db.Collection(account.Collection()),
		events:   db.Collection(event.Collection()),
	}
}

func (s *MongoStore) Balance(ctx context.Context, userID string) (int, bool, error) {
	var account credit.Account
	err := s.accounts.FindOne(ctx, bson.M{"user_id": userID}).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return account.Credits, true, nil
}

func (s *MongoStore) Ensure(ctx context.Context, userID string, initial int) (int, error) {
	now := time.Now()
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var account credit.Account
	err := s.accounts.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID},
		bson.M{"$setOnInsert": bson.M{
			"user_id":    userID,
			"credits":    initial,
			"created_at": now,
			"updated_at": now,
		}},
		opts,
	).Decode(&account)
	if err != nil {
		return 0, err
	}
	return account.Credits, nil
}

func (s *MongoStore) Deduct(ctx context.Context, userID string) (int, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var account credit.Account
	err := s.accounts.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID, "credits": bson.M{"$gt": 0}},
		bson.M{
			"$inc": bson.M{"credits": -1},
			"$set": bson.M{"updated_at": time.Now()},
		},
		opts,
	).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrInsufficientCredits
	}
	if err != nil {
		return 0, err
	}
	return account.Credits, nil
}

func (s *MongoStore) Add(ctx context.Context, userID string, amount int) (int, error) {
	now := time.Now()
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var account credit.Account
	err := s.accounts.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$inc":         bson.M{"credits": amount},
			"$set":         bson.M{"updated_at": now},
			"$setOnInsert": bson.M{"created_at": now},
		},
		opts,
	).Decode(&account)
	if err != nil {
		return 0, err
	}
	return account.Credits, nil
}

func (s *MongoStore) MarkEvent(ctx context.Context, eventID string) (bool, error) {
	_, err := s.events.InsertOne(ctx, credit.PaymentEvent{EventID: eventID, CreatedAt: time.Now()})
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
