package music

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vibesync/internal/model/music"
)

// TrackRepo 生成音乐记录仓库
type TrackRepo struct {
	collection *mongo.Collection
}

// NewTrackRepo 创建生成音乐记录仓库
func NewTrackRepo(db *mongo.Database) *TrackRepo {
	var t music.Track
	return &TrackRepo{
		collection: db.Collection(t.Collection()),
	}
}

// Create 保存生成记录
func (r *TrackRepo) Create(ctx context.Context, track *music.Track) error {
	if track.CreatedAt.IsZero() {
		track.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, track)
	return err
}

// FindByID 根据文件ID查询
func (r *TrackRepo) FindByID(ctx context.Context, id string) (*music.Track, error) {
	var track music.Track
	if err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&track); err != nil {
		return nil, err
	}
	return &track, nil
}

// FindByUserID 查询用户的生成记录，按创建时间倒序
func (r *TrackRepo) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*music.Track, int64, error) {
	filter := bson.M{"user_id": userID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var tracks []*music.Track
	if err := cursor.All(ctx, &tracks); err != nil {
		return nil, 0, err
	}
	return tracks, total, nil
}

// DeleteOlderThan 删除早于指定时间的记录
func (r *TrackRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": before}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
