package music

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vibesync/internal/model/music"
)

// MergeJobRepo 合成记录仓库
type MergeJobRepo struct {
	collection *mongo.Collection
}

// NewMergeJobRepo 创建合成记录仓库
func NewMergeJobRepo(db *mongo.Database) *MergeJobRepo {
	var j music.MergeJob
	return &MergeJobRepo{
		collection: db.Collection(j.Collection()),
	}
}

// Create 保存合成记录
func (r *MergeJobRepo) Create(ctx context.Context, job *music.MergeJob) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, job)
	return err
}

// FindByMusicFileID 查询某首音乐的合成记录
func (r *MergeJobRepo) FindByMusicFileID(ctx context.Context, musicFileID string) ([]*music.MergeJob, error) {
	opts := options.Find().SetSort(bson.D{bson.E{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"music_file_id": musicFileID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var jobs []*music.MergeJob
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// DeleteOlderThan 删除早于指定时间的记录
func (r *MergeJobRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": before}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
