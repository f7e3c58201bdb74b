package music

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Track 生成的音乐
type Track struct {
	ID              string    `bson:"id" json:"file_id"`                                          // 文件ID（12 位十六进制）
	UserID          string    `bson:"user_id,omitempty" json:"user_id,omitempty"`                 // 所属用户ID
	BatchID         string    `bson:"batch_id,omitempty" json:"batch_id,omitempty"`               // 同一次多风格生成共享
	StyleLabel      string    `bson:"style_label" json:"style_label"`                             // 风格名称
	Prompt          string    `bson:"prompt" json:"prompt"`                                       // 最终提交的提示词
	NegativePrompt  string    `bson:"negative_prompt,omitempty" json:"negative_prompt,omitempty"` // 负面提示词
	Attempts        int       `bson:"attempts" json:"attempts"`                                   // 成功前的尝试次数
	WAVKey          string    `bson:"wav_key" json:"wav_key"`                                     // 原始 WAV 存储 key
	MP3Key          string    `bson:"mp3_key" json:"mp3_key"`                                     // MP3 存储 key
	DurationSeconds float64   `bson:"duration_seconds" json:"duration_seconds"`                   // 时长（秒）
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`                               // 创建时间
}

// Collection 返回集合名称
func (t *Track) Collection() string {
	return "music_tracks"
}

// EnsureIndexes 创建和维护索引
func (t *Track) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(t.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "user_id", Value: 1}, bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// MergeStatus 合成任务状态
type MergeStatus string

const (
	MergeStatusSucceeded MergeStatus = "succeeded"
	MergeStatusFailed    MergeStatus = "failed"
)

// MergeJob 一次视频合成的记录
type MergeJob struct {
	ID                string      `bson:"id" json:"file_id"`
	UserID            string      `bson:"user_id,omitempty" json:"user_id,omitempty"`
	MusicFileID       string      `bson:"music_file_id" json:"music_file_id"`
	MixMode           string      `bson:"mix_mode" json:"mix_mode"`
	KeepOriginalAudio bool        `bson:"keep_original_audio" json:"keep_original_audio"`
	FadeIn            float64     `bson:"fade_in" json:"fade_in"`
	FadeOut           float64     `bson:"fade_out" json:"fade_out"`
	SegmentCount      int         `bson:"segment_count" json:"segment_count"`
	VideoDuration     float64     `bson:"video_duration" json:"video_duration"`
	VideoHasAudio     bool        `bson:"video_has_audio" json:"video_has_audio"`
	OriginalLUFS      float64     `bson:"original_lufs" json:"original_lufs"`
	MusicLUFS         float64     `bson:"music_lufs" json:"music_lufs"`
	Ducking           bool        `bson:"ducking" json:"ducking"`             // 是否使用 sidechain
	UsedFallback      bool        `bson:"used_fallback" json:"used_fallback"` // 是否走了降级滤镜
	OutputKey         string      `bson:"output_key,omitempty" json:"output_key,omitempty"`
	Status            MergeStatus `bson:"status" json:"status"`
	Error             string      `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt         time.Time   `bson:"created_at" json:"created_at"`
}

// Collection 返回集合名称
func (j *MergeJob) Collection() string {
	return "merge_jobs"
}

// EnsureIndexes 创建和维护索引
func (j *MergeJob) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(j.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "user_id", Value: 1}, bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
		{
			Keys:    bson.D{bson.E{Key: "music_file_id", Value: 1}},
			Options: options.Index().SetName("idx_music_file"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
