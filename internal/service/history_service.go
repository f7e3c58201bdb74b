package service

import (
	"context"
	"errors"

	"vibesync/internal/model/music"
)

// ErrTrackNotFound 生成记录不存在或不属于当前用户
var ErrTrackNotFound = errors.New("生成记录不存在")

// TrackFinder 生成记录查询
type TrackFinder interface {
	FindByID(ctx context.Context, id string) (*music.Track, error)
	FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*music.Track, int64, error)
}

// MergeJobFinder 合成记录查询
type MergeJobFinder interface {
	FindByMusicFileID(ctx context.Context, musicFileID string) ([]*music.MergeJob, error)
}

// ListTracksRequest 查询生成记录请求
type ListTracksRequest struct {
	UserID   string
	Page     int // 页码（默认1）
	PageSize int // 每页数量（默认20，最大100）
}

// ListTracksResult 查询生成记录结果
type ListTracksResult struct {
	Tracks   []*music.Track `json:"tracks"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// TrackDetail 单首音乐及其合成记录
type TrackDetail struct {
	Track  *music.Track      `json:"track"`
	Merges []*music.MergeJob `json:"merges"`
}

// HistoryService 生成与合成历史
type HistoryService interface {
	ListTracks(ctx context.Context, req *ListTracksRequest) (*ListTracksResult, error)
	GetTrack(ctx context.Context, userID, fileID string) (*TrackDetail, error)
}

type historyService struct {
	tracks TrackFinder
	merges MergeJobFinder
}

// NewHistoryService 创建历史查询服务
func NewHistoryService(tracks TrackFinder, merges MergeJobFinder) HistoryService {
	return &historyService{tracks: tracks, merges: merges}
}

func (s *historyService) ListTracks(ctx context.Context, req *ListTracksRequest) (*ListTracksResult, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	tracks, total, err := s.tracks.FindByUserID(ctx, req.UserID, req.PageSize, (req.Page-1)*req.PageSize)
	if err != nil {
		return nil, err
	}
	if tracks == nil {
		tracks = []*music.Track{}
	}
	return &ListTracksResult{
		Tracks:   tracks,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

func (s *historyService) GetTrack(ctx context.Context, userID, fileID string) (*TrackDetail, error) {
	track, err := s.tracks.FindByID(ctx, fileID)
	if err != nil {
		return nil, ErrTrackNotFound
	}
	if track.UserID != "" && track.UserID != userID {
		return nil, ErrTrackNotFound
	}

	detail := &TrackDetail{Track: track, Merges: []*music.MergeJob{}}
	if s.merges != nil {
		merges, err := s.merges.FindByMusicFileID(ctx, fileID)
		if err != nil {
			return nil, err
		}
		if merges != nil {
			detail.Merges = merges
		}
	}
	return detail, nil
}
