package service

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"vibesync/internal/model/music"
)

type fakeTrackFinder struct {
	tracks    map[string]*music.Track
	lastLimit int
	lastSkip  int
}

func (f *fakeTrackFinder) FindByID(ctx context.Context, id string) (*music.Track, error) {
	t, ok := f.tracks[id]
	if !ok {
		return nil, errors.New("mongo: no documents in result")
	}
	return t, nil
}

func (f *fakeTrackFinder) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*music.Track, int64, error) {
	f.lastLimit, f.lastSkip = limit, offset
	var out []*music.Track
	for _, t := range f.tracks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, int64(len(out)), nil
}

type fakeMergeFinder struct {
	jobs []*music.MergeJob
}

func (f *fakeMergeFinder) FindByMusicFileID(ctx context.Context, musicFileID string) ([]*music.MergeJob, error) {
	return f.jobs, nil
}

func TestHistoryService(t *testing.T) {
	Convey("历史记录查询", t, func() {
		ctx := context.Background()
		finder := &fakeTrackFinder{tracks: map[string]*music.Track{
			"aaaaaaaaaaaa": {ID: "aaaaaaaaaaaa", UserID: "u1"},
			"bbbbbbbbbbbb": {ID: "bbbbbbbbbbbb", UserID: "u2"},
		}}
		merges := &fakeMergeFinder{jobs: []*music.MergeJob{{ID: "cccccccccccc", MusicFileID: "aaaaaaaaaaaa"}}}
		svc := NewHistoryService(finder, merges)

		Convey("分页参数取默认值并限制上限", func() {
			res, err := svc.ListTracks(ctx, &ListTracksRequest{UserID: "u1", Page: 3, PageSize: 500})
			So(err, ShouldBeNil)
			So(res.Total, ShouldEqual, 1)
			So(res.PageSize, ShouldEqual, 100)
			So(finder.lastLimit, ShouldEqual, 100)
			So(finder.lastSkip, ShouldEqual, 200)

			res, err = svc.ListTracks(ctx, &ListTracksRequest{UserID: "nobody"})
			So(err, ShouldBeNil)
			So(res.Page, ShouldEqual, 1)
			So(res.Tracks, ShouldNotBeNil)
			So(res.Tracks, ShouldBeEmpty)
		})

		Convey("查询自己的音乐附带合成记录", func() {
			detail, err := svc.GetTrack(ctx, "u1", "aaaaaaaaaaaa")
			So(err, ShouldBeNil)
			So(detail.Track.ID, ShouldEqual, "aaaaaaaaaaaa")
			So(detail.Merges, ShouldHaveLength, 1)
		})

		Convey("其他用户的音乐视为不存在", func() {
			_, err := svc.GetTrack(ctx, "u1", "bbbbbbbbbbbb")
			So(err, ShouldEqual, ErrTrackNotFound)

			_, err = svc.GetTrack(ctx, "u1", "dddddddddddd")
			So(err, ShouldEqual, ErrTrackNotFound)
		})
	})
}
