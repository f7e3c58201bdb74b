package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	. "github.com/smartystreets/goconvey/convey"

	"vibesync/internal/pkg/assetstore"
)

type fakePruner struct {
	before time.Time
}

func (p *fakePruner) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	p.before = before
	return 2, nil
}

func TestJanitor(t *testing.T) {
	ctx := context.Background()

	Convey("Janitor.Sweep", t, func() {
		store := newTestStore(t)
		for _, key := range []string{
			assetstore.MusicKey("0123456789ab", "mp3"),
			assetstore.MergedKey("0123456789ab"),
		} {
			So(store.Put(ctx, key, strings.NewReader("data")), ShouldBeNil)
		}
		stale := filepath.Join(store.WorkDir(), "abc_input-1.mp4")
		So(os.WriteFile(stale, []byte("v"), 0o644), ShouldBeNil)

		pruner := &fakePruner{}
		j := NewJanitor(store, time.Minute, time.Hour, pruner)

		Convey("保留期内的文件不删除", func() {
			result, err := j.Sweep(ctx)
			So(err, ShouldBeNil)
			So(result.DeletedAssets, ShouldEqual, 0)
			So(result.DeletedWork, ShouldEqual, 0)
		})

		Convey("删除过期的资源与工作文件", func() {
			now := time.Now().Add(2 * time.Hour)
			j.now = func() time.Time { return now }

			result, err := j.Sweep(ctx)
			So(err, ShouldBeNil)
			So(result.DeletedAssets, ShouldEqual, 2)
			So(result.DeletedWork, ShouldEqual, 1)
			So(result.DeletedRecords, ShouldEqual, 2)
			So(pruner.before, ShouldEqual, now.Add(-time.Hour))

			files, _ := store.List(ctx, assetstore.MusicPrefix)
			So(files, ShouldBeEmpty)
		})

		Convey("其他进程持有锁时跳过", func() {
			other := flock.New(filepath.Join(store.WorkDir(), janitorLockName))
			ok, err := other.TryLock()
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			defer other.Unlock()

			result, err := j.Sweep(ctx)
			So(err, ShouldBeNil)
			So(result.Skipped, ShouldBeTrue)
		})
	})
}
