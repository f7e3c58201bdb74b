package assetstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"vibesync/internal/pkg/storage"
	"vibesync/internal/pkg/storage/local"
)

func newLocalStore(t *testing.T) *Store {
	backend, err := local.NewLocalStorage(t.TempDir(), "http://localhost:8000/files")
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	s, err := New(backend, t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestKeys(t *testing.T) {
	Convey("存储 key", t, func() {
		So(MusicKey("0123456789ab", "mp3"), ShouldEqual, "music/0123456789ab.mp3")
		So(MergedKey("0123456789ab"), ShouldEqual, "merged/0123456789ab_merged.mp4")
	})
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	Convey("本地资源仓库", t, func() {
		s := newLocalStore(t)
		So(s.IsLocal(), ShouldBeTrue)

		Convey("Put 后可以读取和定位", func() {
			key := MusicKey("0123456789ab", "wav")
			So(s.Put(ctx, key, strings.NewReader("RIFF")), ShouldBeNil)

			ok, err := s.Exists(ctx, key)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			path, release, err := s.Localize(ctx, key)
			So(err, ShouldBeNil)
			defer release()
			data, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "RIFF")

			rc, err := s.Open(ctx, key)
			So(err, ShouldBeNil)
			body, _ := io.ReadAll(rc)
			rc.Close()
			So(string(body), ShouldEqual, "RIFF")
		})

		Convey("Localize 不存在的资源返回 ErrNotFound", func() {
			_, _, err := s.Localize(ctx, MusicKey("ffffffffffff", "mp3"))
			So(errors.Is(err, storage.ErrNotFound), ShouldBeTrue)
		})

		Convey("PutFile 移动工作文件", func() {
			f, err := s.WorkFile("out-*.mp4")
			So(err, ShouldBeNil)
			_, _ = f.WriteString("mp4")
			So(f.Close(), ShouldBeNil)
			So(filepath.Dir(f.Name()), ShouldEqual, s.WorkDir())

			key := MergedKey("0123456789ab")
			So(s.PutFile(ctx, key, f.Name()), ShouldBeNil)

			_, err = os.Stat(f.Name())
			So(os.IsNotExist(err), ShouldBeTrue)

			files, err := s.List(ctx, MergedPrefix)
			So(err, ShouldBeNil)
			So(files, ShouldHaveLength, 1)
			So(files[0].Key, ShouldEqual, key)

			url, err := s.URL(ctx, key, 0)
			So(err, ShouldBeNil)
			So(url, ShouldEqual, "http://localhost:8000/files/"+key)
		})

		Convey("Delete", func() {
			key := MusicKey("0123456789ab", "mp3")
			So(s.Put(ctx, key, strings.NewReader("x")), ShouldBeNil)
			So(s.Delete(ctx, key), ShouldBeNil)
			ok, _ := s.Exists(ctx, key)
			So(ok, ShouldBeFalse)
		})
	})
}
