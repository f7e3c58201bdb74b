package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"vibesync/internal/pkg/assetstore"
	"vibesync/internal/pkg/storage"
	"vibesync/internal/pkg/storage/local"
)

// remoteStorage 包装本地存储，让 assetstore 按非本地存储处理
type remoteStorage struct {
	storage.Storage
	lastExpiry time.Duration
}

func (s *remoteStorage) GetPresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	s.lastExpiry = expiresIn
	return "https://bucket.oss.test/" + key + "?Signature=x", nil
}

func newRemoteStore(t *testing.T) (*assetstore.Store, *remoteStorage) {
	backend, err := local.NewLocalStorage(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	remote := &remoteStorage{Storage: backend}
	store, err := assetstore.New(remote, t.TempDir())
	if err != nil {
		t.Fatalf("assetstore.New: %v", err)
	}
	return store, remote
}

func TestAssetService_Download(t *testing.T) {
	Convey("下载生成资源", t, func() {
		ctx := context.Background()
		store := newTestStore(t)
		svc := NewAssetService(store, AssetConfig{})

		So(store.Put(ctx, assetstore.MusicKey(testMusicID, "mp3"), strings.NewReader("mp3")), ShouldBeNil)
		So(store.Put(ctx, assetstore.MergedKey(testMusicID), strings.NewReader("mp4")), ShouldBeNil)

		Convey("mp3 使用 vibesync_<id>.mp3 文件名", func() {
			res, err := svc.Download(ctx, &DownloadRequest{Kind: AssetTrack, FileID: testMusicID, Format: "mp3"})
			So(err, ShouldBeNil)
			defer res.Close()
			So(res.FileName, ShouldEqual, "vibesync_"+testMusicID+".mp3")
			So(res.ContentType, ShouldEqual, "audio/mpeg")
			So(res.LocalPath, ShouldEndWith, testMusicID+".mp3")
		})

		Convey("合成视频", func() {
			res, err := svc.Download(ctx, &DownloadRequest{Kind: AssetMerged, FileID: testMusicID})
			So(err, ShouldBeNil)
			So(res.FileName, ShouldEqual, "vibesync_"+testMusicID+".mp4")
			So(res.ContentType, ShouldEqual, "video/mp4")
		})

		Convey("不支持的格式", func() {
			_, err := svc.Download(ctx, &DownloadRequest{Kind: AssetTrack, FileID: testMusicID, Format: "flac"})
			So(err, ShouldEqual, ErrInvalidFormat)
		})

		Convey("文件不存在", func() {
			_, err := svc.Download(ctx, &DownloadRequest{Kind: AssetTrack, FileID: "ffffffffffff", Format: "wav"})
			So(err, ShouldEqual, ErrAssetNotFound)
		})

		Convey("非法文件ID不会拼进存储 key", func() {
			_, err := svc.Download(ctx, &DownloadRequest{Kind: AssetMerged, FileID: "../etc/passwd"})
			So(err, ShouldEqual, ErrAssetNotFound)
		})
	})
}

func TestAssetService_DownloadRemote(t *testing.T) {
	Convey("非本地存储下载", t, func() {
		ctx := context.Background()
		store, remote := newRemoteStore(t)
		So(store.IsLocal(), ShouldBeFalse)
		So(store.Put(ctx, assetstore.MergedKey(testMusicID), strings.NewReader("mp4")), ShouldBeNil)

		Convey("默认通过服务端转发数据流", func() {
			svc := NewAssetService(store, AssetConfig{})
			res, err := svc.Download(ctx, &DownloadRequest{Kind: AssetMerged, FileID: testMusicID})
			So(err, ShouldBeNil)
			defer res.Close()
			So(res.RedirectURL, ShouldBeEmpty)
			data, err := io.ReadAll(res.Data)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "mp4")
		})

		Convey("开启跳转时返回预签名地址", func() {
			svc := NewAssetService(store, AssetConfig{RedirectRemote: true, URLExpiry: 10 * time.Minute})
			res, err := svc.Download(ctx, &DownloadRequest{Kind: AssetMerged, FileID: testMusicID})
			So(err, ShouldBeNil)
			So(res.Data, ShouldBeNil)
			So(res.RedirectURL, ShouldEqual, "https://bucket.oss.test/"+assetstore.MergedKey(testMusicID)+"?Signature=x")
			So(remote.lastExpiry, ShouldEqual, 10*time.Minute)
		})

		Convey("跳转前确认对象存在", func() {
			svc := NewAssetService(store, AssetConfig{RedirectRemote: true})
			_, err := svc.Download(ctx, &DownloadRequest{Kind: AssetTrack, FileID: testMusicID, Format: "wav"})
			So(err, ShouldEqual, ErrAssetNotFound)
		})
	})
}
