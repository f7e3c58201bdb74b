package assetstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"vibesync/internal/pkg/storage"
	"vibesync/internal/pkg/storage/local"
)

const (
	MusicPrefix  = "music/"
	MergedPrefix = "merged/"
)

// MusicKey 生成音乐的存储 key，ext 为 mp3 / wav
func MusicKey(fileID, ext string) string {
	return MusicPrefix + fileID + "." + ext
}

// MergedKey 合成视频的存储 key
func MergedKey(fileID string) string {
	return MergedPrefix + fileID + "_merged.mp4"
}

// Store 生成资源仓库
// 在 storage.Storage 之上提供 ffmpeg 需要的本地文件视图
type Store struct {
	backend storage.Storage
	local   *local.LocalStorage
	workDir string
}

// New 创建资源仓库，workDir 存放处理中的临时文件
func New(backend storage.Storage, workDir string) (*Store, error) {
	if workDir == "" {
		workDir = filepath.Join(os.TempDir(), "vibesync_work")
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	s := &Store{backend: backend, workDir: workDir}
	if ls, ok := backend.(*local.LocalStorage); ok {
		s.local = ls
	}
	return s, nil
}

// Backend 底层存储
func (s *Store) Backend() storage.Storage { return s.backend }

// IsLocal 底层是否为本地文件系统
func (s *Store) IsLocal() bool { return s.local != nil }

// WorkDir 临时工作目录
func (s *Store) WorkDir() string { return s.workDir }

// Exists 资源是否存在
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	return s.backend.Exists(ctx, key)
}

// Put 写入资源
func (s *Store) Put(ctx context.Context, key string, r io.Reader) error {
	_, err := s.backend.Upload(ctx, key, r, contentType(key))
	return err
}

// PutFile 把工作目录中的文件发布到 key
// 本地存储直接改名，其余上传后删除源文件
func (s *Store) PutFile(ctx context.Context, key, path string) error {
	if s.local != nil {
		if err := s.local.Adopt(ctx, path, key); err == nil {
			return nil
		}
		// 跨设备改名失败时退回到复制
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := s.backend.Upload(ctx, key, f, contentType(key)); err != nil {
		return err
	}
	RemoveWorkFile(path)
	return nil
}

// Open 读取资源
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Download(ctx, key)
}

// Delete 删除资源
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// List 列出前缀下的资源
func (s *Store) List(ctx context.Context, prefix string) ([]storage.FileInfo, error) {
	return s.backend.List(ctx, prefix)
}

// URL 资源访问地址
func (s *Store) URL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return s.backend.GetPresignedDownloadURL(ctx, key, ttl)
}

// Localize 返回资源的本地路径
// 本地存储直接返回文件路径；其他存储下载到工作目录，release 负责清理
func (s *Store) Localize(ctx context.Context, key string) (path string, release func(), err error) {
	if s.local != nil {
		ok, err := s.local.Exists(ctx, key)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			return "", nil, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
		}
		p, err := s.local.Path(key)
		if err != nil {
			return "", nil, err
		}
		return p, func() {}, nil
	}

	rc, err := s.backend.Download(ctx, key)
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()

	tmp, err := s.WorkFile("asset-*" + filepath.Ext(key))
	if err != nil {
		return "", nil, err
	}
	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("download %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, err
	}
	name := tmp.Name()
	return name, func() { RemoveWorkFile(name) }, nil
}

// WorkFile 在工作目录创建临时文件
func (s *Store) WorkFile(pattern string) (*os.File, error) {
	f, err := os.CreateTemp(s.workDir, pattern)
	if err != nil {
		return nil, fmt.Errorf("create work file: %w", err)
	}
	return f, nil
}

// WorkPath 工作目录中的文件路径（不创建文件）
func (s *Store) WorkPath(name string) string {
	return filepath.Join(s.workDir, filepath.Base(name))
}

// RemoveWorkFile 删除工作文件，忽略不存在
func RemoveWorkFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("path", path).Msg("清理工作文件失败")
	}
}

func contentType(key string) string {
	return storage.ContentTypeFor(strings.ToLower(filepath.Ext(key)))
}
