package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound 对象不存在
var ErrNotFound = errors.New("object not found")

// Storage 存储接口
type Storage interface {
	// Upload 上传文件（服务端上传）
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// Download 下载文件，不存在时返回 ErrNotFound
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetPresignedDownloadURL 获取预签名下载URL
	GetPresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// Delete 删除文件，不存在视为成功
	Delete(ctx context.Context, key string) error

	// Exists 检查文件是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// GetFileInfo 获取文件信息
	GetFileInfo(ctx context.Context, key string) (*FileInfo, error)

	// List 列出前缀下的对象
	List(ctx context.Context, prefix string) ([]FileInfo, error)

	// GetStorageType 获取存储类型
	GetStorageType() string
}

// FileInfo 文件信息
type FileInfo struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// StorageType 存储类型
type StorageType string

const (
	StorageTypeLocal StorageType = "local" // 本地文件系统
	StorageTypeOSS   StorageType = "oss"   // 阿里云OSS
)

// ContentTypeFor 根据扩展名推断 Content-Type
func ContentTypeFor(ext string) string {
	switch ext {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".avi":
		return "video/x-msvideo"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
