package storagefactory

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vibesync/internal/config"
	"vibesync/internal/pkg/storage"
)

func TestNewStorage(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr bool
	}{
		{
			name: "valid local storage config",
			cfg: &config.StorageConfig{
				Type:  "local",
				Local: &config.LocalConfig{BasePath: tmpDir, BaseURL: "http://localhost:8000/files"},
			},
		},
		{
			name:    "missing local config",
			cfg:     &config.StorageConfig{Type: "local"},
			wantErr: true,
		},
		{
			name:    "missing oss config",
			cfg:     &config.StorageConfig{Type: "oss"},
			wantErr: true,
		},
		{
			name:    "unsupported storage type",
			cfg:     &config.StorageConfig{Type: "s3"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStorage(context.Background(), tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewStorage() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewStorage() unexpected error: %v", err)
			}
			if s.GetStorageType() != tt.cfg.Type {
				t.Errorf("GetStorageType() = %s, want %s", s.GetStorageType(), tt.cfg.Type)
			}
		})
	}
}

func newLocal(t *testing.T) (storage.Storage, string) {
	tmpDir := t.TempDir()
	s, err := NewStorage(context.Background(), &config.StorageConfig{
		Type:  "local",
		Local: &config.LocalConfig{BasePath: tmpDir, BaseURL: "http://localhost:8000/files/"},
	})
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	return s, tmpDir
}

func TestLocalStorage_Operations(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocal(t)

	testKey := "music/0123456789ab.mp3"
	testContent := "ID3 fake mp3 payload"

	url, err := s.Upload(ctx, testKey, strings.NewReader(testContent), "audio/mpeg")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if want := "http://localhost:8000/files/" + testKey; url != want {
		t.Errorf("Upload() url = %v, want %v", url, want)
	}

	exists, err := s.Exists(ctx, testKey)
	if err != nil || !exists {
		t.Fatalf("Exists() = %v, %v; want true", exists, err)
	}

	reader, err := s.Download(ctx, testKey)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	data, err := io.ReadAll(reader)
	reader.Close()
	if err != nil || string(data) != testContent {
		t.Errorf("Download() content = %q, %v", data, err)
	}

	info, err := s.GetFileInfo(ctx, testKey)
	if err != nil {
		t.Fatalf("GetFileInfo() error = %v", err)
	}
	if info.Size != int64(len(testContent)) || info.ContentType != "audio/mpeg" {
		t.Errorf("GetFileInfo() = %+v", info)
	}
	if time.Since(info.LastModified) > time.Minute {
		t.Errorf("GetFileInfo() LastModified too old: %v", info.LastModified)
	}

	files, err := s.List(ctx, "music")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(files) != 1 || files[0].Key != testKey {
		t.Errorf("List() = %+v, want single %s", files, testKey)
	}

	if err := s.Delete(ctx, testKey); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	exists, _ = s.Exists(ctx, testKey)
	if exists {
		t.Errorf("Exists() = true after delete")
	}
}

func TestLocalStorage_NonExistentFile(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocal(t)

	if _, err := s.Download(ctx, "music/nope.mp3"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Download() error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetFileInfo(ctx, "music/nope.mp3"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetFileInfo() error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "music/nope.mp3"); err != nil {
		t.Errorf("Delete() error = %v, should succeed for non-existent file", err)
	}
	files, err := s.List(ctx, "merged")
	if err != nil || len(files) != 0 {
		t.Errorf("List() on missing prefix = %v, %v", files, err)
	}
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocal(t)

	if _, err := s.Upload(ctx, "../outside.txt", strings.NewReader("x"), "text/plain"); err == nil {
		t.Errorf("Upload() with escaping key should fail")
	}
	if _, err := s.Exists(ctx, filepath.Join("..", "..", "etc", "passwd")); err == nil {
		t.Errorf("Exists() with escaping key should fail")
	}
}
