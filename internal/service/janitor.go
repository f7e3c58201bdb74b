package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"

	"vibesync/internal/pkg/assetstore"
)

const (
	defaultJanitorInterval  = time.Hour
	defaultJanitorRetention = 24 * time.Hour
	janitorLockName         = ".janitor.lock"
)

// HistoryPruner 清理过期的历史记录
type HistoryPruner interface {
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// SweepResult 一次清理的统计
type SweepResult struct {
	Skipped        bool  // 其他进程持有锁
	DeletedAssets  int   // 删除的音乐/合成视频
	DeletedWork    int   // 删除的残留工作文件
	DeletedRecords int64 // 删除的历史记录
}

// Janitor 定期清理过期的生成资源
// 同一时间只有一个进程执行清理
type Janitor struct {
	store     *assetstore.Store
	interval  time.Duration
	retention time.Duration
	lock      *flock.Flock
	pruners   []HistoryPruner
	now       func() time.Time
}

// NewJanitor 创建清理任务，锁文件位于工作目录
func NewJanitor(store *assetstore.Store, interval, retention time.Duration, pruners ...HistoryPruner) *Janitor {
	if interval <= 0 {
		interval = defaultJanitorInterval
	}
	if retention <= 0 {
		retention = defaultJanitorRetention
	}
	return &Janitor{
		store:     store,
		interval:  interval,
		retention: retention,
		lock:      flock.New(filepath.Join(store.WorkDir(), janitorLockName)),
		pruners:   pruners,
		now:       time.Now,
	}
}

// Run 按间隔清理直到 ctx 结束
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", j.interval).Dur("retention", j.retention).Msg("过期资源清理已启动")
	for {
		if _, err := j.Sweep(ctx); err != nil {
			log.Warn().Err(err).Msg("过期资源清理失败")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sweep 执行一次清理
func (j *Janitor) Sweep(ctx context.Context) (*SweepResult, error) {
	ok, err := j.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire janitor lock: %w", err)
	}
	if !ok {
		return &SweepResult{Skipped: true}, nil
	}
	defer func() {
		if err := j.lock.Unlock(); err != nil {
			log.Warn().Err(err).Msg("释放清理锁失败")
		}
	}()

	cutoff := j.now().Add(-j.retention)
	result := &SweepResult{}

	for _, prefix := range []string{assetstore.MusicPrefix, assetstore.MergedPrefix} {
		files, err := j.store.List(ctx, prefix)
		if err != nil {
			return result, fmt.Errorf("list %s: %w", prefix, err)
		}
		for _, f := range files {
			if f.LastModified.IsZero() || !f.LastModified.Before(cutoff) {
				continue
			}
			if err := j.store.Delete(ctx, f.Key); err != nil {
				log.Warn().Err(err).Str("key", f.Key).Msg("删除过期资源失败")
				continue
			}
			result.DeletedAssets++
		}
	}

	result.DeletedWork = j.sweepWorkDir(cutoff)

	for _, p := range j.pruners {
		n, err := p.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			log.Warn().Err(err).Msg("清理历史记录失败")
			continue
		}
		result.DeletedRecords += n
	}

	if result.DeletedAssets > 0 || result.DeletedWork > 0 || result.DeletedRecords > 0 {
		log.Info().
			Int("assets", result.DeletedAssets).
			Int("work_files", result.DeletedWork).
			Int64("records", result.DeletedRecords).
			Msg("过期资源已清理")
	}
	return result, nil
}

// sweepWorkDir 删除工作目录中残留的过期临时文件
func (j *Janitor) sweepWorkDir(cutoff time.Time) int {
	entries, err := os.ReadDir(j.store.WorkDir())
	if err != nil {
		log.Warn().Err(err).Msg("读取工作目录失败")
		return 0
	}
	deleted := 0
	for _, e := range entries {
		if e.IsDir() || e.Name() == janitorLockName {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(j.store.WorkDir(), e.Name())); err == nil {
			deleted++
		}
	}
	return deleted
}
