package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

const (
	defaultTimeout       = 5 * time.Minute
	defaultMaxConcurrent = 2
)

// Options FFmpeg 客户端配置
type Options struct {
	FFmpegPath    string        // 为空时读取 FFMPEG_PATH，默认 ffmpeg
	FFprobePath   string        // 为空时读取 FFPROBE_PATH，默认 ffprobe
	Timeout       time.Duration // 单次调用超时
	MaxConcurrent int           // 同时运行的进程数上限
}

// Client FFmpeg 客户端
// 所有调用共享同一个并发上限，并各自带有超时
type Client struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
	sem         *semaphore.Weighted
}

// NewClient 创建 FFmpeg 客户端
func NewClient(opts Options) *Client {
	ffmpegPath := opts.FFmpegPath
	if ffmpegPath == "" {
		ffmpegPath = os.Getenv("FFMPEG_PATH")
	}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}

	ffprobePath := opts.FFprobePath
	if ffprobePath == "" {
		ffprobePath = os.Getenv("FFPROBE_PATH")
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := opts.MaxConcurrent
	if limit <= 0 {
		limit = defaultMaxConcurrent
	}

	return &Client{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		timeout:     timeout,
		sem:         semaphore.NewWeighted(int64(limit)),
	}
}

// FFmpegPath 返回 ffmpeg 可执行文件路径
func (c *Client) FFmpegPath() string { return c.ffmpegPath }

// FFprobePath 返回 ffprobe 可执行文件路径
func (c *Client) FFprobePath() string { return c.ffprobePath }

// Run 执行一次 ffmpeg 命令
// 失败时返回 *ExecError，携带 stderr
func (c *Client) Run(ctx context.Context, args ...string) error {
	_, _, err := c.exec(ctx, "ffmpeg", c.ffmpegPath, args)
	return err
}

// exec 在并发上限和超时内执行命令，返回 stdout / stderr
func (c *Client) exec(ctx context.Context, op, binary string, args []string) ([]byte, []byte, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, nil, &ExecError{Op: op, Err: err}
	}
	defer c.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("%s timed out after %s: %w", op, c.timeout, ctx.Err())
		}
		log.Debug().
			Str("op", op).
			Dur("elapsed", elapsed).
			Err(err).
			Msg("媒体命令执行失败")
		return stdout.Bytes(), stderr.Bytes(), &ExecError{Op: op, Err: err, Stderr: stderr.String()}
	}

	log.Debug().
		Str("op", op).
		Dur("elapsed", elapsed).
		Msg("媒体命令执行完成")

	return stdout.Bytes(), stderr.Bytes(), nil
}

// TranscodeMP3 将音频转码为 MP3（libmp3lame）
func (c *Client) TranscodeMP3(ctx context.Context, inputPath, outputPath, bitrate string) error {
	if bitrate == "" {
		bitrate = "320k"
	}
	// ffmpeg -y -i in.wav -codec:a libmp3lame -b:a 320k out.mp3
	err := c.Run(ctx,
		"-hide_banner",
		"-y",
		"-i", inputPath,
		"-codec:a", "libmp3lame",
		"-b:a", bitrate,
		outputPath,
	)
	if err != nil {
		return fmt.Errorf("transcode mp3: %w", err)
	}
	return nil
}

// Version 返回 ffmpeg / ffprobe 版本首行
func (c *Client) Version(ctx context.Context, binary string) (string, error) {
	stdout, _, err := c.exec(ctx, "version", binary, []string{"-hide_banner", "-version"})
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(stdout), "\n")
	return strings.TrimSpace(line), nil
}
