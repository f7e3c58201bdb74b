package ffmpeg

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const sampleLoudnormStderr = `Input #0, wav, from 'music.wav':
  Duration: 00:00:30.00, bitrate: 1536 kb/s
[Parsed_loudnorm_0 @ 0x600003a0c000]
{
	"input_i" : "-14.72",
	"input_tp" : "-0.51",
	"input_lra" : "6.30",
	"input_thresh" : "-25.01",
	"output_i" : "-24.47",
	"output_tp" : "-8.12",
	"output_lra" : "5.10",
	"output_thresh" : "-34.66",
	"normalization_type" : "dynamic",
	"target_offset" : "0.47"
}
size=N/A time=00:00:30.00 bitrate=N/A speed= 412x`

func TestParseLoudnorm(t *testing.T) {
	Convey("ParseLoudnorm", t, func() {
		Convey("读取 input_i", func() {
			stats, err := ParseLoudnorm([]byte(sampleLoudnormStderr))
			So(err, ShouldBeNil)
			lufs, ok := stats.IntegratedLUFS()
			So(ok, ShouldBeTrue)
			So(lufs, ShouldAlmostEqual, -14.72, 0.0001)
			So(stats.TargetOffset, ShouldEqual, "0.47")
		})

		Convey("静音返回 -inf", func() {
			stderr := strings.Replace(sampleLoudnormStderr, `"-14.72"`, `"-inf"`, 1)
			stats, err := ParseLoudnorm([]byte(stderr))
			So(err, ShouldBeNil)
			lufs, ok := stats.IntegratedLUFS()
			So(ok, ShouldBeTrue)
			So(math.IsInf(lufs, -1), ShouldBeTrue)
		})

		Convey("没有 JSON", func() {
			_, err := ParseLoudnorm([]byte("Output file #0 does not contain any stream"))
			So(errors.Is(err, ErrNoLoudnormOutput), ShouldBeTrue)
		})

		Convey("非数字 input_i", func() {
			stats, err := ParseLoudnorm([]byte(`{"input_i" : "n/a"}`))
			So(err, ShouldBeNil)
			_, ok := stats.IntegratedLUFS()
			So(ok, ShouldBeFalse)
		})
	})
}

func TestParseProbe(t *testing.T) {
	Convey("ParseProbe", t, func() {
		Convey("带音频的视频", func() {
			result, err := ParseProbe([]byte(`{
				"streams": [
					{"index": 0, "codec_type": "video", "codec_name": "h264", "width": 1080, "height": 1920},
					{"index": 1, "codec_type": "audio", "codec_name": "aac", "channels": 2}
				],
				"format": {"duration": "12.480000", "nb_streams": 2}
			}`))
			So(err, ShouldBeNil)
			So(result.HasVideo(), ShouldBeTrue)
			So(result.HasAudio(), ShouldBeTrue)
			So(result.DurationSeconds(), ShouldAlmostEqual, 12.48, 0.0001)
		})

		Convey("无音频且容器无时长时取流时长", func() {
			result, err := ParseProbe([]byte(`{
				"streams": [{"index": 0, "codec_type": "video", "duration": "9.5"}],
				"format": {"duration": "N/A"}
			}`))
			So(err, ShouldBeNil)
			So(result.HasAudio(), ShouldBeFalse)
			So(result.DurationSeconds(), ShouldAlmostEqual, 9.5, 0.0001)
		})

		Convey("非法 JSON", func() {
			_, err := ParseProbe([]byte("not json"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestExecError(t *testing.T) {
	Convey("ExecError", t, func() {
		err := &ExecError{Op: "ffmpeg", Err: errors.New("exit status 1"), Stderr: strings.Repeat("x", 900) + "END"}

		Convey("Tail 截断到末尾", func() {
			tail := err.Tail(500)
			So(len(tail), ShouldEqual, 500)
			So(strings.HasSuffix(tail, "END"), ShouldBeTrue)
		})

		Convey("Unwrap", func() {
			So(errors.Unwrap(err).Error(), ShouldEqual, "exit status 1")
		})

		Convey("TailString 按 rune 截取", func() {
			So(TailString("混音失败", 2), ShouldEqual, "失败")
			So(TailString("abc", 10), ShouldEqual, "abc")
			So(TailString("abc", 0), ShouldEqual, "")
		})
	})
}

func TestClientRespectsCancelledContext(t *testing.T) {
	Convey("已取消的 context 不会启动进程", t, func() {
		c := NewClient(Options{MaxConcurrent: 1})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// 占满信号量，Acquire 只能因 ctx 取消而返回
		So(c.sem.Acquire(context.Background(), 1), ShouldBeNil)
		defer c.sem.Release(1)

		err := c.Run(ctx, "-version")
		var execErr *ExecError
		So(errors.As(err, &execErr), ShouldBeTrue)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}
