package mixer

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"vibesync/internal/pkg/ffmpeg"
)

func TestCompose(t *testing.T) {
	base := GraphParams{
		Mode:          ModeBalanced,
		VideoDuration: 12,
		FadeIn:        0.5,
		FadeOut:       1,
		Curve:         VolumeCurve{Flat: 0.794},
	}

	Convey("Compose", t, func() {
		Convey("有原声且保留时使用 sidechain + amix", func() {
			p := base
			p.VideoHasAudio = true
			p.KeepOriginalAudio = true
			g := Compose(p)

			So(g.Ducking, ShouldBeTrue)
			So(g.Maps, ShouldResemble, []string{"0:v", "[out]"})
			So(g.FilterComplex, ShouldEqual,
				"[0:a]asplit=2[orig][sc];"+
					"[1:a]atrim=0:12,asetpts=PTS-STARTPTS,afade=t=in:st=0:d=0.5,afade=t=out:st=11:d=1,volume=0.794[music_raw];"+
					"[music_raw][sc]sidechaincompress=threshold=0.06:ratio=2.5:attack=250:release=900[music_ducked];"+
					"[orig][music_ducked]amix=inputs=2:duration=first:normalize=0[out]")
		})

		Convey("滤镜顺序固定：裁剪、淡入、淡出、音量", func() {
			p := base
			p.VideoHasAudio = true
			p.KeepOriginalAudio = true
			f := Compose(p).FilterComplex
			trim := strings.Index(f, "atrim=")
			fadeIn := strings.Index(f, "afade=t=in")
			fadeOut := strings.Index(f, "afade=t=out")
			volume := strings.Index(f, "volume=")
			duck := strings.Index(f, "sidechaincompress")
			mix := strings.Index(f, "amix")
			So(trim, ShouldBeLessThan, fadeIn)
			So(fadeIn, ShouldBeLessThan, fadeOut)
			So(fadeOut, ShouldBeLessThan, volume)
			So(volume, ShouldBeLessThan, duck)
			So(duck, ShouldBeLessThan, mix)
		})

		Convey("视频无音频时只输出音乐", func() {
			p := base
			p.VideoHasAudio = false
			p.KeepOriginalAudio = true
			g := Compose(p)
			So(g.Ducking, ShouldBeFalse)
			So(g.Maps, ShouldResemble, []string{"0:v", "[music]"})
			So(g.FilterComplex, ShouldNotContainSubstring, "sidechaincompress")
			So(g.FilterComplex, ShouldNotContainSubstring, "[0:a]")
			So(strings.HasSuffix(g.FilterComplex, "[music]"), ShouldBeTrue)
		})

		Convey("不保留原声时丢弃视频音频", func() {
			p := base
			p.VideoHasAudio = true
			p.KeepOriginalAudio = false
			g := Compose(p)
			So(g.Ducking, ShouldBeFalse)
			So(g.FilterComplex, ShouldNotContainSubstring, "[0:a]")
		})

		Convey("淡出起点不小于 0", func() {
			p := base
			p.VideoDuration = 0.6
			p.FadeOut = 2
			So(Compose(p).FilterComplex, ShouldContainSubstring, "afade=t=out:st=0:d=2")
		})

		Convey("淡入淡出为 0 时不生成 afade", func() {
			p := base
			p.VideoDuration = 10
			p.FadeIn = 0
			p.FadeOut = 0
			p.Curve = VolumeCurve{Flat: 1}
			f := Compose(p).FilterComplex
			So(f, ShouldEqual, "[1:a]atrim=0:10,asetpts=PTS-STARTPTS,volume=1[music]")
			So(f, ShouldNotContainSubstring, "afade=t=in")
			So(f, ShouldNotContainSubstring, "afade=t=out")
		})

		Convey("只关闭淡入时保留淡出", func() {
			p := base
			p.FadeIn = 0
			f := ComposeFallback(p).FilterComplex
			So(f, ShouldNotContainSubstring, "afade=t=in")
			So(f, ShouldContainSubstring, "afade=t=out:st=11:d=1")
		})

		Convey("曲线使用逐帧求值", func() {
			p := base
			p.Curve = VolumeCurve{Breakpoints: []Breakpoint{{Until: 4, Gain: 0.5}, {Until: 12, Gain: 1.2}}}
			So(Compose(p).FilterComplex, ShouldContainSubstring, "volume='if(lt(t,4),0.5,1.2)':eval=frame[music]")
		})

		Convey("ducking 参数跟随模式", func() {
			for _, mode := range Modes() {
				p := base
				p.VideoHasAudio = true
				p.KeepOriginalAudio = true
				p.Mode = mode
				So(Compose(p).FilterComplex, ShouldContainSubstring, "sidechaincompress="+mode.Ducking().String())
			}
		})
	})

	Convey("ComposeFallback", t, func() {
		p := base
		p.VideoHasAudio = true
		p.KeepOriginalAudio = true
		g := ComposeFallback(p)
		So(g.Ducking, ShouldBeFalse)
		So(g.FilterComplex, ShouldNotContainSubstring, "sidechaincompress")
		So(g.FilterComplex, ShouldNotContainSubstring, "amix")
		So(g.FilterComplex, ShouldContainSubstring, "volume=0.794")
		So(g.Maps, ShouldResemble, []string{"0:v", "[music]"})
	})

	Convey("Graph.Args", t, func() {
		args := Compose(base).Args("in.mp4", "music.mp3", "out.mp4")
		joined := strings.Join(args, " ")
		So(joined, ShouldContainSubstring, "-i in.mp4 -i music.mp3 -filter_complex")
		So(joined, ShouldContainSubstring, "-map 0:v -map [music]")
		So(joined, ShouldContainSubstring, "-c:v copy -c:a aac -b:a 256k -shortest -y out.mp4")
		So(args[len(args)-1], ShouldEqual, "out.mp4")
	})
}

type fakeMeter struct {
	stats *ffmpeg.LoudnormStats
	err   error
	calls int
}

func (f *fakeMeter) MeasureLoudness(ctx context.Context, path string) (*ffmpeg.LoudnormStats, error) {
	f.calls++
	return f.stats, f.err
}

type fakeProber struct {
	result *ffmpeg.ProbeResult
	err    error
}

func (f *fakeProber) Probe(ctx context.Context, path string) (*ffmpeg.ProbeResult, error) {
	return f.result, f.err
}

func TestAnalyzer(t *testing.T) {
	ctx := context.Background()
	withAudio := &ffmpeg.ProbeResult{Streams: []ffmpeg.Stream{{CodecType: "audio"}}}

	Convey("Analyzer", t, func() {
		Convey("正常测量", func() {
			a := NewAnalyzer(&fakeProber{result: withAudio}, &fakeMeter{stats: &ffmpeg.LoudnormStats{InputI: "-16.5"}})
			So(a.Measure(ctx, "music.mp3"), ShouldEqual, -16.5)
		})

		Convey("无音频流返回静音值且不调用测量", func() {
			meter := &fakeMeter{}
			a := NewAnalyzer(&fakeProber{result: &ffmpeg.ProbeResult{}}, meter)
			So(a.Measure(ctx, "silent.mp4"), ShouldEqual, SilentLUFS)
			So(meter.calls, ShouldEqual, 0)
		})

		Convey("测量失败返回保守值", func() {
			a := NewAnalyzer(&fakeProber{result: withAudio}, &fakeMeter{err: errors.New("exit status 1")})
			So(a.Measure(ctx, "broken.mp3"), ShouldEqual, FallbackLUFS)
		})

		Convey("输出无法解析返回保守值", func() {
			a := NewAnalyzer(&fakeProber{result: withAudio}, &fakeMeter{stats: &ffmpeg.LoudnormStats{InputI: "garbage"}})
			So(a.Measure(ctx, "weird.mp3"), ShouldEqual, FallbackLUFS)
		})

		Convey("-inf 视为静音", func() {
			a := NewAnalyzer(&fakeProber{result: withAudio}, &fakeMeter{stats: &ffmpeg.LoudnormStats{InputI: "-inf"}})
			So(a.Measure(ctx, "zeros.wav"), ShouldEqual, SilentLUFS)
		})

		Convey("探测失败返回保守值", func() {
			a := NewAnalyzer(&fakeProber{err: errors.New("no such file")}, &fakeMeter{})
			So(a.Measure(ctx, "missing.mp3"), ShouldEqual, FallbackLUFS)
		})

		Convey("结果总是有限值", func() {
			for _, in := range []string{"", "nan", "+inf", "-inf", "-23.0", "abc"} {
				a := NewAnalyzer(&fakeProber{result: withAudio}, &fakeMeter{stats: &ffmpeg.LoudnormStats{InputI: in}})
				v := a.Measure(ctx, "x")
				So(math.IsNaN(v) || math.IsInf(v, 0), ShouldBeFalse)
			}
		})
	})
}
