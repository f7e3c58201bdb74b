package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"vibesync/internal/pkg/mixer"
	"vibesync/internal/server"
	"vibesync/internal/service"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Mix a music file into a local video",
	Long: `Run the loudness-aware merge on local files without starting the server.

Segments may be given inline as JSON or as a path to a JSON file.`,
	RunE: runMerge,
}

var mergeOpts struct {
	video             string
	music             string
	output            string
	mode              string
	segments          string
	keepOriginalAudio bool
	fadeIn            float64
	fadeOut           float64
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	flags := mergeCmd.Flags()
	flags.StringVar(&mergeOpts.video, "video", "", "input video path")
	flags.StringVar(&mergeOpts.music, "music", "", "input music path (wav/mp3)")
	flags.StringVarP(&mergeOpts.output, "output", "o", "merged.mp4", "output video path")
	flags.StringVar(&mergeOpts.mode, "mode", "", "mix mode (social/background/balanced/feature)")
	flags.StringVar(&mergeOpts.segments, "segments", "", "segments JSON or path to a JSON file")
	flags.BoolVar(&mergeOpts.keepOriginalAudio, "keep-original-audio", true, "keep the video's own audio")
	flags.Float64Var(&mergeOpts.fadeIn, "fade-in", -1, "music fade-in seconds (0-3)")
	flags.Float64Var(&mergeOpts.fadeOut, "fade-out", -1, "music fade-out seconds (0-3)")

	_ = mergeCmd.MarkFlagRequired("video")
	_ = mergeCmd.MarkFlagRequired("music")
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if err := cfg.ValidateCore(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	opts, err := buildMixOptions(cfg.Mix.DefaultMode, cfg.Mix.FadeIn, cfg.Mix.FadeOut)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 离线合成只读写本地文件，不经过资源仓库
	merger := server.NewMergeService(cfg, nil, server.NewFFmpegClient(&cfg.Media), nil)
	report, err := merger.MergeFiles(ctx, mergeOpts.video, mergeOpts.music, mergeOpts.output, opts)
	if err != nil {
		return err
	}

	log.Info().Str("output", mergeOpts.output).Msg("合成完成")
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, reportRows(mergeOpts.output, opts, report), 1))
	return nil
}

func buildMixOptions(defaultMode string, defaultFadeIn, defaultFadeOut float64) (service.MixOptions, error) {
	modeValue := mergeOpts.mode
	if modeValue == "" {
		modeValue = defaultMode
	}
	mode, err := mixer.ParseMixMode(modeValue)
	if err != nil {
		return service.MixOptions{}, err
	}

	fadeIn, fadeOut := mergeOpts.fadeIn, mergeOpts.fadeOut
	if fadeIn < 0 {
		fadeIn = defaultFadeIn
	}
	if fadeOut < 0 {
		fadeOut = defaultFadeOut
	}
	if err := service.ValidateFade(fadeIn, fadeOut); err != nil {
		return service.MixOptions{}, err
	}

	segments, err := loadSegments(mergeOpts.segments)
	if err != nil {
		return service.MixOptions{}, err
	}

	return service.MixOptions{
		Mode:              mode,
		KeepOriginalAudio: mergeOpts.keepOriginalAudio,
		FadeIn:            fadeIn,
		FadeOut:           fadeOut,
		Segments:          segments,
	}, nil
}

// loadSegments 参数是已存在的文件时读取文件内容
func loadSegments(value string) ([]mixer.Segment, error) {
	if value == "" {
		return nil, nil
	}
	if info, err := os.Stat(value); err == nil && !info.IsDir() {
		data, err := os.ReadFile(value)
		if err != nil {
			return nil, fmt.Errorf("read segments file: %w", err)
		}
		value = string(data)
	}
	return mixer.ParseSegments(value), nil
}

func reportRows(output string, opts service.MixOptions, report *service.MergeReport) [][]string {
	return [][]string{
		{"output", output},
		{"mix mode", string(opts.Mode)},
		{"video duration (s)", formatFloat(report.VideoDuration)},
		{"video has audio", strconv.FormatBool(report.VideoHasAudio)},
		{"original LUFS", formatFloat(report.OriginalLUFS)},
		{"music LUFS", formatFloat(report.MusicLUFS)},
		{"breakpoints", strconv.Itoa(len(report.Curve.Breakpoints))},
		{"ducking", strconv.FormatBool(report.Graph.Ducking)},
		{"fallback graph", strconv.FormatBool(report.UsedFallback)},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
