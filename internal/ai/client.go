package ai

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"vibesync/internal/ai/chain"
	"vibesync/internal/config"
	"vibesync/internal/model/analysis"
)

// Client AI 能力层客户端
// 职责: 封装所有 AI 能力，提供统一接口
type Client struct {
	cfg           *config.AIConfig
	analysisChain *chain.VideoAnalysisChain
}

// NewClient 创建 AI 客户端
func NewClient(ctx context.Context, cfg *config.AIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		log.Warn().Msg("AI API key not configured, video analysis requests will fail")
	}

	analysisChain, err := chain.NewVideoAnalysisChain(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create video analysis chain: %w", err)
	}

	return &Client{
		cfg:           cfg,
		analysisChain: analysisChain,
	}, nil
}

// AnalyzeVideo 分析视频，生成配乐方案
func (c *Client) AnalyzeVideo(ctx context.Context, req *chain.VideoAnalysisRequest) (*analysis.VideoAnalysis, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	return c.analysisChain.Run(ctx, req)
}
