package musicgen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	defaultLocation = "us-central1"
	defaultModel    = "lyria-002"
	cloudScope      = "https://www.googleapis.com/auth/cloud-platform"

	// TrackDurationSeconds lyria 每次生成的固定时长
	TrackDurationSeconds = 30.0
)

// Request 生成请求
type Request struct {
	Prompt         string
	NegativePrompt string
}

// Generator 音乐生成能力，返回 WAV 字节
type Generator interface {
	Generate(ctx context.Context, req Request) ([]byte, error)
}

// Config Vertex AI Lyria 配置
type Config struct {
	Project     string        // GCP 项目（必需，除非指定 Endpoint）
	Location    string        // 区域，默认 us-central1
	Model       string        // 模型，默认 lyria-002
	Endpoint    string        // 完整 predict 地址，覆盖 Project/Location/Model
	AccessToken string        // 静态令牌；为空时使用 Application Default Credentials
	Timeout     time.Duration // 单次请求超时
	HTTPClient  *http.Client  // 测试注入
}

// Client Vertex AI Lyria 客户端
// 参考: https://cloud.google.com/vertex-ai/generative-ai/docs/model-reference/lyria-music-generation
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient 创建音乐生成客户端
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		if cfg.Project == "" {
			return nil, errors.New("music generation project is required")
		}
		location := cfg.Location
		if location == "" {
			location = defaultLocation
		}
		model := cfg.Model
		if model == "" {
			model = defaultModel
		}
		endpoint = fmt.Sprintf(
			"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:predict",
			location, cfg.Project, location, model)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		var err error
		httpClient, err = authorizedClient(ctx, cfg.AccessToken)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Timeout > 0 {
		// 复制一份，避免修改调用方传入的共享 client
		clone := *httpClient
		clone.Timeout = cfg.Timeout
		httpClient = &clone
	}

	return &Client{endpoint: endpoint, httpClient: httpClient}, nil
}

func authorizedClient(ctx context.Context, accessToken string) (*http.Client, error) {
	if accessToken != "" {
		return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})), nil
	}
	client, err := google.DefaultClient(ctx, cloudScope)
	if err != nil {
		return nil, fmt.Errorf("load google default credentials: %w", err)
	}
	return client, nil
}

type predictInstance struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters map[string]any    `json:"parameters"`
}

type prediction struct {
	BytesBase64Encoded      string   `json:"bytesBase64Encoded"`
	MimeType                string   `json:"mimeType"`
	RAIMediaFilteredReasons []string `json:"raiMediaFilteredReasons"`
}

type predictResponse struct {
	Predictions []prediction `json:"predictions"`
	Error       *apiError    `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Generate 提交一次生成请求，返回 WAV 字节
// 失败统一返回 *GenerationError；内容策略拒绝可用 errors.Is(err, ErrPolicyRejection) 判断
func (c *Client) Generate(ctx context.Context, req Request) ([]byte, error) {
	body, err := json.Marshal(predictRequest{
		Instances: []predictInstance{{
			Prompt:         req.Prompt,
			NegativePrompt: req.NegativePrompt,
		}},
		Parameters: map[string]any{"sample_count": 1},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create predict request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	log.Debug().
		Int("prompt_len", len([]rune(req.Prompt))).
		Bool("has_negative", req.NegativePrompt != "").
		Msg("发送音乐生成请求")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &GenerationError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GenerationError{StatusCode: resp.StatusCode, Message: "read response", Err: err}
	}

	var parsed predictResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &GenerationError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("decode response: %s", truncate(string(respBody), 300)),
			Err:        err,
		}
	}

	if resp.StatusCode != http.StatusOK || parsed.Error != nil {
		msg := http.StatusText(resp.StatusCode)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, newGenerationError(resp.StatusCode, msg, nil)
	}

	return decodePredictions(parsed.Predictions)
}

func decodePredictions(predictions []prediction) ([]byte, error) {
	for _, p := range predictions {
		if p.BytesBase64Encoded == "" {
			continue
		}
		audio, err := base64.StdEncoding.DecodeString(p.BytesBase64Encoded)
		if err != nil {
			return nil, &GenerationError{StatusCode: http.StatusOK, Message: "decode audio", Err: err}
		}
		return audio, nil
	}

	for _, p := range predictions {
		if len(p.RAIMediaFilteredReasons) > 0 {
			return nil, &GenerationError{
				StatusCode: http.StatusOK,
				Message:    fmt.Sprintf("filtered: %v", p.RAIMediaFilteredReasons),
				Policy:     true,
			}
		}
	}
	return nil, &GenerationError{StatusCode: http.StatusOK, Message: "empty predictions"}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
