package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	creditRepo "vibesync/internal/repository/credit"
)

var (
	ErrInsufficientCredits = creditRepo.ErrInsufficientCredits
	ErrInvalidSignature    = errors.New("无效的回调签名")
	ErrWebhookDisabled     = errors.New("未配置回调签名密钥")
	ErrInvalidEvent        = errors.New("无效的回调事件")
)

const (
	// CheckoutCompleted 支付完成事件类型
	CheckoutCompleted = "checkout.session.completed"
	// signatureTolerance 回调时间戳允许的偏差
	signatureTolerance = 5 * time.Minute
)

// WebhookStatus 回调处理结果
type WebhookStatus string

const (
	WebhookCredited  WebhookStatus = "credited"
	WebhookIgnored   WebhookStatus = "ignored"
	WebhookDuplicate WebhookStatus = "duplicate"
)

// PaymentEvent 支付回调事件
type PaymentEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			Metadata PaymentMetadata `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// PaymentMetadata 结算时附带的元数据，字段缺失时为空
type PaymentMetadata struct {
	UserID string `json:"user_id,omitempty"`
}

// WebhookResult 回调处理结果
type WebhookResult struct {
	EventID string        `json:"event_id"`
	Status  WebhookStatus `json:"status"`
	UserID  string        `json:"user_id,omitempty"`
	Credits int           `json:"credits,omitempty"`
}

// CreditService 积分服务
type CreditService interface {
	// Balance 查询余额，未知用户按注册赠送额度初始化
	Balance(ctx context.Context, userID string) (int, error)

	// Initialize 新用户初始化积分，已有账户保持不变
	Initialize(ctx context.Context, userID string) (int, error)

	// Deduct 扣减 1 积分
	Deduct(ctx context.Context, userID string) (int, error)

	// Refund 退还 1 积分
	Refund(ctx context.Context, userID string) (int, error)

	// HandleWebhook 校验签名并处理支付回调
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error)
}

// CreditConfig 积分服务配置
type CreditConfig struct {
	FreeOnSignup  int
	PerPurchase   int
	WebhookSecret string
}

type creditService struct {
	store creditRepo.Store
	cfg   CreditConfig
	now   func() time.Time
}

// NewCreditService 创建积分服务
func NewCreditService(store creditRepo.Store, cfg CreditConfig) CreditService {
	return &creditService{store: store, cfg: cfg, now: time.Now}
}

func (s *creditService) Balance(ctx context.Context, userID string) (int, error) {
	return s.store.Ensure(ctx, userID, s.cfg.FreeOnSignup)
}

func (s *creditService) Initialize(ctx context.Context, userID string) (int, error) {
	return s.store.Ensure(ctx, userID, s.cfg.FreeOnSignup)
}

func (s *creditService) Deduct(ctx context.Context, userID string) (int, error) {
	if _, err := s.store.Ensure(ctx, userID, s.cfg.FreeOnSignup); err != nil {
		return 0, err
	}
	return s.store.Deduct(ctx, userID)
}

func (s *creditService) Refund(ctx context.Context, userID string) (int, error) {
	return s.store.Add(ctx, userID, 1)
}

func (s *creditService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if s.cfg.WebhookSecret == "" {
		return nil, ErrWebhookDisabled
	}
	if err := VerifySignature(payload, signature, s.cfg.WebhookSecret, s.now()); err != nil {
		return nil, err
	}

	var event PaymentEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if event.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidEvent)
	}

	result := &WebhookResult{EventID: event.ID, Status: WebhookIgnored}
	if event.Type != CheckoutCompleted {
		return result, nil
	}
	userID := strings.TrimSpace(event.Data.Object.Metadata.UserID)
	if userID == "" {
		log.Warn().Str("event_id", event.ID).Msg("支付事件缺少 user_id，已忽略")
		return result, nil
	}
	result.UserID = userID

	first, err := s.store.MarkEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	if !first {
		result.Status = WebhookDuplicate
		return result, nil
	}

	credits, err := s.store.Add(ctx, userID, s.cfg.PerPurchase)
	if err != nil {
		log.Error().Err(err).Str("event_id", event.ID).Str("user_id", userID).Msg("支付到账失败")
		return nil, err
	}
	result.Status = WebhookCredited
	result.Credits = credits

	log.Info().
		Str("event_id", event.ID).
		Str("user_id", userID).
		Int("added", s.cfg.PerPurchase).
		Int("credits", credits).
		Msg("支付积分已到账")
	return result, nil
}

// VerifySignature 校验 "t=<unix>,v1=<hex>" 格式的 HMAC-SHA256 签名
// 签名内容为 "<t>.<payload>"
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	var (
		timestamp string
		sigs      []string
	)
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			sigs = append(sigs, value)
		}
	}
	if timestamp == "" || len(sigs) == 0 {
		return fmt.Errorf("%w: malformed header", ErrInvalidSignature)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
	}
	if math.Abs(now.Sub(time.Unix(ts, 0)).Seconds()) > signatureTolerance.Seconds() {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	expected := []byte(ComputeSignature(payload, timestamp, secret))
	for _, sig := range sigs {
		if hmac.Equal(expected, []byte(sig)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// ComputeSignature 计算回调签名
func ComputeSignature(payload []byte, timestamp, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
