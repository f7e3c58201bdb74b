package credit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vibesync/internal/config"
	"vibesync/internal/pkg/cache"
	"vibesync/internal/pkg/mongodb"
)

// ErrInsufficientCredits 余额不足
var ErrInsufficientCredits = errors.New("insufficient credits")

// Store 积分存储
// 所有实现都必须保证 Deduct 的原子性：余额为 0 时不会扣成负数
type Store interface {
	// Balance 查询余额，账户不存在时 found 为 false
	Balance(ctx context.Context, userID string) (credits int, found bool, err error)

	// Ensure 账户不存在时以 initial 创建，返回当前余额
	Ensure(ctx context.Context, userID string, initial int) (int, error)

	// Deduct 扣减 1 积分，余额不足返回 ErrInsufficientCredits
	Deduct(ctx context.Context, userID string) (remaining int, err error)

	// Add 增加积分（账户不存在时创建），返回新余额
	Add(ctx context.Context, userID string, amount int) (int, error)

	// MarkEvent 记录已处理的支付事件，首次记录返回 true
	MarkEvent(ctx context.Context, eventID string) (bool, error)
}

// eventRetention 支付事件去重窗口
const eventRetention = 30 * 24 * time.Hour

// NewStore 根据配置选择积分存储
func NewStore(cfg *config.CreditsConfig, redisCache *cache.RedisCache, mongoClient *mongodb.Client) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		if redisCache == nil {
			return nil, fmt.Errorf("credits backend redis requires redis connection")
		}
		return NewRedisStore(redisCache.Client()), nil
	case "mongo":
		if mongoClient == nil {
			return nil, fmt.Errorf("credits backend mongo requires mongo connection")
		}
		return NewMongoStore(mongoClient.Database()), nil
	default:
		return nil, fmt.Errorf("unsupported credits backend: %s", cfg.Backend)
	}
}
