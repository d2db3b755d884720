package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"school-health/config"
)

// Client Redis 客户端封装
// 用于 Token 黑名单、登录限流，以及多实例之间的数据变更广播
type Client struct {
	rdb     *goredis.Client
	channel string
	logger  *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, channel: cfg.Channel, logger: logger}, nil
}

// ── Token 黑名单 ──

const blacklistPrefix = "ytth:token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 限流 ──

// CheckRateLimit 滑动窗口限流：窗口内请求数未超过 limit 时返回 true
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now().UnixNano()
	windowStart := now - window.Nanoseconds()

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	card := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now), Member: now})
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return card.Val() < int64(limit), nil
}

// ── 数据变更广播 ──

// PublishChange 广播某个集合已被写入，其他实例收到后重新读取
func (c *Client) PublishChange(ctx context.Context, collection string) error {
	return c.rdb.Publish(ctx, c.channel, collection).Err()
}

// SubscribeChanges 订阅集合变更消息，返回取消订阅函数
func (c *Client) SubscribeChanges(ctx context.Context, fn func(collection string)) (func(), error) {
	ps := c.rdb.Subscribe(ctx, c.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("订阅频道 %s 失败: %w", c.channel, err)
	}

	done := make(chan struct{})
	go func() {
		ch := ps.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				fn(msg.Payload)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		if err := ps.Close(); err != nil {
			c.logger.Warn("关闭 Redis 订阅失败", zap.Error(err))
		}
	}, nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
