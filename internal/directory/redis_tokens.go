package directory

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

// ==================== 常量定义 ====================

const (
	tokenKeyFormat = "%s:tokens:user:%s"
)

// ==================== Redis 令牌存储 ====================

// RedisTokenStore 基于 Redis 的设备令牌存储
// 每个用户一个 Set,成员为该用户注册过的所有设备令牌
type RedisTokenStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisTokenStore 创建 Redis 令牌存储实例
func NewRedisTokenStore(client *redis.Client, namespace string) *RedisTokenStore {
	return &RedisTokenStore{
		client:    client,
		namespace: namespace,
	}
}

// TokensForUsers 批量获取多个用户的全部设备令牌
// 使用 pipeline 把所有 SMEMBERS 合并为一次往返,避免 N+1 查询
func (store *RedisTokenStore) TokensForUsers(ctx context.Context, userIDs []string) ([]PushToken, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	pipeline := store.client.Pipeline()

	commands := make([]*redis.StringSliceCmd, len(userIDs))
	for index, userID := range userIDs {
		commands[index] = pipeline.SMembers(ctx, store.buildUserKey(userID))
	}

	if _, err := pipeline.Exec(ctx); err != nil {
		return nil, fmt.Errorf("batch read tokens failed: %w", err)
	}

	var tokens []PushToken
	for index, command := range commands {
		for _, token := range command.Val() {
			tokens = append(tokens, PushToken{
				UserID: userIDs[index],
				Token:  token,
			})
		}
	}

	return tokens, nil
}

// Register 注册设备令牌
// 重复注册是幂等操作(Set 语义)
func (store *RedisTokenStore) Register(ctx context.Context, userID string, token string) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	if token == "" {
		return ErrEmptyToken
	}

	if err := store.client.SAdd(ctx, store.buildUserKey(userID), token).Err(); err != nil {
		return fmt.Errorf("register token failed: %w", err)
	}

	return nil
}

// Unregister 注销设备令牌
// 令牌不存在时视为成功,注销行为保持幂等
func (store *RedisTokenStore) Unregister(ctx context.Context, userID string, token string) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	if token == "" {
		return ErrEmptyToken
	}

	if err := store.client.SRem(ctx, store.buildUserKey(userID), token).Err(); err != nil {
		return fmt.Errorf("unregister token failed: %w", err)
	}

	return nil
}

// buildUserKey 构建用户令牌集合的 Redis 键
func (store *RedisTokenStore) buildUserKey(userID string) string {
	return fmt.Sprintf(tokenKeyFormat, store.namespace, userID)
}
