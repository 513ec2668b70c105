package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/FoxTrove/bob-university-sub003/internal/notify"

	redis "github.com/redis/go-redis/v9"
)

// ==================== 常量定义 ====================

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 500

	redisKeyFormat = "%s:dispatch:%s"
	redisTimesKey  = "%s:dispatch:times"

	fieldKey         = "key"
	fieldKind        = "kind"
	fieldSubject     = "subject_id"
	fieldTitle       = "title"
	fieldRecipients  = "recipients"
	fieldTokenCount  = "token_count"
	fieldSent        = "sent"
	fieldFailed      = "failed"
	fieldUnconfirmed = "unconfirmed"
	fieldCreatedAt   = "created_at"
)

// ==================== Lua 脚本 ====================

// trimRecordsScript 记录裁剪脚本
// 原子性地删除超出上限的旧记录,保证时间线与记录本体一致
var trimRecordsScript = redis.NewScript(`
local sortedSetKey = KEYS[1]
local maxKeepCount = tonumber(ARGV[1])
if maxKeepCount <= 0 then return 0 end

local totalCount = redis.call("ZCARD", sortedSetKey)
if totalCount <= maxKeepCount then return 0 end

local excessCount = totalCount - maxKeepCount
local oldRecordKeys = redis.call("ZRANGE", sortedSetKey, 0, excessCount - 1)

for i, recordKey in ipairs(oldRecordKeys) do
  redis.call("DEL", recordKey)
end

redis.call("ZREMRANGEBYRANK", sortedSetKey, 0, excessCount - 1)
return excessCount
`)

// ==================== 数据结构 ====================

// RedisStore 基于 Redis 的分发记录存储
// Hash 存记录详情,ZSet 按时间维护时间线,Lua 脚本做原子裁剪
type RedisStore struct {
	client         *redis.Client
	namespace      string
	maxKeepRecords int64
	ttl            time.Duration
	// timeProvider 时间源提供者,便于测试时注入 mock 时间
	timeProvider func() time.Time
}

// NewRedisStore 创建 Redis 存储实例
func NewRedisStore(client *redis.Client, namespace string, maxKeep int64, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:         client,
		namespace:      namespace,
		maxKeepRecords: maxKeep,
		ttl:            ttl,
		timeProvider:   time.Now,
	}
}

// SetTimeProvider 设置时间提供函数(主要用于测试)
func (store *RedisStore) SetTimeProvider(provider func() time.Time) {
	store.timeProvider = provider
}

// ==================== 核心方法 ====================

// SaveRecord 保存分发记录到 Redis
func (store *RedisStore) SaveRecord(ctx context.Context, record notify.Record) error {
	createdAt := store.getCreatedTimestamp(record.CreatedAt)
	hashKey := store.buildRecordHashKey(record.Key)
	hashData := buildHashData(record, createdAt)

	pipeline := store.client.TxPipeline()
	pipeline.HSet(ctx, hashKey, hashData)
	pipeline.Expire(ctx, hashKey, store.ttl)
	pipeline.ZAdd(ctx, store.buildTimesKey(), redis.Z{
		Score:  float64(createdAt),
		Member: hashKey,
	})

	if _, err := pipeline.Exec(ctx); err != nil {
		return fmt.Errorf("save dispatch record failed: %w", err)
	}

	return nil
}

// Trim 清理超出限制的旧记录
func (store *RedisStore) Trim(ctx context.Context) (int, error) {
	if store.maxKeepRecords <= 0 {
		return 0, nil
	}

	deletedCount, err := trimRecordsScript.Run(
		ctx,
		store.client,
		[]string{store.buildTimesKey()},
		store.maxKeepRecords,
	).Int()

	if err != nil {
		return 0, fmt.Errorf("trim dispatch records failed: %w", err)
	}

	return deletedCount, nil
}

// QueryRecords 按时间倒序查询最近的分发记录
func (store *RedisStore) QueryRecords(ctx context.Context, limit int64) ([]notify.Record, error) {
	limit = normalizeQueryLimit(limit)

	recordKeys, err := store.client.ZRevRange(ctx, store.buildTimesKey(), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("query dispatch timeline failed: %w", err)
	}

	return store.fetchRecords(ctx, recordKeys)
}

// ==================== 私有辅助方法 ====================

func (store *RedisStore) buildRecordHashKey(id string) string {
	return fmt.Sprintf(redisKeyFormat, store.namespace, id)
}

func (store *RedisStore) buildTimesKey() string {
	return fmt.Sprintf(redisTimesKey, store.namespace)
}

func (store *RedisStore) getCreatedTimestamp(recordCreatedAt int64) int64 {
	if recordCreatedAt != 0 {
		return recordCreatedAt
	}

	return store.timeProvider().Unix()
}

// fetchRecords 批量读取记录详情
// 读取失败或已被裁剪的记录直接跳过
func (store *RedisStore) fetchRecords(ctx context.Context, recordKeys []string) ([]notify.Record, error) {
	records := make([]notify.Record, 0, len(recordKeys))

	for _, recordKey := range recordKeys {
		hashData, err := store.client.HGetAll(ctx, recordKey).Result()
		if err != nil || len(hashData) == 0 {
			continue
		}

		records = append(records, parseHashData(hashData))
	}

	return records, nil
}

// buildHashData 把记录转换为 Hash 字段映射
func buildHashData(record notify.Record, createdAt int64) map[string]string {
	recipientsJSON, _ := json.Marshal(record.Recipients)

	return map[string]string{
		fieldKey:         record.Key,
		fieldKind:        string(record.Kind),
		fieldSubject:     record.SubjectID,
		fieldTitle:       record.Title,
		fieldRecipients:  string(recipientsJSON),
		fieldTokenCount:  strconv.Itoa(record.TokenCount),
		fieldSent:        strconv.Itoa(record.Sent),
		fieldFailed:      strconv.Itoa(record.Failed),
		fieldUnconfirmed: strconv.Itoa(record.Unconfirmed),
		fieldCreatedAt:   strconv.FormatInt(createdAt, 10),
	}
}

// parseHashData 把 Hash 字段映射还原为记录
func parseHashData(hashData map[string]string) notify.Record {
	var recipients []string
	_ = json.Unmarshal([]byte(hashData[fieldRecipients]), &recipients)

	record := notify.Record{
		Key:        hashData[fieldKey],
		Kind:       notify.EventKind(hashData[fieldKind]),
		SubjectID:  hashData[fieldSubject],
		Title:      hashData[fieldTitle],
		Recipients: recipients,
	}

	record.TokenCount, _ = strconv.Atoi(hashData[fieldTokenCount])
	record.Sent, _ = strconv.Atoi(hashData[fieldSent])
	record.Failed, _ = strconv.Atoi(hashData[fieldFailed])
	record.Unconfirmed, _ = strconv.Atoi(hashData[fieldUnconfirmed])
	record.CreatedAt, _ = strconv.ParseInt(hashData[fieldCreatedAt], 10, 64)

	return record
}

// normalizeQueryLimit 规范化查询条数
func normalizeQueryLimit(limit int64) int64 {
	if limit <= 0 {
		return defaultQueryLimit
	}

	if limit > maxQueryLimit {
		return maxQueryLimit
	}

	return limit
}
