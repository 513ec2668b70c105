package notify

import (
	"context"
	"log"
	"time"

	"github.com/FoxTrove/bob-university-sub003/internal/directory"
)

// ==================== 常量定义 ====================

const (
	// maxMessagesPerCall 推送服务商单次调用的消息上限
	// 这是服务商文档规定的硬性限制,不是可调参数
	maxMessagesPerCall = 100

	// defaultCallTimeout 单次外呼的默认超时
	// 超时按传输失败处理,计入 failed
	defaultCallTimeout = 10 * time.Second

	deepLinkDataKey = "deep_link"
)

// ==================== 接口定义 ====================

// Sender 推送投递出口
// 返回逐条投递结果;服务商响应缺少结构化逐条结果时返回 nil 结果切片,
// 由 Dispatcher 按"整批已发送"乐观计数
type Sender interface {
	Name() string
	Send(ctx context.Context, messages []PushMessage) ([]DeliveryOutcome, error)
}

// ==================== Dispatcher 结构 ====================

// Dispatcher 推送扇出分发器
// Dispatch 永不返回错误:通知失败绝不能反过来拖垮触发它的业务操作
type Dispatcher struct {
	tokens      directory.TokenStore
	sender      Sender
	callTimeout time.Duration
}

// NewDispatcher 创建分发器实例
func NewDispatcher(tokens directory.TokenStore, sender Sender, callTimeout time.Duration) *Dispatcher {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}

	return &Dispatcher{
		tokens:      tokens,
		sender:      sender,
		callTimeout: callTimeout,
	}
}

// ==================== 公共分发接口 ====================

// Dispatch 向收件人集合的所有设备分发通知
// 令牌查询一次完成;消息按令牌展开;分批顺序发送,批次间失败互相隔离
func (dispatcher *Dispatcher) Dispatch(ctx context.Context, recipients []string, content Content) DispatchResult {
	if len(recipients) == 0 {
		return DispatchResult{}
	}

	tokens, err := dispatcher.tokens.TokensForUsers(ctx, recipients)
	if err != nil {
		// 令牌都查不到时无消息可发,结果为空而不是错误
		log.Printf("[DISPATCHER] 批量查询令牌失败: %v", err)
		return DispatchResult{}
	}

	// 很多用户没有注册设备,零令牌是正常情况,不触碰服务商
	if len(tokens) == 0 {
		return DispatchResult{}
	}

	messages := dispatcher.buildMessages(tokens, content)

	return dispatcher.sendInBatches(ctx, messages)
}

// ==================== 消息构建 ====================

// buildMessages 按令牌展开消息
// 一个令牌一条消息:三台设备的用户收到三条
func (dispatcher *Dispatcher) buildMessages(tokens []directory.PushToken, content Content) []PushMessage {
	messages := make([]PushMessage, 0, len(tokens))

	for _, token := range tokens {
		messages = append(messages, PushMessage{
			To:    token.Token,
			Title: content.Title,
			Body:  content.Body,
			Data:  map[string]string{deepLinkDataKey: content.DeepLink},
		})
	}

	return messages
}

// ==================== 分批发送 ====================

// sendInBatches 顺序发送所有批次并聚合结果
// 单批失败只影响该批的计数,后续批次照常尝试
func (dispatcher *Dispatcher) sendInBatches(ctx context.Context, messages []PushMessage) DispatchResult {
	var result DispatchResult

	for start := 0; start < len(messages); start += maxMessagesPerCall {
		end := start + maxMessagesPerCall
		if end > len(messages) {
			end = len(messages)
		}

		dispatcher.sendSingleBatch(ctx, messages[start:end], &result)
	}

	return result
}

// sendSingleBatch 发送单个批次并按结果计数
func (dispatcher *Dispatcher) sendSingleBatch(ctx context.Context, batch []PushMessage, result *DispatchResult) {
	callContext, cancel := context.WithTimeout(ctx, dispatcher.callTimeout)
	defer cancel()

	outcomes, err := dispatcher.sender.Send(callContext, batch)
	if err != nil {
		// 传输层失败:整批计为 failed,不向上抛
		log.Printf("[DISPATCHER] 批次发送失败(%d 条): %v", len(batch), err)
		result.Failed += len(batch)
		return
	}

	dispatcher.tallyOutcomes(batch, outcomes, result)
}

// tallyOutcomes 把逐条结果汇入聚合计数
// 服务商响应缺少逐条结果(或条数对不上)时按整批已发送乐观计数,
// 这是刻意保留的尽力而为回退,不构成送达保证
func (dispatcher *Dispatcher) tallyOutcomes(batch []PushMessage, outcomes []DeliveryOutcome, result *DispatchResult) {
	if len(outcomes) != len(batch) {
		result.Sent += len(batch)
		result.Unconfirmed += len(batch)
		return
	}

	for _, outcome := range outcomes {
		if outcome.Status == OutcomeOK {
			result.Sent++
		} else {
			result.Failed++
		}
	}
}
