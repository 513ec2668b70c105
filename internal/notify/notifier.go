package notify

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// ==================== Notifier ====================

// Notifier 事件通知统一入口
// 串联解析与分发,并对每次分发做尽力而为的留痕
type Notifier struct {
	resolver   *Resolver
	dispatcher *Dispatcher
	store      RecordStore
	// currentTime 时间源,便于测试时注入 mock 时间
	currentTime func() time.Time
}

// NewNotifier 创建通知入口实例
// store 可为 nil,此时跳过留痕
func NewNotifier(resolver *Resolver, dispatcher *Dispatcher, store RecordStore) *Notifier {
	return &Notifier{
		resolver:    resolver,
		dispatcher:  dispatcher,
		store:       store,
		currentTime: time.Now,
	}
}

// NotifyEvent 处理一次业务事件
// 返回分发ID与聚合结果;错误只来自校验或解析读失败,
// 投递层面的失败始终体现在计数里而不是错误里
func (notifier *Notifier) NotifyEvent(ctx context.Context, event NotificationEvent) (string, DispatchResult, error) {
	if err := event.Validate(); err != nil {
		return "", DispatchResult{}, err
	}

	resolution, err := notifier.resolver.Resolve(ctx, event)
	if err != nil {
		return "", DispatchResult{}, err
	}

	dispatchID := uuid.New().String()
	content := BuildContent(event, resolution.Snippet)
	result := notifier.dispatcher.Dispatch(ctx, resolution.Recipients, content)

	notifier.saveRecordIfAvailable(ctx, dispatchID, event, content, resolution.Recipients, result)

	return dispatchID, result, nil
}

// saveRecordIfAvailable 写分发留痕
// 留痕失败只记日志,绝不影响分发结果
func (notifier *Notifier) saveRecordIfAvailable(
	ctx context.Context,
	dispatchID string,
	event NotificationEvent,
	content Content,
	recipients []string,
	result DispatchResult,
) {
	if notifier.store == nil {
		return
	}

	record := Record{
		Key:         dispatchID,
		Kind:        event.Kind,
		SubjectID:   event.SubjectID,
		Title:       content.Title,
		Recipients:  recipients,
		TokenCount:  result.Sent + result.Failed,
		Sent:        result.Sent,
		Failed:      result.Failed,
		Unconfirmed: result.Unconfirmed,
		CreatedAt:   notifier.currentTime().Unix(),
	}

	if err := notifier.store.SaveRecord(ctx, record); err != nil {
		log.Printf("[NOTIFIER] 留痕写入失败: dispatch=%s, err=%v", dispatchID, err)
		return
	}

	if _, err := notifier.store.Trim(ctx); err != nil {
		log.Printf("[NOTIFIER] 留痕清理失败: %v", err)
	}
}
