package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/FoxTrove/bob-university-sub003/internal/notify"
)

// ==================== 服务接口 ====================

// EventNotifier 事件通知入口接口
// 解耦 HTTP 层与业务实现
type EventNotifier interface {
	NotifyEvent(ctx context.Context, event notify.NotificationEvent) (string, notify.DispatchResult, error)
}

// ==================== Handler 处理器 ====================

// NotifyHandler 事件通知接口处理器
// 处理 POST /v1/notify 请求
type NotifyHandler struct {
	notifier EventNotifier
}

// NewNotifyHandler 创建事件通知处理器
func NewNotifyHandler(notifier EventNotifier) *NotifyHandler {
	return &NotifyHandler{notifier: notifier}
}

// notifyResponse 通知分发响应数据
type notifyResponse struct {
	DispatchID  string `json:"dispatch_id"`
	Sent        int    `json:"sent"`
	Failed      int    `json:"failed"`
	Unconfirmed int    `json:"unconfirmed"`
}

// ServeHTTP 实现 http.Handler 接口
// POST /v1/notify
func (handler *NotifyHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	setCORS(writer, "POST, OPTIONS")

	if request.Method == http.MethodOptions {
		return
	}

	if request.Method != http.MethodPost {
		writeError(writer, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := handler.handleNotifyRequest(writer, request); err != nil {
		log.Printf("[NOTIFY_HANDLER] 处理失败: %v", err)
	}
}

// handleNotifyRequest 处理通知请求的核心逻辑
func (handler *NotifyHandler) handleNotifyRequest(writer http.ResponseWriter, request *http.Request) error {
	event, err := parseEventBody(request)
	if err != nil {
		writeError(writer, "解析请求失败: "+err.Error(), http.StatusBadRequest)
		return err
	}

	dispatchID, result, err := handler.notifier.NotifyEvent(request.Context(), event)

	if notify.IsValidationError(err) {
		writeError(writer, "事件校验失败: "+err.Error(), http.StatusBadRequest)
		return err
	}

	if err != nil {
		writeError(writer, "事件处理失败: "+err.Error(), http.StatusInternalServerError)
		return err
	}

	// 部分或全部投递失败也是 200:投递失败不是传输层错误
	writeSuccess(writer, notifyResponse{
		DispatchID:  dispatchID,
		Sent:        result.Sent,
		Failed:      result.Failed,
		Unconfirmed: result.Unconfirmed,
	})

	return nil
}

// parseEventBody 解析请求体为业务事件
func parseEventBody(request *http.Request) (notify.NotificationEvent, error) {
	request.Body = http.MaxBytesReader(nil, request.Body, maxRequestBodySize)
	defer request.Body.Close()

	decoder := json.NewDecoder(request.Body)
	decoder.DisallowUnknownFields()

	var event notify.NotificationEvent
	if err := decoder.Decode(&event); err != nil {
		return notify.NotificationEvent{}, fmt.Errorf("JSON 解析失败: %w", err)
	}

	return event, nil
}
