package expopush

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/FoxTrove/bob-university-sub003/internal/config"
	"github.com/FoxTrove/bob-university-sub003/internal/notify"
)

// ==================== 常量定义 ====================

const (
	providerName = "expo"

	ticketStatusOK = "ok"

	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
	contentTypeJSON     = "application/json"
)

// ==================== 响应结构 ====================

// ticket 服务商返回的单条投递凭据
type ticket struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// sendResponse 服务商批量发送响应
// 正常形态带 data 数组;降级形态可能只有一个空壳 JSON
type sendResponse struct {
	Data []ticket `json:"data"`
}

// ==================== 客户端 ====================

// Client 推送服务商 HTTP 客户端
// 实现 notify.Sender,每次调用对应一个批次(上限由 Dispatcher 控制)
type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
}

// NewClient 创建推送服务商客户端
// 单次外呼超时由 Dispatcher 的调用上下文控制,这里不再叠加
func NewClient(pushConfig config.Push) *Client {
	return &Client{
		endpoint:    pushConfig.Endpoint,
		accessToken: pushConfig.AccessToken,
		httpClient:  &http.Client{},
	}
}

// Name 返回服务商标识
func (client *Client) Name() string { return providerName }

// Send 发送一个批次的消息
// 返回逐条结果;响应缺少结构化逐条结果时返回 nil 切片,
// 由上层按整批已发送处理
func (client *Client) Send(ctx context.Context, messages []notify.PushMessage) ([]notify.DeliveryOutcome, error) {
	responseBody, err := client.postMessages(ctx, messages)
	if err != nil {
		return nil, err
	}

	return parseOutcomes(messages, responseBody), nil
}

// postMessages 执行批量发送的 HTTP 调用
func (client *Client) postMessages(ctx context.Context, messages []notify.PushMessage) ([]byte, error) {
	payload, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("marshal push messages failed: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build push request failed: %w", err)
	}

	request.Header.Set(headerContentType, contentTypeJSON)
	if client.accessToken != "" {
		request.Header.Set(headerAuthorization, "Bearer "+client.accessToken)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("push provider unreachable: %w", err)
	}
	defer response.Body.Close()

	responseBody, _ := io.ReadAll(response.Body)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("push provider returned status %d: %s", response.StatusCode, string(responseBody))
	}

	return responseBody, nil
}

// parseOutcomes 解析逐条投递结果
// data 数组缺失或与消息条数对不上时返回 nil(降级形态)
func parseOutcomes(messages []notify.PushMessage, responseBody []byte) []notify.DeliveryOutcome {
	var parsed sendResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return nil
	}

	if len(parsed.Data) != len(messages) {
		return nil
	}

	outcomes := make([]notify.DeliveryOutcome, len(messages))
	for index, entry := range parsed.Data {
		status := notify.OutcomeFailed
		if entry.Status == ticketStatusOK {
			status = notify.OutcomeOK
		}

		outcomes[index] = notify.DeliveryOutcome{
			Token:  messages[index].To,
			Status: status,
		}
	}

	return outcomes
}
