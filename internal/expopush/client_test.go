package expopush

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/FoxTrove/bob-university-sub003/internal/config"
	"github.com/FoxTrove/bob-university-sub003/internal/notify"
)

func testMessages(tokens ...string) []notify.PushMessage {
	messages := make([]notify.PushMessage, len(tokens))
	for index, token := range tokens {
		messages[index] = notify.PushMessage{
			To:    token,
			Title: "New reaction",
			Body:  "Someone reacted 🔥 to your post",
			Data:  map[string]string{"deep_link": "/community/post1"},
		}
	}
	return messages
}

// 请求体为 JSON 消息数组, 携带鉴权头, 逐条票据按序解析
func TestClientSendStructured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPost {
			t.Errorf("发送应为 POST, got %s", request.Method)
		}
		if request.Header.Get("Authorization") != "Bearer secret-token" {
			t.Errorf("鉴权头不对: %s", request.Header.Get("Authorization"))
		}

		var received []notify.PushMessage
		if err := json.NewDecoder(request.Body).Decode(&received); err != nil {
			t.Errorf("请求体应为消息数组: %v", err)
		}
		if len(received) != 2 || received[0].To != "tokA" {
			t.Errorf("消息数组不对: %+v", received)
		}

		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{"data":[{"status":"ok"},{"status":"error","message":"DeviceNotRegistered"}]}`))
	}))
	defer server.Close()

	client := NewClient(config.Push{Endpoint: server.URL, AccessToken: "secret-token"})

	outcomes, err := client.Send(context.Background(), testMessages("tokA", "tokB"))
	if err != nil {
		t.Fatalf("Send 返回错误: %v", err)
	}

	if len(outcomes) != 2 {
		t.Fatalf("应返回逐条结果, got %d", len(outcomes))
	}
	if outcomes[0].Token != "tokA" || outcomes[0].Status != notify.OutcomeOK {
		t.Errorf("第一条结果不对: %+v", outcomes[0])
	}
	if outcomes[1].Token != "tokB" || outcomes[1].Status != notify.OutcomeFailed {
		t.Errorf("第二条结果不对: %+v", outcomes[1])
	}
}

// 响应缺少逐条票据时返回 nil 结果且不报错(降级形态)
func TestClientSendUnstructuredResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(config.Push{Endpoint: server.URL})

	outcomes, err := client.Send(context.Background(), testMessages("tokA", "tokB"))
	if err != nil {
		t.Fatalf("降级形态不应报错: %v", err)
	}
	if outcomes != nil {
		t.Errorf("降级形态应返回 nil 结果, got %v", outcomes)
	}
}

// 票据条数与消息条数对不上时同样按降级处理
func TestClientSendTicketCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte(`{"data":[{"status":"ok"}]}`))
	}))
	defer server.Close()

	client := NewClient(config.Push{Endpoint: server.URL})

	outcomes, err := client.Send(context.Background(), testMessages("tokA", "tokB"))
	if err != nil {
		t.Fatalf("条数不符不应报错: %v", err)
	}
	if outcomes != nil {
		t.Errorf("条数不符应返回 nil 结果, got %v", outcomes)
	}
}

// 非 2xx 响应作为传输失败上抛
func TestClientSendHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusTooManyRequests)
		writer.Write([]byte("rate limited"))
	}))
	defer server.Close()

	client := NewClient(config.Push{Endpoint: server.URL})

	_, err := client.Send(context.Background(), testMessages("tokA"))
	if err == nil {
		t.Fatal("非 2xx 应返回错误")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("错误应包含状态码: %v", err)
	}
}

// 未配置访问令牌时不携带鉴权头
func TestClientSendWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Header.Get("Authorization") != "" {
			t.Errorf("未配置令牌不应有鉴权头: %s", request.Header.Get("Authorization"))
		}
		writer.Write([]byte(`{"data":[{"status":"ok"}]}`))
	}))
	defer server.Close()

	client := NewClient(config.Push{Endpoint: server.URL})

	if _, err := client.Send(context.Background(), testMessages("tokA")); err != nil {
		t.Fatalf("Send 返回错误: %v", err)
	}
}
