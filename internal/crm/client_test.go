package crm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/FoxTrove/bob-university-sub003/internal/config"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.CRM{
		BaseURL: serverURL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
	})
}

// 联系人查询:路径、鉴权头和响应解析
func TestClientGetContact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/contacts/c1" {
			t.Errorf("请求路径不对: %s", request.URL.Path)
		}
		if request.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("鉴权头不对: %s", request.Header.Get("Authorization"))
		}

		writer.Header().Set("Content-Type", "application/json")
		json.NewEncoder(writer).Encode(Contact{ID: "c1", Email: "a@b.com", Tags: []string{"vip"}})
	}))
	defer server.Close()

	contact, err := newTestClient(server.URL).GetContact(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetContact 返回错误: %v", err)
	}
	if contact.ID != "c1" || !reflect.DeepEqual(contact.Tags, []string{"vip"}) {
		t.Errorf("联系人解析不对: %+v", contact)
	}
}

// 404 映射为 ErrContactNotFound
func TestClientGetContactNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetContact(context.Background(), "missing")
	if !errors.Is(err, ErrContactNotFound) {
		t.Errorf("404 应映射为 ErrContactNotFound, got %v", err)
	}
}

// 5xx 映射为 ErrUpstream
func TestClientUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetContact(context.Background(), "c1")
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("5xx 应映射为 ErrUpstream, got %v", err)
	}
}

// 标签回写:PUT 全量结果集
func TestClientUpdateTags(t *testing.T) {
	var received updateTagsRequest

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPut {
			t.Errorf("回写应为 PUT, got %s", request.Method)
		}
		if err := json.NewDecoder(request.Body).Decode(&received); err != nil {
			t.Errorf("请求体解析失败: %v", err)
		}
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := newTestClient(server.URL).UpdateTags(context.Background(), "c1", []string{"A", "C"})
	if err != nil {
		t.Fatalf("UpdateTags 返回错误: %v", err)
	}
	if !reflect.DeepEqual(received.Tags, []string{"A", "C"}) {
		t.Errorf("回写请求体不对: %+v", received)
	}
}

// 邮箱搜索:命中取第一条, 空结果映射为 ErrContactNotFound
func TestClientSearchByEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/contacts/search" {
			t.Errorf("搜索路径不对: %s", request.URL.Path)
		}

		email := request.URL.Query().Get("email")
		writer.Header().Set("Content-Type", "application/json")

		if email == "hit@example.com" {
			json.NewEncoder(writer).Encode(searchResponse{
				Contacts: []Contact{{ID: "c7", Email: email}, {ID: "c8"}},
			})
			return
		}
		json.NewEncoder(writer).Encode(searchResponse{})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	contact, err := client.SearchByEmail(context.Background(), "hit@example.com")
	if err != nil {
		t.Fatalf("SearchByEmail 返回错误: %v", err)
	}
	if contact.ID != "c7" {
		t.Errorf("应取第一条匹配, got %+v", contact)
	}

	_, err = client.SearchByEmail(context.Background(), "miss@example.com")
	if !errors.Is(err, ErrContactNotFound) {
		t.Errorf("空结果应映射为 ErrContactNotFound, got %v", err)
	}
}
