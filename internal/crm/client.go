package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/FoxTrove/bob-university-sub003/internal/config"
)

// ==================== 常量定义 ====================

const (
	contactsPath      = "/contacts/"
	contactSearchPath = "/contacts/search"

	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
	contentTypeJSON     = "application/json"
)

// ==================== 数据结构 ====================

// Contact CRM 侧联系人记录
// 与平台自身的用户档案是两套记录,靠 external_contact_id 关联
type Contact struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Tags  []string `json:"tags"`
}

// searchResponse 邮箱搜索响应
type searchResponse struct {
	Contacts []Contact `json:"contacts"`
}

// updateTagsRequest 标签全量回写请求体
type updateTagsRequest struct {
	Tags []string `json:"tags"`
}

// ==================== 接口定义 ====================

// ContactAPI CRM 联系人操作出口
// 解耦 Reconciler 与具体 HTTP 实现,便于测试替换
type ContactAPI interface {
	GetContact(ctx context.Context, contactID string) (Contact, error)
	UpdateTags(ctx context.Context, contactID string, tags []string) error
	SearchByEmail(ctx context.Context, email string) (Contact, error)
}

// ==================== HTTP 客户端 ====================

// Client CRM 平台 HTTP 客户端
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient 创建 CRM 客户端
func NewClient(crmConfig config.CRM) *Client {
	return &Client{
		baseURL: crmConfig.BaseURL,
		apiKey:  crmConfig.APIKey,
		httpClient: &http.Client{
			Timeout: crmConfig.Timeout,
		},
	}
}

// GetContact 查询联系人及其当前标签集合
func (client *Client) GetContact(ctx context.Context, contactID string) (Contact, error) {
	var contact Contact
	err := client.doJSON(ctx, http.MethodGet, contactsPath+url.PathEscape(contactID), nil, &contact)
	return contact, err
}

// UpdateTags 全量回写联系人标签
// 合并计算在内存完成,这里一次更新写入完整结果集
func (client *Client) UpdateTags(ctx context.Context, contactID string, tags []string) error {
	body := updateTagsRequest{Tags: tags}
	return client.doJSON(ctx, http.MethodPut, contactsPath+url.PathEscape(contactID), body, nil)
}

// SearchByEmail 按邮箱搜索联系人
// 无匹配时返回 ErrContactNotFound
func (client *Client) SearchByEmail(ctx context.Context, email string) (Contact, error) {
	path := contactSearchPath + "?email=" + url.QueryEscape(email)

	var result searchResponse
	if err := client.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return Contact{}, err
	}

	if len(result.Contacts) == 0 {
		return Contact{}, ErrContactNotFound
	}

	return result.Contacts[0], nil
}

// doJSON 执行 JSON 请求/响应的通用处理
// 404 映射为 ErrContactNotFound,其余非 2xx 映射为 ErrUpstream
func (client *Client) doJSON(ctx context.Context, method string, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal crm request failed: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build crm request failed: %w", err)
	}

	request.Header.Set(headerContentType, contentTypeJSON)
	request.Header.Set(headerAuthorization, "Bearer "+client.apiKey)

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return ErrContactNotFound
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(response.Body)
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, response.StatusCode, string(responseBody))
	}

	if result != nil {
		if err := json.NewDecoder(response.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
		}
	}

	return nil
}
