package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/FoxTrove/bob-university-sub003/internal/crm"
)

// ==================== 服务接口 ====================

// TagReconciler 标签对账入口接口
type TagReconciler interface {
	Reconcile(ctx context.Context, identity crm.Identity, add []string, remove []string) (crm.ReconcileResult, error)
}

// ==================== Handler 处理器 ====================

// TagsHandler 标签对账接口处理器
// 处理 POST /v1/crm/tags 请求
type TagsHandler struct {
	reconciler TagReconciler
}

// NewTagsHandler 创建标签对账处理器
func NewTagsHandler(reconciler TagReconciler) *TagsHandler {
	return &TagsHandler{reconciler: reconciler}
}

// tagsRequest 标签对账请求体
type tagsRequest struct {
	ContactID string   `json:"contact_id,omitempty"`
	UserID    string   `json:"user_id,omitempty"`
	Email     string   `json:"email,omitempty"`
	Add       []string `json:"add,omitempty"`
	Remove    []string `json:"remove,omitempty"`
}

// ServeHTTP 实现 http.Handler 接口
// POST /v1/crm/tags
func (handler *TagsHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	setCORS(writer, "POST, OPTIONS")

	if request.Method == http.MethodOptions {
		return
	}

	if request.Method != http.MethodPost {
		writeError(writer, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := handler.handleTagsRequest(writer, request); err != nil {
		log.Printf("[TAGS_HANDLER] 处理失败: %v", err)
	}
}

// handleTagsRequest 处理标签对账的核心逻辑
// 业务失败(联系人不存在/上游故障)用响应体里的状态码传递,
// HTTP 层面仍然是 200
func (handler *TagsHandler) handleTagsRequest(writer http.ResponseWriter, request *http.Request) error {
	payload, err := parseTagsBody(request)
	if err != nil {
		writeError(writer, "解析请求失败: "+err.Error(), http.StatusBadRequest)
		return err
	}

	identity := crm.Identity{
		ContactID: payload.ContactID,
		UserID:    payload.UserID,
		Email:     payload.Email,
	}

	result, err := handler.reconciler.Reconcile(request.Context(), identity, payload.Add, payload.Remove)

	if crm.IsValidationError(err) {
		writeError(writer, "参数校验失败: "+err.Error(), http.StatusBadRequest)
		return err
	}

	if errors.Is(err, crm.ErrContactNotFound) {
		writeEnvelope(writer, http.StatusNotFound, "联系人不存在")
		return err
	}

	if err != nil {
		writeEnvelope(writer, http.StatusBadGateway, "CRM 调用失败: "+err.Error())
		return err
	}

	writeSuccess(writer, result)
	return nil
}

// parseTagsBody 解析标签对账请求体
func parseTagsBody(request *http.Request) (tagsRequest, error) {
	request.Body = http.MaxBytesReader(nil, request.Body, maxRequestBodySize)
	defer request.Body.Close()

	decoder := json.NewDecoder(request.Body)
	decoder.DisallowUnknownFields()

	var payload tagsRequest
	if err := decoder.Decode(&payload); err != nil {
		return tagsRequest{}, fmt.Errorf("JSON 解析失败: %w", err)
	}

	return payload, nil
}
