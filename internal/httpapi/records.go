package httpapi

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/FoxTrove/bob-university-sub003/internal/notify"
)

// ==================== 接口定义 ====================

// DispatchRecordStore 分发记录查询接口
type DispatchRecordStore interface {
	QueryRecords(ctx context.Context, limit int64) ([]notify.Record, error)
}

// ==================== Handler 处理器 ====================

// RecordsHandler 分发记录查询处理器
type RecordsHandler struct {
	store DispatchRecordStore
}

// NewRecordsHandler 创建分发记录处理器
func NewRecordsHandler(store DispatchRecordStore) *RecordsHandler {
	return &RecordsHandler{store: store}
}

// HandleQuery 处理分发记录查询请求
// GET /v1/dispatch-records?limit=50
func (handler *RecordsHandler) HandleQuery(writer http.ResponseWriter, request *http.Request) {
	setCORS(writer, "GET, OPTIONS")

	if request.Method == http.MethodOptions {
		return
	}

	if request.Method != http.MethodGet {
		writeError(writer, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit, _ := strconv.ParseInt(request.URL.Query().Get("limit"), 10, 64)

	records, err := handler.store.QueryRecords(request.Context(), limit)
	if err != nil {
		log.Printf("[RECORDS_HANDLER] 查询失败: %v", err)
		writeError(writer, "查询分发记录失败", http.StatusInternalServerError)
		return
	}

	writeSuccess(writer, map[string]interface{}{
		"total": len(records),
		"data":  records,
	})
}
