package httpapi

import (
	"encoding/json"
	"net/http"
)

// ==================== 常量定义 ====================

const (
	maxRequestBodySize = 1 << 20 // 1MB

	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

// ==================== 响应结构 ====================

// Response 统一响应格式
type Response struct {
	Code int         `json:"code"`
	Data interface{} `json:"data,omitempty"`
	Msg  string      `json:"msg"`
}

// ==================== 响应辅助函数 ====================

// writeJSON 写出 JSON 响应
func writeJSON(writer http.ResponseWriter, httpStatus int, payload interface{}) {
	writer.Header().Set(headerContentType, contentTypeJSON)
	writer.WriteHeader(httpStatus)
	_ = json.NewEncoder(writer).Encode(payload)
}

// writeSuccess 写出业务成功响应
func writeSuccess(writer http.ResponseWriter, data interface{}) {
	writeJSON(writer, http.StatusOK, Response{
		Code: http.StatusOK,
		Data: data,
		Msg:  "success",
	})
}

// writeEnvelope 以 HTTP 200 写出带业务状态码的响应
// 业务层面的失败(联系人不存在/上游故障)不是传输层错误,
// 状态放在响应体里传递
func writeEnvelope(writer http.ResponseWriter, code int, message string) {
	writeJSON(writer, http.StatusOK, Response{
		Code: code,
		Msg:  message,
	})
}

// writeError 写出错误响应
func writeError(writer http.ResponseWriter, message string, httpStatus int) {
	writeJSON(writer, httpStatus, Response{
		Code: httpStatus,
		Msg:  message,
	})
}

// setCORS 设置跨域响应头
func setCORS(writer http.ResponseWriter, allowMethods string) {
	writer.Header().Set("Access-Control-Allow-Origin", "*")
	writer.Header().Set("Access-Control-Allow-Methods", allowMethods)
	writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")
}
