package main

import (
	"log"
	"net/http"

	"github.com/FoxTrove/bob-university-sub003/internal/directory"
	"github.com/FoxTrove/bob-university-sub003/internal/httpapi"

	"github.com/gin-gonic/gin"
)

//
// 数据模型定义
//

// UnifiedResponse 统一的 API 响应格式
type UnifiedResponse struct {
	Code int         `json:"code"`
	Data interface{} `json:"data,omitempty"`
	Msg  string      `json:"msg"`
}

// TokenRequest 设备令牌注册/注销请求
type TokenRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Token  string `json:"token" binding:"required"`
}

//
// 辅助函数 - 响应处理
//

// sendSuccessResponse 发送成功响应
func sendSuccessResponse(context *gin.Context, data interface{}) {
	context.JSON(http.StatusOK, UnifiedResponse{
		Code: http.StatusOK,
		Data: data,
		Msg:  "success",
	})
}

// sendErrorResponse 发送错误响应
func sendErrorResponse(context *gin.Context, httpStatus int, message string) {
	context.JSON(httpStatus, UnifiedResponse{
		Code: httpStatus,
		Data: nil,
		Msg:  message,
	})
}

//
// 中间件
//

// corsMiddleware 跨域资源共享中间件
// 允许所有来源访问,便于平台各端接入
// 生产环境建议根据需求配置白名单
func corsMiddleware() gin.HandlerFunc {
	return func(context *gin.Context) {
		context.Header("Access-Control-Allow-Origin", "*")
		context.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		context.Header("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if context.Request.Method == "OPTIONS" {
			context.AbortWithStatus(http.StatusNoContent)
			return
		}

		context.Next()
	}
}

//
// 处理器 - 设备令牌相关
//

// TokenHandler 设备令牌业务处理器
// 移动端登录后注册推送令牌,登出/换机时注销
type TokenHandler struct {
	store directory.TokenStore
}

// NewTokenHandler 创建设备令牌处理器实例
func NewTokenHandler(store directory.TokenStore) *TokenHandler {
	return &TokenHandler{store: store}
}

// handleRegister 处理令牌注册请求
func (handler *TokenHandler) handleRegister(context *gin.Context) {
	var request TokenRequest

	if err := context.ShouldBindJSON(&request); err != nil {
		sendErrorResponse(context, http.StatusBadRequest, "参数验证失败: "+err.Error())
		return
	}

	if err := handler.store.Register(context.Request.Context(), request.UserID, request.Token); err != nil {
		log.Printf("[TokenHandler] 注册失败: %v", err)
		sendErrorResponse(context, http.StatusInternalServerError, "令牌注册失败")
		return
	}

	sendSuccessResponse(context, map[string]interface{}{"registered": true})
}

// handleUnregister 处理令牌注销请求
func (handler *TokenHandler) handleUnregister(context *gin.Context) {
	var request TokenRequest

	if err := context.ShouldBindJSON(&request); err != nil {
		sendErrorResponse(context, http.StatusBadRequest, "参数验证失败: "+err.Error())
		return
	}

	if err := handler.store.Unregister(context.Request.Context(), request.UserID, request.Token); err != nil {
		log.Printf("[TokenHandler] 注销失败: %v", err)
		sendErrorResponse(context, http.StatusInternalServerError, "令牌注销失败")
		return
	}

	sendSuccessResponse(context, map[string]interface{}{"unregistered": true})
}

//
// 路由构建主函数
//

// BuildGinRouter 构建 Gin 路由器
// 集中管理所有 HTTP 路由
func BuildGinRouter(app *AppContext) *gin.Engine {
	router := gin.Default()

	// 应用全局中间件
	router.Use(corsMiddleware())

	// 初始化处理器
	tokenHandler := NewTokenHandler(app.TokenStore)

	// API v1 路由组
	apiV1 := router.Group("/v1")
	{
		// 事件通知接口
		registerNotifyRoutes(apiV1, app)

		// CRM 标签接口
		registerTagRoutes(apiV1, app)

		// 分发记录接口
		registerRecordRoutes(apiV1, app)

		// 设备令牌接口
		registerTokenRoutes(apiV1, tokenHandler)
	}

	// 健康检查
	router.GET("/health", func(context *gin.Context) {
		context.JSON(http.StatusOK, gin.H{"status": "ok", "service": "engage-gateway"})
	})

	return router
}

// registerNotifyRoutes 注册事件通知路由
func registerNotifyRoutes(group *gin.RouterGroup, app *AppContext) {
	notifyHandler := httpapi.NewNotifyHandler(app.Notifier)
	group.POST("/notify", gin.WrapH(notifyHandler))
}

// registerTagRoutes 注册 CRM 标签路由
func registerTagRoutes(group *gin.RouterGroup, app *AppContext) {
	tagsHandler := httpapi.NewTagsHandler(app.Reconciler)
	group.POST("/crm/tags", gin.WrapH(tagsHandler))
}

// registerRecordRoutes 注册分发记录路由
func registerRecordRoutes(group *gin.RouterGroup, app *AppContext) {
	recordsHandler := httpapi.NewRecordsHandler(app.RecordStore)
	group.GET("/dispatch-records", gin.WrapF(recordsHandler.HandleQuery))
}

// registerTokenRoutes 注册设备令牌路由
func registerTokenRoutes(group *gin.RouterGroup, handler *TokenHandler) {
	group.POST("/tokens", handler.handleRegister)
	group.DELETE("/tokens", handler.handleUnregister)
}
