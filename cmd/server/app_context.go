package main

import (
	"log"

	"github.com/FoxTrove/bob-university-sub003/internal/config"
	"github.com/FoxTrove/bob-university-sub003/internal/crm"
	"github.com/FoxTrove/bob-university-sub003/internal/database"
	"github.com/FoxTrove/bob-university-sub003/internal/directory"
	"github.com/FoxTrove/bob-university-sub003/internal/expopush"
	"github.com/FoxTrove/bob-university-sub003/internal/notify"
	"github.com/FoxTrove/bob-university-sub003/internal/recorder"

	redis "github.com/redis/go-redis/v9"
)

// AppContext 应用运行时上下文
// 聚合所有运行期依赖,统一管理生命周期
type AppContext struct {
	Config      config.Config
	RedisClient *redis.Client
	MySQL       *database.MySQLDB

	Directory   *directory.MySQLStore      // 档案/帖子存储
	TokenStore  *directory.RedisTokenStore // 设备令牌存储
	RecordStore *recorder.RedisStore       // 分发记录存储

	PushClient *expopush.Client
	Notifier   *notify.Notifier
	Reconciler *crm.Reconciler
}

// InitAppContext 初始化应用上下文
// 任何一项基础依赖初始化失败都直接终止启动
func InitAppContext(configuration config.Config) *AppContext {
	appContext := &AppContext{Config: configuration}

	appContext.initRedis()
	appContext.initMySQL()
	appContext.initStores()
	appContext.initNotifier()
	appContext.initReconciler()

	return appContext
}

// initRedis 初始化 Redis 客户端
func (appContext *AppContext) initRedis() {
	appContext.RedisClient = redis.NewClient(&redis.Options{
		Addr: appContext.Config.Storage.RedisAddr,
	})
}

// initMySQL 初始化 MySQL 连接并确保表结构存在
func (appContext *AppContext) initMySQL() {
	mysqlDB, err := database.NewMySQLDB(appContext.Config.Storage.MySQL)
	if err != nil {
		log.Fatalf("[AppContext] MySQL 初始化失败: %v", err)
	}

	if err := mysqlDB.InitTables(); err != nil {
		log.Fatalf("[AppContext] 表结构初始化失败: %v", err)
	}

	appContext.MySQL = mysqlDB
}

// initStores 初始化各存储实例
func (appContext *AppContext) initStores() {
	storage := appContext.Config.Storage

	appContext.Directory = directory.NewMySQLStore(appContext.MySQL.DB)
	appContext.TokenStore = directory.NewRedisTokenStore(appContext.RedisClient, storage.Namespace)
	appContext.RecordStore = recorder.NewRedisStore(
		appContext.RedisClient,
		storage.Namespace,
		storage.MaxKeep,
		storage.TTL,
	)
}

// initNotifier 组装通知管线:解析器 → 分发器 → 统一入口
func (appContext *AppContext) initNotifier() {
	appContext.PushClient = expopush.NewClient(appContext.Config.Push)

	resolver := notify.NewResolver(appContext.Directory)
	dispatcher := notify.NewDispatcher(
		appContext.TokenStore,
		appContext.PushClient,
		appContext.Config.Push.Timeout,
	)

	appContext.Notifier = notify.NewNotifier(resolver, dispatcher, appContext.RecordStore)
}

// initReconciler 组装 CRM 标签对账器
// CRM 未配置时对账器以禁用状态运行,所有调用短路为空操作
func (appContext *AppContext) initReconciler() {
	crmConfig := appContext.Config.CRM

	if !crmConfig.Enabled() {
		log.Println("[AppContext] CRM 凭据未配置,标签对账以空操作模式运行")
	}

	appContext.Reconciler = crm.NewReconciler(
		crm.NewClient(crmConfig),
		appContext.Directory,
		crmConfig.Enabled(),
	)
}

// Close 释放应用上下文持有的所有资源
// 按照依赖关系倒序释放,避免资源泄漏
func (appContext *AppContext) Close() {
	if appContext.MySQL != nil {
		if err := appContext.MySQL.Close(); err != nil {
			log.Printf("[AppContext] MySQL 关闭失败: %v", err)
		}
	}

	if appContext.RedisClient != nil {
		if err := appContext.RedisClient.Close(); err != nil {
			log.Printf("[AppContext] Redis 关闭失败: %v", err)
		}
	}
}
