package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// 默认配置常量
const (
	// 应用默认配置
	DefaultHTTPAddress    = ":8080"
	DefaultRequestTimeout = 5 * time.Second

	// 存储默认配置
	DefaultRedisNamespace = "engage"
	DefaultMaxKeepRecords = 100_000
	DefaultRecordTTL      = 90 * 24 * time.Hour

	// 外部服务默认配置
	DefaultPushEndpoint = "https://exp.host/--/api/v2/push/send"
	DefaultPushTimeout  = 10 * time.Second
	DefaultCRMTimeout   = 10 * time.Second
)

// App 应用全局配置
type App struct {
	Addr           string        `yaml:"Addr"`           // HTTP 监听地址
	RequestTimeout time.Duration `yaml:"RequestTimeout"` // HTTP 请求超时
}

// MySQLConfig MySQL 数据库连接配置
type MySQLConfig struct {
	DSN             string        `yaml:"DSN"`             // 数据源配置
	MaxOpenConns    int           `yaml:"MaxOpenConns"`    // 最大打开连接数
	MaxIdleConns    int           `yaml:"MaxIdleConns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `yaml:"ConnMaxLifetime"` // 连接最大生命周期
}

// Storage 存储配置
// 包含 Redis(设备令牌/推送记录)与 MySQL(档案/帖子)配置
type Storage struct {
	RedisAddr string        `yaml:"RedisAddr"` // Redis 地址
	Namespace string        `yaml:"Namespace"` // Redis 键前缀
	MaxKeep   int64         `yaml:"MaxKeep"`   // 最大保留推送记录数
	TTL       time.Duration `yaml:"TTL"`       // 推送记录过期时间
	MySQL     MySQLConfig   `yaml:"MySQL"`     // MySQL 配置
}

// Push 推送服务商配置
// 批量上限是服务商硬性限制,不在配置范围内
type Push struct {
	Endpoint    string        `yaml:"Endpoint"`    // 推送接口地址
	AccessToken string        `yaml:"AccessToken"` // 接口访问令牌(可为空)
	Timeout     time.Duration `yaml:"Timeout"`     // 单次外呼超时
}

// CRM 客户关系管理平台配置
// BaseURL 与 APIKey 任一为空即视为未启用集成
type CRM struct {
	BaseURL string        `yaml:"BaseURL"` // CRM 接口根地址
	APIKey  string        `yaml:"APIKey"`  // 接口密钥
	Timeout time.Duration `yaml:"Timeout"` // 单次外呼超时
}

// Enabled 判断 CRM 集成是否已配置
func (crm CRM) Enabled() bool {
	return crm.BaseURL != "" && crm.APIKey != ""
}

// Config 应用完整配置
type Config struct {
	App     App     `yaml:"App"`
	Storage Storage `yaml:"Storage"`
	Push    Push    `yaml:"Push"`
	CRM     CRM     `yaml:"CRM"`
}

// MustLoad 加载 YAML 配置文件
// 加载失败时直接 panic(用于应用启动阶段)
func MustLoad(configPath string) Config {
	fileContent, err := os.ReadFile(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to read config file: %v", err))
	}

	var config Config
	if err := yaml.Unmarshal(fileContent, &config); err != nil {
		panic(fmt.Sprintf("failed to unmarshal config: %v", err))
	}

	if err := config.validate(); err != nil {
		panic(fmt.Sprintf("config validation failed: %v", err))
	}

	return config
}

// validate 校验配置并设置默认值
func (config *Config) validate() error {
	if err := config.validateAppConfig(); err != nil {
		return err
	}

	if err := config.validateStorageConfig(); err != nil {
		return err
	}

	if err := config.validateIntegrationConfig(); err != nil {
		return err
	}

	return nil
}

// validateAppConfig 校验应用配置并设置默认值
func (config *Config) validateAppConfig() error {
	if config.App.Addr == "" {
		config.App.Addr = DefaultHTTPAddress
	}

	if config.App.RequestTimeout <= 0 {
		config.App.RequestTimeout = DefaultRequestTimeout
	}

	return nil
}

// validateStorageConfig 校验存储配置并设置默认值
func (config *Config) validateStorageConfig() error {
	if config.Storage.Namespace == "" {
		config.Storage.Namespace = DefaultRedisNamespace
	}

	if config.Storage.MaxKeep <= 0 {
		config.Storage.MaxKeep = DefaultMaxKeepRecords
	}

	if config.Storage.TTL <= 0 {
		config.Storage.TTL = DefaultRecordTTL
	}

	return nil
}

// validateIntegrationConfig 校验外部集成配置并设置默认值
// CRM 允许完全不配置(集成关闭),推送服务商必须有接口地址
func (config *Config) validateIntegrationConfig() error {
	if config.Push.Endpoint == "" {
		config.Push.Endpoint = DefaultPushEndpoint
	}

	if config.Push.Timeout <= 0 {
		config.Push.Timeout = DefaultPushTimeout
	}

	if config.CRM.Timeout <= 0 {
		config.CRM.Timeout = DefaultCRMTimeout
	}

	return nil
}
