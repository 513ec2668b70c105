package database

import (
	"fmt"
	"log"

	"github.com/FoxTrove/bob-university-sub003/internal/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// 表名常量
const (
	TableProfiles = "profiles"
	TablePosts    = "posts"
)

// SQL 建表语句常量
// 使用 InnoDB 引擎支持事务,utf8mb4 支持完整 Unicode 字符集
const (
	// createProfilesTableSQL 用户档案表
	// 档案主体由账号子系统写入,本服务只回填 external_contact_id
	createProfilesTableSQL = `
		CREATE TABLE IF NOT EXISTS profiles (
			user_id VARCHAR(128) PRIMARY KEY COMMENT '用户ID',
			full_name VARCHAR(255) NOT NULL DEFAULT '' COMMENT '用户姓名',
			email VARCHAR(255) NOT NULL DEFAULT '' COMMENT '邮箱地址',
			phone VARCHAR(32) NOT NULL DEFAULT '' COMMENT '手机号码',
			external_contact_id VARCHAR(128) NOT NULL DEFAULT '' COMMENT 'CRM联系人ID',
			INDEX idx_email (email),
			INDEX idx_external_contact (external_contact_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
		COMMENT='用户档案表'
	`

	// createPostsTableSQL 社区帖子表
	// 通知解析只依赖归属关系,正文由社区子系统维护
	createPostsTableSQL = `
		CREATE TABLE IF NOT EXISTS posts (
			post_id VARCHAR(128) PRIMARY KEY COMMENT '帖子ID',
			owner_user_id VARCHAR(128) NOT NULL COMMENT '归属用户ID',
			INDEX idx_owner (owner_user_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
		COMMENT='社区帖子表'
	`
)

// MySQLDB MySQL 数据库连接管理器
// 封装连接池和表初始化逻辑
type MySQLDB struct {
	*sqlx.DB
}

// NewMySQLDB 创建 MySQL 数据库连接
// 自动配置连接池参数并测试连接可用性
func NewMySQLDB(mysqlConfig config.MySQLConfig) (*MySQLDB, error) {
	database, err := sqlx.Open("mysql", mysqlConfig.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql connection: %w", err)
	}

	configureConnectionPool(database, mysqlConfig)

	if err := testConnection(database); err != nil {
		database.Close()
		return nil, err
	}

	log.Printf("[MYSQL] 数据库连接成功")
	return &MySQLDB{DB: database}, nil
}

// configureConnectionPool 配置数据库连接池参数
// 合理的连接池配置可以提高并发性能和资源利用率
func configureConnectionPool(database *sqlx.DB, mysqlConfig config.MySQLConfig) {
	database.SetMaxOpenConns(mysqlConfig.MaxOpenConns)
	database.SetMaxIdleConns(mysqlConfig.MaxIdleConns)
	database.SetConnMaxLifetime(mysqlConfig.ConnMaxLifetime)
}

// testConnection 测试数据库连接是否可用
func testConnection(database *sqlx.DB) error {
	if err := database.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// InitTables 初始化数据库表结构
// 幂等操作,多次执行不会产生副作用
func (database *MySQLDB) InitTables() error {
	if err := database.createAllTables(); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[MYSQL] 数据库表初始化完成")
	return nil
}

// tableDefinition 表定义结构
type tableDefinition struct {
	name string
	sql  string
}

// createAllTables 创建所有业务表
// 使用 IF NOT EXISTS 确保表已存在时不会报错
func (database *MySQLDB) createAllTables() error {
	tables := []tableDefinition{
		{name: TableProfiles, sql: createProfilesTableSQL},
		{name: TablePosts, sql: createPostsTableSQL},
	}

	for _, table := range tables {
		if err := database.createTable(table); err != nil {
			return err
		}
	}

	return nil
}

// createTable 创建单个数据表
func (database *MySQLDB) createTable(table tableDefinition) error {
	if _, err := database.Exec(table.sql); err != nil {
		log.Printf("[MYSQL] 创建表 %s 失败: %v", table.name, err)
		return fmt.Errorf("failed to create table %s: %w", table.name, err)
	}
	return nil
}

// Close 关闭数据库连接
// 释放所有连接池资源
func (database *MySQLDB) Close() error {
	if err := database.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}
