package directory

import (
	"context"
	"errors"
)

// ==================== 错误定义 ====================

var (
	// ErrProfileNotFound 用户档案不存在错误
	ErrProfileNotFound = errors.New("profile not found")

	// ErrPostNotFound 帖子不存在错误
	ErrPostNotFound = errors.New("post not found")

	// ErrEmptyUserID 用户ID为空错误
	ErrEmptyUserID = errors.New("user id cannot be empty")

	// ErrEmptyToken 设备令牌为空错误
	ErrEmptyToken = errors.New("device token cannot be empty")
)

// ==================== 数据结构 ====================

// Profile 平台用户档案
// 档案数据由账号子系统维护,本服务只读取,
// 唯一的写路径是回填 CRM 联系人ID 缓存
type Profile struct {
	UserID            string `db:"user_id"`
	FullName          string `db:"full_name"`
	Email             string `db:"email"`
	Phone             string `db:"phone"`
	ExternalContactID string `db:"external_contact_id"` // CRM 侧联系人ID,可为空
}

// Post 社区帖子
// 通知解析只需要归属用户,不加载正文
type Post struct {
	PostID      string `db:"post_id"`
	OwnerUserID string `db:"owner_user_id"`
}

// PushToken 设备推送令牌
// 一个用户可注册多台设备,服务商侧负责去重
type PushToken struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// ==================== 接口定义 ====================

// ProfileStore 用户档案存储接口
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (Profile, error)
	// UpdateExternalContactID 回填 CRM 联系人ID(缓存性写入)
	UpdateExternalContactID(ctx context.Context, userID string, contactID string) error
}

// PostStore 帖子存储接口
type PostStore interface {
	GetPost(ctx context.Context, postID string) (Post, error)
}

// TokenStore 设备令牌存储接口
type TokenStore interface {
	// TokensForUsers 批量获取多个用户的全部设备令牌
	// 必须一次完成,禁止按用户逐个查询
	TokensForUsers(ctx context.Context, userIDs []string) ([]PushToken, error)
	Register(ctx context.Context, userID string, token string) error
	Unregister(ctx context.Context, userID string, token string) error
}
