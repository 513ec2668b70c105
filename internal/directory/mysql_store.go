package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

// ==================== SQL 常量 ====================

const (
	selectProfileSQL = `
		SELECT user_id, full_name, email, phone, external_contact_id
		FROM profiles
		WHERE user_id = ?
	`

	updateContactIDSQL = `
		UPDATE profiles
		SET external_contact_id = ?
		WHERE user_id = ?
	`

	selectPostSQL = `
		SELECT post_id, owner_user_id
		FROM posts
		WHERE post_id = ?
	`
)

// ==================== MySQL 存储实现 ====================

// MySQLStore 基于平台 MySQL 库的档案/帖子存储
// 实现 ProfileStore 和 PostStore 两个接口
type MySQLStore struct {
	db *sqlx.DB
}

// NewMySQLStore 创建 MySQL 存储实例
func NewMySQLStore(db *sqlx.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// GetProfile 查询用户档案
func (store *MySQLStore) GetProfile(ctx context.Context, userID string) (Profile, error) {
	if userID == "" {
		return Profile{}, ErrEmptyUserID
	}

	var profile Profile
	err := store.db.GetContext(ctx, &profile, selectProfileSQL, userID)

	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrProfileNotFound
	}

	if err != nil {
		return Profile{}, fmt.Errorf("query profile failed: %w", err)
	}

	return profile, nil
}

// UpdateExternalContactID 回填 CRM 联系人ID
// 用户档案不存在时返回 ErrProfileNotFound
func (store *MySQLStore) UpdateExternalContactID(ctx context.Context, userID string, contactID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	result, err := store.db.ExecContext(ctx, updateContactIDSQL, contactID, userID)
	if err != nil {
		return fmt.Errorf("update external contact id failed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected failed: %w", err)
	}

	if affected == 0 {
		return ErrProfileNotFound
	}

	log.Printf("[DIRECTORY] 已回填联系人ID: user=%s, contact=%s", userID, contactID)
	return nil
}

// GetPost 查询帖子归属信息
func (store *MySQLStore) GetPost(ctx context.Context, postID string) (Post, error) {
	if postID == "" {
		return Post{}, ErrPostNotFound
	}

	var post Post
	err := store.db.GetContext(ctx, &post, selectPostSQL, postID)

	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrPostNotFound
	}

	if err != nil {
		return Post{}, fmt.Errorf("query post failed: %w", err)
	}

	return post, nil
}
