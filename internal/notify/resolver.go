package notify

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/FoxTrove/bob-university-sub003/internal/directory"
)

// ==================== 数据结构 ====================

// Resolution 收件人解析结果
type Resolution struct {
	Recipients []string // 去除触发者后的收件人集合
	Snippet    string   // 通知正文可引用的内容摘要
}

// ==================== Resolver ====================

// Resolver 收件人解析器
// 纯读取,不产生任何副作用
type Resolver struct {
	posts directory.PostStore
}

// NewResolver 创建收件人解析器实例
func NewResolver(posts directory.PostStore) *Resolver {
	return &Resolver{posts: posts}
}

// Resolve 解析事件的收件人集合
// 帖子已删除按零收件人处理而不是报错:
// 调用方通常在 webhook 处理器里,不能因为主体消失而失败
func (resolver *Resolver) Resolve(ctx context.Context, event NotificationEvent) (Resolution, error) {
	snippet := TruncateSnippet(event.StringAttribute(AttrCommentText))

	// 显式收件人路径(批量报名等场景),原样采用并剔除触发者
	if len(event.ExplicitTargets) > 0 {
		return Resolution{
			Recipients: excludeActor(event.ExplicitTargets, event.ActorID),
			Snippet:    snippet,
		}, nil
	}

	return resolver.resolveOwner(ctx, event, snippet)
}

// resolveOwner 按帖子归属解析收件人
func (resolver *Resolver) resolveOwner(ctx context.Context, event NotificationEvent, snippet string) (Resolution, error) {
	post, err := resolver.posts.GetPost(ctx, event.SubjectID)

	if errors.Is(err, directory.ErrPostNotFound) {
		log.Printf("[RESOLVER] 帖子不存在,按零收件人处理: subject=%s", event.SubjectID)
		return Resolution{Snippet: snippet}, nil
	}

	if err != nil {
		return Resolution{}, fmt.Errorf("resolve post owner failed: %w", err)
	}

	// 抑制自我通知:作者对自己帖子的操作不推送
	if post.OwnerUserID == event.ActorID {
		return Resolution{Snippet: snippet}, nil
	}

	return Resolution{
		Recipients: []string{post.OwnerUserID},
		Snippet:    snippet,
	}, nil
}

// excludeActor 从收件人列表中剔除触发者并去重
func excludeActor(targets []string, actorID string) []string {
	seen := make(map[string]bool, len(targets))
	recipients := make([]string, 0, len(targets))

	for _, target := range targets {
		if target == "" || target == actorID || seen[target] {
			continue
		}

		seen[target] = true
		recipients = append(recipients, target)
	}

	return recipients
}
