package crm

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/FoxTrove/bob-university-sub003/internal/directory"
)

// ==================== 数据结构 ====================

// Identity 联系人定位信息
// 三个字段至少提供一个,按 ContactID → UserID → Email 的顺序解析
type Identity struct {
	ContactID string `json:"contact_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Email     string `json:"email,omitempty"`
}

// hasAny 判断是否提供了任一定位字段
func (identity Identity) hasAny() bool {
	return identity.ContactID != "" || identity.UserID != "" || identity.Email != ""
}

// ReconcileResult 标签对账结果
// CRM 未配置时 Skipped 为 true,其余字段为零值
type ReconcileResult struct {
	ContactID string   `json:"contact_id,omitempty"`
	FinalTags []string `json:"final_tags,omitempty"`
	Skipped   bool     `json:"skipped,omitempty"`
}

// ==================== Reconciler ====================

// Reconciler CRM 标签对账器
// 读取联系人当前标签,在内存合并増删,全量写回
type Reconciler struct {
	api      ContactAPI
	profiles directory.ProfileStore
	enabled  bool
}

// NewReconciler 创建标签对账器
// enabled 为 false(CRM 凭据未配置)时所有调用短路为成功的空操作
func NewReconciler(api ContactAPI, profiles directory.ProfileStore, enabled bool) *Reconciler {
	return &Reconciler{
		api:      api,
		profiles: profiles,
		enabled:  enabled,
	}
}

// Reconcile 执行一次标签对账
// 标签比较是区分大小写的精确匹配("Active" 和 "active" 是两个标签);
// 同时出现在 add 和 remove 中的标签最终不存在(删除优先),
// 这是原有可观测行为,不要"修正"
func (reconciler *Reconciler) Reconcile(
	ctx context.Context,
	identity Identity,
	add []string,
	remove []string,
) (ReconcileResult, error) {
	if !identity.hasAny() {
		return ReconcileResult{}, ErrMissingIdentity
	}

	if len(add) == 0 && len(remove) == 0 {
		return ReconcileResult{}, ErrEmptyTagSets
	}

	// 集成未启用不是错误:平台必须在没有 CRM 的情况下照常工作
	if !reconciler.enabled {
		return ReconcileResult{Skipped: true}, nil
	}

	contact, err := reconciler.resolveContact(ctx, identity)
	if err != nil {
		return ReconcileResult{}, err
	}

	finalTags := mergeTags(contact.Tags, add, remove)

	if err := reconciler.api.UpdateTags(ctx, contact.ID, finalTags); err != nil {
		return ReconcileResult{}, fmt.Errorf("write back tags failed: %w", err)
	}

	return ReconcileResult{
		ContactID: contact.ID,
		FinalTags: finalTags,
	}, nil
}

// ==================== 联系人解析 ====================

// resolveContact 按优先级解析联系人
// 先到先得:前一级解析成功就不再尝试后续手段;
// "联系人不存在"允许降级到下一级,上游故障立即中止
func (reconciler *Reconciler) resolveContact(ctx context.Context, identity Identity) (Contact, error) {
	if identity.ContactID != "" {
		contact, err := reconciler.api.GetContact(ctx, identity.ContactID)
		if err == nil {
			return contact, nil
		}

		if !errors.Is(err, ErrContactNotFound) {
			return Contact{}, err
		}
	}

	searchEmail := identity.Email

	if identity.UserID != "" {
		contact, profileEmail, err := reconciler.resolveByProfile(ctx, identity.UserID)
		if err == nil {
			return contact, nil
		}

		if !errors.Is(err, ErrContactNotFound) {
			return Contact{}, err
		}

		if searchEmail == "" {
			searchEmail = profileEmail
		}
	}

	if searchEmail == "" {
		return Contact{}, ErrContactNotFound
	}

	return reconciler.resolveByEmailSearch(ctx, identity.UserID, searchEmail)
}

// resolveByProfile 通过用户档案上关联的联系人ID解析
// 同时带出档案邮箱,供下一级搜索兜底
func (reconciler *Reconciler) resolveByProfile(ctx context.Context, userID string) (Contact, string, error) {
	profile, err := reconciler.profiles.GetProfile(ctx, userID)

	if errors.Is(err, directory.ErrProfileNotFound) {
		return Contact{}, "", ErrContactNotFound
	}

	if err != nil {
		return Contact{}, "", fmt.Errorf("read profile failed: %w", err)
	}

	if profile.ExternalContactID == "" {
		return Contact{}, profile.Email, ErrContactNotFound
	}

	contact, err := reconciler.api.GetContact(ctx, profile.ExternalContactID)
	if err != nil {
		return Contact{}, profile.Email, err
	}

	return contact, profile.Email, nil
}

// resolveByEmailSearch 通过邮箱搜索解析
// 搜索命中且调用时给了 userID,就把发现的联系人ID回填到档案上,
// 让后续同一用户的调用跳过搜索——这是读取路径上刻意保留的写副作用
func (reconciler *Reconciler) resolveByEmailSearch(ctx context.Context, userID string, email string) (Contact, error) {
	contact, err := reconciler.api.SearchByEmail(ctx, email)
	if err != nil {
		return Contact{}, err
	}

	if userID != "" {
		if err := reconciler.profiles.UpdateExternalContactID(ctx, userID, contact.ID); err != nil {
			// 缓存性回填失败不能拖垮对账本身
			log.Printf("[RECONCILER] 联系人ID回填失败: user=%s, err=%v", userID, err)
		}
	}

	return contact, nil
}

// ==================== 标签合并 ====================

// mergeTags 计算最终标签集合: final = (current ∪ add) − remove
// 先并后减,同一标签同时增删时删除获胜;
// 未被点名的既有标签全部原样保留
func mergeTags(current []string, add []string, remove []string) []string {
	present := make(map[string]bool, len(current)+len(add))
	merged := make([]string, 0, len(current)+len(add))

	for _, tag := range current {
		if !present[tag] {
			present[tag] = true
			merged = append(merged, tag)
		}
	}

	for _, tag := range add {
		if tag != "" && !present[tag] {
			present[tag] = true
			merged = append(merged, tag)
		}
	}

	removed := make(map[string]bool, len(remove))
	for _, tag := range remove {
		removed[tag] = true
	}

	final := make([]string, 0, len(merged))
	for _, tag := range merged {
		if !removed[tag] {
			final = append(final, tag)
		}
	}

	return final
}
