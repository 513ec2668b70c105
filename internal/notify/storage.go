package notify

import "context"

// Record 一次分发的留痕记录
// 用于审计与运营查询,写入失败不影响分发结果
type Record struct {
	Key         string    `json:"key"`         // 分发ID
	Kind        EventKind `json:"kind"`        // 事件类型
	SubjectID   string    `json:"subject_id"`  // 事件主体
	Title       string    `json:"title"`       // 通知标题
	Recipients  []string  `json:"recipients"`  // 收件人集合
	TokenCount  int       `json:"token_count"` // 实际命中的设备令牌数
	Sent        int       `json:"sent"`
	Failed      int       `json:"failed"`
	Unconfirmed int       `json:"unconfirmed"`
	CreatedAt   int64     `json:"created_at"`
}

type RecordStore interface {
	SaveRecord(ctx context.Context, rec Record) error
	Trim(ctx context.Context) (int, error) // 触发清理(超过 MaxKeep/TTL)
}
