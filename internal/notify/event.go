package notify

// EventKind 业务事件类型
type EventKind string

const (
	KindComment               EventKind = "comment"                 // 帖子被评论
	KindReaction              EventKind = "reaction"                // 帖子被点赞/表态
	KindFeedbackRequest       EventKind = "feedback_request"        // 请求作品反馈
	KindTeamEventRegistration EventKind = "team_event_registration" // 团队活动报名
)

// 事件属性字段名常量
const (
	AttrCommentID    = "comment_id"
	AttrCommentText  = "comment_text"
	AttrReactionType = "reaction_type"
	AttrEventTitle   = "event_title"
	AttrEventDate    = "event_date"
)

// NotificationEvent 一次触发通知的业务事件
// 由调用方(路由处理器)按请求构造,只在单次分发内存在,不落库
type NotificationEvent struct {
	Kind            EventKind      `json:"kind"`
	SubjectID       string         `json:"subject_id"`                 // 事件关联的帖子/活动ID
	ActorID         string         `json:"actor_id"`                   // 触发事件的用户
	ExplicitTargets []string       `json:"explicit_targets,omitempty"` // 显式收件人列表(批量报名等场景)
	Attributes      map[string]any `json:"attributes,omitempty"`       // 按事件类型附带的扩展字段
}

// Validate 校验事件必填字段
// 任何校验失败都不产生副作用,由 HTTP 层转为 400
func (event NotificationEvent) Validate() error {
	if !isValidKind(event.Kind) {
		return ErrInvalidEventKind
	}

	if event.ActorID == "" {
		return ErrMissingActor
	}

	// 没有显式收件人时必须能定位到事件主体
	if event.SubjectID == "" && len(event.ExplicitTargets) == 0 {
		return ErrMissingSubject
	}

	return nil
}

// isValidKind 判断事件类型是否受支持
func isValidKind(kind EventKind) bool {
	switch kind {
	case KindComment, KindReaction, KindFeedbackRequest, KindTeamEventRegistration:
		return true
	default:
		return false
	}
}

// StringAttribute 读取字符串类型的事件属性
// 属性缺失或类型不符时返回空串
func (event NotificationEvent) StringAttribute(name string) string {
	value, _ := event.Attributes[name].(string)
	return value
}

// ==================== 分发结果 ====================

// 单条投递状态常量
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// DeliveryOutcome 单个设备令牌的投递结果
type DeliveryOutcome struct {
	Token  string `json:"token"`
	Status string `json:"status"` // ok / failed
}

// DispatchResult 一次分发的聚合结果
// Unconfirmed 记录因服务商响应缺少逐条结果而被乐观计入 Sent 的数量
type DispatchResult struct {
	Sent        int `json:"sent"`
	Failed      int `json:"failed"`
	Unconfirmed int `json:"unconfirmed"`
}

// PushMessage 发往推送服务商的单条消息
// 一个令牌一条消息:三台设备的用户会收到三条
type PushMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}
