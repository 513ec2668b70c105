package notify

import "fmt"

// ==================== 常量定义 ====================

const (
	communityLinkPrefix = "/community/"
	eventLinkPrefix     = "/events/"

	maxSnippetRunes = 80
	snippetEllipsis = "…"

	defaultReactionEmoji = "👍"
)

// reactionEmojis 表态类型到表情符号的映射
// 与移动端的表态选项保持一致
var reactionEmojis = map[string]string{
	"fire":  "🔥",
	"heart": "❤️",
	"clap":  "👏",
	"star":  "⭐",
	"wow":   "😮",
}

// ==================== 数据结构 ====================

// Content 渲染后的通知内容
// 同一内容会复制到收件人的每一台设备
type Content struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	DeepLink string `json:"deep_link"` // 客户端打开通知后跳转的页面
}

// ==================== 内容构建 ====================

// BuildContent 按事件类型渲染通知标题、正文和跳转链接
// snippet 为解析阶段截取的内容摘要,可为空
func BuildContent(event NotificationEvent, snippet string) Content {
	switch event.Kind {
	case KindComment:
		return buildCommentContent(event, snippet)
	case KindReaction:
		return buildReactionContent(event)
	case KindFeedbackRequest:
		return buildFeedbackContent(event)
	case KindTeamEventRegistration:
		return buildRegistrationContent(event)
	default:
		return Content{}
	}
}

// buildCommentContent 构建评论通知内容
func buildCommentContent(event NotificationEvent, snippet string) Content {
	body := "Someone commented on your post"
	if snippet != "" {
		body = snippet
	}

	return Content{
		Title:    "New comment",
		Body:     body,
		DeepLink: communityLinkPrefix + event.SubjectID,
	}
}

// buildReactionContent 构建表态通知内容
// 未知表态类型回退到默认表情
func buildReactionContent(event NotificationEvent) Content {
	emoji := reactionEmojis[event.StringAttribute(AttrReactionType)]
	if emoji == "" {
		emoji = defaultReactionEmoji
	}

	return Content{
		Title:    "New reaction",
		Body:     fmt.Sprintf("Someone reacted %s to your post", emoji),
		DeepLink: communityLinkPrefix + event.SubjectID,
	}
}

// buildFeedbackContent 构建反馈请求通知内容
func buildFeedbackContent(event NotificationEvent) Content {
	return Content{
		Title:    "Feedback requested",
		Body:     "Your feedback was requested on a post",
		DeepLink: communityLinkPrefix + event.SubjectID,
	}
}

// buildRegistrationContent 构建活动报名通知内容
func buildRegistrationContent(event NotificationEvent) Content {
	title := event.StringAttribute(AttrEventTitle)
	date := event.StringAttribute(AttrEventDate)

	body := "You have been registered for a team event"
	if title != "" && date != "" {
		body = fmt.Sprintf("You're signed up for %s on %s", title, date)
	} else if title != "" {
		body = fmt.Sprintf("You're signed up for %s", title)
	}

	return Content{
		Title:    "Event registration",
		Body:     body,
		DeepLink: eventLinkPrefix + event.SubjectID,
	}
}

// TruncateSnippet 截取内容摘要
// 按 rune 截取,避免把多字节字符切成乱码
func TruncateSnippet(text string) string {
	runes := []rune(text)
	if len(runes) <= maxSnippetRunes {
		return text
	}

	return string(runes[:maxSnippetRunes]) + snippetEllipsis
}
