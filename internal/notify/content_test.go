package notify_test

import (
	"strings"
	"testing"

	"github.com/FoxTrove/bob-university-sub003/internal/notify"
	"github.com/FoxTrove/bob-university-sub003/internal/notify/test"
)

// 表态类型映射到对应表情, 未知类型回退默认
func TestBuildReactionContent(t *testing.T) {
	cases := []struct {
		reaction string
		emoji    string
	}{
		{"fire", "🔥"},
		{"heart", "❤️"},
		{"clap", "👏"},
		{"star", "⭐"},
		{"wow", "😮"},
		{"unknown", "👍"},
		{"", "👍"},
	}

	for _, testCase := range cases {
		event := test.NewReactionEvent("post1", "actor1", testCase.reaction)
		content := notify.BuildContent(event, "")

		if !strings.Contains(content.Body, testCase.emoji) {
			t.Errorf("表态 %q 正文应包含 %s, got %q", testCase.reaction, testCase.emoji, content.Body)
		}
		if content.DeepLink != "/community/post1" {
			t.Errorf("表态 %q 深链不对: %q", testCase.reaction, content.DeepLink)
		}
	}
}

// 评论通知优先使用内容摘要
func TestBuildCommentContent(t *testing.T) {
	event := notify.NotificationEvent{
		Kind:      notify.KindComment,
		SubjectID: "post9",
		ActorID:   "actor1",
	}

	content := notify.BuildContent(event, "Love this bob shape!")
	if content.Body != "Love this bob shape!" {
		t.Errorf("有摘要时正文应为摘要, got %q", content.Body)
	}

	content = notify.BuildContent(event, "")
	if content.Body != "Someone commented on your post" {
		t.Errorf("无摘要时应用默认正文, got %q", content.Body)
	}
	if content.DeepLink != "/community/post9" {
		t.Errorf("评论深链不对: %q", content.DeepLink)
	}
}

// 活动报名通知携带活动标题和日期
func TestBuildRegistrationContent(t *testing.T) {
	event := notify.NotificationEvent{
		Kind:      notify.KindTeamEventRegistration,
		SubjectID: "event7",
		ActorID:   "admin1",
		Attributes: map[string]any{
			notify.AttrEventTitle: "Cutting Workshop",
			notify.AttrEventDate:  "2026-09-12",
		},
	}

	content := notify.BuildContent(event, "")
	if !strings.Contains(content.Body, "Cutting Workshop") || !strings.Contains(content.Body, "2026-09-12") {
		t.Errorf("报名正文应包含标题和日期, got %q", content.Body)
	}
	if content.DeepLink != "/events/event7" {
		t.Errorf("活动深链不对: %q", content.DeepLink)
	}
}

// 短文本不截断, 长文本按 rune 截到 80 并加省略号
func TestTruncateSnippet(t *testing.T) {
	short := "short comment"
	if got := notify.TruncateSnippet(short); got != short {
		t.Errorf("短文本不应截断, got %q", got)
	}

	long := strings.Repeat("あ", 120)
	got := notify.TruncateSnippet(long)
	runes := []rune(got)
	if len(runes) != 81 {
		t.Errorf("截断后应为 81 个 rune, got %d", len(runes))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("截断文本应以省略号结尾, got %q", got)
	}
	if strings.Contains(got, "�") {
		t.Errorf("截断不应产生乱码: %q", got)
	}
}
