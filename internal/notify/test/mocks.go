package test

import (
	"context"
	"sync"

	"github.com/FoxTrove/bob-university-sub003/internal/directory"
	"github.com/FoxTrove/bob-university-sub003/internal/notify"
)

// ---- TokenStore Mock ----
type MockTokenStore struct {
	Tokens map[string][]string // userID → 令牌列表
	Err    error

	mu         sync.Mutex
	BatchCalls int
	LastQuery  []string
}

func (m *MockTokenStore) TokensForUsers(ctx context.Context, userIDs []string) ([]directory.PushToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BatchCalls++
	m.LastQuery = userIDs

	if m.Err != nil {
		return nil, m.Err
	}

	var tokens []directory.PushToken
	for _, userID := range userIDs {
		for _, token := range m.Tokens[userID] {
			tokens = append(tokens, directory.PushToken{UserID: userID, Token: token})
		}
	}
	return tokens, nil
}

func (m *MockTokenStore) Register(ctx context.Context, userID string, token string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Tokens == nil {
		m.Tokens = map[string][]string{}
	}
	m.Tokens[userID] = append(m.Tokens[userID], token)
	return nil
}

func (m *MockTokenStore) Unregister(ctx context.Context, userID string, token string) error {
	return m.Err
}

// ---- Sender Mock ----
// OutcomeFn 为空时返回与批次等长的全 ok 结果;
// 需要降级形态(nil 结果)或逐批差异时注入自定义函数
type MockSender struct {
	NameVal   string
	Err       error
	OutcomeFn func(batch []notify.PushMessage) ([]notify.DeliveryOutcome, error)

	mu        sync.Mutex
	SendCalls int
	Batches   [][]notify.PushMessage
}

func (m *MockSender) Name() string { return m.NameVal }

func (m *MockSender) Send(ctx context.Context, messages []notify.PushMessage) ([]notify.DeliveryOutcome, error) {
	m.mu.Lock()
	batch := make([]notify.PushMessage, len(messages))
	copy(batch, messages)
	m.SendCalls++
	m.Batches = append(m.Batches, batch)
	m.mu.Unlock()

	if m.OutcomeFn != nil {
		return m.OutcomeFn(messages)
	}

	if m.Err != nil {
		return nil, m.Err
	}

	outcomes := make([]notify.DeliveryOutcome, len(messages))
	for index, message := range messages {
		outcomes[index] = notify.DeliveryOutcome{Token: message.To, Status: notify.OutcomeOK}
	}
	return outcomes, nil
}

// BatchSizes 返回各批次的消息条数
func (m *MockSender) BatchSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	sizes := make([]int, len(m.Batches))
	for index, batch := range m.Batches {
		sizes[index] = len(batch)
	}
	return sizes
}

// ---- RecordStore Mock ----
type MockRecordStore struct {
	mu      sync.Mutex
	Records []notify.Record
	Trimmed int
	Err     error
}

func (s *MockRecordStore) SaveRecord(ctx context.Context, rec notify.Record) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = append(s.Records, rec)
	return nil
}

func (s *MockRecordStore) Trim(ctx context.Context) (int, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Trimmed++
	return 0, nil
}

// ---- PostStore Stub（最小即可:按ID返回固定帖子） ----
type StubPostStore struct {
	Posts map[string]directory.Post

	mu       sync.Mutex
	GetCalls int
}

func (s *StubPostStore) GetPost(ctx context.Context, postID string) (directory.Post, error) {
	s.mu.Lock()
	s.GetCalls++
	s.mu.Unlock()

	post, ok := s.Posts[postID]
	if !ok {
		return directory.Post{}, directory.ErrPostNotFound
	}
	return post, nil
}

// ---- Helper: 最小可用事件 ----
func NewReactionEvent(subjectID string, actorID string, reactionType string) notify.NotificationEvent {
	return notify.NotificationEvent{
		Kind:      notify.KindReaction,
		SubjectID: subjectID,
		ActorID:   actorID,
		Attributes: map[string]any{
			notify.AttrReactionType: reactionType,
		},
	}
}
