package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/FoxTrove/bob-university-sub003/internal/notify"
)

// fakeNotifier EventNotifier 的测试替身
type fakeNotifier struct {
	dispatchID string
	result     notify.DispatchResult
	err        error

	calls     int
	lastEvent notify.NotificationEvent
}

func (notifier *fakeNotifier) NotifyEvent(ctx context.Context, event notify.NotificationEvent) (string, notify.DispatchResult, error) {
	notifier.calls++
	notifier.lastEvent = event

	if notifier.err != nil {
		return "", notify.DispatchResult{}, notifier.err
	}
	return notifier.dispatchID, notifier.result, nil
}

func postNotify(handler http.Handler, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, "/v1/notify", strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

// 合法事件返回 200 和分发结果
func TestNotifyHandlerSuccess(t *testing.T) {
	notifier := &fakeNotifier{
		dispatchID: "dispatch-1",
		result:     notify.DispatchResult{Sent: 2, Failed: 1},
	}
	handler := NewNotifyHandler(notifier)

	recorder := postNotify(handler, `{"kind":"reaction","subject_id":"post1","actor_id":"actor1","attributes":{"reaction_type":"fire"}}`)

	if recorder.Code != http.StatusOK {
		t.Fatalf("状态码不对: %d, body=%s", recorder.Code, recorder.Body.String())
	}

	var response Response
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	if response.Code != http.StatusOK {
		t.Errorf("业务状态码不对: %d", response.Code)
	}

	data, _ := json.Marshal(response.Data)
	var payload notifyResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("数据解析失败: %v", err)
	}
	if payload.DispatchID != "dispatch-1" || payload.Sent != 2 || payload.Failed != 1 {
		t.Errorf("响应数据不对: %+v", payload)
	}

	if notifier.lastEvent.Kind != notify.KindReaction || notifier.lastEvent.SubjectID != "post1" {
		t.Errorf("事件未正确传递: %+v", notifier.lastEvent)
	}
}

// 非法 JSON 返回 400
func TestNotifyHandlerMalformedBody(t *testing.T) {
	notifier := &fakeNotifier{}
	handler := NewNotifyHandler(notifier)

	recorder := postNotify(handler, `{not json`)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("状态码不对: %d", recorder.Code)
	}
	if notifier.calls != 0 {
		t.Error("解析失败不应调用业务层")
	}
}

// 事件校验失败映射为 400
func TestNotifyHandlerValidationError(t *testing.T) {
	notifier := &fakeNotifier{err: notify.ErrMissingActor}
	handler := NewNotifyHandler(notifier)

	recorder := postNotify(handler, `{"kind":"comment","subject_id":"post1"}`)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("校验失败应为 400, got %d", recorder.Code)
	}
}

// 非校验类失败映射为 500
func TestNotifyHandlerInternalError(t *testing.T) {
	notifier := &fakeNotifier{err: context.DeadlineExceeded}
	handler := NewNotifyHandler(notifier)

	recorder := postNotify(handler, `{"kind":"comment","subject_id":"post1","actor_id":"a1"}`)

	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("内部失败应为 500, got %d", recorder.Code)
	}
}

// 只接受 POST
func TestNotifyHandlerMethodNotAllowed(t *testing.T) {
	handler := NewNotifyHandler(&fakeNotifier{})

	request := httptest.NewRequest(http.MethodGet, "/v1/notify", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET 应为 405, got %d", recorder.Code)
	}
}

// 未知字段拒绝解析
func TestNotifyHandlerUnknownField(t *testing.T) {
	notifier := &fakeNotifier{}
	handler := NewNotifyHandler(notifier)

	recorder := postNotify(handler, `{"kind":"comment","subject_id":"p1","actor_id":"a1","bogus":1}`)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("未知字段应为 400, got %d", recorder.Code)
	}
	if notifier.calls != 0 {
		t.Error("解析失败不应调用业务层")
	}
}
