package chat

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"huddle/internal/app/message"
	"huddle/internal/pkg/errs"
)

type submitCall struct {
	sender string
	text   string
}

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []submitCall
	err   *errs.CustomError
}

func (f *fakeSubmitter) Submit(ctx context.Context, sender, text string) (message.ChatMessage, *errs.CustomError) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, submitCall{sender: sender, text: text})
	if f.err != nil {
		return message.ChatMessage{}, f.err
	}
	return message.ChatMessage{Sender: sender, Text: text}, nil
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func errorPayload(t *testing.T, env Envelope) ErrorPayload {
	t.Helper()

	if env.Type != TypeError {
		t.Fatalf("event type = %q, want %q", env.Type, TypeError)
	}

	var payload ErrorPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("invalid ERROR payload: %v", err)
	}
	return payload
}

func submitFrame(t *testing.T, text string) []byte {
	t.Helper()

	env, err := NewEnvelope(TypeChatMessage, SubmitPayload{Text: text})
	if err != nil {
		t.Fatalf("building frame: %v", err)
	}

	frame, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshaling frame: %v", err)
	}
	return frame
}

func TestClientSubmitPassesIdentityAndText(t *testing.T) {
	submitter := &fakeSubmitter{}
	client := NewClient(nil, nil, "alice", submitter)

	client.processInbound(submitFrame(t, "hello"))

	submitter.mu.Lock()
	defer submitter.mu.Unlock()

	if len(submitter.calls) != 1 {
		t.Fatalf("submit calls = %d, want 1", len(submitter.calls))
	}
	if got := submitter.calls[0]; got.sender != "alice" || got.text != "hello" {
		t.Fatalf("submit call = %+v, want sender alice text hello", got)
	}
}

func TestClientAnonymousSubmitRejected(t *testing.T) {
	submitter := &fakeSubmitter{}
	client := NewClient(nil, nil, "", submitter)

	client.processInbound(submitFrame(t, "let me in"))

	if got := submitter.callCount(); got != 0 {
		t.Fatalf("submit calls = %d, want 0 for an anonymous connection", got)
	}

	payload := errorPayload(t, receiveEnvelope(t, client))
	if payload.Code != errs.ErrUnauthorized {
		t.Fatalf("error code = %d, want %d", payload.Code, errs.ErrUnauthorized)
	}
}

func TestClientSubmitErrorForwardedToSender(t *testing.T) {
	submitter := &fakeSubmitter{err: errs.NewError(errs.ErrEmptyMessage)}
	client := NewClient(nil, nil, "alice", submitter)

	client.processInbound(submitFrame(t, "   "))

	payload := errorPayload(t, receiveEnvelope(t, client))
	if payload.Code != errs.ErrEmptyMessage {
		t.Fatalf("error code = %d, want %d", payload.Code, errs.ErrEmptyMessage)
	}
}

func TestClientIgnoresMalformedFrames(t *testing.T) {
	submitter := &fakeSubmitter{}
	client := NewClient(nil, nil, "alice", submitter)

	client.processInbound([]byte("not json"))
	client.processInbound([]byte(`{"type":"PRESENCE","payload":{}}`))

	if got := submitter.callCount(); got != 0 {
		t.Fatalf("submit calls = %d, want 0", got)
	}
	expectNoFrame(t, client)
}
