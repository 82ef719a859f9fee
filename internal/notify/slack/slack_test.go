package slack

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/zulandar/shiftboard/internal/notify"
)

// --- Mock Slack client ---

type mockClient struct {
	mu      sync.Mutex
	posted  []postedMessage
	errs    []error // returned in order, then nil
	calls   int
	lastCtx context.Context
}

type postedMessage struct {
	channelID string
	options   []slackapi.MsgOption
}

func (m *mockClient) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastCtx = ctx
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return "", "", err
	}
	m.posted = append(m.posted, postedMessage{channelID: channelID, options: options})
	return channelID, "1234567890.123456", nil
}

func testMessage() notify.Message {
	return notify.Message{
		Title: "P1 production for 2025-03-10",
		Body:  "LN1: 80/100 (loss 15)",
		Color: notify.ColorBehind,
		Fields: []notify.Field{
			{Name: "Plan", Value: "100", Short: true},
			{Name: "Gap", Value: "20", Short: true},
		},
	}
}

func TestNew_RequiresTokenAndChannel(t *testing.T) {
	if _, err := New("", "C01"); err == nil {
		t.Error("expected error for missing token")
	}
	if _, err := New("xoxb-1", ""); err == nil {
		t.Error("expected error for missing channel")
	}
	n, err := New("xoxb-1", "C01")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if n.Name() != "slack" {
		t.Errorf("Name() = %q, want %q", n.Name(), "slack")
	}
}

func TestSend_PostsAttachment(t *testing.T) {
	mc := &mockClient{}
	n := &Notifier{client: mc, channelID: "C01"}

	if err := n.Send(context.Background(), testMessage()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(mc.posted) != 1 {
		t.Fatalf("posted %d messages, want 1", len(mc.posted))
	}
	if mc.posted[0].channelID != "C01" {
		t.Errorf("channel = %q, want %q", mc.posted[0].channelID, "C01")
	}

	_, values, err := slackapi.UnsafeApplyMsgOptions("xoxb-1", "C01", "https://slack.com/api/", mc.posted[0].options...)
	if err != nil {
		t.Fatalf("apply options: %v", err)
	}
	if got := values.Get("text"); got != "P1 production for 2025-03-10" {
		t.Errorf("text = %q", got)
	}
	attachments := values.Get("attachments")
	for _, want := range []string{"LN1: 80/100", notify.ColorBehind[1:], `"Gap"`} {
		if !strings.Contains(attachments, want) {
			t.Errorf("attachments %s missing %q", attachments, want)
		}
	}
}

func TestSend_WrapsError(t *testing.T) {
	mc := &mockClient{errs: []error{errors.New("channel_not_found")}}
	n := &Notifier{client: mc, channelID: "C01"}

	err := n.Send(context.Background(), testMessage())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "slack: post message") {
		t.Errorf("error = %q, want slack prefix", err)
	}
	if mc.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry for non rate-limit errors)", mc.calls)
	}
}

func TestSend_RetriesRateLimit(t *testing.T) {
	mc := &mockClient{errs: []error{&slackapi.RateLimitedError{RetryAfter: time.Millisecond}}}
	n := &Notifier{client: mc, channelID: "C01"}

	if err := n.Send(context.Background(), testMessage()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if mc.calls != 2 {
		t.Errorf("calls = %d, want 2", mc.calls)
	}
}

func TestRetryOnRateLimit_ExhaustsRetries(t *testing.T) {
	calls := 0
	err := retryOnRateLimit(context.Background(), func() error {
		calls++
		return &slackapi.RateLimitedError{RetryAfter: time.Millisecond}
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != maxRetries+1 {
		t.Errorf("expected %d calls, got %d", maxRetries+1, calls)
	}
}

func TestRetryOnRateLimit_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retryOnRateLimit(ctx, func() error {
		return &slackapi.RateLimitedError{RetryAfter: time.Second}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
