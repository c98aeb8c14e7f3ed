package notifier

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tele "gopkg.in/telebot.v3"
)

type fakeSender struct {
	failures int
	sent     []string
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	chat, ok := to.(*tele.Chat)
	if !ok || chat.ID != 42 {
		return nil, fmt.Errorf("unexpected recipient %v", to)
	}
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("flood control")
	}
	f.sent = append(f.sent, fmt.Sprint(what))
	return &tele.Message{}, nil
}

func TestBroadcast(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, 42)
	if err := n.Broadcast(context.Background(), []string{"one", "two"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 2 || sender.sent[0] != "one" || sender.sent[1] != "two" {
		t.Fatalf("unexpected sends: %+v", sender.sent)
	}
}

func TestSendWithRetry_RecoversOnce(t *testing.T) {
	sender := &fakeSender{failures: 1}
	n := NewNotifier(sender, 42)
	if err := n.SendWithRetry(context.Background(), "hello", 1); err != nil {
		t.Fatalf("expected recovery after retry, got %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one delivered message, got %+v", sender.sent)
	}
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	sender := &fakeSender{failures: 10}
	n := NewNotifier(sender, 42)
	if err := n.SendWithRetry(context.Background(), "hello", 0); err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if len(sender.sent) != 0 {
		t.Fatal("nothing should have been delivered")
	}
}

func TestBroadcast_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n := NewNotifier(&fakeSender{failures: 10}, 42)
	if err := n.Broadcast(ctx, []string{"one"}); err == nil {
		t.Fatal("expected a context error")
	}
}
