package notifier

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v3"
)

// messageSender is the slice of tele.Bot used for delivery; tests stub it.
type messageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Notifier delivers messages to the configured chat, pacing sends to
// stay inside Telegram's flood limits.
type Notifier struct {
	sender  messageSender
	chatID  int64
	limiter *rate.Limiter
	opts    *tele.SendOptions
}

// NewNotifier creates a notifier bound to one chat.
func NewNotifier(sender messageSender, chatID int64) *Notifier {
	return &Notifier{
		sender:  sender,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		opts: &tele.SendOptions{
			ParseMode:             tele.ModeMarkdown,
			DisableWebPagePreview: true,
		},
	}
}

// Send sends a single message to the configured chat.
func (n *Notifier) Send(text string) error {
	_, err := n.sender.Send(&tele.Chat{ID: n.chatID}, text, n.opts)
	return err
}

// SendWithRetry sends a message with exponential backoff retry.
func (n *Notifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := n.Send(text); err != nil {
			lastErr = err
			backoff := time.Duration(1<<uint(i)) * time.Second
			log.Printf("[WARN] Telegram send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

// Broadcast sends each message in order, giving up on the first one that
// exhausts its retries.
func (n *Notifier) Broadcast(ctx context.Context, messages []string) error {
	for _, msg := range messages {
		if err := n.limiter.Wait(ctx); err != nil {
			return err
		}
		if err := n.SendWithRetry(ctx, msg, 2); err != nil {
			return err
		}
	}
	return nil
}
