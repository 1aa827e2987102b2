// Package notify delivers push notifications to account devices.
package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Message is one notification for one device.
type Message struct {
	RecipientID string
	Token       string
	Title       string
	Body        string
	Type        string
	Data        map[string]string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

// Outcome records what happened to one message.
type Outcome struct {
	Message Message
	Skipped bool
	Err     error
}

// Dispatch sends every message concurrently and waits for all of them. A
// failed send never cancels or blocks the others. Messages without a device
// token are skipped.
func Dispatch(ctx context.Context, sender Sender, msgs []Message) []Outcome {
	outcomes := make([]Outcome, len(msgs))
	var wg sync.WaitGroup
	for i, msg := range msgs {
		outcomes[i].Message = msg
		if msg.Token == "" {
			outcomes[i].Skipped = true
			continue
		}
		wg.Add(1)
		go func(i int, msg Message) {
			defer wg.Done()
			outcomes[i].Err = sender.Send(ctx, msg)
		}(i, msg)
	}
	wg.Wait()
	return outcomes
}

// LogOutcomes writes one log line per outcome.
func LogOutcomes(logger zerolog.Logger, event string, outcomes []Outcome) {
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			logger.Warn().Err(o.Err).Str("event", event).Str("recipient_id", o.Message.RecipientID).Msg("notification failed")
		case o.Skipped:
			logger.Debug().Str("event", event).Str("recipient_id", o.Message.RecipientID).Msg("notification skipped, no device token")
		default:
			logger.Debug().Str("event", event).Str("recipient_id", o.Message.RecipientID).Msg("notification sent")
		}
	}
}

// LogSender only logs messages. It stands in when push credentials are not
// configured.
type LogSender struct {
	Logger zerolog.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	s.Logger.Info().
		Str("recipient_id", msg.RecipientID).
		Str("title", msg.Title).
		Str("type", msg.Type).
		Msg("push notification (not delivered, firebase disabled)")
	return nil
}
