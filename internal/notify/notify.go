// Package notify delivers reservation notices to the operations team and
// confirmations to renters over Telegram and email.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"rentacar/internal/metrics"
)

// Audience selects who a message is for.
type Audience string

const (
	AudienceOps    Audience = "ops"
	AudienceRenter Audience = "renter"
)

// Message is one notification. To is required for renter messages.
type Message struct {
	Audience Audience
	To       string
	ToName   string
	Subject  string
	Text     string
	HTML     string
}

// Channel is one delivery transport.
type Channel interface {
	Name() string
	// Accepts reports whether the channel delivers messages for the audience.
	Accepts(a Audience) bool
	Send(ctx context.Context, msg Message) error
}

// SendError is a transport failure with a status code.
type SendError struct {
	Channel    string
	Code       int
	Message    string
	RetryAfter time.Duration
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s error %d: %s", e.Channel, e.Code, e.Message)
}

// permanent reports whether retrying cannot help.
func (e *SendError) permanent() bool {
	return e.Code >= 400 && e.Code < 500 && e.Code != 429
}

// RetryConfig holds configuration for retry logic.
type RetryConfig struct {
	MaxRetries  int
	RetryDelays []time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		RetryDelays: []time.Duration{
			1 * time.Second,
			5 * time.Second,
			30 * time.Second,
		},
	}
}

// Notifier fans a message out to every channel that accepts its audience.
type Notifier struct {
	channels []Channel
	limiter  *rate.Limiter
	retry    RetryConfig
	logger   *zerolog.Logger
}

// NewNotifier creates a notifier sending at most perSecond messages per second.
func NewNotifier(channels []Channel, perSecond float64, retry RetryConfig, logger *zerolog.Logger) *Notifier {
	if perSecond <= 0 {
		perSecond = 20
	}
	return &Notifier{
		channels: channels,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), int(perSecond)+1),
		retry:    retry,
		logger:   logger,
	}
}

// Deliver sends msg on every accepting channel. It returns the joined
// errors of the channels that failed after retries.
func (n *Notifier) Deliver(ctx context.Context, msg Message) error {
	var errs []error
	for _, ch := range n.channels {
		if !ch.Accepts(msg.Audience) {
			continue
		}
		err := n.sendWithRetry(ctx, ch, msg)
		metrics.IncNotification(ch.Name(), err)
		if err != nil {
			n.logger.Error().Err(err).Str("channel", ch.Name()).Str("subject", msg.Subject).Msg("Notification failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) sendWithRetry(ctx context.Context, ch Channel, msg Message) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= n.retry.MaxRetries; attempt++ {
		err := ch.Send(ctx, msg)
		if err == nil {
			return nil
		}
		lastErr = err

		var wait time.Duration
		var sendErr *SendError
		if errors.As(err, &sendErr) {
			if sendErr.permanent() {
				return err
			}
			wait = sendErr.RetryAfter
		}
		if attempt == n.retry.MaxRetries {
			break
		}
		if wait == 0 && attempt < len(n.retry.RetryDelays) {
			wait = n.retry.RetryDelays[attempt]
		}

		n.logger.Info().
			Str("channel", ch.Name()).
			Int("attempt", attempt+1).
			Dur("delay", wait).
			Err(err).
			Msg("Retrying notification")

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
