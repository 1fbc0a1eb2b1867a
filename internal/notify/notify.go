// AngelaMos | 2026
// notify.go

package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/carterperez-dev/templates/shop-backend/internal/config"
)

// ErrPermanent marks a delivery failure that retrying cannot fix, such as a
// rejected recipient or bad credentials.
var ErrPermanent = errors.New("permanent delivery failure")

type Mailer interface {
	SendMail(ctx context.Context, to, subject, body string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) error
}

type Dispatcher struct {
	mailer     Mailer
	sms        SMSSender
	maxRetries uint64
	backoff    time.Duration
	codeTTL    time.Duration
	logger     *slog.Logger
}

func NewDispatcher(
	mailer Mailer,
	sms SMSSender,
	cfg config.NotifyConfig,
	codeTTL time.Duration,
	logger *slog.Logger,
) *Dispatcher {
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}

	return &Dispatcher{
		mailer:     mailer,
		sms:        sms,
		maxRetries: cfg.MaxRetries,
		backoff:    backoff,
		codeTTL:    codeTTL,
		logger:     logger,
	}
}

func (d *Dispatcher) SendEmailOTP(ctx context.Context, email, code string) error {
	subject := "Your verification code"
	body := fmt.Sprintf(
		"Your verification code is %s. It is valid for %d minutes.",
		code,
		int(d.codeTTL.Minutes()),
	)

	err := d.deliver(ctx, "email", func(ctx context.Context) error {
		return d.mailer.SendMail(ctx, email, subject, body)
	})
	if err != nil {
		return fmt.Errorf("send email otp: %w", err)
	}

	return nil
}

func (d *Dispatcher) SendPhoneOTP(ctx context.Context, phone, code string) error {
	message := fmt.Sprintf(
		"Verification code: %s. Valid for %d minutes.",
		code,
		int(d.codeTTL.Minutes()),
	)

	err := d.deliver(ctx, "sms", func(ctx context.Context) error {
		return d.sms.SendSMS(ctx, phone, message)
	})
	if err != nil {
		return fmt.Errorf("send phone otp: %w", err)
	}

	return nil
}

func (d *Dispatcher) deliver(
	ctx context.Context,
	channel string,
	send func(context.Context) error,
) error {
	attempt := 0
	backoff := retry.WithMaxRetries(d.maxRetries, retry.NewExponential(d.backoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		err := send(ctx)
		if err == nil {
			return nil
		}

		d.logger.Warn("notification attempt failed",
			"channel", channel,
			"attempt", attempt,
			"error", err,
		)

		if errors.Is(err, ErrPermanent) {
			return err
		}
		return retry.RetryableError(err)
	})
}
