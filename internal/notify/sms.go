// AngelaMos | 2026
// sms.go

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/carterperez-dev/templates/shop-backend/internal/config"
)

type EskizSender struct {
	client *resty.Client
	from   string
}

type eskizResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NewEskizSender(cfg config.EskizConfig) *EskizSender {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.Token).
		SetHeader("Accept", "application/json")

	return &EskizSender{client: client, from: cfg.From}
}

// SendSMS posts to /message/sms/send. Eskiz expects the number without
// the leading plus sign.
func (s *EskizSender) SendSMS(ctx context.Context, phone, message string) error {
	var result eskizResponse

	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"mobile_phone": strings.TrimPrefix(phone, "+"),
			"message":      message,
			"from":         s.from,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/message/sms/send")
	if err != nil {
		return fmt.Errorf("eskiz request: %w", err)
	}

	if resp.IsError() {
		err := fmt.Errorf("eskiz returned %d: %s", resp.StatusCode(), result.Message)
		if isPermanentStatus(resp.StatusCode()) {
			return fmt.Errorf("%w: %w", ErrPermanent, err)
		}
		return err
	}

	return nil
}

func isPermanentStatus(code int) bool {
	return code >= 400 && code < 500 && code != http.StatusTooManyRequests
}

type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(cfg config.TwilioConfig) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioSender{client: client, from: cfg.From}
}

func (s *TwilioSender) SendSMS(_ context.Context, phone, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(s.from)
	params.SetBody(message)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}

	return nil
}

type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendSMS(_ context.Context, phone, message string) error {
	s.logger.Info("sms not sent, provider is log",
		"phone", phone,
		"message", message,
	)
	return nil
}

// NewSMSSender picks the transport named by cfg.Provider.
func NewSMSSender(cfg config.SMSConfig, logger *slog.Logger) (SMSSender, error) {
	switch cfg.Provider {
	case config.SMSProviderEskiz:
		return NewEskizSender(cfg.Eskiz), nil
	case config.SMSProviderTwilio:
		return NewTwilioSender(cfg.Twilio), nil
	case config.SMSProviderLog, "":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown sms provider %q", cfg.Provider)
	}
}

func NewMailer(cfg config.MailConfig, logger *slog.Logger) Mailer {
	if cfg.Enabled() {
		return NewSMTPMailer(cfg)
	}
	return NewLogMailer(logger)
}
