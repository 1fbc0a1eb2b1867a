// AngelaMos | 2026
// otp.go

// Package otp derives time-based one-time codes from a shared secret and
// an account identifier. Codes are never stored: the same secret,
// identifier and time window always yield the same code.
package otp

import (
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/carterperez-dev/templates/shop-backend/internal/config"
)

var ErrEmptySecret = errors.New("otp: shared secret is empty")

type Engine struct {
	secret string
	opts   totp.ValidateOpts
	now    func() time.Time
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(secret string, cfg config.OTPConfig, opts ...Option) (*Engine, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	digits := otp.DigitsSix
	if cfg.Digits == 8 {
		digits = otp.DigitsEight
	}

	period := uint(cfg.Period / time.Second)
	if period == 0 {
		return nil, fmt.Errorf("otp: period must be at least one second")
	}

	e := &Engine{
		secret: secret,
		opts: totp.ValidateOpts{
			Period:    period,
			Skew:      cfg.Skew,
			Digits:    digits,
			Algorithm: otp.AlgorithmSHA1,
		},
		now: time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

func (e *Engine) Generate(identifier string) (string, error) {
	code, err := totp.GenerateCodeCustom(e.key(identifier), e.now().UTC(), e.opts)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return code, nil
}

// Verify accepts codes from the current step and from Skew steps on
// either side of it.
func (e *Engine) Verify(identifier, code string) bool {
	code = strings.TrimSpace(code)
	if len(code) != e.opts.Digits.Length() {
		return false
	}

	valid, err := totp.ValidateCustom(code, e.key(identifier), e.now().UTC(), e.opts)
	if err != nil {
		return false
	}
	return valid
}

func (e *Engine) Period() time.Duration {
	return time.Duration(e.opts.Period) * time.Second
}

func (e *Engine) key(identifier string) string {
	return base32.StdEncoding.
		WithPadding(base32.NoPadding).
		EncodeToString([]byte(e.secret + identifier))
}
