// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/carterperez-dev/templates/shop-backend/internal/core"
	"github.com/carterperez-dev/templates/shop-backend/internal/metrics"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const invalidCredentialsMessage = "invalid email or password"

type UserInfo struct {
	ID           string
	FullName     string
	YearOfBirth  int
	Email        string
	Phone        string
	PasswordHash string
	Role         core.Role
	Status       core.Status
	Avatar       *string
	RegionID     int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *UserInfo) IsActive() bool {
	return u.Status == core.StatusActive
}

type NewAccount struct {
	FullName     string
	YearOfBirth  int
	Email        string
	Phone        string
	PasswordHash string
	Avatar       *string
	RegionID     int64
}

type UserProvider interface {
	Create(ctx context.Context, account NewAccount) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByPhone(ctx context.Context, phone string) (*UserInfo, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)
	Activate(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type SessionRecorder interface {
	Record(ctx context.Context, userID, ipAddress, deviceInfo string) error
}

type CodeEngine interface {
	Generate(identifier string) (string, error)
	Verify(identifier, code string) bool
	Period() time.Duration
}

type Notifier interface {
	SendEmailOTP(ctx context.Context, email, code string) error
	SendPhoneOTP(ctx context.Context, phone, code string) error
}

type Throttle interface {
	Acquire(ctx context.Context, key string) (bool, time.Duration, error)
	Release(ctx context.Context, key string) error
}

type ServiceConfig struct {
	Users    UserProvider
	Sessions SessionRecorder
	JWT      *JWTManager
	EmailOTP CodeEngine
	PhoneOTP CodeEngine
	Notifier Notifier
	Throttle Throttle
	Metrics  *metrics.Metrics
	Tracer   trace.Tracer
	Logger   *slog.Logger

	// RegisterSendTimeout caps how long Register waits on the activation
	// mail. Zero leaves it bounded only by the request context.
	RegisterSendTimeout time.Duration
}

type Service struct {
	users    UserProvider
	sessions SessionRecorder
	jwt      *JWTManager
	emailOTP CodeEngine
	phoneOTP CodeEngine
	notifier Notifier
	throttle Throttle
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	logger   *slog.Logger
	now      func() time.Time

	registerSendTimeout time.Duration
}

func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = core.Noop("auth").Tracer
	}

	return &Service{
		users:    cfg.Users,
		sessions: cfg.Sessions,
		jwt:      cfg.JWT,
		emailOTP: cfg.EmailOTP,
		phoneOTP: cfg.PhoneOTP,
		notifier: cfg.Notifier,
		throttle: cfg.Throttle,
		metrics:  cfg.Metrics,
		tracer:   tracer,
		logger:   logger,

		registerSendTimeout: cfg.RegisterSendTimeout,
		now:      time.Now,
	}
}

// Register creates an Inactive account and mails its activation code.
// A failed mail delivery does not fail registration; the code can be
// requested again through ResendOtp.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (user *UserInfo, err error) {
	ctx, span := core.StartSpan(ctx, s.tracer, "auth.Register")
	defer func() { core.EndSpan(span, err) }()
	defer func() { s.metrics.AuthEvent("register", outcome(err)) }()

	email := normalizeEmail(req.Email)
	phone := strings.TrimSpace(req.Phone)

	if req.YearOfBirth > s.now().Year() {
		return nil, core.FieldError("year_of_birth", "must not be in the future")
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, core.DuplicateError("email")
	}

	exists, err = s.users.PhoneExists(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("check phone: %w", err)
	}
	if exists {
		return nil, core.DuplicateError("phone")
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err = s.users.Create(ctx, NewAccount{
		FullName:     strings.TrimSpace(req.FullName),
		YearOfBirth:  req.YearOfBirth,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		Avatar:       req.Avatar,
		RegionID:     req.RegionID,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	span.SetAttributes(attribute.String("user.id", user.ID))

	sendCtx := ctx
	if s.registerSendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.registerSendTimeout)
		defer cancel()
	}

	if sendErr := s.sendEmailCode(sendCtx, email); sendErr != nil {
		s.logger.WarnContext(ctx, "activation code not delivered",
			"user_id", user.ID,
			"error", sendErr,
		)
	}

	return user, nil
}

// VerifyOtp activates the account owning email. Verifying an already
// active account with a valid code succeeds without a write.
func (s *Service) VerifyOtp(
	ctx context.Context,
	email, code string,
) (user *UserInfo, err error) {
	ctx, span := core.StartSpan(ctx, s.tracer, "auth.VerifyOtp")
	defer func() { core.EndSpan(span, err) }()
	defer func() { s.metrics.AuthEvent("verify_otp", outcome(err)) }()

	email = normalizeEmail(email)

	user, err = s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, lookupError(err)
	}

	return s.activate(ctx, user, s.emailOTP, email, code)
}

func (s *Service) ResendOtp(
	ctx context.Context,
	email string,
) (resp *OtpDispatchResponse, err error) {
	ctx, span := core.StartSpan(ctx, s.tracer, "auth.ResendOtp")
	defer func() { core.EndSpan(span, err) }()
	defer func() { s.metrics.AuthEvent("resend_otp", outcome(err)) }()

	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, lookupError(err)
	}

	if user.IsActive() {
		return nil, core.NewAppError(
			core.ErrInvalidInput,
			"account is already active",
			http.StatusConflict,
			"ALREADY_ACTIVE",
		)
	}

	throttleKey := "email:" + email
	if err := s.acquire(ctx, throttleKey); err != nil {
		return nil, err
	}

	if err := s.sendEmailCode(ctx, email); err != nil {
		s.release(ctx, throttleKey)
		return nil, fmt.Errorf(
			"resend otp: %w",
			core.UpstreamError("could not deliver the verification email"),
		)
	}

	return &OtpDispatchResponse{
		Destination: email,
		ExpiresIn:   int(s.emailOTP.Period().Seconds()),
	}, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	ipAddress, deviceInfo string,
) (resp *AuthResponse, err error) {
	ctx, span := core.StartSpan(ctx, s.tracer, "auth.Login")
	defer func() { core.EndSpan(span, err) }()
	defer func() { s.metrics.AuthEvent("login", outcome(err)) }()

	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, invalidCredentials()
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, invalidCredentials()
	}

	if newHash != "" {
		if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
			s.logger.WarnContext(ctx, "password rehash not stored",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	if !user.IsActive() {
		return nil, core.ForbiddenError(
			"account is not activated, verify the code sent to your email",
		)
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Record(ctx, user.ID, ipAddress, deviceInfo); err != nil {
		return nil, fmt.Errorf("record session: %w", err)
	}

	span.SetAttributes(attribute.String("user.id", user.ID))

	return &AuthResponse{
		User:   ToUserResponse(user),
		Tokens: *tokens,
	}, nil
}

// Refresh mints a new access token from the account's current state, so
// a role change since login is reflected immediately.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken string,
) (resp *TokenResponse, err error) {
	ctx, span := core.StartSpan(ctx, s.tracer, "auth.Refresh")
	defer func() { core.EndSpan(span, err) }()
	defer func() { s.metrics.AuthEvent("refresh", outcome(err)) }()

	if refreshToken == "" {
		return nil, core.UnauthorizedError("missing refresh token")
	}

	claims, err := s.jwt.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, lookupError(err)
	}

	accessToken, err := s.jwt.CreateAccessToken(claimsFor(user))
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	ttl := s.jwt.AccessTokenTTL()
	return &TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(ttl / time.Second),
		ExpiresAt:   s.now().Add(ttl),
	}, nil
}

// SendOtpPhone texts an activation code to a registered phone number.
// Delivery is the whole point of the call, so transport failure is
// reported to the caller.
func (s *Service) SendOtpPhone(
	ctx context.Context,
	phone string,
) (resp *OtpDispatchResponse, err error) {
	ctx, span := core.StartSpan(ctx, s.tracer, "auth.SendOtpPhone")
	defer func() { core.EndSpan(span, err) }()
	defer func() { s.metrics.AuthEvent("send_otp_phone", outcome(err)) }()

	phone = strings.TrimSpace(phone)

	if _, err := s.users.GetByPhone(ctx, phone); err != nil {
		return nil, lookupError(err)
	}

	throttleKey := "phone:" + phone
	if err := s.acquire(ctx, throttleKey); err != nil {
		return nil, err
	}

	code, err := s.phoneOTP.Generate(phone)
	if err != nil {
		s.release(ctx, throttleKey)
		return nil, fmt.Errorf("generate phone otp: %w", err)
	}

	sendErr := s.notifier.SendPhoneOTP(ctx, phone, code)
	s.metrics.Notification("sms", sendErr)
	if sendErr != nil {
		s.release(ctx, throttleKey)
		s.logger.ErrorContext(ctx, "sms delivery failed", "error", sendErr)
		return nil, fmt.Errorf(
			"send otp phone: %w",
			core.UpstreamError("could not deliver the verification sms"),
		)
	}

	return &OtpDispatchResponse{
		Destination: phone,
		ExpiresIn:   int(s.phoneOTP.Period().Seconds()),
	}, nil
}

func (s *Service) VerifyOtpPhone(
	ctx context.Context,
	phone, code string,
) (user *UserInfo, err error) {
	ctx, span := core.StartSpan(ctx, s.tracer, "auth.VerifyOtpPhone")
	defer func() { core.EndSpan(span, err) }()
	defer func() { s.metrics.AuthEvent("verify_otp_phone", outcome(err)) }()

	phone = strings.TrimSpace(phone)

	user, err = s.users.GetByPhone(ctx, phone)
	if err != nil {
		return nil, lookupError(err)
	}

	return s.activate(ctx, user, s.phoneOTP, phone, code)
}

func (s *Service) activate(
	ctx context.Context,
	user *UserInfo,
	engine CodeEngine,
	identifier, code string,
) (*UserInfo, error) {
	if !engine.Verify(identifier, code) {
		return nil, core.ForbiddenError("invalid or expired verification code")
	}

	if user.IsActive() {
		return user, nil
	}

	if err := s.users.Activate(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("activate user: %w", lookupError(err))
	}
	user.Status = core.StatusActive

	return user, nil
}

func (s *Service) sendEmailCode(ctx context.Context, email string) error {
	code, err := s.emailOTP.Generate(email)
	if err != nil {
		return fmt.Errorf("generate email otp: %w", err)
	}

	err = s.notifier.SendEmailOTP(ctx, email, code)
	s.metrics.Notification("email", err)
	return err
}

func (s *Service) acquire(ctx context.Context, key string) error {
	ok, retryAfter, err := s.throttle.Acquire(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "otp throttle unavailable, allowing send",
			"error", err,
		)
		return nil
	}

	if !ok {
		seconds := int(math.Ceil(retryAfter.Seconds()))
		return core.RateLimitedError(fmt.Sprintf(
			"a code was sent recently, retry after %d seconds",
			max(seconds, 1),
		))
	}

	return nil
}

func (s *Service) release(ctx context.Context, key string) {
	if err := s.throttle.Release(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "otp throttle release failed", "error", err)
	}
}

func (s *Service) issueTokens(user *UserInfo) (*TokenResponse, error) {
	claims := claimsFor(user)

	accessToken, err := s.jwt.CreateAccessToken(claims)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refreshToken, err := s.jwt.CreateRefreshToken(claims)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	ttl := s.jwt.AccessTokenTTL()
	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(ttl / time.Second),
		ExpiresAt:    s.now().Add(ttl),
	}, nil
}

func claimsFor(user *UserInfo) TokenClaims {
	return TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}
}

func invalidCredentials() error {
	return fmt.Errorf("%w: %w",
		ErrInvalidCredentials,
		core.UnauthorizedError(invalidCredentialsMessage),
	)
}

func lookupError(err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return core.NotFoundError("user")
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, core.ErrUnauthorized), errors.Is(err, core.ErrForbidden):
		return metrics.OutcomeDenied
	default:
		return metrics.OutcomeFailure
	}
}
