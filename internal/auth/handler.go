// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/shop-backend/internal/core"
	"github.com/carterperez-dev/templates/shop-backend/internal/middleware"
)

const maxDeviceInfoLength = 255

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts the unauthenticated account endpoints on the
// users router. limiter throttles them per client address.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	limiter func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(limiter)

		r.Post("/register", h.Register)
		r.Post("/verify-otp", h.VerifyOtp)
		r.Post("/resend-otp", h.ResendOtp)
		r.Post("/login", h.Login)
		r.Post("/get-access-token", h.Refresh)
		r.Post("/send-otp-phone", h.SendOtpPhone)
		r.Post("/verify-otp-phone", h.VerifyOtpPhone)
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(
		w,
		"account created, a verification code was sent to your email",
		ToUserResponse(user),
	)
}

func (h *Handler) VerifyOtp(w http.ResponseWriter, r *http.Request) {
	var req VerifyOtpRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.service.VerifyOtp(r.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OKWithMessage(w, "account activated", ToUserResponse(user))
}

func (h *Handler) ResendOtp(w http.ResponseWriter, r *http.Request) {
	var req ResendOtpRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.ResendOtp(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OKWithMessage(w, "verification code sent", resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	deviceInfo := r.UserAgent()
	if len(deviceInfo) > maxDeviceInfoLength {
		deviceInfo = deviceInfo[:maxDeviceInfoLength]
	}

	resp, err := h.service.Login(
		r.Context(),
		req,
		middleware.ClientIP(r),
		deviceInfo,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, resp)
}

// Refresh reads the refresh token from the Authorization header, falling
// back to a refresh_token field in the body.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractToken(r)

	if token == "" {
		var req RefreshRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			core.BadRequest(w, "invalid request body")
			return
		}
		token = req.RefreshToken
	}

	resp, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) SendOtpPhone(w http.ResponseWriter, r *http.Request) {
	var req SendOtpPhoneRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.SendOtpPhone(r.Context(), req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OKWithMessage(w, "verification code sent", resp)
}

func (h *Handler) VerifyOtpPhone(w http.ResponseWriter, r *http.Request) {
	var req VerifyOtpPhoneRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.service.VerifyOtpPhone(r.Context(), req.Phone, req.OTP)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OKWithMessage(w, "account activated", ToUserResponse(user))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.ValidationFailed(w, err)
		return false
	}

	return true
}

func writeError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenInvalid):
		core.JSONError(w, core.TokenInvalidError())
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.DuplicateError("account"))
	default:
		core.InternalServerError(w, err)
	}
}
