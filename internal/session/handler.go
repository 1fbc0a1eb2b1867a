// AngelaMos | 2026
// handler.go

package session

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/shop-backend/internal/core"
	"github.com/carterperez-dev/templates/shop-backend/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/sessions", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Get("/me", h.Latest)
		r.Delete("/me", h.DeleteLatest)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = defaultListLimit
	}

	sessions, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()), limit)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToSessionResponseList(sessions))
}

func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Latest(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToSessionResponse(session))
}

func (h *Handler) DeleteLatest(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.DeleteLatest(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OKWithMessage(w, "session deleted", ToSessionResponse(session))
}
