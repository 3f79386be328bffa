package validatepasswordresettoken

import (
	"errors"
	"net/http"

	e "authd/internal/core/domain/errors"
	"authd/internal/core/domain/user"
	"authd/internal/core/services"
	service "authd/internal/core/services/validate_password_reset_token"
	"authd/internal/http/handlers/response"

	"github.com/go-chi/chi/v5"
)

const TOKEN_MAX_LEN = 1024

type Handler struct {
	service services.Service[service.Input, service.Result]
}

func New(
	service services.Service[service.Input, service.Result],
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" || len(token) > TOKEN_MAX_LEN {
		response.RenderError(rw, "invalid token", http.StatusBadRequest)
		return
	}

	// The body never identifies the account the token belongs to.
	_, err := h.service.Run(
		r.Context(),
		service.Input{Token: user.PasswordResetToken(token)},
	)
	if errors.Is(err, user.ErrInvalidPasswordResetToken) {
		response.RenderError(rw, "invalid token", http.StatusBadRequest)
		return
	}
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	response.Render(rw, struct{}{}, http.StatusOK)
}
