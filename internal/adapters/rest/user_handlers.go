package rest

import (
	"net/http"

	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/domain"
	"github.com/goncalofm90/foodi3/internal/core/port"
	"github.com/goncalofm90/foodi3/internal/core/port/usecases_port"
)

type UserHandler struct {
	registerUC usecases_port.RegisterUserUseCasePort
	signOutUC  usecases_port.SignOutUseCasePort
}

func NewUserHandler(registerUC usecases_port.RegisterUserUseCasePort, signOutUC usecases_port.SignOutUseCasePort) *UserHandler {
	return &UserHandler{registerUC: registerUC, signOutUC: signOutUC}
}

// RegisterUser handles POST /api/v1/users/register. The user comes from the
// verified credential, never from the body.
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RegisterUser"})

	user := contextkeys.UserFromContext(r.Context())
	if user == nil {
		RespondWithJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Sign in required", Action: "sign_in"})
		return
	}

	action, err := h.registerUC.Execute(r.Context(), *user)
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}

	status := http.StatusOK
	if action == domain.RegistrationCreated {
		status = http.StatusCreated
	}
	RespondWithJSON(w, status, RegisterUserResponse{Action: string(action)})
}

// SignOut handles POST /api/v1/session/signout.
func (h *UserHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SignOut"})

	if err := h.signOutUC.Execute(r.Context(), userIDFrom(r)); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
