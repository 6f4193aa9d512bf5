package rest

import (
	"errors"
	"net/http"

	"github.com/goncalofm90/foodi3/internal/core/domain"
	"github.com/goncalofm90/foodi3/internal/core/port"
)

// writeUseCaseError maps a use case error onto the HTTP surface. Benign
// outcomes are handled by the callers since they answer 200.
func writeUseCaseError(w http.ResponseWriter, logger port.LoggerPort, err error) {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		RespondWithJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Sign in to manage favourites", Action: "sign_in"})
	case errors.Is(err, domain.ErrToggleInProgress):
		WriteJSONError(w, http.StatusConflict, "A change for this item is already in progress")
	case errors.Is(err, domain.ErrInvalidItem), errors.Is(err, domain.ErrUnknownItemKind):
		WriteJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrItemNotFound):
		WriteJSONError(w, http.StatusNotFound, "Item not found")
	case errors.Is(err, domain.ErrInconsistentState):
		logger.Error("Favourites index is inconsistent", err, nil)
		RespondWithJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Favourites are out of date, reload them", Action: "reload"})
	case domain.IsRetryable(err):
		logger.Warn("Favourites store unavailable", port.Fields{"error": err.Error()})
		RespondWithJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "Could not reach favourites, try again", Retryable: true})
	case errors.Is(err, domain.ErrContentFetch):
		logger.Warn("Content source unavailable", port.Fields{"error": err.Error()})
		RespondWithJSON(w, http.StatusBadGateway, ErrorResponse{Error: "Could not load recipes, try again", Retryable: true})
	default:
		logger.Error("Unhandled use case error", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func noticeFor(err error) string {
	if errors.Is(err, domain.ErrAlreadyFavourited) {
		return "already_favourited"
	}
	return "duplicate"
}
