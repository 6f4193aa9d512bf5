package rest

import (
	"net/http"

	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/domain"
	"github.com/goncalofm90/foodi3/internal/core/port"
	"github.com/goncalofm90/foodi3/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
)

// FavouritesHandler serves /api/v1/favourites. Every route runs behind RequireAuth.
type FavouritesHandler struct {
	loadUC     usecases_port.LoadFavouritesUseCasePort
	snapshotUC usecases_port.GetFavouritesSnapshotUseCasePort
	toggleUC   usecases_port.ToggleFavouriteUseCasePort
	addUC      usecases_port.AddFavouriteUseCasePort
	removeUC   usecases_port.RemoveFavouriteUseCasePort
	listUC     usecases_port.GetUserFavouritesUseCasePort
	subscriber SnapshotSubscriber
}

func NewFavouritesHandler(
	loadUC usecases_port.LoadFavouritesUseCasePort,
	snapshotUC usecases_port.GetFavouritesSnapshotUseCasePort,
	toggleUC usecases_port.ToggleFavouriteUseCasePort,
	addUC usecases_port.AddFavouriteUseCasePort,
	removeUC usecases_port.RemoveFavouriteUseCasePort,
	listUC usecases_port.GetUserFavouritesUseCasePort,
	subscriber SnapshotSubscriber,
) *FavouritesHandler {
	return &FavouritesHandler{
		loadUC:     loadUC,
		snapshotUC: snapshotUC,
		toggleUC:   toggleUC,
		addUC:      addUC,
		removeUC:   removeUC,
		listUC:     listUC,
		subscriber: subscriber,
	}
}

// LoadFavourites handles POST /api/v1/favourites/load.
func (h *FavouritesHandler) LoadFavourites(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "LoadFavourites"})

	snapshot, err := h.loadUC.Execute(r.Context(), userIDFrom(r))
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toSnapshotResponse(snapshot))
}

// GetSnapshot handles GET /api/v1/favourites/snapshot.
func (h *FavouritesHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetSnapshot"})

	snapshot, err := h.snapshotUC.Execute(r.Context(), userIDFrom(r))
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toSnapshotResponse(snapshot))
}

// GetUserFavourites handles GET /api/v1/favourites, the profile list.
func (h *FavouritesHandler) GetUserFavourites(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetUserFavourites"})

	items, err := h.listUC.Execute(r.Context(), userIDFrom(r))
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}

	response := FavouritesListResponse{Items: make([]ItemCardResponse, len(items)), Total: len(items)}
	for i, item := range items {
		card := toItemCard(item)
		card.Favourite = true
		response.Items[i] = card
	}
	RespondWithJSON(w, http.StatusOK, response)
}

// ToggleFavourite handles POST /api/v1/favourites/toggle.
func (h *FavouritesHandler) ToggleFavourite(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ToggleFavourite"})

	var req FavouriteItemRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		logger.Warn("Invalid toggle request", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := toDisplayItem(req.ID, req.Name, req.Kind, req.Thumbnail)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.toggleUC.Execute(r.Context(), userIDFrom(r), item)
	h.respondWrite(w, r, logger, item.ID, result, err, http.StatusOK)
}

// AddFavourite handles POST /api/v1/favourites.
func (h *FavouritesHandler) AddFavourite(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "AddFavourite"})

	var req AddFavouriteRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		logger.Warn("Invalid add request", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := toDisplayItem(req.ID, req.Name, req.Kind, req.Thumbnail)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.addUC.Execute(r.Context(), userIDFrom(r), item)
	h.respondWrite(w, r, logger, item.ID, result, err, http.StatusCreated)
}

// RemoveFavourite handles DELETE /api/v1/favourites/{itemID}.
func (h *FavouritesHandler) RemoveFavourite(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RemoveFavourite"})

	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		WriteJSONError(w, http.StatusBadRequest, "Missing item id")
		return
	}

	result, err := h.removeUC.Execute(r.Context(), userIDFrom(r), domain.DisplayItem{ID: itemID})
	h.respondWrite(w, r, logger, itemID, result, err, http.StatusOK)
}

func (h *FavouritesHandler) respondWrite(w http.ResponseWriter, r *http.Request, logger port.LoggerPort, itemID string, result *domain.ToggleResult, err error, okStatus int) {
	if err == nil {
		RespondWithJSON(w, okStatus, ToggleResponse{
			ItemID:     result.ItemID,
			Favourited: result.Favourited,
			RecordID:   result.RecordID,
			Snapshot:   toSnapshotResponse(result.Snapshot),
		})
		return
	}
	if !domain.IsBenign(err) {
		writeUseCaseError(w, logger, err)
		return
	}

	response := NoticeResponse{Notice: noticeFor(err), ItemID: itemID}
	if snapshot, snapErr := h.snapshotUC.Execute(r.Context(), userIDFrom(r)); snapErr == nil {
		response.Snapshot = toSnapshotResponse(snapshot)
	} else {
		logger.Warn("Could not attach snapshot to notice", port.Fields{"error": snapErr.Error()})
	}
	RespondWithJSON(w, http.StatusOK, response)
}
