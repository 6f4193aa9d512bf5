package rest

import (
	"net/http"

	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/domain"
	"github.com/goncalofm90/foodi3/internal/core/port"
	"github.com/goncalofm90/foodi3/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
)

// ContentHandler serves the dish and cocktail pages for anonymous and
// signed-in callers alike.
type ContentHandler struct {
	searchUC  usecases_port.SearchItemsUseCasePort
	detailsUC usecases_port.GetItemDetailsUseCasePort
}

func NewContentHandler(searchUC usecases_port.SearchItemsUseCasePort, detailsUC usecases_port.GetItemDetailsUseCasePort) *ContentHandler {
	return &ContentHandler{searchUC: searchUC, detailsUC: detailsUC}
}

// Search handles GET /api/v1/{dishes|cocktails}?q=.
func (h *ContentHandler) Search(kind domain.ItemKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "Search", "kind": kind})

		result, err := h.searchUC.Execute(r.Context(), kind, r.URL.Query().Get("q"), userIDFrom(r))
		if err != nil {
			writeUseCaseError(w, logger, err)
			return
		}

		response := SearchResponse{
			Kind:  string(result.Kind),
			Query: result.Query,
			Items: make([]ItemCardResponse, len(result.Items)),
		}
		for i, item := range result.Items {
			response.Items[i] = toAnnotatedCard(item.DisplayItem, item.FavouriteMark)
		}
		RespondWithJSON(w, http.StatusOK, response)
	}
}

// GetDetails handles GET /api/v1/{dishes|cocktails}/{id}.
func (h *ContentHandler) GetDetails(kind domain.ItemKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID := chi.URLParam(r, "id")
		logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
			"handler": "GetDetails",
			"kind":    kind,
			"item_id": itemID,
		})

		details, err := h.detailsUC.Execute(r.Context(), kind, itemID, userIDFrom(r))
		if err != nil {
			writeUseCaseError(w, logger, err)
			return
		}

		ingredients := details.Ingredients
		if ingredients == nil {
			ingredients = []string{}
		}
		RespondWithJSON(w, http.StatusOK, ItemDetailsResponse{
			ItemCardResponse: toAnnotatedCard(details.DisplayItem, details.FavouriteMark),
			Subcategory:      details.Subcategory,
			Glass:            details.Glass,
			Instructions:     details.Instructions,
			Ingredients:      ingredients,
		})
	}
}
