package contentdb

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goncalofm90/foodi3/internal/core/domain"
)

// apiItem is one meal or drink. Every field the APIs return is a string or null.
type apiItem map[string]*string

func (it apiItem) get(key string) string {
	if key == "" {
		return ""
	}
	if v := it[key]; v != nil {
		return strings.TrimSpace(*v)
	}
	return ""
}

// decodeItems extracts the item list under listKey. The APIs answer "no
// results" with null and, for some lookups, with a plain string.
func decodeItems(body []byte, listKey string) ([]apiItem, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}
	raw, ok := envelope[listKey]
	if !ok || len(raw) == 0 || raw[0] != '[' {
		return nil, nil
	}
	var items []apiItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", listKey, err)
	}
	return items, nil
}

func (s Source) toDisplayItem(it apiItem) domain.DisplayItem {
	id := it.get(s.IDField)
	return domain.DisplayItem{
		ID:        id,
		Name:      it.get(s.NameField),
		Kind:      s.Kind,
		Category:  it.get(s.CategoryField),
		Thumbnail: it.get(s.ThumbField),
		Href:      "/" + s.Kind.PathSegment() + "/" + id,
	}
}

func (s Source) toItemDetails(it apiItem) domain.ItemDetails {
	return domain.ItemDetails{
		DisplayItem:  s.toDisplayItem(it),
		Subcategory:  it.get(s.SubcategoryField),
		Glass:        it.get(s.GlassField),
		Instructions: it.get("strInstructions"),
		Ingredients:  s.ingredients(it),
	}
}

// ingredients pairs strIngredientN with strMeasureN, skipping blank slots.
func (s Source) ingredients(it apiItem) []string {
	out := make([]string, 0, s.MaxIngredients)
	for i := 1; i <= s.MaxIngredients; i++ {
		ingredient := it.get(fmt.Sprintf("strIngredient%d", i))
		if ingredient == "" {
			continue
		}
		measure := it.get(fmt.Sprintf("strMeasure%d", i))
		out = append(out, strings.TrimSpace(measure+" "+ingredient))
	}
	return out
}
