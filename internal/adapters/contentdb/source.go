package contentdb

import "github.com/goncalofm90/foodi3/internal/core/domain"

// Source describes the field layout of one TheMealDB-style API. Both public
// APIs share endpoints and shape, only the field names differ.
type Source struct {
	Name             string
	Kind             domain.ItemKind
	ListKey          string
	IDField          string
	NameField        string
	ThumbField       string
	CategoryField    string
	SubcategoryField string
	GlassField       string
	MaxIngredients   int
}

var MealDB = Source{
	Name:             "mealdb",
	Kind:             domain.ItemKindDish,
	ListKey:          "meals",
	IDField:          "idMeal",
	NameField:        "strMeal",
	ThumbField:       "strMealThumb",
	CategoryField:    "strCategory",
	SubcategoryField: "strArea",
	MaxIngredients:   20,
}

var CocktailDB = Source{
	Name:             "cocktaildb",
	Kind:             domain.ItemKindCocktail,
	ListKey:          "drinks",
	IDField:          "idDrink",
	NameField:        "strDrink",
	ThumbField:       "strDrinkThumb",
	CategoryField:    "strCategory",
	SubcategoryField: "strAlcoholic",
	GlassField:       "strGlass",
	MaxIngredients:   15,
}
