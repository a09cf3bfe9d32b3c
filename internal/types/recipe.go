package types

// TagResponse represents a tag
type TagResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// IngredientResponse represents an ingredient from the catalogue
type IngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// RecipeIngredientResponse is an ingredient together with its amount in a recipe
type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse is the full representation of a recipe
type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Tags             []TagResponse              `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// RecipeShortResponse is returned by favorite/cart toggles and subscription previews
type RecipeShortResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// IngredientAmount references a catalogue ingredient with a quantity
type IngredientAmount struct {
	ID     uint `json:"id" binding:"required"`
	Amount int  `json:"amount" binding:"required,min=1,max=32000"`
}

// RecipeRequest is the body for creating and updating recipes
type RecipeRequest struct {
	Ingredients []IngredientAmount `json:"ingredients" binding:"required,min=1,dive"`
	Tags        []uint             `json:"tags" binding:"required,min=1"`
	Image       string             `json:"image"`
	Name        string             `json:"name" binding:"required,max=256"`
	Text        string             `json:"text" binding:"required"`
	CookingTime int                `json:"cooking_time" binding:"required,min=1,max=32000"`
	// ShortCode pins the public short code on creation; empty means generate one
	ShortCode string `json:"short_code,omitempty"`
}

// ShortLinkResponse carries the public short link of a recipe
type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}
