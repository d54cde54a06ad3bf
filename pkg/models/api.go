package models

// RegisterRequest is the body of a user sign-up
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest is the body of a token login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued auth token
type LoginResponse struct {
	AuthToken string `json:"auth_token"`
}

// SetPasswordRequest changes the current user's password
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// SetAvatarRequest carries a base64 data URI image
type SetAvatarRequest struct {
	Avatar string `json:"avatar" validate:"required"`
}

// AvatarResponse is returned after an avatar upload
type AvatarResponse struct {
	Avatar string `json:"avatar"`
}

// UserCreatedResponse is returned after registration
type UserCreatedResponse struct {
	Email     string `json:"email"`
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UserResponse is the public representation of a user as seen by a viewer
type UserResponse struct {
	Email        string  `json:"email"`
	ID           uint    `json:"id"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar"`
}

// UserWithRecipesResponse is a subscription entry
type UserWithRecipesResponse struct {
	UserResponse
	Recipes      []RecipeMinified `json:"recipes"`
	RecipesCount int64            `json:"recipes_count"`
}

// RecipeIngredientInput is one ingredient line of a recipe write
type RecipeIngredientInput struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"required,min=1,max=32000"`
}

// CreateRecipeRequest is the body of a recipe create or full update
type CreateRecipeRequest struct {
	Ingredients []RecipeIngredientInput `json:"ingredients" validate:"required,min=1,dive"`
	Tags        []uint                  `json:"tags" validate:"required,min=1,unique"`
	Image       string                  `json:"image" validate:"required"`
	Name        string                  `json:"name" validate:"required,max=256"`
	Text        string                  `json:"text" validate:"required"`
	CookingTime int                     `json:"cooking_time" validate:"required,min=1,max=32000"`
}

// UpdateRecipeRequest is the body of a partial recipe update.
// Ingredients are always required; other fields keep their value when omitted.
type UpdateRecipeRequest struct {
	Ingredients []RecipeIngredientInput `json:"ingredients" validate:"required,min=1,dive"`
	Tags        []uint                  `json:"tags" validate:"omitempty,min=1,unique"`
	Image       *string                 `json:"image" validate:"omitempty"`
	Name        *string                 `json:"name" validate:"omitempty,max=256"`
	Text        *string                 `json:"text" validate:"omitempty"`
	CookingTime *int                    `json:"cooking_time" validate:"omitempty,min=1,max=32000"`
}

// RecipeIngredientResponse is an ingredient line in a recipe representation
type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse is the full recipe representation
type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Tags             []Tag                      `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// RecipeMinified is the short recipe representation used by lists and subscriptions
type RecipeMinified struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// RecipeFilter holds list query parameters
type RecipeFilter struct {
	AuthorID         *uint
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}

// ShortLinkResponse is the body of get-link
type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

// ShoppingListItem is one aggregated line of the shopping list
type ShoppingListItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	TotalAmount     int64  `json:"total_amount"`
}

// IngredientSuggestion is a fuzzy ingredient match
type IngredientSuggestion struct {
	Ingredient
	Distance int `json:"distance"`
}

// AdminRecipeRow is a recipe row of the staff listing
type AdminRecipeRow struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	AuthorID       uint   `json:"author_id"`
	AuthorUsername string `json:"author_username"`
	CookingTime    int    `json:"cooking_time"`
	FavoritesCount int64  `json:"favorites_count"`
}

// AdminUserRow is a user row of the staff listing
type AdminUserRow struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsStaff      bool   `json:"is_staff"`
	RecipesCount int64  `json:"recipes_count"`
}

// IngredientFixture is a row of the ingredient data file
type IngredientFixture struct {
	Name            string `json:"name" yaml:"name" validate:"required,max=128"`
	MeasurementUnit string `json:"measurement_unit" yaml:"measurement_unit" validate:"required,max=64"`
}

// TagFixture is a row of the tag data file
type TagFixture struct {
	Name  string `json:"name" yaml:"name" validate:"required,max=32"`
	Color string `json:"color" yaml:"color" validate:"required,len=7,hexcolor"`
	Slug  string `json:"slug" yaml:"slug" validate:"required,max=32,slug"`
}
