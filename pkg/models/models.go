package models

import (
	"time"
)

// Short code length bounds, matching the short_code column size.
const (
	MaxShortCodeLength   = 10
	DefaultShortCodeSize = 6
)

// User represents a registered account
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Username     string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	FirstName    string    `json:"first_name" gorm:"size:150;not null"`
	LastName     string    `json:"last_name" gorm:"size:150;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	Avatar       string    `json:"-" gorm:"size:512"` // media storage key
	IsStaff      bool      `json:"-" gorm:"not null;default:false"`
	IsActive     bool      `json:"-" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Tag groups recipes (breakfast, lunch, ...)
type Tag struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"size:32;uniqueIndex;not null"`
	Color string `json:"color" gorm:"size:7;not null"`
	Slug  string `json:"slug" gorm:"size:32;uniqueIndex;not null"`
}

// Ingredient is a product with its measurement unit
type Ingredient struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"size:128;not null;uniqueIndex:idx_ingredient_name_unit"`
	MeasurementUnit string `json:"measurement_unit" gorm:"size:64;not null;uniqueIndex:idx_ingredient_name_unit"`
}

// Recipe is a user-authored recipe
type Recipe struct {
	ID                uint               `gorm:"primaryKey"`
	AuthorID          uint               `gorm:"not null;index"`
	Author            User               `gorm:"constraint:OnDelete:CASCADE"`
	Name              string             `gorm:"size:256;not null"`
	Text              string             `gorm:"type:text;not null"`
	Image             string             `gorm:"size:512;not null"` // media storage key
	CookingTime       int                `gorm:"not null;check:cooking_time >= 1"`
	Tags              []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	RecipeIngredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time          `gorm:"index"`
	UpdatedAt         time.Time
}

// RecipeIngredient links a recipe to an ingredient with an amount
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient;index"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE"`
	Amount       int        `gorm:"not null;check:amount >= 1"`
}

// FavoriteRecipe marks a recipe as a user's favorite
type FavoriteRecipe struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_user_recipe"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_favorite_user_recipe;index"`
	Recipe    Recipe    `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"index"`
}

// ShoppingCart holds a recipe in a user's shopping cart
type ShoppingCart struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_recipe"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_cart_user_recipe;index"`
	Recipe    Recipe    `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"index"`
}

// Subscription is a follow relation between two users
type Subscription struct {
	ID             uint      `gorm:"primaryKey"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_subscription_pair"`
	User           User      `gorm:"constraint:OnDelete:CASCADE"`
	SubscribedToID uint      `gorm:"not null;uniqueIndex:idx_subscription_pair;index"`
	SubscribedTo   User      `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time `gorm:"index"`
}

// ShortLink maps a short code to a recipe
type ShortLink struct {
	ID        uint      `gorm:"primaryKey"`
	RecipeID  uint      `gorm:"not null;uniqueIndex"`
	Recipe    Recipe    `gorm:"constraint:OnDelete:CASCADE"`
	ShortCode string    `gorm:"size:10;not null;uniqueIndex"`
	CreatedAt time.Time
}

// RevokedToken stores the hash of a logged-out token until it expires
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&FavoriteRecipe{},
		&ShoppingCart{},
		&Subscription{},
		&ShortLink{},
		&RevokedToken{},
	}
}
