// Package docs registers the OpenAPI document served by Swagger UI.
//
// @title           Foodgram API
// @version         1.0.0
// @description     Recipe sharing service: recipes, tags, ingredients, favorites,
// @description     shopping cart, subscriptions and short links.
// @description
// @description     ## Authentication
// @description     Obtain a token from /api/auth/token/login/ and send it as
// @description     `Authorization: Token <token>` (the `Bearer` scheme is accepted too).
// @description
// @description     ## Error Handling
// @description     All errors follow RFC 7807 Problem Details.
//
// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @securityDefinitions.apikey  TokenAuth
// @in                          header
// @name                        Authorization
// @description                 Format: "Token {token}"
//
// @tag.name auth
// @tag.description Token login and logout
//
// @tag.name users
// @tag.description Accounts, avatars and subscriptions
//
// @tag.name tags
// @tag.description Recipe tags
//
// @tag.name ingredients
// @tag.description Ingredient catalogue
//
// @tag.name recipes
// @tag.description Recipes, favorites, shopping cart and short links
//
// @tag.name admin
// @tag.description Staff moderation
//
// @tag.name system
// @tag.description Health checks
package docs
