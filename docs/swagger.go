package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "TokenAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Format: \"Token {token}\""
        }
    },
    "paths": {
        "/api/auth/token/login/": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Obtain an auth token",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.LoginResponse"
                        }
                    },
                    "400": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "429": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.LoginRequest"
                        }
                    }
                ]
            }
        },
        "/api/auth/token/logout/": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Revoke the current auth token",
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "TokenAuth": []
                    }
                ]
            }
        },
        "/api/users/": {
            "get": {
                "tags": [
                    "users"
                ],
                "summary": "List users",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "count": {
                                    "type": "integer"
                                },
                                "next": {
                                    "type": "string"
                                },
                                "previous": {
                                    "type": "string"
                                },
                                "results": {
                                    "type": "array",
                                    "items": {
                                        "$ref": "#/definitions/models.UserResponse"
                                    }
                                }
                            }
                        }
                    },
                    "404": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page number"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page size"
                    }
                ]
            },
            "post": {
                "tags": [
                    "users"
                ],
                "summary": "Register a user",
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/models.UserCreatedResponse"
                        }
                    },
                    "400": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "429": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.RegisterRequest"
                        }
                    }
                ]
            }
        },
        "/api/users/{id}/": {
            "get": {
                "tags": [
                    "users"
                ],
                "summary": "Get a user profile",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.UserResponse"
                        }
                    },
                    "404": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ]
            }
        },
        "/api/users/me/": {
            "get": {
                "tags": [
                    "users"
                ],
                "summary": "Current user",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.UserResponse"
                        }
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "TokenAuth": []
                    }
                ]
            }
        },
        "/api/users/me/avatar/": {
            "put": {
                "tags": [
                    "users"
                ],
                "summary": "Upload an avatar",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.AvatarResponse"
                        }
                    },
                    "400": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.SetAvatarRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "users"
                ],
                "summary": "Remove the avatar",
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "TokenAuth": []
                    }
                ]
            }
        },
        "/api/users/set_password/": {
            "post": {
                "tags": [
                    "users"
                ],
                "summary": "Change password",
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "400": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.SetPasswordRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ]
            }
        },
        "/api/users/subscriptions/": {
            "get": {
                "tags": [
                    "users"
                ],
                "summary": "Authors the current user follows",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "count": {
                                    "type": "integer"
                                },
                                "next": {
                                    "type": "string"
                                },
                                "previous": {
                                    "type": "string"
                                },
                                "results": {
                                    "type": "array",
                                    "items": {
                                        "$ref": "#/definitions/models.UserWithRecipesResponse"
                                    }
                                }
                            }
                        }
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "404": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page number"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page size"
                    },
                    {
                        "name": "recipes_limit",
                        "in": "query",
                        "type": "integer",
                        "required": false
                    }
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ]
            }
        },
        "/api/users/{id}/subscribe/": {
            "post": {
                "tags": [
                    "users"
                ],
                "summary": "Follow an author",
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/models.UserWithRecipesResponse"
                        }
                    },
                    "400": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "404": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "name": "recipes_limit",
                        "in": "query",
                        "type": "integer",
                        "required": false
                    }
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "users"
                ],
                "summary": "Unfollow an author",
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "400": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "404": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ]
            }
        },
        "/api/tags/": {
            "get": {
                "tags": [
                    "tags"
                ],
                "summary": "List tags",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/models.Tag"
                            }
                        }
                    }
                }
            }
        },
        "/api/tags/{id}/": {
            "get": {
                "tags": [
                    "tags"
                ],
                "summary": "Get a tag",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Tag"
                        }
                    },
                    "404": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ]
            }
        },
        "/api/ingredients/": {
            "get": {
                "tags": [
                    "ingredients"
                ],
                "summary": "List ingredients",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/models.Ingredient"
                            }
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "name",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Name prefix"
                    }
                ]
            }
        },
        "/api/ingredients/suggest/": {
            "get": {
                "tags": [
                    "ingredients"
                ],
                "summary": "Fuzzy ingredient suggestions",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/models.IngredientSuggestion"
                            }
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "name",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "required": false
                    }
                ]
            }
        },
        "/api/ingredients/{id}/": {
            "get": {
                "tags": [
                    "ingredients"
                ],
                "summary": "Get an ingredient",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Ingredient"
                        }
                    },
                    "404": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ]
            }
        },
        "/api/recipes/": {
            "get": {
                "tags": [
                    "recipes"
                ],
                "summary": "List recipes",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "count": {
                                    "type": "integer"
                                },
                                "next": {
                                    "type": "string"
                                },
                                "previous": {
                                    "type": "string"
                                },
                                "results": {
                                    "type": "array",
                                    "items": {
                                        "$ref": "#/definitions/models.RecipeResponse"
                                    }
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "404": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page number"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page size"
                    },
                    {
                        "name": "author",
                        "in": "query",
                        "type": "integer",
                        "required": false
                    },
                    {
                        "name": "tags",
                        "in": "query",
                        "type": "array",
                        "items": {
                            "type": "string"
                        },
                        "collectionFormat": "multi"
                    },
                    {
                        "name": "is_favorited",
                        "in": "query",
                        "type": "integer",
                        "required": false
                    },
                    {
                        "name": "is_in_shopping_cart",
                        "in": "query",
                        "type": "integer",
                        "required": false
                    }
                ]
            },
            "post": {
                "tags": [
                    "recipes"
                ],
                "summary": "Create a recipe",
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/models.RecipeResponse"
                        }
                    },
                    "400": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.CreateRecipeRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ]
            }
        },
        "/api/recipes/{id}/": {
            "get": {
                "tags": [
                    "recipes"
                ],
                "summary": "Get a recipe",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.RecipeResponse"
                        }
                    },
                    "404": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ]
            },
            "patch": {
                "tags": [
                    "recipes"
                ],
                "summary": "Partially update a recipe",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.RecipeResponse"
                        }
                    },
                    "400": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "403": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "404": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.UpdateRecipeRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ]
            },
            "put": {
                "tags": [
                    "recipes"
                ],
                "summary": "Replace a recipe",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.RecipeResponse"
                        }
                    },
                    "400": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "403": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "404": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.CreateRecipeRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "recipes"
                ],
                "summary": "Delete a recipe",
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "403": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "404": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ]
            }
        },
        "/api/recipes/{id}/get-link/": {
            "get": {
                "tags": [
                    "recipes"
                ],
                "summary": "Short link to a recipe",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.ShortLinkResponse"
                        }
                    },
                    "404": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ]
            }
        },
        "/api/recipes/{id}/favorite/": {
            "post": {
                "tags": [
                    "recipes"
                ],
                "summary": "Add a recipe to favorites",
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/models.RecipeMinified"
                        }
                    },
                    "400": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "404": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "recipes"
                ],
                "summary": "Remove a recipe from favorites",
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "400": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "404": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ]
            }
        },
        "/api/recipes/{id}/shopping_cart/": {
            "post": {
                "tags": [
                    "recipes"
                ],
                "summary": "Add a recipe to the shopping cart",
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/models.RecipeMinified"
                        }
                    },
                    "400": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "404": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "recipes"
                ],
                "summary": "Remove a recipe from the shopping cart",
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "400": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "404": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ]
            }
        },
        "/api/recipes/download_shopping_cart/": {
            "get": {
                "tags": [
                    "recipes"
                ],
                "summary": "Download the shopping list",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "TokenAuth": []
                    }
                ],
                "produces": [
                    "text/plain"
                ]
            }
        },
        "/s/{code}/": {
            "get": {
                "tags": [
                    "recipes"
                ],
                "summary": "Follow a short link",
                "responses": {
                    "302": {
                        "description": "Redirect"
                    },
                    "404": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "code",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ]
            }
        },
        "/api/admin/recipes/": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Staff recipe listing",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "count": {
                                    "type": "integer"
                                },
                                "next": {
                                    "type": "string"
                                },
                                "previous": {
                                    "type": "string"
                                },
                                "results": {
                                    "type": "array",
                                    "items": {
                                        "$ref": "#/definitions/models.AdminRecipeRow"
                                    }
                                }
                            }
                        }
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "403": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "search",
                        "in": "query",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page number"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page size"
                    }
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ]
            }
        },
        "/api/admin/recipes/{id}/": {
            "delete": {
                "tags": [
                    "admin"
                ],
                "summary": "Delete any recipe",
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "403": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "404": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ]
            }
        },
        "/api/admin/users/": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Staff user listing",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "count": {
                                    "type": "integer"
                                },
                                "next": {
                                    "type": "string"
                                },
                                "previous": {
                                    "type": "string"
                                },
                                "results": {
                                    "type": "array",
                                    "items": {
                                        "$ref": "#/definitions/models.AdminUserRow"
                                    }
                                }
                            }
                        }
                    },
                    "401": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    },
                    "403": {
                        "description": "Problem details",
                        "schema": {
                            "$ref": "#/definitions/errors.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "search",
                        "in": "query",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page number"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page size"
                    }
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ]
            }
        },
        "/api/health/": {
            "get": {
                "tags": [
                    "system"
                ],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "string"
                        }
                    }
                },
                "produces": [
                    "text/plain"
                ]
            }
        }
    },
    "definitions": {
        "errors.ValidationError": {
            "type": "object",
            "properties": {
                "field": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                }
            }
        },
        "errors.ProblemDetails": {
            "type": "object",
            "properties": {
                "type": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                },
                "detail": {
                    "type": "string"
                },
                "instance": {
                    "type": "string"
                },
                "trace_id": {
                    "type": "string"
                },
                "errors": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/errors.ValidationError"
                    }
                }
            }
        },
        "models.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            },
            "required": [
                "email",
                "password"
            ]
        },
        "models.LoginResponse": {
            "type": "object",
            "properties": {
                "auth_token": {
                    "type": "string"
                }
            }
        },
        "models.RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "username": {
                    "type": "string"
                },
                "first_name": {
                    "type": "string"
                },
                "last_name": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            },
            "required": [
                "email",
                "username",
                "first_name",
                "last_name",
                "password"
            ]
        },
        "models.UserCreatedResponse": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "id": {
                    "type": "integer"
                },
                "username": {
                    "type": "string"
                },
                "first_name": {
                    "type": "string"
                },
                "last_name": {
                    "type": "string"
                }
            }
        },
        "models.UserResponse": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "id": {
                    "type": "integer"
                },
                "username": {
                    "type": "string"
                },
                "first_name": {
                    "type": "string"
                },
                "last_name": {
                    "type": "string"
                },
                "is_subscribed": {
                    "type": "boolean"
                },
                "avatar": {
                    "type": "string"
                }
            }
        },
        "models.UserWithRecipesResponse": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "id": {
                    "type": "integer"
                },
                "username": {
                    "type": "string"
                },
                "first_name": {
                    "type": "string"
                },
                "last_name": {
                    "type": "string"
                },
                "is_subscribed": {
                    "type": "boolean"
                },
                "avatar": {
                    "type": "string"
                },
                "recipes": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.RecipeMinified"
                    }
                },
                "recipes_count": {
                    "type": "integer"
                }
            }
        },
        "models.SetPasswordRequest": {
            "type": "object",
            "properties": {
                "current_password": {
                    "type": "string"
                },
                "new_password": {
                    "type": "string"
                }
            },
            "required": [
                "current_password",
                "new_password"
            ]
        },
        "models.SetAvatarRequest": {
            "type": "object",
            "properties": {
                "avatar": {
                    "type": "string",
                    "description": "data:image/...;base64,..."
                }
            },
            "required": [
                "avatar"
            ]
        },
        "models.AvatarResponse": {
            "type": "object",
            "properties": {
                "avatar": {
                    "type": "string"
                }
            }
        },
        "models.Tag": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "color": {
                    "type": "string"
                },
                "slug": {
                    "type": "string"
                }
            }
        },
        "models.Ingredient": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "measurement_unit": {
                    "type": "string"
                }
            }
        },
        "models.IngredientSuggestion": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "measurement_unit": {
                    "type": "string"
                },
                "distance": {
                    "type": "integer"
                }
            }
        },
        "models.RecipeIngredientInput": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "amount": {
                    "type": "integer"
                }
            },
            "required": [
                "id",
                "amount"
            ]
        },
        "models.RecipeIngredientResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "measurement_unit": {
                    "type": "string"
                },
                "amount": {
                    "type": "integer"
                }
            }
        },
        "models.CreateRecipeRequest": {
            "type": "object",
            "properties": {
                "ingredients": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.RecipeIngredientInput"
                    }
                },
                "tags": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                },
                "image": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "text": {
                    "type": "string"
                },
                "cooking_time": {
                    "type": "integer"
                }
            },
            "required": [
                "ingredients",
                "tags",
                "image",
                "name",
                "text",
                "cooking_time"
            ]
        },
        "models.UpdateRecipeRequest": {
            "type": "object",
            "properties": {
                "ingredients": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.RecipeIngredientInput"
                    }
                },
                "tags": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                },
                "image": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "text": {
                    "type": "string"
                },
                "cooking_time": {
                    "type": "integer"
                }
            },
            "required": [
                "ingredients"
            ]
        },
        "models.RecipeResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "tags": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.Tag"
                    }
                },
                "author": {
                    "$ref": "#/definitions/models.UserResponse"
                },
                "ingredients": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.RecipeIngredientResponse"
                    }
                },
                "is_favorited": {
                    "type": "boolean"
                },
                "is_in_shopping_cart": {
                    "type": "boolean"
                },
                "name": {
                    "type": "string"
                },
                "image": {
                    "type": "string"
                },
                "text": {
                    "type": "string"
                },
                "cooking_time": {
                    "type": "integer"
                }
            }
        },
        "models.RecipeMinified": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "image": {
                    "type": "string"
                },
                "cooking_time": {
                    "type": "integer"
                }
            }
        },
        "models.ShortLinkResponse": {
            "type": "object",
            "properties": {
                "short-link": {
                    "type": "string"
                }
            }
        },
        "models.AdminRecipeRow": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "author_id": {
                    "type": "integer"
                },
                "author_username": {
                    "type": "string"
                },
                "cooking_time": {
                    "type": "integer"
                },
                "favorites_count": {
                    "type": "integer"
                }
            }
        },
        "models.AdminUserRow": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "email": {
                    "type": "string"
                },
                "username": {
                    "type": "string"
                },
                "first_name": {
                    "type": "string"
                },
                "last_name": {
                    "type": "string"
                },
                "is_staff": {
                    "type": "boolean"
                },
                "recipes_count": {
                    "type": "integer"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Foodgram API",
	Description:      "Recipe sharing service: recipes, tags, ingredients, favorites, shopping cart, subscriptions and short links.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
