package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/foodgram/backend/api"
	"github.com/foodgram/backend/internal/auth"
	"github.com/foodgram/backend/internal/identities"
	"github.com/foodgram/backend/internal/infrastructure/config"
	"github.com/foodgram/backend/internal/infrastructure/ratelimit"
	"github.com/foodgram/backend/internal/ingredients"
	"github.com/foodgram/backend/internal/media"
	"github.com/foodgram/backend/internal/recipes"
	"github.com/foodgram/backend/internal/shortlinks"
	"github.com/foodgram/backend/internal/subscriptions"
	"github.com/foodgram/backend/internal/tags"
	"github.com/foodgram/backend/pkg/models"
	"github.com/foodgram/backend/testutil"
	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const imageURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

type testEnv struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	auth   *auth.Service
}

// helper to set up router
func setup(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	db := testutil.NewDB(t)
	storage := media.NewLocalStorage(afero.NewMemMapFs(), "http://testserver/media")
	users := identities.NewService(logger, db, storage, 0)
	authSvc := auth.NewAuthService(logger, db, "test-secret", time.Hour)

	cfg := &config.Config{
		Server:    config.ServerConfig{BaseURL: "http://testserver"},
		RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 3},
		Tracing:   config.TracingConfig{ServiceName: "foodgram-test"},
	}
	svc := api.Services{
		Auth:          authSvc,
		Users:         users,
		Tags:          tags.NewService(logger, db),
		Ingredients:   ingredients.NewService(logger, db),
		Recipes:       recipes.NewService(logger, db, users, storage, 0),
		Subscriptions: subscriptions.NewService(logger, db, users, storage),
		ShortLinks:    shortlinks.NewService(logger, db, nil, 6, "http://testserver"),
		Storage:       storage,
	}
	limiter := ratelimit.NewRegistry(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, time.Minute)
	srv := api.NewServer(logger, cfg, svc, limiter)

	return &testEnv{t: t, router: srv.Router(), db: db, auth: authSvc}
}

func (e *testEnv) token(user *models.User) string {
	token, err := e.auth.IssueToken(user)
	require.NoError(e.t, err)
	return token
}

func (e *testEnv) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func problemFields(t *testing.T, w *httptest.ResponseRecorder) []string {
	body := decode(t, w)
	raw, _ := body["errors"].([]interface{})
	fields := make([]string, 0, len(raw))
	for _, item := range raw {
		fields = append(fields, item.(map[string]interface{})["field"].(string))
	}
	return fields
}

func TestHealthCheck(t *testing.T) {
	e := setup(t)
	w := e.do(http.MethodGet, "/api/health/", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Healthy", w.Body.String())
}

func TestRegisterLoginLogout(t *testing.T) {
	e := setup(t)

	w := e.do(http.MethodPost, "/api/users/", map[string]string{
		"email":      "Chef@Example.com",
		"username":   "chef",
		"first_name": "<i>Gordon</i>",
		"last_name":  "Ramsay",
		"password":   "kitchen-nightmares",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "chef@example.com", created["email"])
	assert.Equal(t, "Gordon", created["first_name"])
	assert.NotContains(t, created, "password")

	w = e.do(http.MethodPost, "/api/auth/token/login/", map[string]string{
		"email":    "chef@example.com",
		"password": "kitchen-nightmares",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decode(t, w)["auth_token"].(string)
	require.NotEmpty(t, token)

	w = e.do(http.MethodGet, "/api/users/me/", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	assert.Equal(t, "chef", me["username"])
	assert.Equal(t, false, me["is_subscribed"])
	assert.Nil(t, me["avatar"])

	w = e.do(http.MethodPost, "/api/auth/token/logout/", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(http.MethodGet, "/api/users/me/", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	e := setup(t)
	testutil.CreateUser(t, e.db, "taken")

	w := e.do(http.MethodPost, "/api/users/", map[string]string{
		"email":      "taken@example.com",
		"username":   "fresh",
		"first_name": "A",
		"last_name":  "B",
		"password":   "long-enough",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"email"}, problemFields(t, w))

	w = e.do(http.MethodPost, "/api/users/", map[string]string{"username": "me"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/problem+json")
	assert.Subset(t, problemFields(t, w), []string{"email", "username", "first_name", "last_name", "password"})
}

func TestLoginIsThrottled(t *testing.T) {
	e := setup(t)
	creds := map[string]string{"email": "nobody@example.com", "password": "wrong-password"}

	for i := 0; i < 3; i++ {
		w := e.do(http.MethodPost, "/api/auth/token/login/", creds, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	w := e.do(http.MethodPost, "/api/auth/token/login/", creds, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestAuthenticationRequired(t *testing.T) {
	e := setup(t)

	w := e.do(http.MethodPost, "/api/recipes/", map[string]interface{}{}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/problem+json")

	w = e.do(http.MethodGet, "/api/recipes/download_shopping_cart/", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodGet, "/api/recipes/", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/recipes/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerSchemeAccepted(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")

	req := httptest.NewRequest(http.MethodGet, "/api/users/me/", nil)
	req.Header.Set("Authorization", "Bearer "+e.token(alice))
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecipeLifecycle(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	salt := testutil.CreateIngredient(t, e.db, "salt", "g")
	lunch := testutil.CreateTag(t, e.db, "lunch")

	w := e.do(http.MethodPost, "/api/recipes/", map[string]interface{}{
		"ingredients":  []map[string]interface{}{{"id": salt.ID, "amount": 3}},
		"tags":         []uint{lunch.ID},
		"image":        imageURI,
		"name":         "<b>Salted</b> water",
		"text":         "Add salt & boil.",
		"cooking_time": 5,
	}, e.token(alice))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "Salted water", created["name"])
	assert.Equal(t, "Add salt & boil.", created["text"])
	assert.Equal(t, false, created["is_favorited"])
	assert.True(t, strings.HasPrefix(created["image"].(string), "http://testserver/media/recipes/images/"))
	assert.Equal(t, "alice", created["author"].(map[string]interface{})["username"])
	id := uint(created["id"].(float64))
	path := fmt.Sprintf("/api/recipes/%d/", id)

	patch := map[string]interface{}{
		"ingredients": []map[string]interface{}{{"id": salt.ID, "amount": 7}},
		"name":        "Brine",
	}
	w = e.do(http.MethodPatch, path, patch, e.token(bob))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodPatch, path, map[string]interface{}{"name": "Brine"}, e.token(alice))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"ingredients"}, problemFields(t, w))

	w = e.do(http.MethodPatch, path, patch, e.token(alice))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode(t, w)
	assert.Equal(t, "Brine", updated["name"])
	assert.Len(t, updated["tags"], 1)
	ingredientsOut := updated["ingredients"].([]interface{})
	require.Len(t, ingredientsOut, 1)
	assert.Equal(t, float64(7), ingredientsOut[0].(map[string]interface{})["amount"])

	w = e.do(http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodDelete, path, nil, e.token(bob))
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = e.do(http.MethodDelete, path, nil, e.token(alice))
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, "/api/recipes/abc/", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipeWritesCheckOwnershipBeforeBody(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	recipe := testutil.CreateRecipe(t, e.db, alice, "Soup", nil)
	path := fmt.Sprintf("/api/recipes/%d/", recipe.ID)

	for _, method := range []string{http.MethodPatch, http.MethodPut} {
		w := e.do(method, path, nil, e.token(bob))
		assert.Equal(t, http.StatusForbidden, w.Code, method)

		w = e.do(method, path, map[string]interface{}{"name": 42}, e.token(bob))
		assert.Equal(t, http.StatusForbidden, w.Code, method)

		w = e.do(method, "/api/recipes/9999/", nil, e.token(bob))
		assert.Equal(t, http.StatusNotFound, w.Code, method)

		w = e.do(method, path, nil, e.token(alice))
		assert.Equal(t, http.StatusBadRequest, w.Code, method)
	}
}

func TestReplaceRecipe(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	salt := testutil.CreateIngredient(t, e.db, "salt", "g")
	lunch := testutil.CreateTag(t, e.db, "lunch")
	dinner := testutil.CreateTag(t, e.db, "dinner")
	recipe := testutil.CreateRecipe(t, e.db, alice, "Soup", map[*models.Ingredient]int{salt: 1}, lunch)
	path := fmt.Sprintf("/api/recipes/%d/", recipe.ID)

	w := e.do(http.MethodPut, path, map[string]interface{}{"name": "Stew"}, e.token(alice))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPut, path, map[string]interface{}{
		"ingredients":  []map[string]interface{}{{"id": salt.ID, "amount": 2}},
		"tags":         []uint{dinner.ID},
		"image":        imageURI,
		"name":         "Stew",
		"text":         "Simmer.",
		"cooking_time": 90,
	}, e.token(alice))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Stew", body["name"])
	assert.Equal(t, float64(90), body["cooking_time"])
	assert.Equal(t, "dinner", body["tags"].([]interface{})[0].(map[string]interface{})["slug"])
}

func TestRecipePagination(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	for i := 0; i < 8; i++ {
		testutil.CreateRecipe(t, e.db, alice, fmt.Sprintf("Recipe %d", i), nil)
	}

	w := e.do(http.MethodGet, "/api/recipes/?limit=3", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.Equal(t, float64(8), page["count"])
	assert.Len(t, page["results"], 3)
	assert.Equal(t, "http://example.com/api/recipes/?limit=3&page=2", page["next"])
	assert.Nil(t, page["previous"])

	w = e.do(http.MethodGet, "/api/recipes/?limit=3&page=3", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page = decode(t, w)
	assert.Len(t, page["results"], 2)
	assert.Nil(t, page["next"])
	assert.Equal(t, "http://example.com/api/recipes/?limit=3&page=2", page["previous"])

	w = e.do(http.MethodGet, "/api/recipes/?limit=3&page=2", nil, "")
	page = decode(t, w)
	assert.Equal(t, "http://example.com/api/recipes/?limit=3", page["previous"])

	w = e.do(http.MethodGet, "/api/recipes/?limit=3&page=4", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = e.do(http.MethodGet, "/api/recipes/?page=abc", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, "/api/recipes/", nil, "")
	assert.Len(t, decode(t, w)["results"], 6)
}

func TestRecipeFilters(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	lunch := testutil.CreateTag(t, e.db, "lunch")
	dinner := testutil.CreateTag(t, e.db, "dinner")
	testutil.CreateRecipe(t, e.db, alice, "Salad", nil, lunch)
	testutil.CreateRecipe(t, e.db, bob, "Steak", nil, dinner)
	favorite := testutil.CreateRecipe(t, e.db, bob, "Pie", nil)

	count := func(path, token string) float64 {
		w := e.do(http.MethodGet, path, nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode(t, w)["count"].(float64)
	}

	assert.Equal(t, float64(2), count(fmt.Sprintf("/api/recipes/?author=%d", bob.ID), ""))
	assert.Equal(t, float64(2), count("/api/recipes/?tags=lunch&tags=dinner", ""))
	assert.Equal(t, float64(1), count("/api/recipes/?tags=lunch", ""))

	w := e.do(http.MethodPost, fmt.Sprintf("/api/recipes/%d/favorite/", favorite.ID), nil, e.token(alice))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(1), count("/api/recipes/?is_favorited=1", e.token(alice)))
	assert.Equal(t, float64(0), count("/api/recipes/?is_favorited=1", ""))
	assert.Equal(t, float64(0), count("/api/recipes/?is_in_shopping_cart=1", e.token(alice)))

	w = e.do(http.MethodGet, "/api/recipes/?author=bob", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFavoritesAndShoppingCart(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	salt := testutil.CreateIngredient(t, e.db, "salt", "g")
	sugar := testutil.CreateIngredient(t, e.db, "sugar", "g")
	cake := testutil.CreateRecipe(t, e.db, alice, "Cake", map[*models.Ingredient]int{salt: 5, sugar: 100})
	cookies := testutil.CreateRecipe(t, e.db, alice, "Cookies", map[*models.Ingredient]int{sugar: 50})
	token := e.token(alice)

	favPath := fmt.Sprintf("/api/recipes/%d/favorite/", cake.ID)
	w := e.do(http.MethodPost, favPath, nil, token)
	require.Equal(t, http.StatusCreated, w.Code)
	minified := decode(t, w)
	assert.Equal(t, "Cake", minified["name"])
	assert.ElementsMatch(t, []string{"id", "name", "image", "cooking_time"}, keys(minified))

	w = e.do(http.MethodPost, favPath, nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["detail"], "already in your favorite")

	w = e.do(http.MethodDelete, favPath, nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(http.MethodDelete, favPath, nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/recipes/9999/favorite/", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, id := range []uint{cake.ID, cookies.ID} {
		w = e.do(http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart/", id), nil, token)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = e.do(http.MethodGet, "/api/recipes/download_shopping_cart/", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, `attachment; filename="shopping_list.txt"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Shopping List\n\nsalt (g) - 5\nsugar (g) - 150", w.Body.String())

	w = e.do(http.MethodDelete, fmt.Sprintf("/api/recipes/%d/shopping_cart/", cookies.ID), nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(http.MethodGet, "/api/recipes/download_shopping_cart/", nil, token)
	assert.Equal(t, "Shopping List\n\nsalt (g) - 5\nsugar (g) - 100", w.Body.String())
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestSubscriptions(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	testutil.CreateRecipe(t, e.db, bob, "First", nil)
	testutil.CreateRecipe(t, e.db, bob, "Second", nil)
	token := e.token(alice)
	path := fmt.Sprintf("/api/users/%d/subscribe/", bob.ID)

	w := e.do(http.MethodPost, path+"?recipes_limit=1", nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sub := decode(t, w)
	assert.Equal(t, true, sub["is_subscribed"])
	assert.Len(t, sub["recipes"], 1)
	assert.Equal(t, float64(2), sub["recipes_count"])

	w = e.do(http.MethodPost, path, nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe/", alice.ID), nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/users/9999/subscribe/", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, "/api/users/subscriptions/", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.Equal(t, float64(1), page["count"])
	assert.Len(t, page["results"].([]interface{})[0].(map[string]interface{})["recipes"], 2)

	w = e.do(http.MethodGet, fmt.Sprintf("/api/users/%d/", bob.ID), nil, token)
	assert.Equal(t, true, decode(t, w)["is_subscribed"])
	w = e.do(http.MethodGet, fmt.Sprintf("/api/users/%d/", bob.ID), nil, "")
	assert.Equal(t, false, decode(t, w)["is_subscribed"])

	w = e.do(http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvatar(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	token := e.token(alice)

	w := e.do(http.MethodPut, "/api/users/me/avatar/", map[string]string{}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPut, "/api/users/me/avatar/", map[string]string{"avatar": imageURI}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, strings.HasPrefix(decode(t, w)["avatar"].(string), "http://testserver/media/users/avatars/"))

	w = e.do(http.MethodDelete, "/api/users/me/avatar/", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(http.MethodGet, "/api/users/me/", nil, token)
	assert.Nil(t, decode(t, w)["avatar"])
}

func TestShortLinkRedirect(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	recipe := testutil.CreateRecipe(t, e.db, alice, "Soup", nil)

	w := e.do(http.MethodGet, fmt.Sprintf("/api/recipes/%d/get-link/", recipe.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	link := decode(t, w)["short-link"].(string)
	require.True(t, strings.HasPrefix(link, "http://testserver/s/"))

	w = e.do(http.MethodGet, fmt.Sprintf("/api/recipes/%d/get-link/", recipe.ID), nil, "")
	assert.Equal(t, link, decode(t, w)["short-link"])

	w = e.do(http.MethodGet, strings.TrimPrefix(link, "http://testserver"), nil, "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("http://testserver/recipes/%d/", recipe.ID), w.Header().Get("Location"))

	w = e.do(http.MethodGet, "/s/zzzzzz/", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, "/api/recipes/9999/get-link/", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTagsAndIngredients(t *testing.T) {
	e := setup(t)
	lunch := testutil.CreateTag(t, e.db, "lunch")
	testutil.CreateIngredient(t, e.db, "salt", "g")
	testutil.CreateIngredient(t, e.db, "sugar", "g")
	testutil.CreateIngredient(t, e.db, "pepper", "g")

	w := e.do(http.MethodGet, "/api/tags/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var tagList []models.Tag
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tagList))
	require.Len(t, tagList, 1)
	assert.Equal(t, "lunch", tagList[0].Slug)

	w = e.do(http.MethodGet, fmt.Sprintf("/api/tags/%d/", lunch.ID), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = e.do(http.MethodGet, "/api/tags/999/", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, "/api/ingredients/?name=S", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var found []models.Ingredient
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
	require.Len(t, found, 2)
	assert.Equal(t, "salt", found[0].Name)

	w = e.do(http.MethodGet, "/api/ingredients/suggest/?name=peper&limit=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var suggestions []models.IngredientSuggestion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &suggestions))
	require.Len(t, suggestions, 1)
	assert.Equal(t, "pepper", suggestions[0].Name)
}

func TestAdminRequiresStaff(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	recipe := testutil.CreateRecipe(t, e.db, bob, "Soup", nil)

	w := e.do(http.MethodGet, "/api/admin/recipes/", nil, e.token(alice))
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, e.db.Model(alice).Update("is_staff", true).Error)

	w = e.do(http.MethodGet, "/api/admin/recipes/?search=bob", nil, e.token(alice))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["count"])

	w = e.do(http.MethodGet, "/api/admin/users/", nil, e.token(alice))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["count"])

	w = e.do(http.MethodDelete, fmt.Sprintf("/api/admin/recipes/%d/", recipe.ID), nil, e.token(alice))
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(http.MethodGet, fmt.Sprintf("/api/recipes/%d/", recipe.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	e := setup(t)
	w := e.do(http.MethodGet, "/api/nothing-here/", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/problem+json")
}
