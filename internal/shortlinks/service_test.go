package shortlinks

import (
	"context"
	"strings"
	"testing"

	"github.com/foodgram/backend/pkg/errors"
	"github.com/foodgram/backend/pkg/models"
	"github.com/foodgram/backend/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mapCache struct {
	items map[string]uint
	gets  int
}

func newMapCache() *mapCache {
	return &mapCache{items: map[string]uint{}}
}

func (c *mapCache) Get(_ context.Context, code string) (uint, error) {
	c.gets++
	id, ok := c.items[code]
	if !ok {
		return 0, ErrCacheMiss
	}
	return id, nil
}

func (c *mapCache) Set(_ context.Context, code string, recipeID uint) error {
	c.items[code] = recipeID
	return nil
}

func TestGenerateCode(t *testing.T) {
	code, err := generateCode(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(alphabet, r))
	}
}

func TestGetOrCreateIsStable(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(zap.NewNop(), db, nil, 6, "http://foodgram.test/")
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "alice")
	recipe := testutil.CreateRecipe(t, db, author, "Soup", nil)

	first, err := svc.GetOrCreate(ctx, recipe.ID)
	require.NoError(t, err)
	second, err := svc.GetOrCreate(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ShortCode, second.ShortCode)

	var count int64
	require.NoError(t, db.Model(&models.ShortLink{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	resp, err := svc.Link(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://foodgram.test/s/"+first.ShortCode+"/", resp.ShortLink)

	_, err = svc.GetOrCreate(ctx, 999)
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestResolve(t *testing.T) {
	db := testutil.NewDB(t)
	cache := newMapCache()
	svc := NewService(zap.NewNop(), db, cache, 6, "http://foodgram.test")
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "alice")
	recipe := testutil.CreateRecipe(t, db, author, "Soup", nil)
	link, err := svc.GetOrCreate(ctx, recipe.ID)
	require.NoError(t, err)

	id, err := svc.Resolve(ctx, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, id)
	assert.Equal(t, recipe.ID, cache.items[link.ShortCode])

	// served from cache even if the row disappears
	require.NoError(t, db.Where("id = ?", link.ID).Delete(&models.ShortLink{}).Error)
	id, err = svc.Resolve(ctx, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, id)

	_, err = svc.Resolve(ctx, "nope")
	assert.True(t, errors.Is(err, errors.NotFound))

	assert.Equal(t, "http://foodgram.test/recipes/7/", svc.RecipeURL(7))
}
