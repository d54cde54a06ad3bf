package ingredients

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/foodgram/backend/common/dbutil"
	"github.com/foodgram/backend/pkg/errors"
	"github.com/foodgram/backend/pkg/models"
	"github.com/foodgram/backend/pkg/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultSuggestLimit = 10
	MaxSuggestLimit     = 50
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Service serves the ingredient catalogue
type Service struct {
	logger *zap.Logger
	db     *gorm.DB
}

// NewService creates an ingredient catalogue service
func NewService(logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{logger: logger.Named("ingredients"), db: db}
}

// List returns ingredients whose name starts with name, case-insensitively, ordered by name
func (s *Service) List(ctx context.Context, name string) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Order("name")
	prefix := strings.ToLower(strings.TrimSpace(name))
	// sqlite LOWER and LIKE fold ASCII only, so the prefix is matched in Go there
	foldInGo := prefix != "" && s.db.Dialector.Name() == "sqlite"
	if prefix != "" && !foldInGo {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likeEscaper.Replace(prefix)+"%")
	}

	items := []models.Ingredient{}
	if err := query.Find(&items).Error; err != nil {
		return nil, dbutil.WrapError(err)
	}
	if !foldInGo {
		return items, nil
	}

	matched := items[:0]
	for _, item := range items {
		if strings.HasPrefix(strings.ToLower(item.Name), prefix) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Ingredient, error) {
	item, err := dbutil.FindOne[models.Ingredient](s.db.WithContext(ctx).Where("id = ?", id))
	if errors.Is(err, errors.NotFound) {
		return nil, errors.NotFound.Explain("No Ingredient matches the given query.")
	}
	return item, err
}

// Suggest ranks every ingredient by edit distance to name, closest first.
// A name scores the smaller of its whole-name distance and its best word distance.
func (s *Service) Suggest(ctx context.Context, name string, limit int) ([]models.IngredientSuggestion, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return []models.IngredientSuggestion{}, nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	if limit > MaxSuggestLimit {
		limit = MaxSuggestLimit
	}

	var all []models.Ingredient
	if err := s.db.WithContext(ctx).Order("name").Find(&all).Error; err != nil {
		return nil, dbutil.WrapError(err)
	}

	out := make([]models.IngredientSuggestion, 0, len(all))
	for _, item := range all {
		out = append(out, models.IngredientSuggestion{Ingredient: item, Distance: distance(name, strings.ToLower(item.Name))})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func distance(query, name string) int {
	best := levenshtein.ComputeDistance(query, name)
	for _, word := range strings.Fields(name) {
		if d := levenshtein.ComputeDistance(query, word); d < best {
			best = d
		}
	}
	return best
}

// LoadFixtures creates the ingredients not present yet, matching on name and unit.
// Items are validated before anything is written.
// It returns the number of created and already existing ingredients.
func (s *Service) LoadFixtures(ctx context.Context, items []models.IngredientFixture) (created, existing int, err error) {
	v := validation.NewValidator()
	for i, item := range items {
		if err := v.ValidateStruct(&item); err != nil {
			return 0, 0, fmt.Errorf("invalid ingredient fixture #%d %q: %w", i+1, item.Name, err)
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			found, err := dbutil.Exists(tx.Where("name = ? AND measurement_unit = ?", item.Name, item.MeasurementUnit), &models.Ingredient{})
			if err != nil {
				return fmt.Errorf("failed to load ingredient %q: %w", item.Name, err)
			}
			if found {
				existing++
				continue
			}
			ingredient := models.Ingredient{Name: item.Name, MeasurementUnit: item.MeasurementUnit}
			if err := tx.Create(&ingredient).Error; err != nil {
				return fmt.Errorf("failed to load ingredient %q: %w", item.Name, dbutil.WrapError(err))
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	s.logger.Info("ingredients loaded", zap.Int("created", created), zap.Int("existing", existing))
	return created, existing, nil
}
