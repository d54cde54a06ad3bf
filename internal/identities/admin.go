package identities

import (
	"context"
	"strings"

	"github.com/foodgram/backend/common/dbutil"
	"github.com/foodgram/backend/pkg/models"
	"gorm.io/gorm"
)

// AdminList returns users matching search on email or username, with their recipe counts
func (s *Service) AdminList(ctx context.Context, search string, p dbutil.Pagination) (*dbutil.Page[models.AdminUserRow], error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(users.email) LIKE ? OR LOWER(users.username) LIKE ?", like, like)
	}
	query = query.Session(&gorm.Session{})

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, dbutil.WrapError(err)
	}
	if err := p.Check(count); err != nil {
		return nil, err
	}

	var rows []models.AdminUserRow
	err := query.
		Select("users.id, users.email, users.username, users.first_name, users.last_name, users.is_staff, " +
			"(SELECT COUNT(*) FROM recipes WHERE recipes.author_id = users.id) AS recipes_count").
		Order("users.id").
		Scopes(p.Scope()).
		Scan(&rows).Error
	if err != nil {
		return nil, dbutil.WrapError(err)
	}
	return &dbutil.Page[models.AdminUserRow]{Items: rows, Count: count, Pagination: p}, nil
}
