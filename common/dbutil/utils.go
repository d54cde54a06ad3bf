package dbutil

import (
	"github.com/foodgram/backend/pkg/errors"
	"gorm.io/gorm"
)

// FindOne returns the first row matched by db, or errors.NotFound.
func FindOne[T any](db *gorm.DB) (*T, error) {
	var item T
	result := db.Limit(1).Find(&item)
	if result.Error != nil {
		return nil, WrapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, errors.NotFound.Explain("No object matches the given query.")
	}
	return &item, nil
}

// Exists reports whether db matches at least one row of model.
func Exists(db *gorm.DB, model interface{}) (bool, error) {
	var count int64
	if err := db.Model(model).Limit(1).Count(&count).Error; err != nil {
		return false, WrapError(err)
	}
	return count > 0, nil
}
