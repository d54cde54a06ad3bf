package identities

import (
	"context"
	"fmt"
	"strings"

	"github.com/foodgram/backend/common/dbutil"
	"github.com/foodgram/backend/internal/auth"
	"github.com/foodgram/backend/internal/media"
	"github.com/foodgram/backend/pkg/errors"
	"github.com/foodgram/backend/pkg/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errBadCredentials = errors.Invalid.Explain("validation error").
	WithField("invalid_credentials", "non_field_errors", "Unable to log in with provided credentials.")

// Service manages user accounts
type Service struct {
	logger       *zap.Logger
	db           *gorm.DB
	storage      media.Storage
	maxImageSize int
}

// NewService creates a new identities service
func NewService(logger *zap.Logger, db *gorm.DB, storage media.Storage, maxImageSize int) *Service {
	return &Service{
		logger:       logger.Named("identities"),
		db:           db,
		storage:      storage,
		maxImageSize: maxImageSize,
	}
}

// Register registers a new user
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserCreatedResponse, error) {
	db := s.db.WithContext(ctx)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := db.Model(&models.User{}).Where("LOWER(email) = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, errors.Invalid.Explain("validation error").
			WithField("unique", "email", "user with this email already exists.")
	}

	if err := db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return nil, errors.Invalid.Explain("validation error").
			WithField("unique", "username", "A user with that username already exists.")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		// lost a race against a concurrent sign-up
		if dbutil.IsDuplicate(err) {
			return nil, errors.Invalid.Explain("validation error").
				WithField("unique", "email", "user with this email already exists.")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", zap.Uint("user_id", user.ID))
	return &models.UserCreatedResponse{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

// Authenticate checks credentials and returns the matching active user
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := dbutil.FindOne[models.User](s.db.WithContext(ctx).Where("LOWER(email) = ?", email))
	if errors.Is(err, errors.NotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, errBadCredentials
	}
	return user, nil
}

// GetModel loads a user by id
func (s *Service) GetModel(ctx context.Context, id uint) (*models.User, error) {
	user, err := dbutil.FindOne[models.User](s.db.WithContext(ctx).Where("id = ?", id))
	if err != nil {
		if errors.Is(err, errors.NotFound) {
			return nil, errors.NotFound.Explain("No User matches the given query.")
		}
		return nil, err
	}
	return user, nil
}

// Get returns user id as seen by viewerID (0 for anonymous)
func (s *Service) Get(ctx context.Context, viewerID, id uint) (*models.UserResponse, error) {
	user, err := s.GetModel(ctx, id)
	if err != nil {
		return nil, err
	}
	resp, err := s.Represent(ctx, viewerID, []models.User{*user})
	if err != nil {
		return nil, err
	}
	return &resp[0], nil
}

// List returns a page of users ordered by id
func (s *Service) List(ctx context.Context, viewerID uint, p dbutil.Pagination) (*dbutil.Page[models.UserResponse], error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, dbutil.WrapError(err)
	}
	if err := p.Check(count); err != nil {
		return nil, err
	}

	var users []models.User
	if err := db.Order("id").Scopes(p.Scope()).Find(&users).Error; err != nil {
		return nil, dbutil.WrapError(err)
	}

	items, err := s.Represent(ctx, viewerID, users)
	if err != nil {
		return nil, err
	}
	return &dbutil.Page[models.UserResponse]{Items: items, Count: count, Pagination: p}, nil
}

// SetPassword replaces the password after checking the current one
func (s *Service) SetPassword(ctx context.Context, userID uint, req *models.SetPasswordRequest) error {
	user, err := s.GetModel(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return errors.Invalid.Explain("validation error").
			WithField("invalid_password", "current_password", "Invalid password.")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// SetAvatar stores a new avatar and returns its URL
func (s *Service) SetAvatar(ctx context.Context, userID uint, dataURI string) (*models.AvatarResponse, error) {
	user, err := s.GetModel(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := media.Store(ctx, s.storage, "avatar", media.AvatarPrefix, dataURI, s.maxImageSize)
	if err != nil {
		return nil, err
	}
	// Update writes the new key back into user
	oldKey := user.Avatar
	if err := s.db.WithContext(ctx).Model(user).Update("avatar", key).Error; err != nil {
		s.removeImage(ctx, key)
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}
	s.removeImage(ctx, oldKey)

	return &models.AvatarResponse{Avatar: s.storage.URL(key)}, nil
}

// DeleteAvatar clears the avatar of userID
func (s *Service) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.GetModel(ctx, userID)
	if err != nil {
		return err
	}
	oldKey := user.Avatar
	if err := s.db.WithContext(ctx).Model(user).Update("avatar", "").Error; err != nil {
		return fmt.Errorf("failed to clear avatar: %w", err)
	}
	s.removeImage(ctx, oldKey)
	return nil
}

func (s *Service) removeImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete image", zap.String("key", key), zap.Error(err))
	}
}
