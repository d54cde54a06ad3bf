package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/foodgram/backend/pkg/errors"
	"github.com/foodgram/backend/pkg/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service issues, validates and revokes auth tokens
type Service struct {
	logger    *zap.Logger
	db        *gorm.DB
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// NewAuthService creates a token service signing with secret
func NewAuthService(logger *zap.Logger, db *gorm.DB, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		logger:    logger.Named("auth"),
		db:        db,
		jwtSecret: []byte(secret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// IssueToken signs a new token for user
func (s *Service) IssueToken(user *models.User) (string, error) {
	now := s.now()
	claims := &TokenClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// ValidateToken validates a JWT token and returns claims
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, errors.Unauthorized.Explain("Invalid token.").Wrap(err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, errors.Unauthorized.Explain("Invalid token.")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("token_hash = ?", hashToken(tokenString)).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check revoked tokens: %w", err)
	}
	if count > 0 {
		return nil, errors.Unauthorized.Explain("Invalid token.")
	}

	return claims, nil
}

// RevokeToken stores the token hash until the token would have expired
func (s *Service) RevokeToken(ctx context.Context, tokenString string) error {
	expiresAt := s.now().Add(s.tokenTTL)

	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err == nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	revoked := &models.RevokedToken{
		TokenHash: hashToken(tokenString),
		ExpiresAt: expiresAt,
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(revoked).Error; err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// PurgeRevoked removes revoked tokens that have expired anyway
func (s *Service) PurgeRevoked(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", s.now()).
		Delete(&models.RevokedToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge revoked tokens: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		s.logger.Debug("purged revoked tokens", zap.Int64("count", result.RowsAffected))
	}
	return result.RowsAffected, nil
}

// hashToken creates a hash of a token for storage
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
