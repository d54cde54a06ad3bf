package identities

import (
	"context"

	"github.com/foodgram/backend/common/dbutil"
	"github.com/foodgram/backend/pkg/models"
)

// Represent converts users into their representation for viewerID,
// resolving is_subscribed with a single query.
func (s *Service) Represent(ctx context.Context, viewerID uint, users []models.User) ([]models.UserResponse, error) {
	subscribed := map[uint]bool{}
	if viewerID != 0 && len(users) > 0 {
		ids := make([]uint, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		var authorIDs []uint
		if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
			Where("user_id = ? AND subscribed_to_id IN ?", viewerID, ids).
			Pluck("subscribed_to_id", &authorIDs).Error; err != nil {
			return nil, dbutil.WrapError(err)
		}
		for _, id := range authorIDs {
			subscribed[id] = true
		}
	}

	out := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, models.UserResponse{
			Email:        u.Email,
			ID:           u.ID,
			Username:     u.Username,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			IsSubscribed: subscribed[u.ID],
			Avatar:       s.avatarURL(u.Avatar),
		})
	}
	return out, nil
}

func (s *Service) avatarURL(key string) *string {
	if key == "" {
		return nil
	}
	url := s.storage.URL(key)
	return &url
}
