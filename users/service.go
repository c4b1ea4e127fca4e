package users

import (
	"context"

	"github.com/user/tareas-go/auth"
)

// Service provides user profile lookups.
type Service interface {
	GetUserProfile(ctx context.Context, userID int) (*UserProfileResponse, error)
}

// credentialService adapts the credential store to profile reads, mapping
// the stored user to the public profile shape.
type credentialService struct {
	store auth.Service
}

// NewService creates a profile Service backed by the credential store.
func NewService(store auth.Service) Service {
	return &credentialService{store: store}
}

// GetUserProfile retrieves a user's profile by their id.
func (s *credentialService) GetUserProfile(ctx context.Context, userID int) (*UserProfileResponse, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserProfileResponse{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}, nil
}
