// Package users handles user profile reads for the JSON API surface.
// Accounts are immutable after registration, so the package exposes only the
// read path.
package users

import "time"

// UserProfileResponse is the public profile payload. It never carries the
// password hash.
type UserProfileResponse struct {
	ID        int       `json:"id" example:"1"`
	Username  string    `json:"username" example:"alice"`
	CreatedAt time.Time `json:"created_at"`
}
