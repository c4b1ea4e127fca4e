package auth

import "time"

// User represents a registered account. The password hash is never serialized
// into API responses. Usernames are case-sensitive and immutable after
// creation; there is no rename operation.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
