package tasks

import "time"

// Task is a single task record. Every task belongs to exactly one user;
// OwnerID and CreatedAt are set at creation and never mutated afterwards.
type Task struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"` // free-form label, e.g. "Alta"/"Media"/"Baja"
	CreatedAt   time.Time `json:"created_at"`
	OwnerID     int       `json:"owner_id"`
}
