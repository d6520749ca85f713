package model

import "time"

// User represents a registered person in the system.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Age        int       `json:"age"`
	Email      string    `json:"email"`
	AvatarPath string    `json:"avatar_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
