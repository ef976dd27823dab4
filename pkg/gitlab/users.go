package gitlab

import (
	"context"
	"time"
)

// User is the subset of user fields most callers need.
type User struct {
	ID        UserID     `json:"id"         yaml:"id"`
	Username  string     `json:"username"   yaml:"username"`
	Name      string     `json:"name"       yaml:"name"`
	State     string     `json:"state"      yaml:"state"`
	Email     string     `json:"email"      yaml:"email,omitempty"`
	IsAdmin   bool       `json:"is_admin"   yaml:"is_admin"`
	Bot       bool       `json:"bot"        yaml:"bot"`
	WebURL    string     `json:"web_url"    yaml:"web_url"`
	AvatarURL *string    `json:"avatar_url" yaml:"avatar_url,omitempty"`
	CreatedAt *time.Time `json:"created_at" yaml:"created_at,omitempty"`
}

// UsersService groups user endpoints.
type UsersService struct {
	client Client
}

// NewUsersService creates a UsersService.
func NewUsersService(client Client) *UsersService {
	return &UsersService{client: client}
}

// Current returns the user the credential belongs to.
func (s *UsersService) Current(ctx context.Context) (*User, error) {
	return Execute[*User](ctx, s.client, Get("user"))
}

// Get returns a user by ID.
func (s *UsersService) Get(ctx context.Context, user UserID) (*User, error) {
	return Execute[*User](ctx, s.client, Get(Pathf("users/%s", user)))
}
