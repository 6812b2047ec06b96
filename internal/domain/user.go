// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxUserIDLen      = 36
	MaxUsernameLen    = 36
	MaxDisplayNameLen = 64
)

var (
	ErrUsernameTooLong    = errors.New("username too long")
	ErrUsernameEmpty      = errors.New("username empty")
	ErrDisplayNameTooLong = errors.New("display name too long")
)

type UserID string

type User struct {
	ID           UserID    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity is what a bearer credential resolves to.
type Identity struct {
	UserID      UserID `json:"userId"`
	DisplayName string `json:"displayName"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
// An empty display name falls back to the username.
func NewUser(username, displayName string) (*User, error) {
	username = strings.TrimSpace(username)
	if len(username) == 0 {
		return nil, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = username
	}
	if len(displayName) > MaxDisplayNameLen {
		return nil, ErrDisplayNameTooLong
	}
	return &User{
		ID:          UserID(uuid.NewString()),
		Username:    username,
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, DisplayName: u.DisplayName}
}
