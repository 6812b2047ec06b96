package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"gorm.io/gorm"
)

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	rec := userRecord{
		ID:           string(user.ID),
		Username:     user.Username,
		DisplayName:  user.DisplayName,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isDuplicate(err) {
			return core.ErrDuplicate
		}
		return fmt.Errorf("gorm: create user %s: %w", user.Username, err)
	}
	return nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.findUser(ctx, "username = ?", username)
}

func (s *Store) FindUserByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return s.findUser(ctx, "id = ?", string(id))
}

func (s *Store) findUser(ctx context.Context, query string, arg string) (*domain.User, error) {
	var rec userRecord
	if err := s.db.WithContext(ctx).Where(query, arg).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("gorm: find user (%s): %w", arg, err)
	}
	return &domain.User{
		ID:           domain.UserID(rec.ID),
		Username:     rec.Username,
		DisplayName:  rec.DisplayName,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
	}, nil
}
