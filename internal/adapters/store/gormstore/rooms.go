package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateRoom(ctx context.Context, room *domain.Room) error {
	rec := roomRecord{
		ID:           string(room.ID),
		OwnerID:      string(room.OwnerID),
		PasswordHash: room.PasswordHash,
		IsActive:     room.IsActive,
		CreatedAt:    room.CreatedAt,
		UpdatedAt:    room.UpdatedAt,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		for _, uid := range room.Participants {
			p := participantRecord{RoomID: rec.ID, UserID: string(uid)}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicate(err) {
			return core.ErrDuplicate
		}
		return fmt.Errorf("gorm: create room %s: %w", room.ID, err)
	}
	return nil
}

func (s *Store) GetRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	var rec roomRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", string(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("gorm: find room %s: %w", id, err)
	}
	var parts []participantRecord
	err := s.db.WithContext(ctx).
		Where("room_id = ?", rec.ID).
		Order("joined_at ASC").Order("user_id ASC").
		Find(&parts).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list participants of %s: %w", id, err)
	}

	room := &domain.Room{
		ID:           domain.RoomID(rec.ID),
		OwnerID:      domain.UserID(rec.OwnerID),
		PasswordHash: rec.PasswordHash,
		IsActive:     rec.IsActive,
		Participants: make([]domain.UserID, 0, len(parts)),
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
	for _, p := range parts {
		room.Participants = append(room.Participants, domain.UserID(p.UserID))
	}
	return room, nil
}

func (s *Store) AddParticipant(ctx context.Context, id domain.RoomID, user domain.UserID) error {
	if err := s.roomExists(ctx, id); err != nil {
		return err
	}
	p := participantRecord{RoomID: string(id), UserID: string(user)}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err != nil {
		return fmt.Errorf("gorm: add participant %s to %s: %w", user, id, err)
	}
	return nil
}

func (s *Store) RemoveParticipant(ctx context.Context, id domain.RoomID, user domain.UserID) error {
	if err := s.roomExists(ctx, id); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", string(id), string(user)).
		Delete(&participantRecord{}).Error
	if err != nil {
		return fmt.Errorf("gorm: remove participant %s from %s: %w", user, id, err)
	}
	return nil
}

func (s *Store) Deactivate(ctx context.Context, id domain.RoomID) error {
	if err := s.roomExists(ctx, id); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Model(&roomRecord{}).
		Where("id = ?", string(id)).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("gorm: deactivate room %s: %w", id, err)
	}
	return nil
}

func (s *Store) roomExists(ctx context.Context, id domain.RoomID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&roomRecord{}).Where("id = ?", string(id)).Count(&count).Error; err != nil {
		return fmt.Errorf("gorm: count room %s: %w", id, err)
	}
	if count == 0 {
		return core.ErrNotFound
	}
	return nil
}
