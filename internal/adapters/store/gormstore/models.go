package gormstore

import "time"

type userRecord struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Username     string    `gorm:"uniqueIndex;size:36;not null"`
	DisplayName  string    `gorm:"size:64;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (userRecord) TableName() string { return "users" }

type roomRecord struct {
	ID           string `gorm:"primaryKey;size:32"`
	OwnerID      string `gorm:"index;size:36;not null"`
	PasswordHash string `gorm:"size:255"`
	IsActive     bool   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (roomRecord) TableName() string { return "rooms" }

// participantRecord is one durable admission. JoinedAt orders the list.
type participantRecord struct {
	RoomID   string `gorm:"primaryKey;size:32"`
	UserID   string `gorm:"primaryKey;size:36"`
	JoinedAt int64  `gorm:"autoCreateTime:nano;index"`
}

func (participantRecord) TableName() string { return "room_participants" }
