package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Email          string    `gorm:"uniqueIndex;not null"`
	HashedPassword string    `gorm:"not null"`
	Name           string    `gorm:"not null"`
	Role           string    `gorm:"not null;default:'member';check:role IN ('admin', 'member')"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// Роли пользователей в системе
const (
	RoleAdmin  = "admin"  // видит и управляет всеми задачами
	RoleMember = "member" // работает только со своими задачами
)
