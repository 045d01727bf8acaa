package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/magusbylili/storefront-backend/pkg/enums"
)

// User represents the canonical shopper identity.
type User struct {
	ID                 uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string         `gorm:"column:name;not null"`
	Email              string         `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash       string         `gorm:"column:password_hash;not null"`
	Role               enums.UserRole `gorm:"column:role;not null;default:'customer'"`
	ResetToken         *string        `gorm:"column:reset_token"`
	ResetExpiresAt     *time.Time     `gorm:"column:reset_expires_at"`
	PendingEmail       *string        `gorm:"column:pending_email"`
	EmailChangeToken   *string        `gorm:"column:email_change_token"`
	EmailChangeExpires *time.Time     `gorm:"column:email_change_expires_at"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
